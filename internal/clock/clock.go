// Package clock renders the wall-clock readout.
package clock

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/junsooki/AirTile/internal/display"
)

// Layout is the calendar format drawn on screen.
const Layout = "2006-01-02 15:04:05"

// Sample is a wall-clock instant broken into calendar fields at a fixed
// UTC offset.
type Sample struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
	Offset time.Duration
}

// SampleAt converts t to the zone offset east of UTC.
func SampleAt(t time.Time, offset time.Duration) Sample {
	local := t.In(time.FixedZone("", int(offset/time.Second)))
	return Sample{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
		Offset: offset,
	}
}

// String formats the sample as YYYY-MM-DD HH:MM:SS.
func (s Sample) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", s.Year, int(s.Month), s.Day, s.Hour, s.Minute, s.Second)
}

// Format renders t at offset using Layout.
func Format(t time.Time, offset time.Duration) string {
	return SampleAt(t, offset).String()
}

// Options configures a Renderer. Zero fields other than Offset select the
// appliance defaults; a zero Offset draws UTC, so callers pass the
// configured offset explicitly.
type Options struct {
	Offset     time.Duration
	Interval   time.Duration
	Font       display.Font
	Foreground color.RGBA
	Background color.RGBA
	X, Y       int
	Anchor     display.Anchor

	// Now overrides the time source, for tests.
	Now func() time.Time
}

// Renderer draws the current time onto a shared display at a fixed cadence.
type Renderer struct {
	disp *display.Shared
	opts Options
}

// NewRenderer creates a clock renderer for disp.
func NewRenderer(disp *display.Shared, opts Options) *Renderer {
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.Font.Face == nil {
		opts.Font = display.FontLarge
	}
	if opts.Foreground == (color.RGBA{}) && opts.Background == (color.RGBA{}) {
		opts.Foreground = display.Black
		opts.Background = display.White
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{disp: disp, opts: opts}
}

// RenderOnce draws the current time and returns the text drawn.
func (r *Renderer) RenderOnce() (string, error) {
	text := Format(r.opts.Now(), r.opts.Offset)
	err := r.disp.Do(func(s display.Surface) error {
		if err := s.SetFont(r.opts.Font); err != nil {
			return fmt.Errorf("set font: %w", err)
		}
		s.DrawString(text, r.opts.X, r.opts.Y, r.opts.Foreground, r.opts.Background, 1, 1, r.opts.Anchor)
		return nil
	})
	return text, err
}

// Run redraws the clock until ctx is done or a draw fails. The sleep
// between frames does not compensate for draw time.
func (r *Renderer) Run(ctx context.Context) error {
	for {
		if _, err := r.RenderOnce(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.opts.Interval):
		}
	}
}
