// Package capture produces frames for the tile sender.
package capture

import (
	"fmt"
	"image"
	"log"
	"time"
)

// Frame represents one captured frame.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
}

// Capturer delivers frames on a channel until stopped.
type Capturer interface {
	Start() error
	Stop()
	Frames() <-chan *Frame
}

// Source renders the frame for instant t.
type Source func(t time.Time) (*image.RGBA, error)

// TickerCapturer polls a Source at a fixed rate. With fps 0 it emits a
// single frame and closes the channel.
type TickerCapturer struct {
	source  Source
	fps     int
	frameCh chan *Frame
	stopCh  chan struct{}
	running bool
}

// NewTickerCapturer creates a capturer for source at fps frames per second.
func NewTickerCapturer(source Source, fps int) (*TickerCapturer, error) {
	if fps < 0 || fps > 60 {
		return nil, fmt.Errorf("fps must be 0-60, got %d", fps)
	}
	return &TickerCapturer{
		source:  source,
		fps:     fps,
		frameCh: make(chan *Frame, 2),
		stopCh:  make(chan struct{}),
	}, nil
}

func (c *TickerCapturer) Start() error {
	if c.running {
		return fmt.Errorf("already running")
	}
	c.running = true
	go c.loop()
	return nil
}

func (c *TickerCapturer) Stop() {
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

func (c *TickerCapturer) Frames() <-chan *Frame {
	return c.frameCh
}

func (c *TickerCapturer) loop() {
	defer close(c.frameCh)

	if c.fps == 0 {
		if f := c.capture(); f != nil {
			select {
			case c.frameCh <- f:
			case <-c.stopCh:
			}
		}
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			f := c.capture()
			if f == nil {
				continue
			}
			select {
			case c.frameCh <- f:
			default:
			}
		}
	}
}

func (c *TickerCapturer) capture() *Frame {
	now := time.Now()
	img, err := c.source(now)
	if err != nil {
		log.Printf("capture: %v", err)
		return nil
	}
	return &Frame{Image: img, Timestamp: now}
}
