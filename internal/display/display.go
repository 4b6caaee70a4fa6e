// Package display defines the drawing surface the appliance renders onto and
// the single lock that serializes access to it.
package display

import (
	"fmt"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Surface is the driver-provided drawing capability.
//
// Drawing calls are infallible from the caller's point of view; only setup
// operations (font and rotation selection) report errors. A Surface is not
// safe for concurrent use; share it through a Shared handle.
type Surface interface {
	// Size returns the logical size after rotation.
	Size() (width, height int)

	// PushImageRGB888 copies a w*h block of packed RGB888 pixels to (x, y).
	PushImageRGB888(x, y, w, h int, pix []byte)

	// SetFont selects the font used by subsequent DrawString calls.
	SetFont(f Font) error

	// DrawString draws text anchored at (x, y), filling the text box with bg.
	DrawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor)

	// SetRotation rotates the logical coordinate space.
	SetRotation(r Rotation) error
}

// Font is a fixed-width bitmap face drawn at an integer magnification.
type Font struct {
	Name   string
	Face   font.Face
	ScaleX int
	ScaleY int
}

var (
	// FontSmall is the 7x13 ASCII face at its native size.
	FontSmall = Font{Name: "ascii7x13", Face: basicfont.Face7x13, ScaleX: 1, ScaleY: 1}

	// FontLarge is the 7x13 ASCII face magnified to 21x39 cells.
	FontLarge = Font{Name: "ascii21x39", Face: basicfont.Face7x13, ScaleX: 3, ScaleY: 3}
)

func (f Font) validate() error {
	if f.Face == nil {
		return fmt.Errorf("font %q has no face", f.Name)
	}
	if f.ScaleX < 1 || f.ScaleY < 1 {
		return fmt.Errorf("font %q has invalid scale %dx%d", f.Name, f.ScaleX, f.ScaleY)
	}
	return nil
}

// Anchor selects which point of the text box lands on the draw coordinates.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

// offset returns how far the box origin moves from the anchor point.
func (a Anchor) offset(w, h int) (dx, dy int) {
	switch a % 3 {
	case 1:
		dx = -w / 2
	case 2:
		dx = -w
	}
	switch a / 3 {
	case 1:
		dy = -h / 2
	case 2:
		dy = -h
	}
	return dx, dy
}

// Rotation is a clockwise quarter-turn count.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// ParseRotation converts a quarter-turn count to a Rotation.
func ParseRotation(n int) (Rotation, error) {
	if n < 0 || n > 3 {
		return 0, fmt.Errorf("rotation %d out of range 0-3", n)
	}
	return Rotation(n), nil
}

// Common colors.
var (
	Black = color.RGBA{0, 0, 0, 255}
	White = color.RGBA{255, 255, 255, 255}
)
