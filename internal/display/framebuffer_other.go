//go:build !linux

package display

import (
	"errors"
	"image/color"
)

// Framebuffer is only available on Linux.
type Framebuffer struct{}

// OpenFramebuffer always fails on this platform.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	return nil, errors.New("framebuffer devices are only supported on linux")
}

func (fb *Framebuffer) Close() error                               { return nil }
func (fb *Framebuffer) Size() (width, height int)                  { return 0, 0 }
func (fb *Framebuffer) PushImageRGB888(x, y, w, h int, pix []byte) {}
func (fb *Framebuffer) SetFont(f Font) error                       { return nil }
func (fb *Framebuffer) SetRotation(r Rotation) error               { return nil }

func (fb *Framebuffer) DrawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor) {
}
