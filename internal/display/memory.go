package display

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Memory is an in-memory RGBA framebuffer implementing Surface.
// The hardware and simulator drivers draw into one and scan it out.
type Memory struct {
	img  *image.RGBA
	rot  Rotation
	font Font
}

// NewMemory allocates a width x height framebuffer cleared to black.
func NewMemory(width, height int) *Memory {
	m := &Memory{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		font: FontSmall,
	}
	m.Fill(Black)
	return m
}

// Image returns the physical (unrotated) framebuffer.
func (m *Memory) Image() *image.RGBA {
	return m.img
}

// Fill paints the whole framebuffer with c.
func (m *Memory) Fill(c color.RGBA) {
	draw.Draw(m.img, m.img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

func (m *Memory) Size() (width, height int) {
	b := m.img.Bounds()
	if m.rot == Rotate90 || m.rot == Rotate270 {
		return b.Dy(), b.Dx()
	}
	return b.Dx(), b.Dy()
}

func (m *Memory) SetRotation(r Rotation) error {
	if _, err := ParseRotation(int(r)); err != nil {
		return err
	}
	m.rot = r
	return nil
}

func (m *Memory) SetFont(f Font) error {
	if err := f.validate(); err != nil {
		return err
	}
	m.font = f
	return nil
}

func (m *Memory) PushImageRGB888(x, y, w, h int, pix []byte) {
	m.pushImage(x, y, w, h, pix)
}

func (m *Memory) DrawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor) {
	m.drawString(text, x, y, fg, bg, scaleX, scaleY, anchor)
}

// physical maps a logical coordinate to the framebuffer.
func (m *Memory) physical(lx, ly int) (int, int) {
	b := m.img.Bounds()
	switch m.rot {
	case Rotate90:
		return b.Dx() - 1 - ly, lx
	case Rotate180:
		return b.Dx() - 1 - lx, b.Dy() - 1 - ly
	case Rotate270:
		return ly, b.Dy() - 1 - lx
	}
	return lx, ly
}

// physicalRect maps a logical rectangle to the framebuffer.
func (m *Memory) physicalRect(r image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	x0, y0 := m.physical(r.Min.X, r.Min.Y)
	x1, y1 := m.physical(r.Max.X-1, r.Max.Y-1)
	return image.Rect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1)
}

// pushImage copies packed RGB888 pixels and returns the physical rectangle
// that changed. Malformed or zero-area input changes nothing.
func (m *Memory) pushImage(x, y, w, h int, pix []byte) image.Rectangle {
	if w <= 0 || h <= 0 || len(pix) != w*h*3 {
		return image.Rectangle{}
	}
	lw, lh := m.Size()
	clip := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, lw, lh))
	if clip.Empty() {
		return image.Rectangle{}
	}

	if m.rot == Rotate0 {
		for row := clip.Min.Y; row < clip.Max.Y; row++ {
			src := pix[((row-y)*w+(clip.Min.X-x))*3:]
			off := m.img.PixOffset(clip.Min.X, row)
			dst := m.img.Pix[off : off+clip.Dx()*4]
			for i := 0; i < len(dst); i += 4 {
				dst[i], dst[i+1], dst[i+2], dst[i+3] = src[0], src[1], src[2], 0xFF
				src = src[3:]
			}
		}
		return clip
	}

	for row := clip.Min.Y; row < clip.Max.Y; row++ {
		for col := clip.Min.X; col < clip.Max.X; col++ {
			s := ((row-y)*w + (col - x)) * 3
			px, py := m.physical(col, row)
			off := m.img.PixOffset(px, py)
			m.img.Pix[off], m.img.Pix[off+1], m.img.Pix[off+2], m.img.Pix[off+3] = pix[s], pix[s+1], pix[s+2], 0xFF
		}
	}
	return m.physicalRect(clip)
}

// drawString renders text with the current font and returns the physical
// rectangle that changed.
func (m *Memory) drawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor) image.Rectangle {
	if text == "" {
		return image.Rectangle{}
	}
	face := m.font.Face
	metrics := face.Metrics()
	tw := font.MeasureString(face, text).Ceil()
	th := metrics.Height.Ceil()
	if tw <= 0 || th <= 0 {
		return image.Rectangle{}
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(glyphs, glyphs.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  &image.Uniform{fg},
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(text)

	ow := int(math.Round(float64(tw*m.font.ScaleX) * scaleX))
	oh := int(math.Round(float64(th*m.font.ScaleY) * scaleY))
	if ow <= 0 || oh <= 0 {
		return image.Rectangle{}
	}
	scaled := glyphs
	if ow != tw || oh != th {
		scaled = image.NewRGBA(image.Rect(0, 0, ow, oh))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), glyphs, glyphs.Bounds(), xdraw.Src, nil)
	}

	dx, dy := anchor.offset(ow, oh)
	return m.pushRGBA(x+dx, y+dy, scaled)
}

// pushRGBA copies src to the logical position (x, y).
func (m *Memory) pushRGBA(x, y int, src *image.RGBA) image.Rectangle {
	b := src.Bounds()
	lw, lh := m.Size()
	clip := image.Rect(x, y, x+b.Dx(), y+b.Dy()).Intersect(image.Rect(0, 0, lw, lh))
	if clip.Empty() {
		return image.Rectangle{}
	}
	for row := clip.Min.Y; row < clip.Max.Y; row++ {
		for col := clip.Min.X; col < clip.Max.X; col++ {
			so := src.PixOffset(b.Min.X+col-x, b.Min.Y+row-y)
			px, py := m.physical(col, row)
			do := m.img.PixOffset(px, py)
			copy(m.img.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return m.physicalRect(clip)
}
