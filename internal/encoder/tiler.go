package encoder

import (
	"fmt"
	"image"

	"github.com/junsooki/AirTile/internal/protocol"
)

// Tiler splits a frame into rectangular tiles that each fit in one
// datagram of at most maxDatagram bytes.
type Tiler struct {
	maxDatagram int
	pix         []byte
}

// NewTiler creates a Tiler. maxDatagram must leave room for one pixel.
func NewTiler(maxDatagram int) (*Tiler, error) {
	if maxDatagram < protocol.HeaderSize+protocol.BytesPerPixel {
		return nil, fmt.Errorf("max datagram %d cannot carry a pixel", maxDatagram)
	}
	return &Tiler{maxDatagram: maxDatagram}, nil
}

// TileSize returns the tile dimensions used for a frame frameWidth wide.
func (t *Tiler) TileSize(frameWidth int) (w, h int) {
	payload := t.maxDatagram - protocol.HeaderSize
	w = min(frameWidth, payload/protocol.BytesPerPixel, 0xFFFF)
	if w <= 0 {
		return 0, 0
	}
	h = max(1, min(payload/(w*protocol.BytesPerPixel), 0xFFFF))
	return w, h
}

// Encode emits one datagram per tile of img, placed with the frame's
// top-left corner at origin on the display.
func (t *Tiler) Encode(img *image.RGBA, origin image.Point) ([][]byte, error) {
	b := img.Bounds()
	if origin.X < 0 || origin.Y < 0 || origin.X+b.Dx() > 0x10000 || origin.Y+b.Dy() > 0x10000 {
		return nil, fmt.Errorf("frame %v at %v exceeds the 16-bit coordinate space", b.Size(), origin)
	}
	tw, th := t.TileSize(b.Dx())
	if tw == 0 || b.Dy() == 0 {
		return nil, nil
	}

	var out [][]byte
	for y := b.Min.Y; y < b.Max.Y; y += th {
		for x := b.Min.X; x < b.Max.X; x += tw {
			r := image.Rect(x, y, x+tw, y+th).Intersect(b)
			t.pix = appendRGB888(t.pix[:0], img, r)
			h := protocol.Header{
				X:      uint16(origin.X + r.Min.X - b.Min.X),
				Y:      uint16(origin.Y + r.Min.Y - b.Min.Y),
				Width:  uint16(r.Dx()),
				Height: uint16(r.Dy()),
			}
			pkt, err := protocol.AppendDatagram(make([]byte, 0, h.DatagramSize()), h, t.pix)
			if err != nil {
				return nil, err
			}
			out = append(out, pkt)
		}
	}
	return out, nil
}

// appendRGB888 appends the pixels of r, row-major, dropping alpha.
func appendRGB888(dst []byte, img *image.RGBA, r image.Rectangle) []byte {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			dst = append(dst, row[i], row[i+1], row[i+2])
		}
	}
	return dst
}
