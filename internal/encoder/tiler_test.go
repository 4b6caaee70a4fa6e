package encoder

import (
	"image"
	"image/color"
	"testing"

	"github.com/junsooki/AirTile/internal/decoder"
	"github.com/junsooki/AirTile/internal/display"
	"github.com/junsooki/AirTile/internal/protocol"
)

func TestTileSize(t *testing.T) {
	tiler, err := NewTiler(1200)
	if err != nil {
		t.Fatalf("NewTiler: %v", err)
	}
	tests := []struct {
		frameW       int
		wantW, wantH int
	}{
		{320, 320, 1},
		{100, 100, 3},
		{1000, 396, 1},
		{1, 1, 396},
	}
	for _, tt := range tests {
		w, h := tiler.TileSize(tt.frameW)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("TileSize(%d) = %dx%d, want %dx%d", tt.frameW, w, h, tt.wantW, tt.wantH)
		}
	}

	if _, err := NewTiler(12); err == nil {
		t.Error("NewTiler(12) succeeded")
	}
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	return img
}

func TestEncodeReassembles(t *testing.T) {
	const maxDatagram = 200
	tiler, err := NewTiler(maxDatagram)
	if err != nil {
		t.Fatalf("NewTiler: %v", err)
	}
	src := gradient(97, 41)
	origin := image.Pt(5, 7)

	pkts, err := tiler.Encode(src, origin)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(pkts) == 0 {
		t.Fatal("no datagrams")
	}

	mem := display.NewMemory(120, 60)
	covered := 0
	for i, pkt := range pkts {
		if len(pkt) > maxDatagram {
			t.Fatalf("datagram %d is %d bytes, limit %d", i, len(pkt), maxDatagram)
		}
		blit, err := decoder.Decode(pkt)
		if err != nil {
			t.Fatalf("datagram %d: Decode: %v", i, err)
		}
		covered += int(blit.Width) * int(blit.Height)
		mem.PushImageRGB888(int(blit.X), int(blit.Y), int(blit.Width), int(blit.Height), blit.Pixels)
	}
	if covered != 97*41 {
		t.Errorf("tiles cover %d pixels, want %d", covered, 97*41)
	}

	for y := 0; y < 41; y++ {
		for x := 0; x < 97; x++ {
			if got, want := mem.Image().RGBAAt(origin.X+x, origin.Y+y), src.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestEncodeSubImageOffsets(t *testing.T) {
	tiler, _ := NewTiler(protocol.DefaultMaxDatagram)
	sub := gradient(20, 20).SubImage(image.Rect(10, 10, 12, 11)).(*image.RGBA)

	pkts, err := tiler.Encode(sub, image.Pt(0, 0))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(pkts) != 1 {
		t.Fatalf("datagrams = %d, want 1", len(pkts))
	}
	blit, err := decoder.Decode(pkts[0])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if blit.X != 0 || blit.Y != 0 || blit.Width != 2 || blit.Height != 1 {
		t.Errorf("blit = (%d,%d %dx%d), want (0,0 2x1)", blit.X, blit.Y, blit.Width, blit.Height)
	}
	if blit.Pixels[0] != 10 || blit.Pixels[1] != 10 || blit.Pixels[3] != 11 {
		t.Errorf("pixels = %v, want sub-image content", blit.Pixels)
	}
}

func TestEncodeRejectsOutOfRangeOrigin(t *testing.T) {
	tiler, _ := NewTiler(protocol.DefaultMaxDatagram)
	if _, err := tiler.Encode(gradient(10, 10), image.Pt(65530, 0)); err == nil {
		t.Error("Encode past 16-bit range succeeded")
	}
}
