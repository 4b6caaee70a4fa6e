package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSingleFrameCapturer(t *testing.T) {
	c, err := NewTickerCapturer(Pattern(16, 4), 0)
	if err != nil {
		t.Fatalf("NewTickerCapturer: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()

	var frames int
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-c.Frames():
			if !ok {
				if frames != 1 {
					t.Fatalf("frames = %d, want 1", frames)
				}
				return
			}
			frames++
			if f.Image.Bounds().Dx() != 16 || f.Image.Bounds().Dy() != 4 {
				t.Errorf("frame size = %v", f.Image.Bounds())
			}
		case <-timeout:
			t.Fatal("channel never closed")
		}
	}
}

func TestTickerCapturerStops(t *testing.T) {
	c, err := NewTickerCapturer(Pattern(8, 8), 60)
	if err != nil {
		t.Fatalf("NewTickerCapturer: %v", err)
	}
	c.Start()
	select {
	case <-c.Frames():
	case <-time.After(2 * time.Second):
		t.Fatal("no frame")
	}
	c.Stop()
	for range c.Frames() {
	}

	if _, err := NewTickerCapturer(Pattern(1, 1), 61); err == nil {
		t.Error("fps 61 accepted")
	}
}

func TestPatternScrolls(t *testing.T) {
	p := Pattern(80, 1)
	a, _ := p(time.UnixMilli(0))
	b, _ := p(time.UnixMilli(1000))
	if a.RGBAAt(0, 0) == b.RGBAAt(0, 0) {
		t.Error("pattern did not move after one second")
	}
	if got := a.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("first bar = %v, want white", got)
	}
}

func TestImageFileScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	path := filepath.Join(t.TempDir(), "tile.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	source, err := ImageFile(path, 8, 0)
	if err != nil {
		t.Fatalf("ImageFile: %v", err)
	}
	img, err := source(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 2 {
		t.Errorf("scaled size = %v, want 8x2", img.Bounds().Size())
	}

	if _, err := ImageFile(filepath.Join(t.TempDir(), "missing.png"), 0, 0); err == nil {
		t.Error("missing file accepted")
	}
}

func TestImageFileRasterizesSVG(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10" width="10" height="10">
<rect x="0" y="0" width="10" height="10" fill="#ff0000"/>
</svg>`
	path := filepath.Join(t.TempDir(), "red.svg")
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := ImageFile(path, 20, 0)
	if err != nil {
		t.Fatalf("ImageFile: %v", err)
	}
	img, _ := source(time.Now())
	if got := img.Bounds().Size(); got != image.Pt(20, 10) {
		t.Fatalf("size = %v, want 20x10", got)
	}
	if c := img.RGBAAt(10, 5); c.R < 200 || c.G > 50 || c.B > 50 {
		t.Errorf("center = %v, want red", c)
	}
}
