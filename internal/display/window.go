package display

import (
	"context"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Window is the desktop simulator: a Memory framebuffer scanned out to an
// Ebitengine window at the display refresh rate.
type Window struct {
	// mu is the scan-out lock between drawing calls and the game loop.
	mu    sync.Mutex
	mem   *Memory
	dirty bool

	ebitenImage *ebiten.Image
	title       string
	scale       int

	// stop ends the game loop when closed.
	stop <-chan struct{}
}

// NewWindow creates a simulator with a width x height panel, shown
// magnified by scale.
func NewWindow(width, height, scale int, title string) *Window {
	if scale < 1 {
		scale = 1
	}
	return &Window{
		mem:   NewMemory(width, height),
		dirty: true,
		title: title,
		scale: scale,
	}
}

func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mem.Size()
}

func (w *Window) PushImageRGB888(x, y, width, height int, pix []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mem.pushImage(x, y, width, height, pix).Empty() {
		w.dirty = true
	}
}

func (w *Window) SetFont(f Font) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mem.SetFont(f)
}

func (w *Window) DrawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mem.drawString(text, x, y, fg, bg, scaleX, scaleY, anchor).Empty() {
		w.dirty = true
	}
}

func (w *Window) SetRotation(r Rotation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mem.SetRotation(r)
}

// Run starts the Ebitengine game loop. Must be called from the main
// goroutine; returns when ctx is done, the window is closed or Escape is
// pressed.
func (w *Window) Run(ctx context.Context) error {
	w.stop = ctx.Done()
	b := w.mem.Image().Bounds()
	ebiten.SetWindowSize(b.Dx()*w.scale, b.Dy()*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(w)
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	select {
	case <-w.stop:
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	img := w.mem.Image()
	fw, fh := img.Bounds().Dx(), img.Bounds().Dy()

	w.mu.Lock()
	if w.ebitenImage == nil {
		w.ebitenImage = ebiten.NewImage(fw, fh)
		w.dirty = true
	}
	if w.dirty {
		w.ebitenImage.WritePixels(img.Pix)
		w.dirty = false
	}
	w.mu.Unlock()

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(fw), float64(fh))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(w.ebitenImage, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
