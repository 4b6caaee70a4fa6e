//go:build linux

package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// fbVarScreenInfo receives struct fb_var_screeninfo. It is deliberately
// larger than the kernel struct so differing kernel versions cannot write
// past it; only the leading fields are parsed.
type fbVarScreenInfo [160]byte

// fbFixScreenInfo receives struct fb_fix_screeninfo.
type fbFixScreenInfo [128]byte

// parse returns line_length and smem_len. The struct starts with a 16-byte
// id followed by an unsigned long, so field offsets depend on ptrSize.
func (info *fbFixScreenInfo) parse(ptrSize int) (lineLength, memLen int) {
	smemLen := 16 + ptrSize
	// smem_len, type, type_aux, visual, then three u16 pan/wrap steps.
	line := smemLen + 4*4 + 2*3
	line = (line + 3) &^ 3
	return int(binary.NativeEndian.Uint32(info[line:])), int(binary.NativeEndian.Uint32(info[smemLen:]))
}

type fbChannel struct {
	offset, length uint32
}

// Framebuffer drives a Linux fbdev panel. Drawing goes to a Memory back
// buffer and each changed rectangle is converted into the mapped device
// memory before the call returns.
type Framebuffer struct {
	file *os.File
	mem  []byte

	stride        int
	bytesPerPixel int
	red           fbChannel
	green         fbChannel
	blue          fbChannel
	transp        fbChannel

	back *Memory
}

// OpenFramebuffer maps the framebuffer device at path, e.g. /dev/fb0.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var info fbVarScreenInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&info[0])))
	if errno != 0 {
		f.Close()
		return nil, fmt.Errorf("FBIOGET_VSCREENINFO %s: %w", path, errno)
	}

	var fix fbFixScreenInfo
	_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), fbioGetFScreenInfo, uintptr(unsafe.Pointer(&fix[0])))
	if errno != 0 {
		f.Close()
		return nil, fmt.Errorf("FBIOGET_FSCREENINFO %s: %w", path, errno)
	}

	u32 := func(off int) uint32 { return binary.NativeEndian.Uint32(info[off : off+4]) }
	xres, yres := int(u32(0)), int(u32(4))
	bpp := int(u32(24))
	if bpp != 16 && bpp != 24 && bpp != 32 {
		f.Close()
		return nil, fmt.Errorf("%s: unsupported depth %d bpp", path, bpp)
	}
	stride, memLen, err := framebufferLayout(&fix, int(unsafe.Sizeof(uintptr(0))), xres, yres, bpp/8)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fb := &Framebuffer{
		file:          f,
		bytesPerPixel: bpp / 8,
		stride:        stride,
		red:           fbChannel{u32(32), u32(36)},
		green:         fbChannel{u32(44), u32(48)},
		blue:          fbChannel{u32(56), u32(60)},
		transp:        fbChannel{u32(68), u32(72)},
		back:          NewMemory(xres, yres),
	}

	fb.mem, err = unix.Mmap(int(f.Fd()), 0, memLen, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	fb.flush(fb.back.Image().Bounds())
	return fb, nil
}

// framebufferLayout returns the scanline stride and the length to map,
// checking that a visible xres x yres panel fits in device memory.
func framebufferLayout(fix *fbFixScreenInfo, ptrSize, xres, yres, bytesPerPixel int) (stride, memLen int, err error) {
	stride, memLen = fix.parse(ptrSize)
	if stride < xres*bytesPerPixel {
		return 0, 0, fmt.Errorf("line length %d shorter than %d pixels", stride, xres)
	}
	if xres <= 0 || yres <= 0 || memLen < (yres-1)*stride+xres*bytesPerPixel {
		return 0, 0, fmt.Errorf("%d bytes of video memory cannot hold %dx%d", memLen, xres, yres)
	}
	return stride, memLen, nil
}

// Close unmaps the device memory and closes the device.
func (fb *Framebuffer) Close() error {
	if err := unix.Munmap(fb.mem); err != nil {
		fb.file.Close()
		return err
	}
	return fb.file.Close()
}

func (fb *Framebuffer) Size() (width, height int) {
	return fb.back.Size()
}

func (fb *Framebuffer) PushImageRGB888(x, y, w, h int, pix []byte) {
	fb.flush(fb.back.pushImage(x, y, w, h, pix))
}

func (fb *Framebuffer) SetFont(f Font) error {
	return fb.back.SetFont(f)
}

func (fb *Framebuffer) DrawString(text string, x, y int, fg, bg color.RGBA, scaleX, scaleY float64, anchor Anchor) {
	fb.flush(fb.back.drawString(text, x, y, fg, bg, scaleX, scaleY, anchor))
}

func (fb *Framebuffer) SetRotation(r Rotation) error {
	return fb.back.SetRotation(r)
}

// flush converts the physical rectangle r of the back buffer into the
// device pixel format.
func (fb *Framebuffer) flush(r image.Rectangle) {
	img := fb.back.Image()
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := img.Pix[img.PixOffset(r.Min.X, y):]
		dst := fb.mem[y*fb.stride+r.Min.X*fb.bytesPerPixel:]
		for x := r.Min.X; x < r.Max.X; x++ {
			v := fb.red.pack(src[0]) | fb.green.pack(src[1]) | fb.blue.pack(src[2]) | fb.transp.pack(0xFF)
			for i := 0; i < fb.bytesPerPixel; i++ {
				dst[i] = byte(v >> (8 * i))
			}
			src = src[4:]
			dst = dst[fb.bytesPerPixel:]
		}
	}
}

func (c fbChannel) pack(v uint8) uint32 {
	if c.length == 0 || c.length > 8 {
		return 0
	}
	return uint32(v>>(8-c.length)) << c.offset
}
