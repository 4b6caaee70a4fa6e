//go:build linux

package display

import (
	"encoding/binary"
	"testing"
)

func fixInfo(ptrSize, memLen, lineLength int) *fbFixScreenInfo {
	var fix fbFixScreenInfo
	copy(fix[:], "test fb")
	binary.NativeEndian.PutUint32(fix[16+ptrSize:], uint32(memLen))
	// type, type_aux and visual are nonzero so misplaced reads show up.
	for i := 0; i < 3; i++ {
		binary.NativeEndian.PutUint32(fix[16+ptrSize+4+4*i:], 0xDEAD)
	}
	line := 48
	if ptrSize == 4 {
		line = 44
	}
	binary.NativeEndian.PutUint32(fix[line:], uint32(lineLength))
	return &fix
}

func TestFramebufferLayoutUsesLineLength(t *testing.T) {
	tests := []struct {
		name       string
		ptrSize    int
		xres, yres int
		bpp        int
		memLen     int
		lineLength int
		wantErr    bool
	}{
		{name: "64-bit packed", ptrSize: 8, xres: 320, yres: 240, bpp: 2, memLen: 320 * 240 * 2, lineLength: 640},
		{name: "64-bit padded rows", ptrSize: 8, xres: 320, yres: 240, bpp: 4, memLen: 1536 * 240, lineLength: 1536},
		{name: "32-bit padded rows", ptrSize: 4, xres: 480, yres: 320, bpp: 3, memLen: 1536 * 320, lineLength: 1536},
		{name: "line shorter than row", ptrSize: 8, xres: 320, yres: 240, bpp: 4, memLen: 1 << 20, lineLength: 1000, wantErr: true},
		{name: "memory too small", ptrSize: 8, xres: 320, yres: 240, bpp: 2, memLen: 640 * 239, lineLength: 640, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := fixInfo(tt.ptrSize, tt.memLen, tt.lineLength)
			stride, memLen, err := framebufferLayout(fix, tt.ptrSize, tt.xres, tt.yres, tt.bpp)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("framebufferLayout() accepted stride %d, len %d", stride, memLen)
				}
				return
			}
			if err != nil {
				t.Fatalf("framebufferLayout() error: %v", err)
			}
			if stride != tt.lineLength || memLen != tt.memLen {
				t.Errorf("stride, len = %d, %d, want %d, %d", stride, memLen, tt.lineLength, tt.memLen)
			}
		})
	}
}

func TestFramebufferFlushHonorsStride(t *testing.T) {
	const stride = 16
	fb := &Framebuffer{
		mem:           make([]byte, stride*2),
		stride:        stride,
		bytesPerPixel: 4,
		red:           fbChannel{16, 8},
		green:         fbChannel{8, 8},
		blue:          fbChannel{0, 8},
		back:          NewMemory(2, 2),
	}
	fb.PushImageRGB888(0, 1, 1, 1, []byte{0x11, 0x22, 0x33})

	got := binary.LittleEndian.Uint32(fb.mem[stride:])
	if got != 0x112233 {
		t.Errorf("row 1 pixel = %#x, want 0x112233", got)
	}
	for i, b := range fb.mem[8:stride] {
		if b != 0 {
			t.Fatalf("padding byte %d written: %#x", 8+i, b)
		}
	}
}
