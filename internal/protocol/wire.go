// Package protocol defines the tile datagram wire format shared by the
// appliance and its senders.
//
// Every datagram is a fixed 10-byte little-endian header followed by
// width*height RGB888 pixels, row-major, with no padding:
//
//	offset 0  uint16 marker (0xAA55)
//	offset 2  uint16 x
//	offset 4  uint16 y
//	offset 6  uint16 width
//	offset 8  uint16 height
//	offset 10 width*height*3 bytes of pixel data
package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the length of the fixed datagram prefix.
	HeaderSize = 10

	// Marker is the sentinel that identifies a tile datagram.
	Marker uint16 = 0xAA55

	// BytesPerPixel is the size of one RGB888 pixel.
	BytesPerPixel = 3

	// DefaultPort is the UDP port the appliance listens on.
	DefaultPort = 4000

	// DefaultMaxDatagram is the receive buffer size of the reference
	// deployment. Tiles larger than this need a larger buffer on both ends.
	DefaultMaxDatagram = 1200
)

// Header is the geometry carried in a datagram prefix.
type Header struct {
	X, Y          uint16
	Width, Height uint16
}

// PayloadSize returns the number of pixel bytes the header declares.
// The result cannot overflow: 65535*65535*3 fits in an int on 64-bit
// platforms and is computed in uint64 before conversion.
func (h Header) PayloadSize() int {
	return int(uint64(h.Width) * uint64(h.Height) * BytesPerPixel)
}

// DatagramSize returns the total datagram length the header declares.
func (h Header) DatagramSize() int {
	return HeaderSize + h.PayloadSize()
}

// ImageBlit is one validated rectangular pixel copy.
//
// Pixels aliases the datagram it was decoded from and is only valid until
// that buffer is reused. len(Pixels) == Width*Height*3 always holds.
type ImageBlit struct {
	X, Y          uint16
	Width, Height uint16
	Pixels        []byte
}

// Empty reports whether the blit covers no pixels.
func (b ImageBlit) Empty() bool {
	return b.Width == 0 || b.Height == 0
}

// AppendDatagram appends the encoded form of h and pixels to dst.
func AppendDatagram(dst []byte, h Header, pixels []byte) ([]byte, error) {
	if len(pixels) != h.PayloadSize() {
		return dst, fmt.Errorf("pixel data is %d bytes, header declares %d", len(pixels), h.PayloadSize())
	}
	dst = binary.LittleEndian.AppendUint16(dst, Marker)
	dst = binary.LittleEndian.AppendUint16(dst, h.X)
	dst = binary.LittleEndian.AppendUint16(dst, h.Y)
	dst = binary.LittleEndian.AppendUint16(dst, h.Width)
	dst = binary.LittleEndian.AppendUint16(dst, h.Height)
	return append(dst, pixels...), nil
}
