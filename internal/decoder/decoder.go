// Package decoder validates raw tile datagrams.
package decoder

import (
	"encoding/binary"
	"errors"

	"github.com/junsooki/AirTile/internal/protocol"
)

var (
	// ErrTooShort is returned when a datagram is shorter than its header,
	// or shorter than the pixel data its header declares.
	ErrTooShort = errors.New("datagram too short")

	// ErrBadMarker is returned when the first two bytes are not protocol.Marker.
	ErrBadMarker = errors.New("bad datagram marker")
)

// Decode classifies buf as a tile blit or a rejection.
//
// It never panics and never copies: on success the returned Pixels is
// buf[HeaderSize:HeaderSize+width*height*3]. Bytes past the declared
// payload are ignored; only one tile is read per datagram.
func Decode(buf []byte) (protocol.ImageBlit, error) {
	if len(buf) < protocol.HeaderSize {
		return protocol.ImageBlit{}, ErrTooShort
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != protocol.Marker {
		return protocol.ImageBlit{}, ErrBadMarker
	}
	h := protocol.Header{
		X:      binary.LittleEndian.Uint16(buf[2:4]),
		Y:      binary.LittleEndian.Uint16(buf[4:6]),
		Width:  binary.LittleEndian.Uint16(buf[6:8]),
		Height: binary.LittleEndian.Uint16(buf[8:10]),
	}
	required := uint64(protocol.HeaderSize) + uint64(h.Width)*uint64(h.Height)*protocol.BytesPerPixel
	if uint64(len(buf)) < required {
		return protocol.ImageBlit{}, ErrTooShort
	}
	return protocol.ImageBlit{
		X:      h.X,
		Y:      h.Y,
		Width:  h.Width,
		Height: h.Height,
		Pixels: buf[protocol.HeaderSize:required:required],
	}, nil
}
