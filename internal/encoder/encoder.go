// Package encoder turns frames into tile datagrams.
package encoder

import "image"

// Encoder encodes a frame into datagrams ready to send.
type Encoder interface {
	Encode(img *image.RGBA, origin image.Point) ([][]byte, error)
}
