// Package transport moves tile datagrams between a sender and an appliance.
package transport

// DatagramSender sends one encoded tile datagram per call.
type DatagramSender interface {
	SendDatagram(data []byte) error
	Close() error
}
