package ingest

import (
	"fmt"
	"net"
	"time"
)

// Receiver yields one datagram per call.
//
// Receive blocks for at most the receiver's timeout. When nothing arrived it
// returns an error wrapping os.ErrDeadlineExceeded; a datagram longer than
// buf is truncated to len(buf).
type Receiver interface {
	Receive(buf []byte) (int, error)
	Close() error
}

// UDPReceiver reads datagrams from a bound UDP socket.
type UDPReceiver struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// ListenUDP binds addr (e.g. ":4000") with the given receive timeout.
func ListenUDP(addr string, timeout time.Duration) (*UDPReceiver, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return &UDPReceiver{conn: conn, timeout: timeout}, nil
}

// LocalAddr returns the bound address.
func (r *UDPReceiver) LocalAddr() *net.UDPAddr {
	return r.conn.LocalAddr().(*net.UDPAddr)
}

func (r *UDPReceiver) Receive(buf []byte) (int, error) {
	if r.timeout > 0 {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			return 0, err
		}
	}
	n, _, err := r.conn.ReadFromUDP(buf)
	return n, err
}

func (r *UDPReceiver) Close() error {
	return r.conn.Close()
}
