package transport

import (
	"fmt"
	"net"
)

// UDPSender writes datagrams to a fixed appliance address.
type UDPSender struct {
	conn *net.UDPConn
}

// DialUDP connects a sender to addr (host:port).
func DialUDP(addr string) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDPSender{conn: conn}, nil
}

func (s *UDPSender) SendDatagram(data []byte) error {
	_, err := s.conn.Write(data)
	return err
}

func (s *UDPSender) Close() error {
	return s.conn.Close()
}
