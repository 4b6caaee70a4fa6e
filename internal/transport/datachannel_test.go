package transport

import (
	"errors"
	"net"
	"os"
	"testing"
	"time"
)

func TestDataChannelReceiverDelivers(t *testing.T) {
	r := NewDataChannelReceiver(4, 50*time.Millisecond)
	msg := []byte{0x55, 0xAA, 1, 2, 3}
	r.Deliver(msg)
	msg[2] = 0xFF

	buf := make([]byte, 16)
	n, err := r.Receive(buf)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if n != 5 || buf[2] != 1 {
		t.Errorf("Receive = %d bytes %v, want a private copy of the message", n, buf[:n])
	}
}

func TestDataChannelReceiverTimesOut(t *testing.T) {
	r := NewDataChannelReceiver(1, 5*time.Millisecond)
	start := time.Now()
	_, err := r.Receive(make([]byte, 8))
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("Receive error = %v, want os.ErrDeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Receive blocked far past its timeout")
	}
}

func TestDataChannelReceiverTruncatesAndDrops(t *testing.T) {
	r := NewDataChannelReceiver(1, 5*time.Millisecond)
	r.Deliver([]byte{1, 2, 3, 4})
	r.Deliver([]byte{5})
	if r.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", r.Dropped())
	}

	buf := make([]byte, 2)
	n, err := r.Receive(buf)
	if err != nil || n != 2 || buf[0] != 1 || buf[1] != 2 {
		t.Errorf("Receive = %d %v %v, want truncated first message", n, buf, err)
	}
}

func TestDataChannelReceiverClose(t *testing.T) {
	r := NewDataChannelReceiver(1, time.Second)
	r.Close()
	r.Close()
	if _, err := r.Receive(make([]byte, 1)); !errors.Is(err, net.ErrClosed) {
		t.Errorf("Receive after Close = %v, want net.ErrClosed", err)
	}
}

func TestUDPSender(t *testing.T) {
	pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer pc.Close()

	s, err := DialUDP(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	defer s.Close()

	if err := s.SendDatagram([]byte("tile")); err != nil {
		t.Fatalf("SendDatagram: %v", err)
	}
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	n, _, err := pc.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	if string(buf[:n]) != "tile" {
		t.Errorf("received %q", buf[:n])
	}
}
