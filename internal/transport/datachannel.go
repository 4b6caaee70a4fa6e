package transport

import (
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
)

// TilesLabel is the DataChannel label that carries tile datagrams.
const TilesLabel = "tiles"

var errReceiverClosed = fmt.Errorf("datachannel receiver: %w", net.ErrClosed)

// DataChannelReceiver turns DataChannel messages into datagram reads for
// the ingest loop. Messages wait in a bounded queue; when it is full new
// messages are dropped.
type DataChannelReceiver struct {
	queue   chan []byte
	timeout time.Duration
	closed  chan struct{}
	dropped atomic.Uint64
}

// NewDataChannelReceiver creates a receiver holding up to depth messages.
func NewDataChannelReceiver(depth int, timeout time.Duration) *DataChannelReceiver {
	if depth < 1 {
		depth = 1
	}
	return &DataChannelReceiver{
		queue:   make(chan []byte, depth),
		timeout: timeout,
		closed:  make(chan struct{}),
	}
}

// Attach routes messages from dc into the receiver. Attaching a new
// channel does not detach earlier ones; their messages keep arriving until
// their peer connection closes.
func (r *DataChannelReceiver) Attach(dc *webrtc.DataChannel) {
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if msg.IsString {
			return
		}
		r.Deliver(msg.Data)
	})
}

// Deliver queues a copy of data.
func (r *DataChannelReceiver) Deliver(data []byte) {
	select {
	case r.queue <- append([]byte(nil), data...):
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many messages were discarded because the queue was full.
func (r *DataChannelReceiver) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *DataChannelReceiver) Receive(buf []byte) (int, error) {
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	select {
	case data := <-r.queue:
		return copy(buf, data), nil
	case <-timer.C:
		return 0, fmt.Errorf("datachannel receive: %w", os.ErrDeadlineExceeded)
	case <-r.closed:
		return 0, errReceiverClosed
	}
}

func (r *DataChannelReceiver) Close() error {
	select {
	case <-r.closed:
	default:
		close(r.closed)
	}
	return nil
}

// DataChannelSender sends datagrams over an open DataChannel.
type DataChannelSender struct {
	dc *webrtc.DataChannel
}

// NewDataChannelSender wraps dc.
func NewDataChannelSender(dc *webrtc.DataChannel) *DataChannelSender {
	return &DataChannelSender{dc: dc}
}

func (s *DataChannelSender) SendDatagram(data []byte) error {
	if s.dc == nil {
		return fmt.Errorf("tiles data channel not set")
	}
	return s.dc.Send(data)
}

func (s *DataChannelSender) Close() error {
	if s.dc == nil {
		return nil
	}
	return s.dc.Close()
}
