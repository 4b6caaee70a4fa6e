// Package ingest receives tile datagrams and blits them onto the display.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/junsooki/AirTile/internal/decoder"
	"github.com/junsooki/AirTile/internal/display"
	"github.com/junsooki/AirTile/internal/protocol"
)

// Loop is the frame ingest worker. Its receive buffer is private and
// reused across iterations.
type Loop struct {
	recv Receiver
	disp *display.Shared
	buf  []byte

	stats         Stats
	statsInterval time.Duration
}

// Option configures a Loop.
type Option func(*Loop)

// WithMaxDatagram sets the receive buffer size. Larger datagrams are
// truncated and then rejected by the decoder.
func WithMaxDatagram(n int) Option {
	return func(l *Loop) {
		if n >= protocol.HeaderSize {
			l.buf = make([]byte, n)
		}
	}
}

// WithStatsInterval logs the counters every d. Zero disables it.
func WithStatsInterval(d time.Duration) Option {
	return func(l *Loop) { l.statsInterval = d }
}

// NewLoop creates an ingest loop reading from recv and drawing to disp.
func NewLoop(recv Receiver, disp *display.Shared, opts ...Option) *Loop {
	l := &Loop{
		recv: recv,
		disp: disp,
		buf:  make([]byte, protocol.DefaultMaxDatagram),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Stats returns the loop's counters.
func (l *Loop) Stats() Snapshot {
	return l.stats.Snapshot()
}

// Run processes datagrams until ctx is done. Receive timeouts, read errors
// and rejected datagrams never stop it; a closed receiver or a failure
// reported by the display does.
func (l *Loop) Run(ctx context.Context) error {
	lastStats := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if l.statsInterval > 0 && time.Since(lastStats) >= l.statsInterval {
			log.Printf("ingest: %s", l.stats.Snapshot())
			lastStats = time.Now()
		}

		if err := l.step(); err != nil {
			return err
		}
	}
}

// step receives and applies at most one datagram.
func (l *Loop) step() error {
	n, err := l.recv.Receive(l.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil
		}
		if errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("receiver closed: %w", err)
		}
		l.stats.ReadErrors.Add(1)
		log.Printf("ingest: receive: %v", err)
		return nil
	}
	if n == 0 {
		return nil
	}
	l.stats.Received.Add(1)

	blit, err := decoder.Decode(l.buf[:n])
	if err != nil {
		switch {
		case errors.Is(err, decoder.ErrTooShort):
			l.stats.TooShort.Add(1)
		case errors.Is(err, decoder.ErrBadMarker):
			l.stats.BadMarker.Add(1)
		}
		return nil
	}
	l.stats.Accepted.Add(1)

	return l.disp.Do(func(s display.Surface) error {
		s.PushImageRGB888(int(blit.X), int(blit.Y), int(blit.Width), int(blit.Height), blit.Pixels)
		return nil
	})
}
