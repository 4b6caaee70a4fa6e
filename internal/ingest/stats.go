package ingest

import (
	"fmt"
	"sync/atomic"
)

// Stats counts what the ingest loop did with each datagram.
type Stats struct {
	Received   atomic.Uint64
	Accepted   atomic.Uint64
	TooShort   atomic.Uint64
	BadMarker  atomic.Uint64
	ReadErrors atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Received   uint64
	Accepted   uint64
	TooShort   uint64
	BadMarker  uint64
	ReadErrors uint64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Received:   s.Received.Load(),
		Accepted:   s.Accepted.Load(),
		TooShort:   s.TooShort.Load(),
		BadMarker:  s.BadMarker.Load(),
		ReadErrors: s.ReadErrors.Load(),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("received=%d accepted=%d too_short=%d bad_marker=%d read_errors=%d",
		s.Received, s.Accepted, s.TooShort, s.BadMarker, s.ReadErrors)
}
