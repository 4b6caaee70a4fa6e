package display

import "sync"

// Shared is the one access point to a Surface.
//
// It is created once at startup and handed to the ingest worker and the
// clock renderer. Callers must not keep the Surface passed to Do after the
// callback returns, and must not block on I/O inside it.
type Shared struct {
	mu      sync.Mutex
	surface Surface
}

// NewShared wraps s.
func NewShared(s Surface) *Shared {
	return &Shared{surface: s}
}

// Do runs fn with exclusive access to the surface.
func (h *Shared) Do(fn func(s Surface) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.surface)
}

// Size returns the surface size under the lock.
func (h *Shared) Size() (width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.surface.Size()
}
