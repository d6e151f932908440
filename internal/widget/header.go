package widget

import "sync"

// ScrollThreshold is the scroll offset past which the header compacts.
const ScrollThreshold = 50

// Header tracks the sticky header's scrolled state.
type Header struct {
	mu       sync.Mutex
	scrolled bool
}

// Scroll updates the header for a scroll offset. Returns true on change.
func (h *Header) Scroll(offset float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	scrolled := offset > ScrollThreshold
	if scrolled == h.scrolled {
		return false
	}
	h.scrolled = scrolled
	return true
}

// Scrolled reports whether the header is compact.
func (h *Header) Scrolled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scrolled
}
