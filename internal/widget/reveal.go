package widget

import (
	"slices"
	"sync"
)

// RevealThreshold is the intersection ratio at which an element animates in.
const RevealThreshold = 0.2

// Reveal tracks which animated elements have scrolled into view.
// Once visible an element stays visible.
type Reveal struct {
	mu      sync.Mutex
	visible map[string]bool
}

// NewReveal creates an empty reveal tracker.
func NewReveal() *Reveal {
	return &Reveal{visible: make(map[string]bool)}
}

// Observe records an intersection report. Returns true when the element
// became visible.
func (r *Reveal) Observe(id string, ratio float64) bool {
	if id == "" || ratio < RevealThreshold {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visible[id] {
		return false
	}
	r.visible[id] = true
	return true
}

// Visible returns the revealed element ids in sorted order.
func (r *Reveal) Visible() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.visible))
	for id := range r.visible {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
