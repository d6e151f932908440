// Package widget implements the page widgets around the hero slider:
// preloader, mobile menu, header, modal, accordion, room filter and
// scroll reveal. Widgets are passive state holders; the page session
// feeds them input and renders their views.
package widget

import (
	"slices"
	"sync"
)

// Page-level body classes.
const (
	ClassNoScroll   = "no-scroll"
	ClassPreloading = "preloading"
)

// Body tracks the classes on the page body. Several widgets can hold the
// same class; it stays set until every holder has released it.
type Body struct {
	mu    sync.Mutex
	holds map[string]map[string]struct{}
}

// NewBody creates a body with no classes.
func NewBody() *Body {
	return &Body{holds: make(map[string]map[string]struct{})}
}

// Hold sets class on behalf of reason.
func (b *Body) Hold(class, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reasons, ok := b.holds[class]
	if !ok {
		reasons = make(map[string]struct{})
		b.holds[class] = reasons
	}
	reasons[reason] = struct{}{}
}

// Release drops the hold of reason on class.
func (b *Body) Release(class, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reasons, ok := b.holds[class]
	if !ok {
		return
	}
	delete(reasons, reason)
	if len(reasons) == 0 {
		delete(b.holds, class)
	}
}

// Has reports whether class is set.
func (b *Body) Has(class string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.holds[class]
	return ok
}

// Classes returns the set classes in sorted order.
func (b *Body) Classes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	classes := make([]string, 0, len(b.holds))
	for c := range b.holds {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}
