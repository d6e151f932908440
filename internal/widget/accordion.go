package widget

import "sync"

// AccordionView lists the expanded state of each panel.
type AccordionView struct {
	Expanded []bool `json:"expanded"`
}

// Accordion keeps at most one panel open.
type Accordion struct {
	mu    sync.Mutex
	count int
	open  int // -1 when all closed
}

// NewAccordion creates an accordion with n collapsed panels.
func NewAccordion(n int) *Accordion {
	return &Accordion{count: n, open: -1}
}

// Toggle opens panel i and closes the others, or closes i when it is open.
// Returns false for an unknown panel.
func (a *Accordion) Toggle(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= a.count {
		return false
	}
	if a.open == i {
		a.open = -1
	} else {
		a.open = i
	}
	return true
}

// View returns the rendered state.
func (a *Accordion) View() AccordionView {
	a.mu.Lock()
	defer a.mu.Unlock()
	expanded := make([]bool, a.count)
	if a.open >= 0 {
		expanded[a.open] = true
	}
	return AccordionView{Expanded: expanded}
}
