package widget

import (
	"maps"
	"sync"
)

// MobileBreakpoint is the widest viewport, in pixels, that uses the mobile menu.
const MobileBreakpoint = 768

const menuReason = "menu"

// MenuView is the rendered menu state.
type MenuView struct {
	Open      bool            `json:"open"`
	Dropdowns map[string]bool `json:"dropdowns"`
}

// Menu is the collapsible navigation used on narrow viewports.
type Menu struct {
	body *Body

	mu        sync.Mutex
	open      bool
	dropdowns map[string]bool
}

// NewMenu creates a closed menu with the given dropdown ids.
func NewMenu(body *Body, dropdowns []string) *Menu {
	m := &Menu{
		body:      body,
		dropdowns: make(map[string]bool, len(dropdowns)),
	}
	for _, id := range dropdowns {
		m.dropdowns[id] = false
	}
	return m
}

// Toggle opens or closes the menu. An open menu locks page scrolling.
func (m *Menu) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setOpenLocked(!m.open)
}

// Link handles a tap on a navigation link. On mobile viewports a dropdown
// parent link expands its submenu instead of navigating, and a plain link
// closes the menu. Returns true when navigation must be suppressed.
func (m *Menu) Link(id string, viewport int) bool {
	if viewport > MobileBreakpoint {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if expanded, ok := m.dropdowns[id]; ok {
		m.dropdowns[id] = !expanded
		return true
	}
	m.setOpenLocked(false)
	return false
}

// View returns the rendered state.
func (m *Menu) View() MenuView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MenuView{Open: m.open, Dropdowns: maps.Clone(m.dropdowns)}
}

func (m *Menu) setOpenLocked(open bool) {
	m.open = open
	if open {
		m.body.Hold(ClassNoScroll, menuReason)
	} else {
		m.body.Release(ClassNoScroll, menuReason)
	}
}
