package widget

import (
	"html/template"
	"log/slog"
	"sync"
)

const modalReason = "modal"

// Detail is the content shown in the modal.
type Detail struct {
	Title   string        `json:"title"`
	Details template.HTML `json:"details"`
	Image   string        `json:"image,omitempty"`
	Alt     string        `json:"alt,omitempty"`
}

// DetailLookup resolves a room or attraction key to its detail.
type DetailLookup func(key string) (Detail, bool)

// ModalView is the rendered modal state.
type ModalView struct {
	Open   bool   `json:"open"`
	Detail Detail `json:"detail,omitzero"`
}

// Modal shows room, attraction and image details over the page.
type Modal struct {
	body   *Body
	lookup DetailLookup

	mu     sync.Mutex
	open   bool
	detail Detail
}

// NewModal creates a closed modal resolving keys through lookup.
func NewModal(body *Body, lookup DetailLookup) *Modal {
	return &Modal{body: body, lookup: lookup}
}

// Open shows the detail for key. Unknown keys are ignored.
func (m *Modal) Open(key string) bool {
	if m.lookup == nil {
		return false
	}
	detail, ok := m.lookup(key)
	if !ok {
		slog.Warn("modal: unknown detail key", "key", key)
		return false
	}
	m.show(detail)
	return true
}

// OpenImage shows an enlarged image captioned with its alt text.
func (m *Modal) OpenImage(src, alt string) {
	m.show(Detail{
		Title:   alt,
		Details: template.HTML(template.HTMLEscapeString(alt)),
		Image:   src,
		Alt:     alt,
	})
}

// Close hides the modal.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	m.open = false
	m.detail = Detail{}
	m.body.Release(ClassNoScroll, modalReason)
}

// Click handles a click on the modal overlay. Only clicks on the backdrop
// itself close it; clicks inside the content do not.
func (m *Modal) Click(onBackdrop bool) {
	if onBackdrop {
		m.Close()
	}
}

// View returns the rendered state.
func (m *Modal) View() ModalView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModalView{Open: m.open, Detail: m.detail}
}

func (m *Modal) show(detail Detail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.detail = detail
	m.body.Hold(ClassNoScroll, modalReason)
}
