package widget

import (
	"slices"
	"sync"
)

// FilterAll shows every room card.
const FilterAll = "all"

// RoomFilterView is the rendered filter state.
type RoomFilterView struct {
	Selected string `json:"selected"`
	Hidden   []bool `json:"hidden"`
}

// RoomFilter hides room cards whose type does not match the selected filter.
type RoomFilter struct {
	filters []string
	types   []string

	mu       sync.Mutex
	selected string
}

// NewRoomFilter creates a filter over room cards of the given types.
// filters lists the selectable types; "all" is always accepted.
func NewRoomFilter(filters, cardTypes []string) *RoomFilter {
	return &RoomFilter{
		filters:  slices.Clone(filters),
		types:    slices.Clone(cardTypes),
		selected: FilterAll,
	}
}

// Select applies filter. Unknown filters are ignored.
func (f *RoomFilter) Select(filter string) bool {
	if filter != FilterAll && !slices.Contains(f.filters, filter) {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = filter
	return true
}

// View returns the rendered state.
func (f *RoomFilter) View() RoomFilterView {
	f.mu.Lock()
	defer f.mu.Unlock()
	hidden := make([]bool, len(f.types))
	for i, t := range f.types {
		hidden[i] = f.selected != FilterAll && t != f.selected
	}
	return RoomFilterView{Selected: f.selected, Hidden: hidden}
}
