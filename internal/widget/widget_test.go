package widget

import (
	"slices"
	"testing"
)

func TestBody_HoldsAreCounted(t *testing.T) {
	b := NewBody()
	b.Hold(ClassNoScroll, "menu")
	b.Hold(ClassNoScroll, "modal")
	b.Hold(ClassNoScroll, "modal")

	b.Release(ClassNoScroll, "modal")
	if !b.Has(ClassNoScroll) {
		t.Fatal("no-scroll released while menu still holds it")
	}
	b.Release(ClassNoScroll, "menu")
	if b.Has(ClassNoScroll) {
		t.Fatal("no-scroll still set after all holders released")
	}
	b.Release(ClassNoScroll, "menu")
}

func TestBody_ClassesSorted(t *testing.T) {
	b := NewBody()
	b.Hold(ClassPreloading, "x")
	b.Hold(ClassNoScroll, "x")
	if got := b.Classes(); !slices.Equal(got, []string{ClassNoScroll, ClassPreloading}) {
		t.Errorf("Classes() = %v", got)
	}
}

func TestMenu_ToggleLocksScroll(t *testing.T) {
	b := NewBody()
	m := NewMenu(b, nil)

	m.Toggle()
	if !m.View().Open || !b.Has(ClassNoScroll) {
		t.Fatal("expected open menu with no-scroll")
	}
	m.Toggle()
	if m.View().Open || b.Has(ClassNoScroll) {
		t.Fatal("expected closed menu without no-scroll")
	}
}

func TestMenu_Links(t *testing.T) {
	tests := []struct {
		name         string
		link         string
		viewport     int
		wantSuppress bool
		wantOpen     bool
		wantDropdown bool
	}{
		{"desktop dropdown navigates", "rooms", 1024, false, true, false},
		{"mobile dropdown expands", "rooms", 768, true, true, true},
		{"mobile plain link closes menu", "contact", 375, false, false, false},
		{"desktop plain link keeps menu", "contact", 1200, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBody()
			m := NewMenu(b, []string{"rooms"})
			m.Toggle()

			if got := m.Link(tt.link, tt.viewport); got != tt.wantSuppress {
				t.Errorf("Link() = %v, want %v", got, tt.wantSuppress)
			}
			v := m.View()
			if v.Open != tt.wantOpen {
				t.Errorf("open = %v, want %v", v.Open, tt.wantOpen)
			}
			if v.Dropdowns["rooms"] != tt.wantDropdown {
				t.Errorf("dropdown = %v, want %v", v.Dropdowns["rooms"], tt.wantDropdown)
			}
			if b.Has(ClassNoScroll) != tt.wantOpen {
				t.Errorf("no-scroll = %v, want %v", b.Has(ClassNoScroll), tt.wantOpen)
			}
		})
	}
}

func TestHeader_Scroll(t *testing.T) {
	var h Header
	if h.Scroll(50) {
		t.Error("offset 50 should not compact the header")
	}
	if !h.Scroll(51) || !h.Scrolled() {
		t.Error("offset 51 should compact the header")
	}
	if h.Scroll(400) {
		t.Error("expected no change while already scrolled")
	}
	if !h.Scroll(0) || h.Scrolled() {
		t.Error("offset 0 should restore the header")
	}
}

func TestModal_OpenClose(t *testing.T) {
	b := NewBody()
	m := NewModal(b, func(key string) (Detail, bool) {
		if key == "twin-room" {
			return Detail{Title: "Twin Room", Details: "<p>2 single beds</p>"}, true
		}
		return Detail{}, false
	})

	if m.Open("penthouse") {
		t.Fatal("unknown key opened the modal")
	}
	if m.View().Open {
		t.Fatal("modal open after unknown key")
	}

	if !m.Open("twin-room") {
		t.Fatal("Open(twin-room) = false")
	}
	v := m.View()
	if !v.Open || v.Detail.Title != "Twin Room" {
		t.Fatalf("view = %+v", v)
	}
	if !b.Has(ClassNoScroll) {
		t.Error("open modal should lock scrolling")
	}

	m.Click(false)
	if !m.View().Open {
		t.Error("click inside content closed the modal")
	}
	m.Click(true)
	if m.View().Open || b.Has(ClassNoScroll) {
		t.Error("backdrop click should close the modal and unlock scrolling")
	}
}

func TestModal_OpenImageEscapesAlt(t *testing.T) {
	m := NewModal(NewBody(), nil)
	m.OpenImage("images/pool.jpg", "Pool <at night>")

	v := m.View()
	if v.Detail.Image != "images/pool.jpg" || v.Detail.Title != "Pool <at night>" {
		t.Fatalf("detail = %+v", v.Detail)
	}
	if string(v.Detail.Details) != "Pool &lt;at night&gt;" {
		t.Errorf("details = %q", v.Detail.Details)
	}
	m.Close()
	m.Close()
}

func TestAccordion_SingleOpen(t *testing.T) {
	a := NewAccordion(3)

	a.Toggle(0)
	a.Toggle(2)
	if got := a.View().Expanded; !slices.Equal(got, []bool{false, false, true}) {
		t.Errorf("expanded = %v", got)
	}
	a.Toggle(2)
	if got := a.View().Expanded; !slices.Equal(got, []bool{false, false, false}) {
		t.Errorf("expanded after closing = %v", got)
	}
	if a.Toggle(3) || a.Toggle(-1) {
		t.Error("out-of-range toggle accepted")
	}
}

func TestRoomFilter(t *testing.T) {
	f := NewRoomFilter([]string{"double", "single"}, []string{"double", "single", "double"})

	if got := f.View().Hidden; !slices.Equal(got, []bool{false, false, false}) {
		t.Errorf("initial hidden = %v", got)
	}
	f.Select("double")
	if got := f.View().Hidden; !slices.Equal(got, []bool{false, true, false}) {
		t.Errorf("double hidden = %v", got)
	}
	if f.Select("suite") {
		t.Error("unknown filter accepted")
	}
	if got := f.View().Selected; got != "double" {
		t.Errorf("selected = %q", got)
	}
	f.Select(FilterAll)
	if got := f.View().Hidden; !slices.Equal(got, []bool{false, false, false}) {
		t.Errorf("all hidden = %v", got)
	}
}

func TestReveal_OneWay(t *testing.T) {
	r := NewReveal()
	if r.Observe("rooms", 0.1) {
		t.Error("below threshold revealed")
	}
	if !r.Observe("rooms", 0.2) {
		t.Error("threshold did not reveal")
	}
	if r.Observe("rooms", 0) {
		t.Error("second report changed state")
	}
	if got := r.Visible(); !slices.Equal(got, []string{"rooms"}) {
		t.Errorf("visible = %v", got)
	}
}
