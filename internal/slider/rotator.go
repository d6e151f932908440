// Package slider implements the hero image rotator: a fixed set of slides
// that advances on a timer and responds to buttons, dots, keys, swipes
// and hover.
package slider

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Rotator defaults.
const (
	DefaultInterval       = 6000 * time.Millisecond
	DefaultDebounce       = 200 * time.Millisecond
	DefaultSwipeThreshold = 50.0
	DefaultZoomScale      = 1.05
	DefaultFallbackImage  = "images/fallback.svg"
)

// Source identifies what caused a navigation.
type Source string

const (
	SourceAuto  Source = "auto"
	SourcePrev  Source = "prev"
	SourceNext  Source = "next"
	SourceDot   Source = "dot"
	SourceKey   Source = "key"
	SourceSwipe Source = "swipe"
)

// Slide is one panel of the rotator.
type Slide struct {
	Image   string `json:"image" yaml:"image"`
	Alt     string `json:"alt" yaml:"alt"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Zoom    bool   `json:"zoom,omitempty" yaml:"zoom,omitempty"`
}

// Controls reports which optional navigation controls the page rendered.
type Controls struct {
	Prev bool `json:"prev" yaml:"prev"`
	Next bool `json:"next" yaml:"next"`
	Dots bool `json:"dots" yaml:"dots"`
}

// AllControls returns controls with every input present.
func AllControls() Controls {
	return Controls{Prev: true, Next: true, Dots: true}
}

// SlideView is the rendered state of one slide.
type SlideView struct {
	Image   string  `json:"image"`
	Alt     string  `json:"alt"`
	Caption string  `json:"caption,omitempty"`
	Active  bool    `json:"active"`
	Scale   float64 `json:"scale,omitzero"` // 0 means no transform
}

// View is the rendered state of the whole rotator.
type View struct {
	Index    int         `json:"index"`
	Running  bool        `json:"running"`
	Slides   []SlideView `json:"slides"`
	Dots     []bool      `json:"dots,omitempty"`
	Controls Controls    `json:"controls"`
}

// Option configures a Rotator.
type Option func(*Rotator)

// WithClock sets the clock driving the timers.
// Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(r *Rotator) { r.clock = clock }
}

// WithInterval sets the auto-advance interval.
func WithInterval(d time.Duration) Option {
	return func(r *Rotator) { r.interval = d }
}

// WithDebounce sets the click and key debounce window.
func WithDebounce(d time.Duration) Option {
	return func(r *Rotator) { r.debounce = d }
}

// WithSwipeThreshold sets the minimum horizontal swipe distance in pixels.
func WithSwipeThreshold(px float64) Option {
	return func(r *Rotator) { r.swipeThreshold = px }
}

// WithZoomScale sets the scale of inactive zoom slides.
func WithZoomScale(scale float64) Option {
	return func(r *Rotator) { r.zoomScale = scale }
}

// WithFallbackImage sets the image substituted for slides that fail to load.
func WithFallbackImage(src string) Option {
	return func(r *Rotator) { r.fallback = src }
}

// WithOnChange registers a callback run after every visible change.
// The callback must not call back into the rotator's Start or Stop.
func WithOnChange(fn func()) Option {
	return func(r *Rotator) { r.onChange = fn }
}

// WithOnNavigate registers a callback run after every navigation.
func WithOnNavigate(fn func(Source)) Option {
	return func(r *Rotator) { r.onNavigate = fn }
}

// WithOnFallback registers a callback run when a slide image is replaced.
func WithOnFallback(fn func(src string)) Option {
	return func(r *Rotator) { r.onFallback = fn }
}

// Rotator cycles through slides. It is safe for concurrent use; user input
// transitions are serialized so a manual navigation never interleaves with
// an automatic tick.
type Rotator struct {
	clock          clockz.Clock
	interval       time.Duration
	debounce       time.Duration
	swipeThreshold float64
	zoomScale      float64
	fallback       string
	controls       Controls

	onChange   func()
	onNavigate func(Source)
	onFallback func(string)

	timer   *Repeater
	clicks  *Debouncer
	navMu   sync.Mutex // serializes stop-mutate-start sequences
	mu      sync.Mutex // guards slides and index
	slides  []Slide
	index   int
	stopped bool // closed rotators ignore input
}

// New binds a rotator to slides, shows the first slide and starts the timer.
// With no slides the rotator is inert: nothing is scheduled and every method
// is a no-op.
func New(slides []Slide, controls Controls, opts ...Option) *Rotator {
	r := &Rotator{
		clock:          clockz.RealClock,
		interval:       DefaultInterval,
		debounce:       DefaultDebounce,
		swipeThreshold: DefaultSwipeThreshold,
		zoomScale:      DefaultZoomScale,
		fallback:       DefaultFallbackImage,
		controls:       controls,
		slides:         slices.Clone(slides),
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(r.slides) == 0 {
		slog.Debug("slider has no slides, skipping setup")
		return r
	}

	if !controls.Dots {
		slog.Warn("slider dots container not found")
	}
	if !controls.Prev {
		slog.Warn("slider previous button not found")
	}
	if !controls.Next {
		slog.Warn("slider next button not found")
	}

	r.timer = NewRepeater(r.clock, r.interval, func() { r.advance(SourceAuto) })
	r.clicks = NewDebouncer(r.clock, r.debounce)

	r.Show(0)
	r.Start()
	return r
}

// Len returns the number of slides.
func (r *Rotator) Len() int {
	return len(r.slides)
}

// Empty reports whether the rotator is inert.
func (r *Rotator) Empty() bool {
	return len(r.slides) == 0
}

// Index returns the active slide index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Running reports whether auto-advance is scheduled.
func (r *Rotator) Running() bool {
	if r.Empty() {
		return false
	}
	return r.timer.Running()
}

// Controls returns the controls the rotator was bound with.
func (r *Rotator) Controls() Controls {
	return r.controls
}

// Show activates the slide at index. Out-of-range indices are ignored.
func (r *Rotator) Show(index int) bool {
	if r.Empty() {
		return false
	}
	if index < 0 || index >= len(r.slides) {
		slog.Warn("slider index out of range", "index", index, "slides", len(r.slides))
		return false
	}

	r.mu.Lock()
	r.index = index
	r.mu.Unlock()

	r.changed()
	return true
}

// Next activates the following slide, wrapping to the first.
func (r *Rotator) Next() {
	if r.Empty() {
		return
	}
	r.mu.Lock()
	r.index = (r.index + 1) % len(r.slides)
	r.mu.Unlock()
	r.changed()
}

// Previous activates the preceding slide, wrapping to the last.
func (r *Rotator) Previous() {
	if r.Empty() {
		return
	}
	n := len(r.slides)
	r.mu.Lock()
	r.index = (r.index - 1 + n) % n
	r.mu.Unlock()
	r.changed()
}

// Start begins auto-advance, replacing a running schedule.
func (r *Rotator) Start() {
	if r.Empty() || r.closed() {
		return
	}
	r.timer.Start()
	r.changed()
}

// Stop pauses auto-advance. Safe to call when already stopped.
func (r *Rotator) Stop() {
	if r.Empty() {
		return
	}
	r.timer.Stop()
	r.changed()
}

// Close stops the timer and drops pending input. Later input is ignored.
func (r *Rotator) Close() {
	if r.Empty() {
		return
	}
	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.clicks.Cancel()
	r.timer.Stop()
}

// OnPrevious handles a click on the previous button.
func (r *Rotator) OnPrevious() {
	if r.Empty() || !r.controls.Prev {
		return
	}
	r.clicks.Trigger(func() { r.navigate(SourcePrev, r.Previous) })
}

// OnNext handles a click on the next button.
func (r *Rotator) OnNext() {
	if r.Empty() || !r.controls.Next {
		return
	}
	r.clicks.Trigger(func() { r.navigate(SourceNext, r.Next) })
}

// OnSelect handles a click on the dot at index.
func (r *Rotator) OnSelect(index int) {
	if r.Empty() || !r.controls.Dots {
		return
	}
	if index < 0 || index >= len(r.slides) {
		return
	}
	r.clicks.Trigger(func() { r.navigate(SourceDot, func() { r.Show(index) }) })
}

// OnKey handles a key press on the dot at index. Enter and space activate it.
func (r *Rotator) OnKey(index int, key string) {
	if key != "Enter" && key != " " {
		return
	}
	if r.Empty() || !r.controls.Dots {
		return
	}
	if index < 0 || index >= len(r.slides) {
		return
	}
	r.clicks.Trigger(func() { r.navigate(SourceKey, func() { r.Show(index) }) })
}

// OnSwipe handles a classified swipe gesture.
func (r *Rotator) OnSwipe(dir Direction) {
	if r.Empty() {
		return
	}
	switch dir {
	case SwipeLeft:
		r.navigate(SourceSwipe, r.Next)
	case SwipeRight:
		r.navigate(SourceSwipe, r.Previous)
	}
}

// OnTouch handles a touch that started at startX and ended at endX.
func (r *Rotator) OnTouch(startX, endX float64) {
	r.OnSwipe(SwipeDirection(startX, endX, r.swipeThreshold))
}

// OnHoverChange pauses rotation while the pointer is over the slider.
func (r *Rotator) OnHoverChange(hovering bool) {
	if r.Empty() {
		return
	}
	r.navMu.Lock()
	defer r.navMu.Unlock()
	if r.closed() {
		return
	}
	if hovering {
		r.timer.Stop()
	} else {
		r.timer.Start()
	}
	r.changed()
}

// View returns the rendered state.
func (r *Rotator) View() View {
	if r.Empty() {
		return View{Slides: []SlideView{}, Controls: r.controls}
	}

	r.mu.Lock()
	index := r.index
	slides := make([]SlideView, len(r.slides))
	for i, s := range r.slides {
		active := i == index
		v := SlideView{
			Image:   s.Image,
			Alt:     s.Alt,
			Caption: s.Caption,
			Active:  active,
		}
		if s.Zoom {
			v.Scale = 1
			if !active {
				v.Scale = r.zoomScale
			}
		}
		slides[i] = v
	}
	r.mu.Unlock()

	view := View{
		Index:    index,
		Running:  r.timer.Running(),
		Slides:   slides,
		Controls: r.controls,
	}
	if r.controls.Dots {
		view.Dots = make([]bool, len(slides))
		view.Dots[index] = true
	}
	return view
}

// navigate applies a manual transition: stop, mutate, restart.
func (r *Rotator) navigate(src Source, mutate func()) {
	r.navMu.Lock()
	defer r.navMu.Unlock()
	if r.closed() {
		return
	}

	r.timer.Stop()
	mutate()
	r.timer.Start()

	if r.onNavigate != nil {
		r.onNavigate(src)
	}
}

// advance is the timer task.
func (r *Rotator) advance(src Source) {
	r.Next()
	if r.onNavigate != nil {
		r.onNavigate(src)
	}
}

func (r *Rotator) closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Rotator) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
