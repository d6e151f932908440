package widget

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Preloader defaults.
const (
	DefaultPreloadStep = 10
	DefaultPreloadTick = 50 * time.Millisecond
	DefaultPreloadFade = 300 * time.Millisecond
)

const preloadReason = "preloader"

// PreloaderView is the rendered preloader state.
type PreloaderView struct {
	Visible        bool    `json:"visible"`
	Progress       int     `json:"progress"`
	Opacity        float64 `json:"opacity"`
	SectionsHidden bool    `json:"sections_hidden"`
}

// PreloaderConfig tunes the preloader animation.
type PreloaderConfig struct {
	Step int
	Tick time.Duration
	Fade time.Duration
}

// Preloader counts progress up to 100 on first visit, fades out and then
// reveals the page sections. Visitors that already saw it skip straight to
// the revealed page.
type Preloader struct {
	clock    clockz.Clock
	cfg      PreloaderConfig
	body     *Body
	onChange func()
	onDone   func()

	mu       sync.Mutex
	progress int
	visible  bool
	fading   bool
	stop     chan struct{}
}

// NewPreloader creates a preloader. When shown is true the preloader starts
// hidden and Start does nothing.
func NewPreloader(clock clockz.Clock, cfg PreloaderConfig, body *Body, shown bool, onChange, onDone func()) *Preloader {
	if cfg.Step <= 0 {
		cfg.Step = DefaultPreloadStep
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultPreloadTick
	}
	if cfg.Fade <= 0 {
		cfg.Fade = DefaultPreloadFade
	}
	return &Preloader{
		clock:    clock,
		cfg:      cfg,
		body:     body,
		onChange: onChange,
		onDone:   onDone,
		visible:  !shown,
	}
}

// Start begins the progress animation in the background.
func (p *Preloader) Start() {
	p.mu.Lock()
	if !p.visible || p.stop != nil {
		p.mu.Unlock()
		return
	}
	p.body.Hold(ClassPreloading, preloadReason)
	p.body.Hold(ClassNoScroll, preloadReason)

	stop := make(chan struct{})
	p.stop = stop
	timer := p.clock.NewTimer(p.cfg.Tick)
	p.mu.Unlock()

	go p.run(timer, stop)
}

// Close abandons a running animation.
func (p *Preloader) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Done reports whether the page sections are revealed.
func (p *Preloader) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.visible
}

// View returns the rendered state.
func (p *Preloader) View() PreloaderView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := PreloaderView{
		Visible:        p.visible,
		Progress:       p.progress,
		Opacity:        1,
		SectionsHidden: p.visible,
	}
	if p.fading || !p.visible {
		v.Opacity = 0
	}
	return v
}

// run counts up one step per tick. Each step gets its own timer, created
// under p.mu so the next wait is registered before the new progress is visible.
func (p *Preloader) run(timer clockz.Timer, stop <-chan struct{}) {
	defer func() { timer.Stop() }()

	for {
		select {
		case <-stop:
			return
		case <-timer.C():
		}

		p.mu.Lock()
		if p.fading {
			p.visible = false
			p.fading = false
			p.stop = nil
			p.mu.Unlock()

			p.body.Release(ClassPreloading, preloadReason)
			p.body.Release(ClassNoScroll, preloadReason)
			if p.onDone != nil {
				p.onDone()
			}
			p.changed()
			return
		}

		p.progress = min(p.progress+p.cfg.Step, 100)
		next := p.cfg.Tick
		if p.progress >= 100 {
			p.fading = true
			next = p.cfg.Fade
		}
		timer = p.clock.NewTimer(next)
		p.mu.Unlock()

		p.changed()
	}
}

func (p *Preloader) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}
