package server

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/slider"
	"github.com/oszuidwest/hotelsite/internal/types"
	"github.com/oszuidwest/hotelsite/internal/widget"
	"github.com/zoobzio/clockz"
	"golang.org/x/sync/errgroup"
)

// maxCardLoads bounds the background card image requests per page.
const maxCardLoads = 4

// PageConfig tunes the widgets of a page session.
type PageConfig struct {
	Clock          clockz.Clock
	SlideInterval  time.Duration
	SlideDebounce  time.Duration
	SwipeThreshold float64
	ZoomScale      float64
	FallbackImage  string
	Preloader      widget.PreloaderConfig
}

// PageSession owns the widget state of one open page. Widgets report
// changes through Updates; the connection loop then pushes a fresh View.
type PageSession struct {
	name    string
	content *content.Content
	visitor *Visitor
	metrics *Metrics

	body      *widget.Body
	header    widget.Header
	preloader *widget.Preloader
	slider    *slider.Rotator
	menu      *widget.Menu
	modal     *widget.Modal
	faq       *widget.Accordion
	rooms     *widget.RoomFilter // nil outside the rooms page
	reveal    *widget.Reveal

	viewport atomic.Int64
	dirty    chan struct{}

	fallback      string
	cardMu        sync.Mutex
	cardFallbacks map[string]string // failed card image -> fallback

	cancel    context.CancelFunc
	warming   sync.WaitGroup
	closeOnce sync.Once
}

// NewPageSession builds the widgets for the named page. The slider starts
// rotating immediately; Start runs the preloader and warms the images.
func NewPageSession(name string, c *content.Content, visitor *Visitor, cfg PageConfig, metrics *Metrics) (*PageSession, error) {
	page, ok := c.Page(name)
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	if cfg.Clock == nil {
		cfg.Clock = clockz.RealClock
	}

	p := &PageSession{
		name:    name,
		content: c,
		visitor: visitor,
		metrics: metrics,
		body:    widget.NewBody(),
		faq:     widget.NewAccordion(len(c.FAQ)),
		reveal:  widget.NewReveal(),
		dirty:   make(chan struct{}, 1),

		fallback: cfg.FallbackImage,
	}
	if p.fallback == "" {
		p.fallback = slider.DefaultFallbackImage
	}
	p.menu = widget.NewMenu(p.body, page.Dropdowns)
	p.modal = widget.NewModal(p.body, c.Detail)
	if name == content.PageRooms {
		p.rooms = widget.NewRoomFilter(c.RoomFilters, c.RoomTypes())
	}

	p.preloader = widget.NewPreloader(cfg.Clock, cfg.Preloader, p.body, visitor.PreloaderShown(),
		p.markDirty, visitor.MarkPreloaderShown)

	opts := []slider.Option{
		slider.WithClock(cfg.Clock),
		slider.WithOnChange(p.markDirty),
		slider.WithOnNavigate(func(src slider.Source) {
			p.metrics.SliderNavigations.WithLabelValues(string(src)).Inc()
		}),
		slider.WithOnFallback(func(string) {
			p.metrics.ImageFallbacks.Inc()
		}),
	}
	if cfg.SlideInterval > 0 {
		opts = append(opts, slider.WithInterval(cfg.SlideInterval))
	}
	if cfg.SlideDebounce > 0 {
		opts = append(opts, slider.WithDebounce(cfg.SlideDebounce))
	}
	if cfg.SwipeThreshold > 0 {
		opts = append(opts, slider.WithSwipeThreshold(cfg.SwipeThreshold))
	}
	if cfg.ZoomScale > 0 {
		opts = append(opts, slider.WithZoomScale(cfg.ZoomScale))
	}
	if cfg.FallbackImage != "" {
		opts = append(opts, slider.WithFallbackImage(cfg.FallbackImage))
	}
	p.slider = slider.New(page.Hero.Slides, page.Hero.ControlSet(), opts...)

	return p, nil
}

// Start runs the preloader and, when loader is set, verifies the slide and
// card images in the background. Cancelling ctx or calling Close stops both.
func (p *PageSession) Start(ctx context.Context, loader slider.Loader) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.preloader.Start()

	if loader == nil {
		return
	}
	p.warming.Add(2)
	go func() {
		defer p.warming.Done()
		p.slider.Warm(ctx, loader)
	}()
	go func() {
		defer p.warming.Done()
		p.warmCards(ctx, loader)
	}()
}

// cardImages lists the room or attraction card images rendered on the page.
func (p *PageSession) cardImages() []string {
	var images []string
	switch p.name {
	case content.PageRooms:
		for _, r := range p.content.Rooms {
			images = append(images, r.Image)
		}
	case content.PageExplore:
		for _, a := range p.content.Attractions {
			images = append(images, a.Image)
		}
	}
	return images
}

// warmCards requests every card image through loader and records the
// fallback for each one that fails. Returns the number of substitutions.
func (p *PageSession) warmCards(ctx context.Context, loader slider.Loader) int {
	images := p.cardImages()
	if len(images) == 0 {
		return 0
	}

	var mu sync.Mutex
	failed := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCardLoads)
	for _, src := range images {
		if src == "" || src == p.fallback {
			continue
		}
		g.Go(func() error {
			err := loader.Load(gctx, src)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			slog.Warn("failed to preload card image", "page", p.name, "image", src, "fallback", p.fallback, "error", err)
			mu.Lock()
			failed[src] = p.fallback
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // load errors are handled per card

	if len(failed) == 0 {
		return 0
	}
	p.cardMu.Lock()
	p.cardFallbacks = failed
	p.cardMu.Unlock()

	p.metrics.ImageFallbacks.Add(float64(len(failed)))
	p.markDirty()
	return len(failed)
}

// Updates signals when the page view changed. Signals coalesce.
func (p *PageSession) Updates() <-chan struct{} {
	return p.dirty
}

// Close stops every timer owned by the page.
func (p *PageSession) Close() {
	p.closeOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.warming.Wait()
		p.slider.Close()
		p.preloader.Close()
	})
}

// Name returns the page name.
func (p *PageSession) Name() string {
	return p.name
}

// SetViewport records the browser's viewport width in CSS pixels.
func (p *PageSession) SetViewport(width int) {
	p.viewport.Store(int64(width))
}

// Viewport returns the last reported viewport width.
func (p *PageSession) Viewport() int {
	return int(p.viewport.Load())
}

// View renders the current widget state.
func (p *PageSession) View() types.PageView {
	v := types.PageView{
		Type:      types.MessageView,
		Page:      p.name,
		Header:    types.HeaderView{Scrolled: p.header.Scrolled()},
		Preloader: p.preloader.View(),
		Slider:    p.slider.View(),
		Menu:      p.menu.View(),
		Modal:     p.modal.View(),
		FAQ:       p.faq.View(),
		Revealed:  p.reveal.Visible(),
	}
	p.cardMu.Lock()
	if len(p.cardFallbacks) > 0 {
		v.Fallbacks = maps.Clone(p.cardFallbacks)
	}
	p.cardMu.Unlock()
	if p.rooms != nil {
		rv := p.rooms.View()
		v.Rooms = &rv
	}
	v.Body = p.body.Classes()
	return v
}

// navHref resolves a navigation link id to its target.
func (p *PageSession) navHref(id string) (string, bool) {
	for _, l := range p.content.Navigation {
		if l.ID == id {
			return l.Href, true
		}
		for _, child := range l.Children {
			if child.ID == id {
				return child.Href, true
			}
		}
	}
	return "", false
}

func (p *PageSession) markDirty() {
	select {
	case p.dirty <- struct{}{}:
	default:
	}
}
