// Package content loads the hotel's site content: pages and their hero
// slides, rooms, attractions, FAQ entries and gallery highlights.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/oszuidwest/hotelsite/internal/slider"
	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/oszuidwest/hotelsite/internal/widget"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Page names served by the site.
const (
	PageHome    = "home"
	PageRooms   = "rooms"
	PageExplore = "explore"
)

// Hotel holds the property's contact details.
type Hotel struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
}

// Hero is the slider at the top of a page.
type Hero struct {
	Headline   string           `yaml:"headline"`
	Slides     []slider.Slide   `yaml:"slides"`
	ImagesGlob string           `yaml:"images_glob"`
	Zoom       bool             `yaml:"zoom"` // applies to slides found by ImagesGlob
	Controls   *slider.Controls `yaml:"controls"`
	Action     *HeroAction      `yaml:"action"`
}

// HeroAction is the call-to-action button over the slides. Href is an
// in-page anchor; the client scrolls to it below the fixed header.
type HeroAction struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// ControlSet returns the rendered controls; all controls when unspecified.
func (h Hero) ControlSet() slider.Controls {
	if h.Controls == nil {
		return slider.AllControls()
	}
	return *h.Controls
}

// Page is one site page.
type Page struct {
	Title     string   `yaml:"title"`
	Hero      Hero     `yaml:"hero"`
	Dropdowns []string `yaml:"-"`
}

// Room is a bookable room type.
type Room struct {
	Key         string        `yaml:"key"`
	Title       string        `yaml:"title"`
	Type        string        `yaml:"type"`
	Summary     string        `yaml:"summary"`
	Details     string        `yaml:"details"`
	Image       string        `yaml:"image"`
	DetailsHTML template.HTML `yaml:"-"`
}

// Attraction is a nearby place of interest.
type Attraction struct {
	Key         string        `yaml:"key"`
	Title       string        `yaml:"title"`
	Details     string        `yaml:"details"`
	Image       string        `yaml:"image"`
	DetailsHTML template.HTML `yaml:"-"`
}

// FAQ is one accordion entry.
type FAQ struct {
	Question   string        `yaml:"question"`
	Answer     string        `yaml:"answer"`
	AnswerHTML template.HTML `yaml:"-"`
}

// Highlight is a gallery image that opens in the modal.
type Highlight struct {
	Image   string `yaml:"image"`
	Alt     string `yaml:"alt"`
	Caption string `yaml:"caption"`
}

// NavLink is a menu entry; links with children render as dropdowns.
type NavLink struct {
	ID       string    `yaml:"id"`
	Label    string    `yaml:"label"`
	Href     string    `yaml:"href"`
	Children []NavLink `yaml:"children"`
}

// Content is the complete site content.
type Content struct {
	Hotel       Hotel           `yaml:"hotel"`
	Navigation  []NavLink       `yaml:"navigation"`
	Pages       map[string]Page `yaml:"pages"`
	Rooms       []Room          `yaml:"rooms"`
	RoomFilters []string        `yaml:"room_filters"`
	Attractions []Attraction    `yaml:"attractions"`
	FAQ         []FAQ           `yaml:"faq"`
	Highlights  []Highlight     `yaml:"highlights"`
}

// Default returns the built-in site content.
func Default(assets fs.FS) (*Content, error) {
	return Parse(defaultYAML, assets)
}

// Load reads and prepares the content file at path. Hero image globs are
// expanded against assets.
func Load(path string, assets fs.FS) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.WrapError("read content", err)
	}
	c, err := Parse(data, assets)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes, validates and renders content from YAML.
func Parse(data []byte, assets fs.FS) (*Content, error) {
	var c Content
	dec := yamlv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, util.WrapError("parse content", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := c.expandHeroes(assets); err != nil {
		return nil, err
	}
	if err := c.renderMarkdown(); err != nil {
		return nil, err
	}
	c.collectDropdowns()
	return &c, nil
}

// Page returns the named page.
func (c *Content) Page(name string) (Page, bool) {
	p, ok := c.Pages[name]
	return p, ok
}

// RoomTypes returns the type of every room card in order.
func (c *Content) RoomTypes() []string {
	types := make([]string, len(c.Rooms))
	for i, r := range c.Rooms {
		types[i] = r.Type
	}
	return types
}

// Detail resolves a room or attraction key for the modal.
func (c *Content) Detail(key string) (widget.Detail, bool) {
	for _, r := range c.Rooms {
		if r.Key == key {
			return widget.Detail{Title: r.Title, Details: r.DetailsHTML, Image: r.Image, Alt: r.Title}, true
		}
	}
	for _, a := range c.Attractions {
		if a.Key == key {
			return widget.Detail{Title: a.Title, Details: a.DetailsHTML, Image: a.Image, Alt: a.Title}, true
		}
	}
	return widget.Detail{}, false
}

// Images returns every distinct hero slide image across pages.
func (c *Content) Images() []string {
	var images []string
	for _, name := range c.pageNames() {
		for _, s := range c.Pages[name].Hero.Slides {
			if s.Image != "" && !slices.Contains(images, s.Image) {
				images = append(images, s.Image)
			}
		}
	}
	return images
}

func (c *Content) pageNames() []string {
	names := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Content) validate() error {
	if c.Hotel.Name == "" {
		return fmt.Errorf("hotel.name is required")
	}
	keys := make(map[string]bool)
	for _, r := range c.Rooms {
		if r.Key == "" {
			return fmt.Errorf("room %q has no key", r.Title)
		}
		if keys[r.Key] {
			return fmt.Errorf("duplicate detail key %q", r.Key)
		}
		keys[r.Key] = true
		if len(c.RoomFilters) > 0 && !slices.Contains(c.RoomFilters, r.Type) {
			return fmt.Errorf("room %q has type %q not listed in room_filters", r.Key, r.Type)
		}
	}
	for _, a := range c.Attractions {
		if a.Key == "" {
			return fmt.Errorf("attraction %q has no key", a.Title)
		}
		if keys[a.Key] {
			return fmt.Errorf("duplicate detail key %q", a.Key)
		}
		keys[a.Key] = true
	}
	for name, p := range c.Pages {
		if p.Hero.ImagesGlob != "" && !doublestar.ValidatePattern(p.Hero.ImagesGlob) {
			return fmt.Errorf("page %s: invalid images_glob %q", name, p.Hero.ImagesGlob)
		}
	}
	return nil
}

// expandHeroes appends glob matches to each hero's explicit slides.
func (c *Content) expandHeroes(assets fs.FS) error {
	for name, p := range c.Pages {
		if p.Hero.ImagesGlob == "" || assets == nil {
			continue
		}
		matches, err := doublestar.Glob(assets, p.Hero.ImagesGlob)
		if err != nil {
			return fmt.Errorf("page %s: expanding %q: %w", name, p.Hero.ImagesGlob, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			p.Hero.Slides = append(p.Hero.Slides, slider.Slide{
				Image: m,
				Alt:   altFromPath(m),
				Zoom:  p.Hero.Zoom,
			})
		}
		c.Pages[name] = p
	}
	return nil
}

// altFromPath turns images/hero/city-view.jpg into "city view".
func altFromPath(p string) string {
	base := p[strings.LastIndex(p, "/")+1:]
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}

func (c *Content) renderMarkdown() error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	render := func(src string) (template.HTML, error) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			return "", err
		}
		return template.HTML(buf.String()), nil //nolint:gosec // goldmark escapes raw HTML by default
	}

	var err error
	for i := range c.Rooms {
		if c.Rooms[i].DetailsHTML, err = render(c.Rooms[i].Details); err != nil {
			return fmt.Errorf("room %s: converting markdown: %w", c.Rooms[i].Key, err)
		}
	}
	for i := range c.Attractions {
		if c.Attractions[i].DetailsHTML, err = render(c.Attractions[i].Details); err != nil {
			return fmt.Errorf("attraction %s: converting markdown: %w", c.Attractions[i].Key, err)
		}
	}
	for i := range c.FAQ {
		if c.FAQ[i].AnswerHTML, err = render(c.FAQ[i].Answer); err != nil {
			return fmt.Errorf("faq %d: converting markdown: %w", i, err)
		}
	}
	return nil
}

// collectDropdowns records the navigation dropdown ids on every page.
func (c *Content) collectDropdowns() {
	var ids []string
	for _, l := range c.Navigation {
		if len(l.Children) > 0 {
			ids = append(ids, l.ID)
		}
	}
	for name, p := range c.Pages {
		p.Dropdowns = ids
		c.Pages[name] = p
	}
}
