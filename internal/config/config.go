// Package config provides application configuration management.
package config

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/oszuidwest/hotelsite/internal/util"
	yamlv3 "gopkg.in/yaml.v3"
)

// Configuration defaults.
const (
	DefaultWebPort         = 8080
	DefaultContentPath     = "content.yaml"
	DefaultFallbackImage   = "images/fallback.svg"
	DefaultSlideInterval   = 6000 // milliseconds
	DefaultSlideDebounce   = 200  // milliseconds
	DefaultSwipeThreshold  = 50.0
	DefaultZoomScale       = 1.05
	DefaultPreloadStep     = 10
	DefaultPreloadTick     = 50  // milliseconds
	DefaultPreloadFade     = 300 // milliseconds
	DefaultEmailSMTPPort   = 587
	DefaultEmailFromName   = "Hotel Reservations"
	DefaultReleaseRepo     = "oszuidwest/hotelsite"
	DefaultVersionInterval = 24 * time.Hour
)

// EnvPrefix prefixes environment overrides: HOTELSITE_WEB_PORT sets web.port.
const EnvPrefix = "HOTELSITE_"

// WebConfig contains web server configuration.
type WebConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" koanf:"allowed_origins"`
}

// SiteConfig contains content and asset locations.
type SiteConfig struct {
	ContentPath   string `yaml:"content_path,omitempty" koanf:"content_path"`
	AssetsDir     string `yaml:"assets_dir,omitempty" koanf:"assets_dir"`
	FallbackImage string `yaml:"fallback_image,omitempty" koanf:"fallback_image"`
	PublicURL     string `yaml:"public_url,omitempty" koanf:"public_url"`
	ReleaseRepo   string `yaml:"release_repo,omitempty" koanf:"release_repo"`
}

// SliderConfig tunes the hero slider.
type SliderConfig struct {
	IntervalMS     int     `yaml:"interval_ms,omitempty" koanf:"interval_ms"`
	DebounceMS     int     `yaml:"debounce_ms,omitempty" koanf:"debounce_ms"`
	SwipeThreshold float64 `yaml:"swipe_threshold,omitempty" koanf:"swipe_threshold"`
	ZoomScale      float64 `yaml:"zoom_scale,omitempty" koanf:"zoom_scale"`
}

// PreloaderConfig tunes the first-visit preloader.
type PreloaderConfig struct {
	Step   int `yaml:"step,omitempty" koanf:"step"`
	TickMS int `yaml:"tick_ms,omitempty" koanf:"tick_ms"`
	FadeMS int `yaml:"fade_ms,omitempty" koanf:"fade_ms"`
}

// NewsletterConfig contains newsletter signup delivery settings.
type NewsletterConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty" koanf:"webhook_url"`
}

// EmailConfig contains SMTP settings for newsletter mail.
type EmailConfig struct {
	Host       string `yaml:"host,omitempty" koanf:"host"`
	Port       int    `yaml:"port,omitempty" koanf:"port"`
	FromName   string `yaml:"from_name,omitempty" koanf:"from_name"`
	Username   string `yaml:"username,omitempty" koanf:"username"`
	Password   string `yaml:"password,omitempty" koanf:"password"`
	Recipients string `yaml:"recipients,omitempty" koanf:"recipients"`
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	Web        WebConfig        `yaml:"web" koanf:"web"`
	Site       SiteConfig       `yaml:"site" koanf:"site"`
	Slider     SliderConfig     `yaml:"slider,omitempty" koanf:"slider"`
	Preloader  PreloaderConfig  `yaml:"preloader,omitempty" koanf:"preloader"`
	Newsletter NewsletterConfig `yaml:"newsletter,omitempty" koanf:"newsletter"`
	Email      EmailConfig      `yaml:"email,omitempty" koanf:"email"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Web: WebConfig{
			Port: DefaultWebPort,
		},
		Site: SiteConfig{
			ContentPath:   DefaultContentPath,
			FallbackImage: DefaultFallbackImage,
			ReleaseRepo:   DefaultReleaseRepo,
		},
		filePath: filePath,
	}
}

// Load reads config from file, creating a default if none exists, then
// overlays HOTELSITE_* environment variables.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := koanf.New(".")

	if _, err := os.Stat(c.filePath); err == nil {
		if err := k.Load(file.Provider(c.filePath), yaml.Parser()); err != nil {
			return util.WrapError("read config", err)
		}
	} else if os.IsNotExist(err) {
		if err := c.saveLocked(); err != nil {
			return err
		}
	} else {
		return util.WrapError("access config", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return util.WrapError("load env overrides", err)
	}

	if err := k.Unmarshal("", c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()
	return c.validateLocked()
}

// envKey maps HOTELSITE_SLIDER_INTERVAL_MS to slider.interval_ms.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Web.Port == 0 {
		c.Web.Port = DefaultWebPort
	}
	if c.Site.ContentPath == "" {
		c.Site.ContentPath = DefaultContentPath
	}
	if c.Site.FallbackImage == "" {
		c.Site.FallbackImage = DefaultFallbackImage
	}
	if c.Site.ReleaseRepo == "" {
		c.Site.ReleaseRepo = DefaultReleaseRepo
	}
	if c.Site.ContentPath != "" && !filepath.IsAbs(c.Site.ContentPath) {
		c.Site.ContentPath = filepath.Join(filepath.Dir(c.filePath), c.Site.ContentPath)
	}
	if c.Site.AssetsDir != "" && !filepath.IsAbs(c.Site.AssetsDir) {
		c.Site.AssetsDir = filepath.Join(filepath.Dir(c.filePath), c.Site.AssetsDir)
	}
}

// validateLocked checks value ranges. Caller must hold c.mu.
func (c *Config) validateLocked() error {
	if err := util.ValidatePort("web.port", c.Web.Port); err != nil {
		return err
	}
	if c.Slider.IntervalMS < 0 || c.Slider.DebounceMS < 0 {
		return fmt.Errorf("slider timings must be non-negative")
	}
	if c.Slider.ZoomScale != 0 && c.Slider.ZoomScale < 1 {
		return fmt.Errorf("slider.zoom_scale must be at least 1, got %.2f", c.Slider.ZoomScale)
	}
	if c.Slider.SwipeThreshold < 0 {
		return fmt.Errorf("slider.swipe_threshold must be non-negative")
	}
	if c.Email.Port != 0 {
		if err := util.ValidatePort("email.port", c.Email.Port); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the configuration to file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// WebPort returns the web server port.
func (c *Config) WebPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Web.Port
}

// AllowedOrigins returns the origins allowed to call the public API.
func (c *Config) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.Web.AllowedOrigins)
}

// ContentPath returns the path of the site content file.
func (c *Config) ContentPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Site.ContentPath
}

// AssetsDir returns the directory overlaying the embedded assets, if any.
func (c *Config) AssetsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Site.AssetsDir
}

// SetNewsletterWebhook updates the signup webhook URL and saves the configuration.
func (c *Config) SetNewsletterWebhook(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Newsletter.WebhookURL = url
	return c.saveLocked()
}

// Snapshot contains a point-in-time copy of all configuration values.
// Use this instead of multiple individual getters to reduce mutex contention.
type Snapshot struct {
	// Web
	WebPort        int
	AllowedOrigins []string

	// Site
	ContentPath   string
	AssetsDir     string
	FallbackImage string
	PublicURL     string
	ReleaseRepo   string

	// Slider
	SlideInterval  time.Duration
	SlideDebounce  time.Duration
	SwipeThreshold float64
	ZoomScale      float64

	// Preloader
	PreloadStep int
	PreloadTick time.Duration
	PreloadFade time.Duration

	// Newsletter
	WebhookURL string

	// Email
	EmailSMTPHost   string
	EmailSMTPPort   int
	EmailFromName   string
	EmailUsername   string
	EmailPassword   string
	EmailRecipients string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		// Web
		WebPort:        c.Web.Port,
		AllowedOrigins: slices.Clone(c.Web.AllowedOrigins),

		// Site
		ContentPath:   c.Site.ContentPath,
		AssetsDir:     c.Site.AssetsDir,
		FallbackImage: cmp.Or(c.Site.FallbackImage, DefaultFallbackImage),
		PublicURL:     c.Site.PublicURL,
		ReleaseRepo:   cmp.Or(c.Site.ReleaseRepo, DefaultReleaseRepo),

		// Slider (with defaults)
		SlideInterval:  ms(cmp.Or(c.Slider.IntervalMS, DefaultSlideInterval)),
		SlideDebounce:  ms(cmp.Or(c.Slider.DebounceMS, DefaultSlideDebounce)),
		SwipeThreshold: cmp.Or(c.Slider.SwipeThreshold, DefaultSwipeThreshold),
		ZoomScale:      cmp.Or(c.Slider.ZoomScale, DefaultZoomScale),

		// Preloader (with defaults)
		PreloadStep: cmp.Or(c.Preloader.Step, DefaultPreloadStep),
		PreloadTick: ms(cmp.Or(c.Preloader.TickMS, DefaultPreloadTick)),
		PreloadFade: ms(cmp.Or(c.Preloader.FadeMS, DefaultPreloadFade)),

		// Newsletter
		WebhookURL: c.Newsletter.WebhookURL,

		// Email (with defaults)
		EmailSMTPHost:   c.Email.Host,
		EmailSMTPPort:   cmp.Or(c.Email.Port, DefaultEmailSMTPPort),
		EmailFromName:   cmp.Or(c.Email.FromName, DefaultEmailFromName),
		EmailUsername:   c.Email.Username,
		EmailPassword:   c.Email.Password,
		EmailRecipients: c.Email.Recipients,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// HasWebhook returns true if a signup webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasEmail returns true if SMTP delivery is configured.
func (s *Snapshot) HasEmail() bool {
	return s.EmailSMTPHost != "" && s.EmailUsername != ""
}
