package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/oszuidwest/hotelsite/internal/config"
	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/media"
	"github.com/oszuidwest/hotelsite/internal/newsletter"
	"github.com/oszuidwest/hotelsite/internal/notify"
	"github.com/oszuidwest/hotelsite/internal/server"
	"github.com/oszuidwest/hotelsite/internal/types"
	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/oszuidwest/hotelsite/internal/widget"
	"github.com/zoobzio/clockz"
)

// WebSocket connection settings.
const (
	wsReadLimit    = 4096
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsOutboxSize   = 8
)

// QR code size bounds in pixels.
const (
	qrDefaultSize = 256
	qrMinSize     = 64
	qrMaxSize     = 1024
)

// Server is an HTTP server that renders the hotel pages and drives their
// widgets over WebSocket.
type Server struct {
	config     *config.Config
	store      *content.Store
	assets     fs.FS
	loader     *media.Loader
	sessions   *server.SessionManager
	commands   *server.CommandHandler
	upgrader   *server.Upgrader
	metrics    *server.Metrics
	notifier   *notify.SignupNotifier
	newsletter *newsletter.Service
	pages      *pageRenderer
	version    *VersionChecker
	clock      clockz.Clock
}

// NewServer returns a new Server serving the content in store.
func NewServer(cfg *config.Config, store *content.Store, assets fs.FS) (*Server, error) {
	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	snap := cfg.Snapshot()
	metrics := server.NewMetrics()
	notifier := notify.NewSignupNotifier(cfg, func() string { return store.Current().Hotel.Name })

	return &Server{
		config:     cfg,
		store:      store,
		assets:     assets,
		loader:     media.NewLoader(assets),
		sessions:   server.NewSessionManager(),
		commands:   server.NewCommandHandler(metrics),
		upgrader:   server.NewUpgrader(snap.AllowedOrigins),
		metrics:    metrics,
		notifier:   notifier,
		newsletter: newsletter.NewService(notifier, metrics.NewsletterSignups),
		pages:      pages,
		version:    NewVersionChecker(snap.ReleaseRepo),
		clock:      clockz.RealClock,
	}, nil
}

// pageConfig builds the widget settings from the current configuration.
func (s *Server) pageConfig() server.PageConfig {
	snap := s.config.Snapshot()
	return server.PageConfig{
		Clock:          s.clock,
		SlideInterval:  snap.SlideInterval,
		SlideDebounce:  snap.SlideDebounce,
		SwipeThreshold: snap.SwipeThreshold,
		ZoomScale:      snap.ZoomScale,
		FallbackImage:  snap.FallbackImage,
		Preloader: widget.PreloaderConfig{
			Step: snap.PreloadStep,
			Tick: snap.PreloadTick,
			Fade: snap.PreloadFade,
		},
	}
}

// handleWebSocket runs one page session: browser events in, page views out.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	visitor, ok := s.sessions.FromRequest(r)
	if !ok {
		visitor = s.sessions.Create()
	}

	conn, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer util.SafeCloseFunc(conn, "WebSocket connection")()
	conn.SetReadLimit(wsReadLimit)

	pageName := r.URL.Query().Get("page")
	page, err := server.NewPageSession(pageName, s.store.Current(), visitor, s.pageConfig(), s.metrics)
	if err != nil {
		slog.Warn("rejected page session", "page", pageName, "error", err)
		_ = writeJSON(conn, types.ErrorMessage{Type: types.MessageError, Command: "connect", Message: err.Error()})
		return
	}
	defer page.Close()

	ctx := r.Context()
	page.Start(ctx, s.loader)

	s.metrics.ActiveSessions.Inc()
	defer s.metrics.ActiveSessions.Dec()
	slog.Debug("page session opened", "page", pageName, "visitor", visitor.ID)

	outbox := make(chan any, wsOutboxSize)
	done := make(chan bool)

	// Goroutine to read and process commands from client
	go func() {
		for {
			var cmd server.WSCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				close(done)
				return
			}
			s.commands.Handle(cmd, page, func(v any) {
				select {
				case outbox <- v:
				default:
					slog.Warn("dropping WebSocket reply, outbox full", "command", cmd.Type)
				}
			})
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	// Send initial view
	if err := writeJSON(conn, page.View()); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteTimeout))
			return
		case <-page.Updates():
			if err := writeJSON(conn, page.View()); err != nil {
				return
			}
		case msg := <-outbox:
			if err := writeJSON(conn, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// handlePage renders a site page and issues the visitor cookie.
func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor := s.sessions.Ensure(w, r)
		if err := s.pages.render(w, r, name, s.store.Current(), visitor.PreloaderShown()); err != nil {
			slog.Error("failed to render page", "page", name, "error", err)
		}
	}
}

// handleQR renders a QR code linking to the site.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	size := qrDefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		size = min(max(n, qrMinSize), qrMaxSize)
	}

	target := s.config.Snapshot().PublicURL
	if target == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		target = fmt.Sprintf("%s://%s/", scheme, r.Host)
	}

	png, err := media.QRCode(target, size)
	if err != nil {
		slog.Error("failed to render QR code", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(png); err != nil {
		slog.Debug("failed to write QR code", "error", err)
	}
}

// handleHealth reports liveness, open sessions and release information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(types.Health{
		Status:   "ok",
		Sessions: s.sessions.Len(),
		Version:  s.version.GetInfo(),
	}); err != nil {
		slog.Debug("failed to write health response", "error", err)
	}
}

// requestLogger logs each request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// The WebSocket outlives any request timeout.
	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", s.handlePage(content.PageHome))
		r.Get("/rooms", s.handlePage(content.PageRooms))
		r.Get("/explore", s.handlePage(content.PageExplore))

		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(embeddedFS("static"))))
		r.Handle("/images/*", http.FileServerFS(s.assets))

		r.Get("/qr.png", s.handleQR)
		r.Get("/healthz", s.handleHealth)
		r.Handle("/metrics", s.metrics.Handler())

		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: append([]string{"http://localhost:*", "http://127.0.0.1:*"}, s.config.AllowedOrigins()...),
				AllowedMethods: []string{http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Method(http.MethodPost, "/api/newsletter", s.newsletter)
			r.Options("/api/newsletter", func(w http.ResponseWriter, r *http.Request) {})
		})
	})

	return r
}

// Start begins listening and serving HTTP requests on the configured port.
// Request contexts derive from ctx so open page sessions end on shutdown.
// Returns an *http.Server that can be used for graceful shutdown.
func (s *Server) Start(ctx context.Context) *http.Server {
	addr := fmt.Sprintf(":%d", s.config.WebPort())
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}
