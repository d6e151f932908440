package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oszuidwest/hotelsite/internal/config"
	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/types"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New(filepath.Join(dir, "hotelsite.yaml"))

	assets := embeddedFS("assets")
	store, err := content.NewStore(filepath.Join(dir, "missing.yaml"), assets)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := NewServer(cfg, store, assets)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestPages(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"The Weatherfield Hotel", `class="preloading"`, "/images/hero/lobby.svg", `data-modal-image="images/hero/lobby.svg"`, "slider-dots", `class="button btn-primary" href="#welcome"`}},
		{"/rooms", []string{`data-detail="twin-room"`, `data-filter="double"`, "/images/rooms/compact-double.svg", `href="#rooms"`}},
		{"/explore", []string{`data-detail="co-op-live"`, "slider-prev", `href="#attractions"`}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("page does not contain %q", want)
				}
			}
			found := false
			for _, c := range resp.Cookies() {
				found = found || c.Name == "hotelsite_session"
			}
			if !found {
				t.Error("no session cookie")
			}
		})
	}

	_, body := get(t, ts.URL+"/explore")
	if strings.Contains(body, `class="dot`) {
		t.Error("explore hero renders dots")
	}
}

func TestStaticAndImages(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/static/app.js", "/static/style.css", "/images/hero/lobby.svg", "/images/fallback.svg"} {
		if resp, _ := get(t, ts.URL+path); resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
	if resp, _ := get(t, ts.URL+"/images/nope.svg"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing image status = %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h types.Health
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Version.Current != "dev" {
		t.Errorf("health = %+v", h)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "hotelsite_active_sessions") {
		t.Error("metrics missing active sessions gauge")
	}
}

func TestQRCode(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query string
		size  int
	}{
		{"", qrDefaultSize},
		{"?size=128", 128},
		{"?size=5", qrMinSize},
		{"?size=99999", qrMaxSize},
	}
	for _, tt := range tests {
		resp, body := get(t, ts.URL+"/qr.png"+tt.query)
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
			t.Fatalf("qr%s: status %d type %q", tt.query, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		cfg, err := png.DecodeConfig(strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != tt.size || cfg.Height != tt.size {
			t.Errorf("qr%s: %dx%d, want %d", tt.query, cfg.Width, cfg.Height, tt.size)
		}
	}

	if resp, _ := get(t, ts.URL+"/qr.png?size=big"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad size status = %d", resp.StatusCode)
	}
}

func TestNewsletterRoute(t *testing.T) {
	_, ts := newTestServer(t)

	post := func(body string) int {
		t.Helper()
		resp, err := http.Post(ts.URL+"/api/newsletter", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if got := post(`{"email":"guest@example.com"}`); got != http.StatusOK {
		t.Errorf("valid signup = %d", got)
	}
	if got := post(`{"email":"not-an-address"}`); got != http.StatusUnprocessableEntity {
		t.Errorf("invalid signup = %d", got)
	}
	if resp, _ := get(t, ts.URL+"/api/newsletter"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET newsletter = %d", resp.StatusCode)
	}
}

func dialPage(t *testing.T, ts *httptest.Server, page string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?page=" + page
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v (response %v)", err, resp)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]json.RawMessage) bool) map[string]json.RawMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatal(err)
	}
	for {
		var msg map[string]json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func messageType(msg map[string]json.RawMessage) string {
	var typ string
	_ = json.Unmarshal(msg["type"], &typ)
	return typ
}

func TestWebSocket_PageSession(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialPage(t, ts, content.PageHome, nil)

	first := readUntil(t, conn, func(map[string]json.RawMessage) bool { return true })
	if messageType(first) != types.MessageView {
		t.Fatalf("first message type = %q", messageType(first))
	}
	var view types.PageView
	raw, _ := json.Marshal(first)
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatal(err)
	}
	if view.Page != content.PageHome || len(view.Slider.Slides) != 3 {
		t.Errorf("view = %+v", view)
	}

	if err := conn.WriteJSON(map[string]string{"type": "menu.toggle"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(msg map[string]json.RawMessage) bool {
		var menu struct {
			Open bool `json:"open"`
		}
		return messageType(msg) == types.MessageView && json.Unmarshal(msg["menu"], &menu) == nil && menu.Open
	})

	if err := conn.WriteJSON(map[string]any{"type": "menu.link", "data": map[string]any{"id": "explore", "viewport": 1280}}); err != nil {
		t.Fatal(err)
	}
	nav := readUntil(t, conn, func(msg map[string]json.RawMessage) bool { return messageType(msg) == types.MessageNavigate })
	if string(nav["href"]) != `"/explore"` {
		t.Errorf("navigate href = %s", nav["href"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "accordion.toggle", "data": map[string]int{"index": 42}}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(msg map[string]json.RawMessage) bool { return messageType(msg) == types.MessageError })
}

func TestWebSocket_UnknownPage(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialPage(t, ts, "spa", nil)

	msg := readUntil(t, conn, func(map[string]json.RawMessage) bool { return true })
	if messageType(msg) != types.MessageError {
		t.Errorf("message type = %q, want error", messageType(msg))
	}
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?page=home"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}
