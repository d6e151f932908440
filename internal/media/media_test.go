package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoader_Local(t *testing.T) {
	assets := fstest.MapFS{
		"images/hero/lobby.png": {Data: pngBytes(t, 16, 9)},
		"images/fallback.svg":   {Data: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`)},
		"images/broken.jpg":     {Data: []byte("not a jpeg")},
		"images/broken.svg":     {Data: []byte("<html></html>")},
	}
	l := NewLoader(assets)
	ctx := context.Background()

	info, err := l.Probe(ctx, "images/hero/lobby.png")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info != (Info{Format: "png", Width: 16, Height: 9}) {
		t.Errorf("info = %+v", info)
	}

	if err := l.Load(ctx, "/images/fallback.svg"); err != nil {
		t.Errorf("svg with leading slash: %v", err)
	}

	for _, src := range []string{"images/broken.jpg", "images/broken.svg", "images/missing.png"} {
		if err := l.Load(ctx, src); err == nil {
			t.Errorf("Load(%q) succeeded", src)
		}
	}
}

func TestLoader_NoAssets(t *testing.T) {
	if err := NewLoader(nil).Load(context.Background(), "images/a.png"); err == nil {
		t.Error("expected error without assets")
	}
}

func TestLoader_Remote(t *testing.T) {
	img := pngBytes(t, 4, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	}))
	defer srv.Close()

	l := NewLoader(nil)
	info, err := l.Probe(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 4 || info.Height != 3 {
		t.Errorf("info = %+v", info)
	}
	if err := l.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Load(ctx, srv.URL+"/ok.png"); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestQRCode(t *testing.T) {
	data, err := QRCode("https://weatherfield.example/", 128)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || cfg.Width != 128 || cfg.Height != 128 {
		t.Errorf("got %s %dx%d", format, cfg.Width, cfg.Height)
	}

	if _, err := QRCode("", 128); err == nil {
		t.Error("expected error for empty URL")
	}
}
