// Package media verifies that slide images can be loaded and decoded, and
// renders QR codes for printed material.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// FetchTimeout bounds a remote image request.
const FetchTimeout = 10 * time.Second

// maxSVGProbe is how much of an SVG is read to find its root element.
const maxSVGProbe = 4096

// Info describes a decoded image header.
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Loader resolves image sources against the site assets or over HTTP.
type Loader struct {
	assets fs.FS
	client *http.Client
}

// NewLoader creates a Loader reading local images from assets.
func NewLoader(assets fs.FS) *Loader {
	return &Loader{
		assets: assets,
		client: &http.Client{Timeout: FetchTimeout},
	}
}

// Load reports whether src can be loaded and decoded.
func (l *Loader) Load(ctx context.Context, src string) error {
	_, err := l.Probe(ctx, src)
	return err
}

// Probe loads src and decodes its header.
func (l *Loader) Probe(ctx context.Context, src string) (Info, error) {
	if isRemote(src) {
		return l.probeRemote(ctx, src)
	}
	return l.probeLocal(src)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) probeRemote(ctx context.Context, src string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return Info{}, util.WrapError("create image request", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Info{}, util.WrapError("fetch image", err)
	}
	defer util.SafeClose(resp.Body, "image response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Info{}, fmt.Errorf("fetch image %s: HTTP %d", src, resp.StatusCode)
	}
	return decode(src, resp.Body)
}

func (l *Loader) probeLocal(src string) (Info, error) {
	if l.assets == nil {
		return Info{}, fmt.Errorf("no asset directory for %s", src)
	}
	name := path.Clean(strings.TrimPrefix(src, "/"))
	f, err := l.assets.Open(name)
	if err != nil {
		return Info{}, util.WrapError("open image", err)
	}
	defer util.SafeClose(f, "image file")
	return decode(src, f)
}

func decode(src string, r io.Reader) (Info, error) {
	if strings.EqualFold(path.Ext(src), ".svg") {
		return decodeSVG(r)
	}
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, util.WrapError("decode image", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// decodeSVG checks for an svg root element; dimensions are left unset.
func decodeSVG(r io.Reader) (Info, error) {
	head, err := io.ReadAll(io.LimitReader(r, maxSVGProbe))
	if err != nil {
		return Info{}, util.WrapError("read svg", err)
	}
	if !bytes.Contains(head, []byte("<svg")) {
		return Info{}, fmt.Errorf("failed to decode image: no svg element")
	}
	return Info{Format: "svg"}, nil
}

// QRCode renders url as a PNG of size by size pixels.
func QRCode(url string, size int) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("qr code needs a URL")
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, util.WrapError("encode qr code", err)
	}
	return png, nil
}
