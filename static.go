package main

import (
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// WebFiles contains all embedded web assets.
//
//go:embed web
var WebFiles embed.FS

// embeddedFS returns the embedded tree rooted at dir.
func embeddedFS(dir string) fs.FS {
	sub, err := fs.Sub(WebFiles, "web/"+dir)
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	return sub
}

// overlayFS serves files from primary and falls back to secondary.
// A directory present in primary shadows the one in secondary.
type overlayFS struct {
	primary   fs.FS
	secondary fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.secondary.Open(name)
}

// siteAssets returns the image tree: the embedded assets, overlaid by dir
// when it exists.
func siteAssets(dir string) fs.FS {
	embedded := embeddedFS("assets")
	if dir == "" {
		return embedded
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		slog.Warn("assets directory not usable, using embedded assets", "dir", dir, "error", err)
		return embedded
	}
	return overlayFS{primary: os.DirFS(dir), secondary: embedded}
}
