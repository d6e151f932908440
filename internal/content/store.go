package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/oszuidwest/hotelsite/internal/util"
)

// Store holds the current content and reloads it when the file changes.
// A missing file falls back to the built-in content.
type Store struct {
	path   string
	assets fs.FS

	mu       sync.RWMutex
	current  *Content
	onReload []func(*Content)
}

// NewStore loads the content at path.
func NewStore(path string, assets fs.FS) (*Store, error) {
	s := &Store{path: path, assets: assets}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the most recently loaded content.
func (s *Store) Current() *Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnReload registers fn to run after every successful reload.
func (s *Store) OnReload(fn func(*Content)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload reads the content file again. On failure the previous content is kept.
func (s *Store) Reload() error {
	var (
		c   *Content
		err error
	)
	if _, statErr := os.Stat(s.path); errors.Is(statErr, fs.ErrNotExist) {
		slog.Info("content file not found, using built-in content", "path", s.path)
		c, err = Default(s.assets)
	} else {
		c, err = Load(s.path, s.assets)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = c
	callbacks := append([]func(*Content){}, s.onReload...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(c)
	}
	return nil
}

// Watch reloads the content whenever the file is written, created or
// renamed into place. It returns once the watcher is set up; watching
// stops when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return util.WrapError("create fsnotify watcher", err)
	}

	// Watch the directory so editors that replace the file are noticed.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		util.SafeClose(watcher, "content watcher")
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer util.SafeClose(watcher, "content watcher")
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					slog.Warn("content reload failed, keeping previous content", "path", s.path, "error", err)
					continue
				}
				slog.Info("content reloaded", "path", s.path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("content watcher error", "error", err)
			}
		}
	}()
	return nil
}
