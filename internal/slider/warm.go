package slider

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the background image requests per rotator.
const maxConcurrentLoads = 4

// Loader fetches an image so later displays are served warm.
type Loader interface {
	Load(ctx context.Context, src string) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, src string) error

// Load calls f(ctx, src).
func (f LoaderFunc) Load(ctx context.Context, src string) error {
	return f(ctx, src)
}

// Warm requests every slide image through loader. A slide whose image fails
// to load gets the fallback image instead; other slides and the rotator
// state are unaffected. Returns the number of substituted slides.
//
// Warm blocks until all requests finish; callers that must not wait run it
// in its own goroutine.
func (r *Rotator) Warm(ctx context.Context, loader Loader) int {
	if r.Empty() {
		return 0
	}

	r.mu.Lock()
	images := make([]string, len(r.slides))
	for i, s := range r.slides {
		images[i] = s.Image
	}
	r.mu.Unlock()

	substituted := make([]bool, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, src := range images {
		if src == "" || src == r.fallback {
			continue
		}
		g.Go(func() error {
			err := loader.Load(gctx, src)
			if err == nil {
				return nil
			}
			if ctx.Err() != nil {
				// Page went away; nothing to repair.
				return nil
			}
			slog.Warn("failed to preload slide image", "image", src, "fallback", r.fallback, "error", err)
			r.substitute(i)
			substituted[i] = true
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // load errors are handled per slide

	count := 0
	for i, ok := range substituted {
		if !ok {
			continue
		}
		count++
		if r.onFallback != nil {
			r.onFallback(images[i])
		}
	}
	if count > 0 {
		r.changed()
	}
	return count
}

// substitute replaces the image of slide i with the fallback.
func (r *Rotator) substitute(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slides[i].Image = r.fallback
}
