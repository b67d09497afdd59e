package mask

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/frog-london/Tara-Voice/internal/logging"
)

// Mask is a loaded mask image and the size it was requested at, as a
// percentage of the clip diameter.
type Mask struct {
	Path  string
	Size  float64
	Image image.Image
}

// FetchFunc reads the raw bytes behind a mask path.
type FetchFunc func(ctx context.Context, path string) ([]byte, error)

type result struct {
	gen  uint64
	mask *Mask
	err  error
}

// Loader is a single-slot asynchronous mask cache. Only the most recent
// request can land; a load that completes after a newer Request is
// discarded. Request and Poll belong to the tick goroutine; loads run in the
// background and hand their result over through a one-element slot.
type Loader struct {
	log   *slog.Logger
	fetch FetchFunc

	gen     uint64
	current *Mask
	err     string
	loading bool
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending *result
}

// NewLoader returns a loader that reads local files and http(s) URLs. A nil
// fetch selects that default.
func NewLoader(log *slog.Logger, fetch FetchFunc) *Loader {
	if fetch == nil {
		fetch = Fetch
	}
	return &Loader{log: logging.OrNop(log), fetch: fetch}
}

// Request starts loading path. An empty path clears the mask. Requesting the
// path that is already current only updates its size.
func (l *Loader) Request(path string, size float64) {
	if path == "" {
		l.Clear()
		return
	}
	if l.current != nil && l.current.Path == path && !l.loading {
		l.current.Size = size
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.loading = true

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	l.cancel = cancel
	go func() {
		defer cancel()
		r := result{gen: gen}
		data, err := l.fetch(ctx, path)
		if err == nil {
			var img image.Image
			img, err = Decode(path, data)
			if err == nil {
				r.mask = &Mask{Path: path, Size: size, Image: img}
			}
		}
		r.err = err
		l.mu.Lock()
		if l.pending == nil || l.pending.gen < r.gen {
			l.pending = &r
		}
		l.mu.Unlock()
	}()
}

// Clear drops the current mask and abandons any load in flight.
func (l *Loader) Clear() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.current = nil
	l.err = ""
	l.loading = false
}

// Poll applies a completed load, if any, and reports whether the current mask
// changed.
func (l *Loader) Poll() bool {
	l.mu.Lock()
	r := l.pending
	l.pending = nil
	l.mu.Unlock()

	if r == nil {
		return false
	}
	if r.gen != l.gen {
		l.log.Debug("stale mask load discarded", "gen", r.gen, "current", l.gen)
		return false
	}
	l.loading = false
	if r.err != nil {
		l.current = nil
		l.err = r.err.Error()
		l.log.Warn("mask load failed", "err", r.err)
		return true
	}
	l.current = r.mask
	l.err = ""
	b := r.mask.Image.Bounds()
	l.log.Info("mask loaded", "path", r.mask.Path, "w", b.Dx(), "h", b.Dy())
	return true
}

// Current is the loaded mask, or nil.
func (l *Loader) Current() *Mask { return l.current }

// Err is the last load error as display text, empty when the last load
// succeeded.
func (l *Loader) Err() string { return l.err }

// Loading reports whether a load is in flight.
func (l *Loader) Loading() bool { return l.loading }

// Fetch reads a local file or an http(s) URL.
func Fetch(ctx context.Context, path string) ([]byte, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return os.ReadFile(path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mask: fetch %s: %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
