package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem enables fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) { l.fs = files }
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) { l.http = client }
}

// WithRequestTimeout bounds remote fetches.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) { l.timeout = timeout }
}

// Loader fetches raw OpenAPI documents from files, an fs.FS or HTTP. URL
// sources are refused unless an HTTP client was configured.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader builds a Loader from options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the raw bytes behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind() {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("openapi loader: %w", err)
		}
		return data, nil
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("openapi loader: filesystem is not configured")
		}
		data, err := fs.ReadFile(l.fs, src.Location())
		if err != nil {
			return nil, fmt.Errorf("openapi loader: %w", err)
		}
		return data, nil
	case SourceKindURL:
		return l.loadHTTP(ctx, src.Location())
	default:
		return nil, fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
}

func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("openapi loader: http support disabled")
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi loader: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi loader: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
