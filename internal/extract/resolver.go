package extract

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultResolveTimeout = 10 * time.Second

// Resolver expands shortened Google Maps links by following redirects.
// Resolution is best-effort: the page behind the link is never fetched for
// content, only for its final URL, so any failure falls back to the input.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a Resolver with the given per-request timeout.
// A zero or negative timeout selects the default.
func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	return &Resolver{
		client: &http.Client{Timeout: timeout},
	}
}

// Resolve follows redirects from url and returns the final URL. On any
// error the input is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		zap.L().Warn("extract: resolve redirect failed, using original URL",
			zap.String("url", url),
			zap.Error(err))
		return url
	}

	resp, err := r.client.Do(req)
	if err != nil {
		zap.L().Warn("extract: resolve redirect failed, using original URL",
			zap.String("url", url),
			zap.Error(err))
		return url
	}
	defer resp.Body.Close()

	return resp.Request.URL.String()
}
