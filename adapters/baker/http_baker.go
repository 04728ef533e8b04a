// Package baker talks to the external badge baking service.
package baker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
)

// DefaultTimeout bounds a single baking request
const DefaultTimeout = 10 * time.Second

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4 << 10

// HTTPBaker implements the Baker interface over HTTP
type HTTPBaker struct {
	BakerURL   string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// NewHTTPBaker creates a baker for the service at bakerURL
func NewHTTPBaker(bakerURL string, timeout time.Duration, logger *slog.Logger) ports.Baker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPBaker{
		BakerURL: bakerURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// requestURL appends assertion=<callbackURL> to the baker URL, keeping any existing query
func (b *HTTPBaker) requestURL(callbackURL string) (string, error) {
	u, err := url.Parse(b.BakerURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse baker url: %w", err)
	}
	q := u.Query()
	q.Set("assertion", callbackURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Bake asks the baking service to bake the assertion served at callbackURL
func (b *HTTPBaker) Bake(ctx context.Context, callbackURL string) (core.BakeResult, error) {
	target, err := b.requestURL(callbackURL)
	if err != nil {
		return core.BakeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return core.BakeResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	b.logger.DebugContext(ctx, "baking request", slog.String("url", target))

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return core.BakeResult{}, fmt.Errorf("request failed: %w: %w", core.ErrBakingTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return core.BakeResult{}, &core.BakingTransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(excerpt),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.BakeResult{}, fmt.Errorf("failed to read response: %w: %w", core.ErrBakingTransport, err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return core.BakeResult{Status: core.BakeEmpty}, nil
	}

	return core.BakeResult{Status: core.BakeBaked, Image: body}, nil
}
