package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/TemirB/jewelry-pricing/internal/config"
)

const maxBody = 1 << 20

// Source fetches the current gold price per troy ounce.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (float64, error)
}

type HTTPSource struct {
	name      string
	url       string
	key       string
	keyHeader string
	client    *http.Client
}

// NewHTTPSource builds a source for cfg. Timeouts are applied per attempt by
// the Oracle through ctx, so client should not carry its own.
func NewHTTPSource(cfg config.PriceSource, keyHeader string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		name:      cfg.Name,
		url:       cfg.URL,
		key:       cfg.Key,
		keyHeader: keyHeader,
		client:    client,
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.key != "" && s.keyHeader != "" {
		req.Header.Set(s.keyHeader, s.key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return Parse(body)
}
