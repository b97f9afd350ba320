package fares

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skazar/farelock/internal/domain"
)

// Gateway fetches fare quotes from the upstream provider. The provider
// may be slow or down and its prices move between calls; callers treat
// every quote as untrusted input.
type Gateway interface {
	Quote(ctx context.Context, ref string) (*domain.FareQuote, error)
}

type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) Quote(ctx context.Context, ref string) (*domain.FareQuote, error) {
	url := fmt.Sprintf("%s/quotes/%s", g.baseURL, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: fare quote %s", domain.ErrNotFound, ref)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: provider returned %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var quote domain.FareQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", domain.ErrUpstreamUnavailable, err)
	}
	quote.Ref = ref
	return &quote, nil
}

var _ Gateway = (*HTTPGateway)(nil)
