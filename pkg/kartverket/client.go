// Package kartverket provides read-only clients for the Kartverket registry
// APIs: addresses, cadastral properties, counties, municipalities and place
// names. Each search call validates its input locally before any network
// traffic and returns the registry's response in a typed or raw form for
// downstream normalization.
package kartverket

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/norgeo/kvsok/internal/resilience"
)

// Client talks to the Kartverket registries over unauthenticated HTTP GET.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	userAgent  string

	addressBase   string
	propertyBase  string
	adminBase     string
	adminFallback string
	placeBase     string

	// Pick lists (counties, municipalities) change rarely; cache them.
	pickLists *cache.Cache
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for all registry requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit across all registries.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1) }
}

// WithRetry overrides the retry policy for transient upstream failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithUserAgent sets the User-Agent header sent to the registries.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithAddressBase overrides the address registry base URL.
func WithAddressBase(u string) Option {
	return func(c *Client) { c.addressBase = u }
}

// WithPropertyBase overrides the property registry base URL.
func WithPropertyBase(u string) Option {
	return func(c *Client) { c.propertyBase = u }
}

// WithAdminUnitBase overrides the administrative-unit registry base URLs.
// The fallback host is tried when the primary host fails.
func WithAdminUnitBase(primary, fallback string) Option {
	return func(c *Client) {
		c.adminBase = primary
		c.adminFallback = fallback
	}
}

// WithPlaceNameBase overrides the place-name registry base URL.
func WithPlaceNameBase(u string) Option {
	return func(c *Client) { c.placeBase = u }
}

// NewClient creates a registry client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		limiter:       rate.NewLimiter(10, 10),
		retry:         resilience.DefaultRetryConfig(),
		userAgent:     "kvsok/1.0",
		addressBase:   "https://ws.geonorge.no/adresser/v1",
		propertyBase:  "https://api.kartverket.no/eiendom/v1",
		adminBase:     "https://api.kartverket.no/kommuneinfo/v1",
		adminFallback: "https://ws.geonorge.no/kommuneinfo/v1",
		placeBase:     "https://api.kartverket.no/stedsnavn/v1",
		pickLists:     cache.New(12*time.Hour, time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs one rate-limited, retried GET and returns the body.
// Non-2xx responses and network failures surface as *TransportError.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return resilience.Retry(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "kartverket: rate limit")
		}

		reqURL := rawURL
		if len(params) > 0 {
			reqURL += "?" + params.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "kartverket: build request")
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &TransportError{URL: rawURL, Err: err}
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			terr := &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, resilience.NewTransientError(terr, resp.StatusCode)
			}
			return nil, terr
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{URL: rawURL, Err: err}
		}
		return body, nil
	})
}

// getJSONWithFallback tries the same path on the primary and then the
// fallback administrative-unit host.
func (c *Client) getJSONWithFallback(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, err := c.getJSON(ctx, c.adminBase+path, params)
	if err == nil {
		return body, nil
	}
	if c.adminFallback == "" {
		return nil, err
	}
	body, ferr := c.getJSON(ctx, c.adminFallback+path, params)
	if ferr != nil {
		return nil, err // report the primary failure
	}
	return body, nil
}
