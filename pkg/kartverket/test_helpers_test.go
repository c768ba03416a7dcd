package kartverket

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/norgeo/kvsok/internal/resilience"
)

// newTestClient points every registry base at the test server and disables
// rate limiting and retry backoff so tests run fast.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(
		WithHTTPClient(srv.Client()),
		WithRateLimit(10000),
		WithRetry(resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
		}),
		WithAddressBase(srv.URL),
		WithPropertyBase(srv.URL),
		WithAdminUnitBase(srv.URL, srv.URL),
		WithPlaceNameBase(srv.URL),
	)
	return c, srv
}
