package lnurl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCtx() context.Context { return context.Background() }

func TestSplitAddress(t *testing.T) {
	name, domain, err := splitAddress("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, "example.com", domain)

	_, _, err = splitAddress("not-an-address")
	assert.Error(t, err)
}

// Resolve dials real https:// URLs derived from the address, so the
// well-known and callback steps are exercised against a fake HTTP client
// that rewrites requests onto a local httptest server.
func newRedirectingClient(target *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = strings.TrimPrefix(target.URL, "http://")
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestResolve_HappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/lnurlp/alice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"callback":"https://example.com/cb","minSendable":1000,"maxSendable":1000000000}`))
	})
	mux.HandleFunc("/cb", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "21000", r.URL.Query().Get("amount"))
		w.Write([]byte(`{"pr":"lnbc21u1...","status":"OK"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	resolver := NewResolver(newRedirectingClient(srv))
	invoice, err := resolver.Resolve(newTestCtx(), "alice@example.com", 21)
	require.NoError(t, err)
	assert.Equal(t, "lnbc21u1...", invoice)
}

func TestResolve_AmountOutOfRange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/lnurlp/alice", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"callback":"https://example.com/cb","minSendable":1000000,"maxSendable":2000000}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	resolver := NewResolver(newRedirectingClient(srv))
	_, err := resolver.Resolve(newTestCtx(), "alice@example.com", 1)
	require.Error(t, err)
}

func TestResolve_WellKnownError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/lnurlp/bob", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","reason":"no such user"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	resolver := NewResolver(newRedirectingClient(srv))
	_, err := resolver.Resolve(newTestCtx(), "bob@example.com", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such user")
}
