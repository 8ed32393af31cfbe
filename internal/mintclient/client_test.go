package mintclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, path string, status int, body interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CreateMintQuote(t *testing.T) {
	srv := newTestServer(t, "/v1/mint/quote/bolt11", http.StatusOK, map[string]interface{}{
		"quote":   "q1",
		"request": "lnbc1...",
		"state":   "UNPAID",
		"expiry":  1234,
	})
	c := New(srv.URL, srv.Client())

	quote, err := c.CreateMintQuote(context.Background(), 100, "sat")
	require.NoError(t, err)
	assert.Equal(t, "q1", quote.Quote)
	assert.Equal(t, MintQuoteUnpaid, quote.State)
}

func TestClient_CheckMintQuote(t *testing.T) {
	srv := newTestServer(t, "/v1/mint/quote/bolt11/q1", http.StatusOK, map[string]interface{}{
		"quote":   "q1",
		"request": "lnbc1...",
		"state":   "PAID",
		"expiry":  1234,
	})
	c := New(srv.URL, srv.Client())

	quote, err := c.CheckMintQuote(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, MintQuotePaid, quote.State)
}

func TestClient_CreateMeltQuote(t *testing.T) {
	srv := newTestServer(t, "/v1/melt/quote/bolt11", http.StatusOK, map[string]interface{}{
		"quote":       "mq1",
		"amount":      500,
		"fee_reserve": 10,
		"state":       "UNPAID",
		"expiry":      1234,
	})
	c := New(srv.URL, srv.Client())

	quote, err := c.CreateMeltQuote(context.Background(), "lnbc1...", "sat")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), quote.Amount)
	assert.Equal(t, uint64(10), quote.FeeReserve)
}

func TestClient_CheckMeltQuote_Paid(t *testing.T) {
	srv := newTestServer(t, "/v1/melt/quote/bolt11/mq1", http.StatusOK, map[string]interface{}{
		"quote":            "mq1",
		"amount":           500,
		"fee_reserve":      10,
		"state":            "PAID",
		"payment_preimage": "pi",
	})
	c := New(srv.URL, srv.Client())

	quote, err := c.CheckMeltQuote(context.Background(), "mq1")
	require.NoError(t, err)
	assert.Equal(t, MeltQuotePaid, quote.State)
	assert.Equal(t, "pi", quote.PaymentPreimage)
}

func TestClient_CheckProofStates(t *testing.T) {
	srv := newTestServer(t, "/v1/checkstate", http.StatusOK, map[string]interface{}{
		"states": []map[string]string{
			{"secret": "s1", "state": "SPENT"},
			{"secret": "s2", "state": "UNSPENT"},
		},
	})
	c := New(srv.URL, srv.Client())

	states, err := c.CheckProofStates(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, ProofSpent, states["s1"])
	assert.Equal(t, ProofUnspent, states["s2"])
}

func TestClient_OperationError_ParsesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": ErrCodeProofsAlreadySpent, "detail": "proofs already spent"})
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, srv.Client())

	_, err := c.CheckMeltQuote(context.Background(), "mq1")
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrCodeProofsAlreadySpent, opErr.Code)
}

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	proofs := []Proof{
		{ID: "00ad268c4d1f5826", Amount: 4, Secret: "deadbeef", C: "02" + "aa00000000000000000000000000000000000000000000000000000000000"},
	}

	encoded, err := EncodeToken(proofs, "https://mint.example.com", "sat")
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeToken(encoded)
	require.NoError(t, err)
	assert.Equal(t, "https://mint.example.com", decoded.MintURL)
	require.Len(t, decoded.Proofs, 1)
	assert.Equal(t, proofs[0].Secret, decoded.Proofs[0].Secret)
}
