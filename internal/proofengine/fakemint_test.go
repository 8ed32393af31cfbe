//go:build integration

package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
)

// fakeMintClient is a scriptable stand-in for a real mint, letting tests
// drive the engine's classification and branch-table logic without a live
// Cashu-over-HTTP server. Each method can be overridden per test; the zero
// value panics if called, so an unconfigured path fails loudly.
type fakeMintClient struct {
	createMintQuoteFn  func(ctx context.Context, amount uint64, unit string) (*mintclient.MintQuote, error)
	checkMintQuoteFn   func(ctx context.Context, quoteID string) (*mintclient.MintQuote, error)
	mintProofsFn       func(ctx context.Context, amount uint64, quoteID string) ([]mintclient.Proof, error)
	swapFn             func(ctx context.Context, inputs []mintclient.Proof, sendAmount uint64, lock *mintclient.P2PKLock) (*mintclient.SwapResult, error)
	receiveFn          func(ctx context.Context, token mintclient.Token) ([]mintclient.Proof, error)
	createMeltQuoteFn  func(ctx context.Context, bolt11, unit string) (*mintclient.MeltQuote, error)
	checkMeltQuoteFn   func(ctx context.Context, quoteID string) (*mintclient.MeltQuote, error)
	meltProofsFn       func(ctx context.Context, quote *mintclient.MeltQuote, proofsToSend []mintclient.Proof) (*mintclient.MeltResult, error)
	checkProofStatesFn func(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error)
}

func (f *fakeMintClient) CreateMintQuote(ctx context.Context, amount uint64, unit string) (*mintclient.MintQuote, error) {
	return f.createMintQuoteFn(ctx, amount, unit)
}

func (f *fakeMintClient) CheckMintQuote(ctx context.Context, quoteID string) (*mintclient.MintQuote, error) {
	return f.checkMintQuoteFn(ctx, quoteID)
}

func (f *fakeMintClient) MintProofs(ctx context.Context, amount uint64, quoteID string) ([]mintclient.Proof, error) {
	return f.mintProofsFn(ctx, amount, quoteID)
}

func (f *fakeMintClient) Swap(ctx context.Context, inputs []mintclient.Proof, sendAmount uint64, lock *mintclient.P2PKLock) (*mintclient.SwapResult, error) {
	return f.swapFn(ctx, inputs, sendAmount, lock)
}

func (f *fakeMintClient) Receive(ctx context.Context, token mintclient.Token) ([]mintclient.Proof, error) {
	return f.receiveFn(ctx, token)
}

func (f *fakeMintClient) CreateMeltQuote(ctx context.Context, bolt11, unit string) (*mintclient.MeltQuote, error) {
	return f.createMeltQuoteFn(ctx, bolt11, unit)
}

func (f *fakeMintClient) CheckMeltQuote(ctx context.Context, quoteID string) (*mintclient.MeltQuote, error) {
	return f.checkMeltQuoteFn(ctx, quoteID)
}

func (f *fakeMintClient) MeltProofs(ctx context.Context, quote *mintclient.MeltQuote, proofsToSend []mintclient.Proof) (*mintclient.MeltResult, error) {
	return f.meltProofsFn(ctx, quote, proofsToSend)
}

func (f *fakeMintClient) CheckProofStates(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error) {
	return f.checkProofStatesFn(ctx, secrets)
}

// withFakeMint swaps the engine's mint-client resolver for the duration of
// a test, restoring the real one on cleanup.
func withFakeMint(t testingT, client MintClient) {
	t.Helper()
	original := mintClientForURL
	mintClientForURL = func(baseURL string) MintClient { return client }
	t.Cleanup(func() { mintClientForURL = original })
}

// splitProofs returns one fresh mint-issued proof per given amount, with
// secrets "<prefix>-<index>", so tests don't have to fabricate secrets by hand.
func splitProofs(prefix string, amounts ...int64) []mintclient.Proof {
	out := make([]mintclient.Proof, len(amounts))
	for i, a := range amounts {
		out[i] = mintclient.Proof{ID: "keyset-1", Amount: uint64(a), Secret: fmt.Sprintf("%s-%d", prefix, i), C: "c"}
	}
	return out
}

// testingT is the subset of *testing.T withFakeMint needs, so it can be
// called from both top-level tests and table-driven subtests.
type testingT interface {
	Helper()
	Cleanup(func())
}
