// Package proofengine implements the Cashu proof-lifecycle state machine:
// deposits, sends, receives, melts, and reconciliation against the mint.
// It is the hard engineering of this service — everything else is plumbing
// around it.
package proofengine

import (
	"context"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"go.uber.org/zap"
)

// MintClient is the subset of mintclient.Client the engine depends on.
// Defined here (not in package mintclient) so tests can substitute a fake
// without dialing HTTP.
type MintClient interface {
	CreateMintQuote(ctx context.Context, amount uint64, unit string) (*mintclient.MintQuote, error)
	CheckMintQuote(ctx context.Context, quoteID string) (*mintclient.MintQuote, error)
	MintProofs(ctx context.Context, amount uint64, quoteID string) ([]mintclient.Proof, error)
	Swap(ctx context.Context, inputs []mintclient.Proof, sendAmount uint64, lock *mintclient.P2PKLock) (*mintclient.SwapResult, error)
	Receive(ctx context.Context, token mintclient.Token) ([]mintclient.Proof, error)
	CreateMeltQuote(ctx context.Context, bolt11, unit string) (*mintclient.MeltQuote, error)
	CheckMeltQuote(ctx context.Context, quoteID string) (*mintclient.MeltQuote, error)
	MeltProofs(ctx context.Context, quote *mintclient.MeltQuote, proofsToSend []mintclient.Proof) (*mintclient.MeltResult, error)
	CheckProofStates(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error)
}

// mintClientForURL is overridden in tests; production code uses the real
// process-wide lazily-initialized client.
var mintClientForURL = func(baseURL string) MintClient { return mintclient.For(baseURL) }

// Engine is the ProofEngine: it owns no storage of its own, delegating to
// Store for persistence and to a MintClient collaborator per wallet's mint.
type Engine struct {
	store  *store.Store
	limits Limits
	locks  walletLocks
}

// New constructs an Engine over store with the given global default limits.
func New(s *store.Store, limits Limits) *Engine {
	return &Engine{store: s, limits: limits}
}

func (e *Engine) mintClient(w *store.Wallet) MintClient {
	return mintClientForURL(w.MintURL)
}

func (e *Engine) logFields(walletID int64) []zap.Field {
	return []zap.Field{zap.Int64("wallet_id", walletID)}
}

// withWallet loads wallet w by id and serializes the rest of fn's
// execution against concurrent engine calls for the same wallet.
func (e *Engine) withWallet(ctx context.Context, walletID int64, fn func(w *store.Wallet) error) error {
	unlock := e.locks.lock(walletID)
	defer unlock()

	w, err := e.store.GetWalletByID(ctx, walletID)
	if err != nil {
		return err
	}
	return fn(w)
}
