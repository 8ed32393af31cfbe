//go:build integration

package proofengine

import (
	"context"
	"testing"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"github.com/stretchr/testify/require"
)

func TestReconcileWithMint_RealignsEachOutcome(t *testing.T) {
	s := store.SetupTestStore(t)
	defer store.CleanupTestStore(t, s)
	ctx := context.Background()

	w := newWallet(t, s, "reconcile-mixed")
	require.NoError(t, s.InsertProofs(ctx, w.ID, []*store.Proof{
		{ProofID: "k", Amount: 10, Secret: "settles-spent", C: "c"},
		{ProofID: "k", Amount: 20, Secret: "reverts-unspent", C: "c"},
		{ProofID: "k", Amount: 30, Secret: "stays-pending", C: "c"},
	}, store.Pending))

	withFakeMint(t, &fakeMintClient{
		checkProofStatesFn: func(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error) {
			return map[string]mintclient.ProofState{
				"settles-spent":   mintclient.ProofSpent,
				"reverts-unspent": mintclient.ProofUnspent,
				"stays-pending":   mintclient.ProofPending,
			}, nil
		},
	})

	e := New(s, DefaultLimits)
	counts, err := e.ReconcileWithMint(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, 1, counts.Spent)
	require.Equal(t, 1, counts.Unspent)
	require.Equal(t, 1, counts.Pending)

	spent, err := s.AggregateAmount(ctx, w.ID, store.Spent)
	require.NoError(t, err)
	require.Equal(t, int64(10), spent)

	unspent, err := s.AggregateAmount(ctx, w.ID, store.Unspent)
	require.NoError(t, err)
	require.Equal(t, int64(20), unspent)

	pending, err := s.AggregateAmount(ctx, w.ID, store.Pending)
	require.NoError(t, err)
	require.Equal(t, int64(30), pending)
}

func TestReconcileWithMint_NoPendingProofsIsNoOp(t *testing.T) {
	s := store.SetupTestStore(t)
	defer store.CleanupTestStore(t, s)
	ctx := context.Background()

	w := newWallet(t, s, "reconcile-empty")
	e := New(s, DefaultLimits)
	counts, err := e.ReconcileWithMint(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, &ReconcileCounts{}, counts)
}
