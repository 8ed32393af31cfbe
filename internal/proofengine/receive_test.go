//go:build integration

package proofengine

import (
	"context"
	"testing"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"github.com/stretchr/testify/require"
)

func TestReceiveToken_InsertsFreshProofsUnspent(t *testing.T) {
	s := store.SetupTestStore(t)
	defer store.CleanupTestStore(t, s)
	ctx := context.Background()

	w := newWallet(t, s, "receive-happy")

	encoded, err := mintclient.EncodeToken([]mintclient.Proof{
		{ID: "k", Amount: 25, Secret: "incoming-1", C: "c"},
	}, w.MintURL, w.Unit)
	require.NoError(t, err)

	withFakeMint(t, &fakeMintClient{
		receiveFn: func(ctx context.Context, token mintclient.Token) ([]mintclient.Proof, error) {
			require.Equal(t, uint64(25), token.Proofs[0].Amount)
			return []mintclient.Proof{{ID: "k", Amount: 25, Secret: "fresh-1", C: "c"}}, nil
		},
	})

	e := New(s, DefaultLimits)
	proofs, err := e.ReceiveToken(ctx, w.ID, encoded)
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	require.Equal(t, "fresh-1", proofs[0].Secret)

	unspent, err := s.AggregateAmount(ctx, w.ID, store.Unspent)
	require.NoError(t, err)
	require.Equal(t, int64(25), unspent)
}

func TestReceiveToken_RejectsOverBalanceCeiling(t *testing.T) {
	s := store.SetupTestStore(t)
	defer store.CleanupTestStore(t, s)
	ctx := context.Background()

	w := newWallet(t, s, "receive-over-cap")
	require.NoError(t, s.InsertProofs(ctx, w.ID, []*store.Proof{{ProofID: "k", Amount: 900, Secret: "existing", C: "c"}}, store.Unspent))

	encoded, err := mintclient.EncodeToken([]mintclient.Proof{{ID: "k", Amount: 200, Secret: "incoming-1", C: "c"}}, w.MintURL, w.Unit)
	require.NoError(t, err)

	e := New(s, Limits{MaxBalance: 1_000, MaxSend: 1_000, MaxPay: 1_000})
	_, err = e.ReceiveToken(ctx, w.ID, encoded)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperror.KindLimit, appErr.Kind)
}
