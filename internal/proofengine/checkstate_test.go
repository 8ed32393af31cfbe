//go:build integration

package proofengine

import (
	"context"
	"testing"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"

	"github.com/stretchr/testify/require"
)

func encodeTestToken(t *testing.T, proofs []mintclient.Proof) string {
	t.Helper()
	encoded, err := mintclient.EncodeToken(proofs, "https://mint.example.com", "sat")
	require.NoError(t, err)
	return encoded
}

func TestCheckTokenState_AllUnspent(t *testing.T) {
	token := encodeTestToken(t, splitProofs("u", 10, 20))
	withFakeMint(t, &fakeMintClient{
		checkProofStatesFn: func(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error) {
			states := make(map[string]mintclient.ProofState, len(secrets))
			for _, s := range secrets {
				states[s] = mintclient.ProofUnspent
			}
			return states, nil
		},
	})

	states, decoded, err := (&Engine{}).CheckTokenState(context.Background(), token)
	require.NoError(t, err)
	secrets := make([]string, len(decoded.Proofs))
	for i, p := range decoded.Proofs {
		secrets[i] = p.Secret
	}
	require.Equal(t, TokenUnspent, ReduceStates(secrets, states))
}

func TestCheckTokenState_Mixed(t *testing.T) {
	proofs := splitProofs("m", 10, 20)
	token := encodeTestToken(t, proofs)
	withFakeMint(t, &fakeMintClient{
		checkProofStatesFn: func(ctx context.Context, secrets []string) (map[string]mintclient.ProofState, error) {
			return map[string]mintclient.ProofState{
				proofs[0].Secret: mintclient.ProofSpent,
				proofs[1].Secret: mintclient.ProofUnspent,
			}, nil
		},
	})

	states, decoded, err := (&Engine{}).CheckTokenState(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, decoded.Proofs, 2)
	secrets := []string{proofs[0].Secret, proofs[1].Secret}
	require.Equal(t, TokenMixed, ReduceStates(secrets, states))
}
