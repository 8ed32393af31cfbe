package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
)

// TokenState is the overall label a set of a token's proof states reduces
// to: UNSPENT if every proof is unspent, SPENT if every proof is spent,
// PENDING if every proof is pending, MIXED otherwise.
type TokenState string

const (
	TokenUnspent TokenState = "UNSPENT"
	TokenSpent   TokenState = "SPENT"
	TokenPending TokenState = "PENDING"
	TokenMixed   TokenState = "MIXED"
)

// CheckTokenState decodes an encoded token and queries the mint for each of
// its proofs' individual states, keyed by secret. Reducing that map to one
// overall label is the caller's job (see ReduceStates) — the engine hands
// back the per-proof truth, not just a summary. It does not need a wallet
// context: the token names its own mint.
func (e *Engine) CheckTokenState(ctx context.Context, encodedToken string) (map[string]mintclient.ProofState, *mintclient.Token, error) {
	token, err := mintclient.DecodeToken(encodedToken)
	if err != nil {
		return nil, nil, fmt.Errorf("proofengine: check token state: decode: %w", err)
	}

	secrets := make([]string, len(token.Proofs))
	for i, p := range token.Proofs {
		secrets[i] = p.Secret
	}

	client := mintClientForURL(token.MintURL)
	states, err := client.CheckProofStates(ctx, secrets)
	if err != nil {
		return nil, nil, fmt.Errorf("proofengine: check token state: %w", err)
	}

	return states, token, nil
}

// ReduceStates collapses a token's per-proof states to one overall label:
// UNSPENT if every proof is unspent, SPENT if every proof is spent, PENDING
// if every proof is pending, MIXED otherwise.
func ReduceStates(secrets []string, states map[string]mintclient.ProofState) TokenState {
	var sawUnspent, sawSpent, sawPending bool
	for _, secret := range secrets {
		switch states[secret] {
		case mintclient.ProofUnspent:
			sawUnspent = true
		case mintclient.ProofSpent:
			sawSpent = true
		default:
			sawPending = true
		}
	}

	switch {
	case sawUnspent && !sawSpent && !sawPending:
		return TokenUnspent
	case sawSpent && !sawUnspent && !sawPending:
		return TokenSpent
	case sawPending && !sawUnspent && !sawSpent:
		return TokenPending
	default:
		return TokenMixed
	}
}
