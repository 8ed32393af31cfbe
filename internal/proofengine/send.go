package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

// SendBundle is the result of reserving proofs for export as a token: keep
// stays with the wallet, send is what the caller encodes and hands out.
type SendBundle struct {
	Keep []*store.Proof
	Send []*store.Proof
}

// SendProofs produces a send bundle totalling amount. If p2pkPubkey is
// non-empty the send bundle is locked to that pubkey (NUT-11) and only
// redeemable by its holder.
func (e *Engine) SendProofs(ctx context.Context, walletID int64, amount int64, p2pkPubkey string) (*SendBundle, error) {
	var result *SendBundle
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		limit := effective(w.MaxSend, e.limits.MaxSend)
		if amount > limit {
			return apperror.Limit(fmt.Sprintf("send amount exceeds limit of %d", limit)).
				WithParams(map[string]any{"limit": limit, "amount": amount})
		}

		inputs, err := e.store.ListProofs(ctx, w.ID, statusPtr(store.Unspent))
		if err != nil {
			return fmt.Errorf("proofengine: send: load inputs: %w", err)
		}
		if sumAmounts(inputs) < amount {
			return apperror.Validation("insufficient balance")
		}
		inSecrets := newSecretSet(inputs)

		var lock *mintclient.P2PKLock
		if p2pkPubkey != "" {
			lock = &mintclient.P2PKLock{Pubkey: p2pkPubkey}
		}

		swapResult, err := e.mintClient(w).Swap(ctx, toWireProofs(inputs), uint64(amount), lock)
		if err != nil {
			return fmt.Errorf("proofengine: send: swap: %w", err)
		}

		keep := fromWireProofs(swapResult.Keep)
		send := fromWireProofs(swapResult.Send)

		returned := newSecretSet(append(append([]*store.Proof{}, keep...), send...))
		var swapped []string
		for _, p := range inputs {
			if !returned.has(p.Secret) {
				swapped = append(swapped, p.Secret)
			}
		}

		var newUnspent, newPending []*store.Proof
		var flipToPending []string
		for _, p := range keep {
			if !inSecrets.has(p.Secret) {
				newUnspent = append(newUnspent, p)
			}
		}
		for _, p := range send {
			if inSecrets.has(p.Secret) {
				flipToPending = append(flipToPending, p.Secret)
			} else {
				newPending = append(newPending, p)
			}
		}

		if err := e.store.ApplySwapTransition(ctx, w.ID, swapped, newUnspent, newPending, flipToPending); err != nil {
			return fmt.Errorf("proofengine: send: persist transition: %w", err)
		}

		result = &SendBundle{Keep: keep, Send: send}
		return nil
	})
	return result, err
}

func statusPtr(s store.ProofStatus) *store.ProofStatus {
	return &s
}
