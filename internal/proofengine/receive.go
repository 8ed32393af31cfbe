package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

// ReceiveToken redeems an encoded token at its issuing mint, swapping its
// proofs for fresh ones under this wallet's control and inserting them
// UNSPENT. The incoming amount is still bound by the wallet's balance
// ceiling, same as a deposit.
func (e *Engine) ReceiveToken(ctx context.Context, walletID int64, encodedToken string) ([]*store.Proof, error) {
	token, err := mintclient.DecodeToken(encodedToken)
	if err != nil {
		return nil, fmt.Errorf("proofengine: receive: decode token: %w", err)
	}

	var result []*store.Proof
	err = e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		amount := sumWireAmounts(token.Proofs)
		if err := e.checkBalanceCeiling(ctx, w, amount); err != nil {
			return err
		}

		client := e.mintClient(w)
		fresh, err := client.Receive(ctx, *token)
		if err != nil {
			return fmt.Errorf("proofengine: receive: %w", err)
		}

		proofs := fromWireProofs(fresh)
		if err := e.store.InsertProofs(ctx, w.ID, proofs, store.Unspent); err != nil {
			return fmt.Errorf("proofengine: receive: persist: %w", err)
		}
		result = proofs
		return nil
	})
	return result, err
}

func sumWireAmounts(proofs []mintclient.Proof) int64 {
	var total int64
	for _, p := range proofs {
		total += int64(p.Amount)
	}
	return total
}
