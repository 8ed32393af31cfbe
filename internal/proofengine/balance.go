package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/store"
)

// Balance is the pure read of a wallet's UNSPENT and PENDING sums.
func (e *Engine) Balance(ctx context.Context, walletID int64) (unspent, pending int64, err error) {
	unspent, err = e.store.AggregateAmount(ctx, walletID, store.Unspent)
	if err != nil {
		return 0, 0, fmt.Errorf("proofengine: balance: %w", err)
	}
	pending, err = e.store.AggregateAmount(ctx, walletID, store.Pending)
	if err != nil {
		return 0, 0, fmt.Errorf("proofengine: balance: %w", err)
	}
	return unspent, pending, nil
}
