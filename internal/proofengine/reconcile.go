package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"go.uber.org/zap"

	"github.com/danielducuara/cashu-walletd/pkg/logger"
)

// ReconcileCounts summarizes the outcome of a reconciliation pass.
type ReconcileCounts struct {
	Spent   int
	Pending int
	Unspent int
}

// ReconcileWithMint asks the mint for the authoritative state of every
// PENDING proof owned by the wallet and realigns local status: SPENT at the
// mint becomes local SPENT, UNSPENT at the mint (the reservation never
// settled) becomes local UNSPENT, and PENDING at the mint is left alone for
// a later pass.
func (e *Engine) ReconcileWithMint(ctx context.Context, walletID int64) (*ReconcileCounts, error) {
	var result *ReconcileCounts
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		counts, err := e.reconcileLocked(ctx, w)
		if err != nil {
			return err
		}
		result = counts
		return nil
	})
	return result, err
}

// reconcileLocked does the reconciliation work assuming the caller already
// holds the wallet's lock (withWallet) — used both by the public
// ReconcileWithMint entry point and by meltProofs' failure branches, which
// must not re-acquire a lock they already hold.
func (e *Engine) reconcileLocked(ctx context.Context, w *store.Wallet) (*ReconcileCounts, error) {
	pending, err := e.store.ListProofs(ctx, w.ID, statusPtr(store.Pending))
	if err != nil {
		return nil, fmt.Errorf("proofengine: reconcile: load pending: %w", err)
	}
	if len(pending) == 0 {
		return &ReconcileCounts{}, nil
	}

	states, err := e.mintClient(w).CheckProofStates(ctx, secretsOf(pending))
	if err != nil {
		return nil, fmt.Errorf("proofengine: reconcile: check states: %w", err)
	}

	counts := &ReconcileCounts{}
	var toSpent, toUnspent []string
	for _, p := range pending {
		switch states[p.Secret] {
		case mintclient.ProofSpent:
			toSpent = append(toSpent, p.Secret)
			counts.Spent++
		case mintclient.ProofUnspent:
			toUnspent = append(toUnspent, p.Secret)
			counts.Unspent++
		default:
			counts.Pending++
		}
	}

	if len(toSpent) > 0 {
		if err := e.store.UpdateStatus(ctx, w.ID, toSpent, store.Spent); err != nil {
			return nil, fmt.Errorf("proofengine: reconcile: mark spent: %w", err)
		}
	}
	if len(toUnspent) > 0 {
		if err := e.store.UpdateStatus(ctx, w.ID, toUnspent, store.Unspent); err != nil {
			return nil, fmt.Errorf("proofengine: reconcile: mark unspent: %w", err)
		}
	}

	logger.Info("reconciled pending proofs",
		zap.Int64("wallet_id", w.ID), zap.Int("spent", counts.Spent),
		zap.Int("unspent", counts.Unspent), zap.Int("pending", counts.Pending))

	return counts, nil
}
