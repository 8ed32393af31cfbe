package proofengine

import (
	"context"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"go.uber.org/zap"

	"github.com/danielducuara/cashu-walletd/pkg/logger"
)

// MeltOutcome is the response to a successful or ambiguous-but-settled melt.
type MeltOutcome struct {
	Quote           string
	State           string
	PaymentPreimage string
	Change          []*store.Proof
}

// CreateMeltQuote is a thin pass-through to the mint's melt quote, which
// carries the amount and fee reserve the engine must source from UNSPENT
// proofs before paying. A quote whose amount exceeds the wallet's effective
// pay limit is rejected with a Limit error.
func (e *Engine) CreateMeltQuote(ctx context.Context, walletID int64, bolt11 string) (*mintclient.MeltQuote, error) {
	var quote *mintclient.MeltQuote
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		var err error
		quote, err = e.mintClient(w).CreateMeltQuote(ctx, bolt11, w.Unit)
		if err != nil {
			return fmt.Errorf("proofengine: create melt quote: %w", err)
		}

		limit := effective(w.MaxPay, e.limits.MaxPay)
		if int64(quote.Amount) > limit {
			return apperror.Limit(fmt.Sprintf("pay amount exceeds limit of %d", limit)).
				WithParams(map[string]any{"limit": limit, "amount": quote.Amount})
		}
		return nil
	})
	return quote, err
}

// CheckMeltQuoteStatus is a thin pass-through to the mint's melt-quote
// status, for GET /wallet/pay/:quote — it reports where a payment stands
// without re-running the reservation/payment phases.
func (e *Engine) CheckMeltQuoteStatus(ctx context.Context, walletID int64, quoteID string) (*mintclient.MeltQuote, error) {
	var quote *mintclient.MeltQuote
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		var err error
		quote, err = e.mintClient(w).CheckMeltQuote(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("proofengine: check melt quote: %w", err)
		}
		return nil
	})
	return quote, err
}

// MeltProofs pays a Lightning invoice from the wallet's proofs via the
// mint. Phase A reserves inputs with a swap; phase B asks the mint to pay.
// A failure in phase B leaves the payment outcome unknown, so the engine
// consults the mint's authoritative quote state and branches to decide
// what to do with the reserved proofs.
func (e *Engine) MeltProofs(ctx context.Context, walletID int64, quote *mintclient.MeltQuote) (*MeltOutcome, error) {
	var result *MeltOutcome
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		client := e.mintClient(w)
		needed := int64(quote.Amount + quote.FeeReserve)

		inputs, err := e.store.ListProofs(ctx, w.ID, statusPtr(store.Unspent))
		if err != nil {
			return fmt.Errorf("proofengine: melt: load inputs: %w", err)
		}
		if sumAmounts(inputs) < needed {
			return apperror.Validation("insufficient balance")
		}
		inSecrets := newSecretSet(inputs)

		swapResult, err := client.Swap(ctx, toWireProofs(inputs), uint64(needed), nil)
		if err != nil {
			return fmt.Errorf("proofengine: melt: reserve swap: %w", err)
		}
		keep := fromWireProofs(swapResult.Keep)
		send := fromWireProofs(swapResult.Send)

		if err := e.persistReservation(ctx, w.ID, inputs, inSecrets, keep, send); err != nil {
			return err
		}

		meltResult, payErr := client.MeltProofs(ctx, quote, toWireProofs(send))
		if payErr == nil {
			if err := e.store.UpdateStatus(ctx, w.ID, secretsOf(send), store.Spent); err != nil {
				return fmt.Errorf("proofengine: melt: mark paid spent: %w", err)
			}
			change := fromWireProofs(meltResult.Change)
			if err := e.store.InsertProofs(ctx, w.ID, change, store.Unspent); err != nil {
				return fmt.Errorf("proofengine: melt: persist change: %w", err)
			}
			result = &MeltOutcome{Quote: meltResult.Quote.Quote, State: string(meltResult.Quote.State), PaymentPreimage: meltResult.Quote.PaymentPreimage, Change: change}
			return nil
		}

		logger.Warn("melt payment call failed, resolving via quote re-check",
			zap.Int64("wallet_id", w.ID), zap.String("quote", quote.Quote), zap.Error(payErr))

		outcome, resolveErr := e.resolveAmbiguousMelt(ctx, w, client, quote, send, payErr)
		if resolveErr != nil {
			return resolveErr
		}
		result = outcome
		return nil
	})
	return result, err
}

// persistReservation applies the same four-way classification as send: mark
// swapped inputs SPENT, insert genuinely new keep proofs UNSPENT, insert
// genuinely new send proofs PENDING, and flip any reappearing input straight
// to PENDING.
func (e *Engine) persistReservation(ctx context.Context, walletID int64, inputs []*store.Proof, inSecrets secretSet, keep, send []*store.Proof) error {
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

	if err := e.store.ApplySwapTransition(ctx, walletID, swapped, newUnspent, newPending, flipToPending); err != nil {
		return fmt.Errorf("proofengine: melt: persist reservation: %w", err)
	}
	return nil
}

// resolveAmbiguousMelt implements spec §4.4.7's phase B failure branch
// table. payErr is the error the original MeltProofs call failed with,
// whose mint error code (on an UNPAID quote) decides whether proofs were
// pending or already spent elsewhere.
func (e *Engine) resolveAmbiguousMelt(ctx context.Context, w *store.Wallet, client MintClient, quote *mintclient.MeltQuote, send []*store.Proof, payErr error) (*MeltOutcome, error) {
	checked, err := client.CheckMeltQuote(ctx, quote.Quote)
	if err != nil {
		// Mint unreachable: do not revert. Leave proofs PENDING for a
		// later reconciliation pass.
		return nil, apperror.Connection("could not verify payment outcome, proofs left pending").Wrap(err)
	}

	switch checked.State {
	case mintclient.MeltQuotePaid:
		if err := e.store.UpdateStatus(ctx, w.ID, secretsOf(send), store.Spent); err != nil {
			return nil, fmt.Errorf("proofengine: melt: mark settled spent: %w", err)
		}
		return &MeltOutcome{Quote: quote.Quote, State: string(mintclient.MeltQuotePaid), PaymentPreimage: checked.PaymentPreimage}, nil

	case mintclient.MeltQuotePending:
		return nil, apperror.Timeout("payment still in flight, check again later")

	default: // UNPAID
		code := 0
		if opErr, ok := payErr.(*mintclient.OperationError); ok {
			code = opErr.Code
		}

		switch code {
		case mintclient.ErrCodeProofsPending:
			if _, rerr := e.reconcileLocked(ctx, w); rerr != nil {
				logger.Warn("reconcile after pending melt failed", zap.Int64("wallet_id", w.ID), zap.Error(rerr))
			}
			return nil, apperror.Timeout("proofs pending at mint, check again later")

		case mintclient.ErrCodeProofsAlreadySpent:
			if _, rerr := e.reconcileLocked(ctx, w); rerr != nil {
				logger.Warn("reconcile after spent melt failed", zap.Int64("wallet_id", w.ID), zap.Error(rerr))
			}
			return nil, apperror.Connection("proofs already spent at mint")

		default:
			if err := e.store.UpdateStatus(ctx, w.ID, secretsOf(send), store.Unspent); err != nil {
				logger.Warn("failed to revert reserved proofs to unspent", zap.Int64("wallet_id", w.ID), zap.Error(err))
			}
			return nil, apperror.Connection("payment did not happen")
		}
	}
}
