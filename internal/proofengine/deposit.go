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

// DepositQuote is a mint-quote view: the Lightning invoice the caller pays
// to fund the wallet, and its current state.
type DepositQuote struct {
	Quote   string
	Request string
	State   string
	Expiry  int64
	Amount  int64
}

// CreateDepositQuote is a thin pass-through to the mint's bolt11 mint
// quote, after checking the deposit would not push the wallet over its
// effective balance ceiling.
func (e *Engine) CreateDepositQuote(ctx context.Context, walletID int64, amount int64) (*DepositQuote, error) {
	var result *DepositQuote
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		if err := e.checkBalanceCeiling(ctx, w, amount); err != nil {
			return err
		}

		quote, err := e.mintClient(w).CreateMintQuote(ctx, uint64(amount), w.Unit)
		if err != nil {
			return fmt.Errorf("proofengine: create deposit quote: %w", err)
		}
		result = &DepositQuote{Quote: quote.Quote, Request: quote.Request, State: string(quote.State), Expiry: quote.Expiry, Amount: amount}
		return nil
	})
	return result, err
}

// CheckDepositQuote queries the mint for a quote's state. If the mint
// reports PAID, the engine opportunistically mints and inserts proofs as
// UNSPENT; a failure in that step is logged but does not change the
// response, since retrying is safe (the mint refuses to mint twice against
// the same quote). The amount to mint comes from the mint's own echoed
// quote.Amount, not from the caller — the check endpoint takes no body.
func (e *Engine) CheckDepositQuote(ctx context.Context, walletID int64, quoteID string) (*DepositQuote, error) {
	var result *DepositQuote
	err := e.withWallet(ctx, walletID, func(w *store.Wallet) error {
		client := e.mintClient(w)
		quote, err := client.CheckMintQuote(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("proofengine: check deposit quote: %w", err)
		}
		result = &DepositQuote{Quote: quote.Quote, Request: quote.Request, State: string(quote.State), Expiry: quote.Expiry, Amount: int64(quote.Amount)}

		if quote.State == mintclient.MintQuotePaid {
			e.mintOpportunistically(ctx, w, client, quoteID, int64(quote.Amount))
		}
		return nil
	})
	return result, err
}

func (e *Engine) mintOpportunistically(ctx context.Context, w *store.Wallet, client MintClient, quoteID string, amount int64) {
	wireProofs, err := client.MintProofs(ctx, uint64(amount), quoteID)
	if err != nil {
		logger.Warn("opportunistic mint failed, caller may retry",
			zap.Int64("wallet_id", w.ID), zap.String("quote", quoteID), zap.Error(err))
		return
	}

	proofs := fromWireProofs(wireProofs)
	if err := e.store.InsertProofs(ctx, w.ID, proofs, store.Unspent); err != nil {
		logger.Warn("failed to persist opportunistically minted proofs",
			zap.Int64("wallet_id", w.ID), zap.String("quote", quoteID), zap.Error(err))
	}
}

// checkBalanceCeiling rejects an incoming amount (deposit or receive) that
// would push the wallet's UNSPENT+PENDING total over its effective
// MAX_BALANCE. This is the single source of truth for the balance cap —
// both createDepositQuote and receiveToken call it, rather than each
// re-deriving its own notion of "current balance".
func (e *Engine) checkBalanceCeiling(ctx context.Context, w *store.Wallet, incoming int64) error {
	unspent, pending, err := e.Balance(ctx, w.ID)
	if err != nil {
		return err
	}

	ceiling := effective(w.MaxBalance, e.limits.MaxBalance)
	if unspent+pending+incoming > ceiling {
		return apperror.Limit(fmt.Sprintf("deposit would exceed balance limit of %d", ceiling)).
			WithParams(map[string]any{"limit": ceiling, "current": unspent + pending, "incoming": incoming})
	}
	return nil
}
