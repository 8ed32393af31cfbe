// Package bolt11 decodes Lightning BOLT11 payment requests locally, without
// dialing an LN node. Payment execution is mediated entirely by the mint
// (see internal/mintclient); this package only answers "what does this
// invoice say" for the /wallet/decode facade and for melt-quote validation.
package bolt11

import (
	"fmt"
	"time"

	"github.com/danielducuara/cashu-walletd/internal/apperror"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

// Invoice is the decoded subset of a BOLT11 payment request the wallet
// cares about.
type Invoice struct {
	PaymentHash string
	Destination string
	AmountSats  int64
	Description string
	Timestamp   time.Time
	Expiry      time.Duration
	IsExpired   bool
}

// Decode parses a BOLT11 string without contacting any Lightning node.
func Decode(payReq string) (*Invoice, error) {
	decoded, err := zpay32.Decode(payReq, &chaincfg.MainNetParams)
	if err != nil {
		return nil, apperror.Validation("invalid bolt11 invoice").Wrap(err)
	}

	var amountSats int64
	if decoded.MilliSat != nil {
		amountSats = int64(decoded.MilliSat.ToSatoshis())
	}

	var description string
	if decoded.Description != nil {
		description = *decoded.Description
	}

	var paymentHash string
	if decoded.PaymentHash != nil {
		paymentHash = fmt.Sprintf("%x", *decoded.PaymentHash)
	}

	expiry := decoded.Expiry()
	expiresAt := decoded.Timestamp.Add(expiry)

	return &Invoice{
		PaymentHash: paymentHash,
		Destination: fmt.Sprintf("%x", decoded.Destination.SerializeCompressed()),
		AmountSats:  amountSats,
		Description: description,
		Timestamp:   decoded.Timestamp,
		Expiry:      expiry,
		IsExpired:   time.Now().After(expiresAt),
	}, nil
}
