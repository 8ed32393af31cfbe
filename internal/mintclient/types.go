// Package mintclient wraps the Cashu-over-HTTP protocol spoken to a mint:
// mint quotes, swaps, melt quotes, and proof-state checks. It is the only
// package in this module that dials a mint directly; everything above it
// (proofengine) treats it as an opaque collaborator.
package mintclient

import "fmt"

// MintQuoteState mirrors NUT-04's mint quote lifecycle.
type MintQuoteState string

const (
	MintQuoteUnpaid MintQuoteState = "UNPAID"
	MintQuotePaid   MintQuoteState = "PAID"
	MintQuoteIssued MintQuoteState = "ISSUED"
)

// MeltQuoteState mirrors NUT-05's melt quote lifecycle.
type MeltQuoteState string

const (
	MeltQuoteUnpaid  MeltQuoteState = "UNPAID"
	MeltQuotePending MeltQuoteState = "PENDING"
	MeltQuotePaid    MeltQuoteState = "PAID"
)

// ProofState mirrors NUT-07's per-proof state at the mint.
type ProofState string

const (
	ProofUnspent ProofState = "UNSPENT"
	ProofPending ProofState = "PENDING"
	ProofSpent   ProofState = "SPENT"
)

// Proof is the wire shape of one ecash note, shared by swap inputs, swap
// outputs, and melt change.
type Proof struct {
	ID      string `json:"id"`
	Amount  uint64 `json:"amount"`
	Secret  string `json:"secret"`
	C       string `json:"C"`
	Witness string `json:"witness,omitempty"`
}

// MintQuote is the mint's response to a request to mint new proofs against
// a Lightning payment.
type MintQuote struct {
	Quote   string
	Request string
	State   MintQuoteState
	Expiry  int64
	Amount  uint64
}

// MeltQuote is the mint's quoted cost (amount + fee reserve) to pay a
// Lightning invoice on the wallet's behalf.
type MeltQuote struct {
	Quote           string
	Amount          uint64
	FeeReserve      uint64
	State           MeltQuoteState
	Expiry          int64
	PaymentPreimage string
}

// SwapResult is the mint's response to a swap: a fresh set of proofs split
// between what the caller keeps and what it intends to hand off.
type SwapResult struct {
	Keep []Proof
	Send []Proof
}

// MeltResult is the mint's response to a completed (or failed) payment
// attempt.
type MeltResult struct {
	Quote  MeltQuote
	Change []Proof
}

// P2PKLock requests that the "send" half of a swap's outputs be locked to
// a single public key (NUT-11), redeemable only by whoever holds the
// matching private key.
type P2PKLock struct {
	Pubkey string
}

// Token is a decoded Cashu token: a mint URL, a unit, and the proofs it
// carries.
type Token struct {
	MintURL string
	Unit    string
	Proofs  []Proof
}

// OperationError is a structured mint error response, distinguished by its
// numeric code so callers can branch on known conditions (11001 "proofs
// already spent", 11002 "proofs pending") without string matching.
type OperationError struct {
	Code       int
	Detail     string
	HTTPStatus int
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("mint error %d: %s", e.Code, e.Detail)
}

const (
	ErrCodeProofsAlreadySpent = 11001
	ErrCodeProofsPending      = 11002
)
