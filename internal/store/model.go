package store

import "time"

// ProofStatus is the lifecycle state of a single proof row.
type ProofStatus string

const (
	Unspent ProofStatus = "UNSPENT"
	Pending ProofStatus = "PENDING"
	Spent   ProofStatus = "SPENT"
)

// Wallet is an isolated balance scope, identified by a bearer access key.
type Wallet struct {
	ID         int64      `json:"id" db:"id"`
	AccessKey  string     `json:"access_key" db:"access_key"`
	Name       *string    `json:"name,omitempty" db:"name"`
	MintURL    string     `json:"mint_url" db:"mint_url"`
	Unit       string     `json:"unit" db:"unit"`
	MaxBalance *int64     `json:"max_balance,omitempty" db:"max_balance"`
	MaxSend    *int64     `json:"max_send,omitempty" db:"max_send"`
	MaxPay     *int64     `json:"max_pay,omitempty" db:"max_pay"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Proof is one ecash note owned by a wallet. Secret is its global
// double-spend key and the engine's idempotency anchor — it must never be
// reused across rows.
type Proof struct {
	ID        int64       `json:"id" db:"id"`
	WalletID  int64       `json:"wallet_id" db:"wallet_id"`
	ProofID   string      `json:"proof_id" db:"proof_id"` // mint keyset id, not unique
	Amount    int64       `json:"amount" db:"amount"`
	Secret    string      `json:"secret" db:"secret"`
	C         string      `json:"c" db:"c"`
	DLEQ      *string     `json:"dleq,omitempty" db:"dleq"`
	Witness   *string     `json:"witness,omitempty" db:"witness"`
	Status    ProofStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
