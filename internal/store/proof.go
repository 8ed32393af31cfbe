package store

import (
	"context"
	"errors"
	"fmt"
)

// AggregateAmount sums proof amounts for a wallet at a given status.
// Null-summed rows (no matching proofs) come back as 0, not an error.
func (s *Store) AggregateAmount(ctx context.Context, walletID int64, status ProofStatus) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM proofs WHERE wallet_id = $1 AND status = $2`

	var total int64
	if err := s.pool.QueryRow(ctx, query, walletID, status).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to aggregate amount for wallet %d status %s: %w", walletID, status, err)
	}
	return total, nil
}

// ListProofs returns a wallet's proofs. A nil status defaults to UNSPENT.
func (s *Store) ListProofs(ctx context.Context, walletID int64, status *ProofStatus) ([]*Proof, error) {
	filter := Unspent
	if status != nil {
		filter = *status
	}

	query := `SELECT
		id, wallet_id, proof_id, amount, secret, c, dleq, witness, status, created_at
	FROM proofs WHERE wallet_id = $1 AND status = $2 ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, walletID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list proofs for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	var proofs []*Proof
	for rows.Next() {
		var p Proof
		if err := rows.Scan(&p.ID, &p.WalletID, &p.ProofID, &p.Amount, &p.Secret, &p.C, &p.DLEQ, &p.Witness, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan proof row: %w", err)
		}
		proofs = append(proofs, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during proof row iteration: %w", err)
	}

	return proofs, nil
}

// InsertProofs inserts a batch of proofs for a wallet at the given status,
// in a single transaction so the insert is atomic with respect to
// concurrent readers of the wallet's aggregates.
func (s *Store) InsertProofs(ctx context.Context, walletID int64, proofs []*Proof, status ProofStatus) error {
	if len(proofs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO proofs (
		wallet_id, proof_id, amount, secret, c, dleq, witness, status, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`

	for _, p := range proofs {
		if _, err := tx.Exec(ctx, query, walletID, p.ProofID, p.Amount, p.Secret, p.C, p.DLEQ, p.Witness, status); err != nil {
			return fmt.Errorf("failed to insert proof with secret %s: %w", p.Secret, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit proof insert: %w", err)
	}
	return nil
}

// ApplySwapTransition persists the four-way classification that follows a
// mint swap (spec: send/melt reservation) as a single transaction, so a
// concurrent reader of the wallet's balance never observes spent inputs and
// their replacements counted at once:
//   - spent: secrets consumed by the swap, set to SPENT.
//   - newUnspent: genuinely new proofs returned by the mint, inserted UNSPENT.
//   - newPending: genuinely new proofs reserved for send/melt, inserted PENDING.
//   - flipToPending: secrets the mint returned unchanged as the reserved
//     piece; their existing rows transition in place to PENDING.
func (s *Store) ApplySwapTransition(ctx context.Context, walletID int64, spent []string, newUnspent, newPending []*Proof, flipToPending []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(spent) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE proofs SET status = $3 WHERE wallet_id = $1 AND secret = ANY($2)`,
			walletID, spent, Spent); err != nil {
			return fmt.Errorf("failed to mark swapped proofs spent: %w", err)
		}
	}

	insert := `INSERT INTO proofs (
		wallet_id, proof_id, amount, secret, c, dleq, witness, status, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`

	for _, p := range newUnspent {
		if _, err := tx.Exec(ctx, insert, walletID, p.ProofID, p.Amount, p.Secret, p.C, p.DLEQ, p.Witness, Unspent); err != nil {
			return fmt.Errorf("failed to insert new unspent proof with secret %s: %w", p.Secret, err)
		}
	}
	for _, p := range newPending {
		if _, err := tx.Exec(ctx, insert, walletID, p.ProofID, p.Amount, p.Secret, p.C, p.DLEQ, p.Witness, Pending); err != nil {
			return fmt.Errorf("failed to insert new pending proof with secret %s: %w", p.Secret, err)
		}
	}

	if len(flipToPending) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE proofs SET status = $3 WHERE wallet_id = $1 AND secret = ANY($2)`,
			walletID, flipToPending, Pending); err != nil {
			return fmt.Errorf("failed to flip reserved proofs to pending: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit swap transition: %w", err)
	}
	return nil
}

// ErrNoProofsMatched indicates an UpdateStatus call touched zero rows —
// the caller asked to transition secrets that do not belong to the wallet
// or no longer exist.
var ErrNoProofsMatched = errors.New("no proofs matched for status update")

// UpdateStatus transitions a set of secrets to a new status in one
// statement, constrained by walletId so a caller can never reach across
// wallet boundaries.
func (s *Store) UpdateStatus(ctx context.Context, walletID int64, secrets []string, status ProofStatus) error {
	if len(secrets) == 0 {
		return nil
	}

	query := `UPDATE proofs SET status = $3 WHERE wallet_id = $1 AND secret = ANY($2)`

	commandTag, err := s.pool.Exec(ctx, query, walletID, secrets, status)
	if err != nil {
		return fmt.Errorf("failed to update proof status for wallet %d: %w", walletID, err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNoProofsMatched
	}
	return nil
}

// DeleteProofsByWallet removes every proof row for a wallet. Used only on
// new-wallet rollback (ahead of DeleteWallet, to satisfy the RESTRICT FK).
func (s *Store) DeleteProofsByWallet(ctx context.Context, walletID int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM proofs WHERE wallet_id = $1`, walletID); err != nil {
		return fmt.Errorf("failed to delete proofs for wallet %d: %w", walletID, err)
	}
	return nil
}
