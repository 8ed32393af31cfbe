package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrWalletNotFound is returned when no wallet matches the lookup.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrAccessKeyExists is returned on an access-key collision (effectively
	// never, since the key is a 32-byte random value — retained for parity
	// with the unique-violation handling pattern used across this store).
	ErrAccessKeyExists = errors.New("access key already exists")
)

// CreateWallet inserts a new wallet. Returns an apperror.AlreadyExists
// wrapping ErrAccessKeyExists on an access_key collision, so callers can
// match either with errors.As(&AppError) at the HTTP boundary or
// errors.Is(ErrAccessKeyExists) in store-level tests.
func (s *Store) CreateWallet(ctx context.Context, w *Wallet) error {
	query := `INSERT INTO wallets (
		access_key, name, mint_url, unit, max_balance, max_send, max_pay, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		w.AccessKey,
		w.Name,
		w.MintURL,
		w.Unit,
		w.MaxBalance,
		w.MaxSend,
		w.MaxPay,
		w.CreatedAt,
	).Scan(&w.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.AlreadyExists("access key already exists").Wrap(ErrAccessKeyExists)
		}
		return apperror.Database("failed to create wallet").Wrap(err)
	}

	return nil
}

// FindWalletByAccessKey looks up a wallet by its bearer credential.
// Returns ErrWalletNotFound if no wallet matches.
func (s *Store) FindWalletByAccessKey(ctx context.Context, accessKey string) (*Wallet, error) {
	query := `SELECT
		id, access_key, name, mint_url, unit, max_balance, max_send, max_pay, created_at, updated_at
	FROM wallets WHERE access_key = $1`

	var w Wallet
	err := s.pool.QueryRow(ctx, query, accessKey).Scan(
		&w.ID, &w.AccessKey, &w.Name, &w.MintURL, &w.Unit,
		&w.MaxBalance, &w.MaxSend, &w.MaxPay, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by access key: %w", err)
	}
	return &w, nil
}

// GetWalletByID retrieves a wallet by row id.
func (s *Store) GetWalletByID(ctx context.Context, id int64) (*Wallet, error) {
	query := `SELECT
		id, access_key, name, mint_url, unit, max_balance, max_send, max_pay, created_at, updated_at
	FROM wallets WHERE id = $1`

	var w Wallet
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.AccessKey, &w.Name, &w.MintURL, &w.Unit,
		&w.MaxBalance, &w.MaxSend, &w.MaxPay, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet with id %d: %w", id, err)
	}
	return &w, nil
}

// DeleteWallet removes a wallet row. Used only on new-wallet rollback — the
// proofs FK is RESTRICT, so callers must DeleteProofsByWallet first.
func (s *Store) DeleteWallet(ctx context.Context, id int64) error {
	commandTag, err := s.pool.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wallet %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}
