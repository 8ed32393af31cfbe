//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndFindWallet(t *testing.T) {
	s := SetupTestStore(t)
	defer CleanupTestStore(t, s)
	ctx := context.Background()

	w := &Wallet{
		AccessKey: "abc123",
		MintURL:   "https://mint.example.com",
		Unit:      "sat",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateWallet(ctx, w))
	require.NotZero(t, w.ID)

	found, err := s.FindWalletByAccessKey(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, w.ID, found.ID)
	require.Equal(t, "sat", found.Unit)
}

func TestStore_FindWalletByAccessKey_NotFound(t *testing.T) {
	s := SetupTestStore(t)
	defer CleanupTestStore(t, s)

	_, err := s.FindWalletByAccessKey(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestStore_CreateWallet_DuplicateAccessKey(t *testing.T) {
	s := SetupTestStore(t)
	defer CleanupTestStore(t, s)
	ctx := context.Background()

	w1 := &Wallet{AccessKey: "dup-key", MintURL: "https://mint.example.com", Unit: "sat", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateWallet(ctx, w1))

	w2 := &Wallet{AccessKey: "dup-key", MintURL: "https://mint.example.com", Unit: "sat", CreatedAt: time.Now().UTC()}
	err := s.CreateWallet(ctx, w2)
	require.ErrorIs(t, err, ErrAccessKeyExists)
}

func TestStore_DeleteWallet(t *testing.T) {
	s := SetupTestStore(t)
	defer CleanupTestStore(t, s)
	ctx := context.Background()

	w := &Wallet{AccessKey: "to-delete", MintURL: "https://mint.example.com", Unit: "sat", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateWallet(ctx, w))

	require.NoError(t, s.DeleteWallet(ctx, w.ID))

	_, err := s.GetWalletByID(ctx, w.ID)
	require.ErrorIs(t, err, ErrWalletNotFound)
}
