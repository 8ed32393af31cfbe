//go:build integration

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SetupTestStore connects to the test database (cashu_walletd_test) and
// runs migrations. The database is expected to be provisioned by
// docker-compose, matching the teacher's integration-test convention.
func SetupTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := Config{
		Host:            "localhost",
		Port:            "5432",
		User:            "postgres",
		Password:        "postgres",
		DB:              "cashu_walletd_test",
		SslMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5,
		MaxConnIdleTime: 1,
	}

	s, err := New(cfg)
	require.NoError(t, err, "failed to connect to test store")

	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	projectRoot := filepath.Join(dir, "../..")
	migrationsPath := filepath.Join(projectRoot, "migrations")
	s.migrationPath = "file://" + migrationsPath

	require.NoError(t, s.RunMigrations(), "failed to run migrations on test store")

	return s
}

// CleanupTestStore truncates all tables between tests.
func CleanupTestStore(t *testing.T, s *Store) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables := []string{"proofs", "wallets"}
	for _, table := range tables {
		_, err := s.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}
