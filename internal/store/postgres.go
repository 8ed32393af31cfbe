package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Config holds connection-pool settings for the wallet/proof store.
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DB              string
	SslMode         string
	MaxConns        int
	MinConns        int
	MaxConnLifetime int
	MaxConnIdleTime int
}

// Store is the sole persistence boundary for the ProofEngine: wallets and
// proofs, plus the aggregate and multi-row status transitions the engine
// relies on for atomicity.
type Store struct {
	pool          *pgxpool.Pool
	migrationPath string
}

// New opens a connection pool and verifies connectivity.
func New(cfg Config) (*Store, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DB, cfg.SslMode)
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		logger.Error("failed to parse connection config", zap.Error(err))
		return nil, err
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute
	poolCfg.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("failed to create db connection pool", zap.Error(err))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("database ping failed", zap.Error(err))
		return nil, err
	}

	logger.Info("store connection pool created successfully")

	return &Store{
		pool:          pool,
		migrationPath: "file://migrations",
	}, nil
}

// Ping checks whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RunMigrations applies pending schema migrations via golang-migrate.
func (s *Store) RunMigrations() error {
	connStr := s.pool.Config().ConnString()
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Error("failed to open sql.DB for migrations", zap.Error(err))
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		logger.Error("failed to create postgres driver", zap.Error(err))
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(s.migrationPath, "postgres", driver)
	if err != nil {
		logger.Error("failed to create migrate instance", zap.Error(err))
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	logger.Info("running store migrations...")
	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("no new migrations to apply")
			return nil
		}
		logger.Error("migration failed", zap.Error(err))
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		logger.Error("failed to get migration version", zap.Error(err))
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		logger.Error("database is in dirty state", zap.Uint("version", version))
		return fmt.Errorf("database is in dirty state at version %d", version)
	}

	logger.Info("migrations completed successfully", zap.Uint("version", version))
	return nil
}

// Close gracefully shuts down the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		logger.Info("closing store connection pool")
		s.pool.Close()
	}
}
