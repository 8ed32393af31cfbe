package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/danielducuara/cashu-walletd/config"
	"github.com/danielducuara/cashu-walletd/internal/exchange"
	"github.com/danielducuara/cashu-walletd/internal/httpapi"
	"github.com/danielducuara/cashu-walletd/internal/proofengine"
	"github.com/danielducuara/cashu-walletd/internal/ratecache"
	"github.com/danielducuara/cashu-walletd/internal/store"
	"github.com/danielducuara/cashu-walletd/pkg/cache"
	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

var Cfg config.ApiConfig

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(logger.GetEnv()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Dir(filename)
	configPath := config.Path(root).Join("..", "..", "config.toml")

	if err := config.Load(configPath, &Cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var redisCfg cache.Config
	if err := copier.Copy(&redisCfg, &Cfg.Redis); err != nil {
		return fmt.Errorf("failed to copy cache config: %w", err)
	}
	if err := cache.Init(redisCfg); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cache.Close()

	var storeCfg store.Config
	if err := copier.Copy(&storeCfg, &Cfg.Database); err != nil {
		return fmt.Errorf("failed to copy database config: %w", err)
	}
	db, err := store.New(storeCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	priceProvider, err := exchange.NewProvider(Cfg.Exchange.Provider, "", nil)
	if err != nil {
		return fmt.Errorf("failed to construct price provider: %w", err)
	}
	rates := ratecache.New(priceProvider)

	limits := proofengine.Limits{MaxBalance: Cfg.Limits.MaxBalance, MaxSend: Cfg.Limits.MaxSend, MaxPay: Cfg.Limits.MaxPay}
	engine := proofengine.New(db, limits)

	srv := httpapi.NewServer(httpapi.Config{
		MintURL:          Cfg.Mint.URL,
		Unit:             Cfg.Mint.Unit,
		Status:           Cfg.Service.Status,
		Help:             Cfg.Service.Help,
		Terms:            Cfg.Service.Terms,
		Limits:           limits,
		RateLimitMax:     Cfg.RateLimit.Max,
		CreateWalletMax:  Cfg.RateLimit.CreateWalletMax,
		RateLimitWindowS: Cfg.RateLimit.WindowSeconds,
	}, db, engine, rates)

	httpServer := &http.Server{
		Addr:         ":" + Cfg.Service.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", Cfg.Service.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
