package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogapp "github.com/prasetyadew/kasirpos/internal/catalog/app"
	cataloggorm "github.com/prasetyadew/kasirpos/internal/catalog/infra/gormstore"
	checkoutapp "github.com/prasetyadew/kasirpos/internal/checkout/app"
	orderapp "github.com/prasetyadew/kasirpos/internal/order/app"
	ordergorm "github.com/prasetyadew/kasirpos/internal/order/infra/gormstore"
	"github.com/prasetyadew/kasirpos/internal/server"
	"github.com/prasetyadew/kasirpos/pkg/config"
	"github.com/prasetyadew/kasirpos/pkg/logger"
	"github.com/prasetyadew/kasirpos/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "pos",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Error("db connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&cataloggorm.CategoryRow{},
		&cataloggorm.ProductRow{},
		&ordergorm.OrderRow{},
		&ordergorm.OrderLineRow{},
	); err != nil {
		log.Error("db migrate failed", slog.Any("err", err))
		os.Exit(1)
	}

	verifier := mustVerifier(ctx, cfg, log)

	catalogSvc := catalogapp.NewService(cataloggorm.NewCatalogRepo(db))
	orderRepo := ordergorm.NewOrderRepo(db)
	checkoutSvc := checkoutapp.NewService(orderRepo)
	historySvc := orderapp.NewService(orderRepo)

	srv := server.New(log, catalogSvc, checkoutSvc, historySvc, verifier)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

// mustVerifier builds the OIDC token verifier when an issuer is
// configured; without one the server runs open, for local use only.
func mustVerifier(ctx context.Context, cfg config.Config, log *slog.Logger) *oidc.IDTokenVerifier {
	if cfg.OIDCIssuer == "" {
		log.Warn("OIDC_ISSUER not set, running without token verification")
		return nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		log.Error("oidc provider init failed", slog.Any("err", err))
		os.Exit(1)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
}
