// Package main initializes and starts the SolForge HTTP server, setting up
// configuration, logging, the card store, the chain client, the treasury,
// pinning, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/SolForge/internal/config"
	"github.com/atinyakov/SolForge/internal/db"
	"github.com/atinyakov/SolForge/internal/logger"
	"github.com/atinyakov/SolForge/internal/pinning"
	"github.com/atinyakov/SolForge/internal/repository"
	"github.com/atinyakov/SolForge/internal/server/handler/http"
	"github.com/atinyakov/SolForge/internal/service"
	"github.com/atinyakov/SolForge/internal/solana"
	"github.com/atinyakov/SolForge/internal/treasury"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Card store: postgres when a DSN is configured, memory otherwise.
	var cardRepo service.CardRepository
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()

		db.StartDraftCleaner(ctx, postgresDB,
			time.Hour,                       // interval
			options.DraftRetention.Duration, // retention
			zapLogger,
		)
		cardRepo = repository.NewPostgresCardRepository(postgresDB)
	} else {
		zapLogger.Warn("DATABASE_DSN not set, cards are kept in memory")
		cardRepo = repository.NewMemoryCardRepository()
	}

	rpc := solana.NewClient(options.RPCURL, uint64(options.SendRetries), zapLogger)

	vault, err := treasury.New(ctx, treasury.Options{
		SecretKey:  options.TreasurySecretKey,
		PublicKey:  options.TreasuryPublicKey,
		SecretName: options.TreasurySecretName,
		ProjectID:  options.GCPProject,
	})
	if err != nil {
		zapLogger.Fatal("cannot init treasury", zap.Error(err))
	}
	if _, ok := vault.(treasury.Unconfigured); ok {
		zapLogger.Warn("treasury not configured, buy actions will fail")
	}

	var pinner service.Pinner
	pinata, err := pinning.NewClient(pinning.Config{JWT: options.PinataJWT, Gateway: options.PinataGateway})
	switch {
	case errors.Is(err, pinning.ErrMissingJWT):
		zapLogger.Warn("PINATA_JWT not set, /api/pin is disabled")
	case err != nil:
		zapLogger.Fatal("cannot init pinning client", zap.Error(err))
	default:
		pinner = pinata
		warnOnExpiry(zapLogger, options.PinataJWT)
	}

	cardService := service.NewCardService(cardRepo, zapLogger)
	buyService := service.NewBuyService(cardService, rpc, vault, zapLogger)
	pinService := service.NewPinService(pinner, zapLogger)

	router := http.NewRouter(http.Handlers{
		Cards:   &http.CardHandler{CardService: cardService},
		Actions: &http.ActionHandler{BuyService: buyService, PublicBaseURL: options.PublicBaseURL, Logger: zapLogger},
		Pin:     &http.PinHandler{PinService: pinService, Logger: zapLogger},
	}, options.BlockchainID, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("starting HTTP server",
			zap.String("addr", options.Port),
			zap.String("rpc", options.RPCURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

func warnOnExpiry(log *zap.Logger, jwt string) {
	exp, ok, err := pinning.TokenExpiry(jwt)
	switch {
	case err != nil:
		log.Warn("PINATA_JWT is not a readable JWT", zap.Error(err))
	case ok && time.Until(exp) <= 0:
		log.Warn("PINATA_JWT has expired", zap.Time("expiredAt", exp))
	case ok && time.Until(exp) < 7*24*time.Hour:
		log.Warn("PINATA_JWT expires soon", zap.Time("expiresAt", exp))
	}
}
