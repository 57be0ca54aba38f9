package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChiefGuap/divvit2.0/internal/api"
	"github.com/ChiefGuap/divvit2.0/internal/auth"
	"github.com/ChiefGuap/divvit2.0/internal/config"
	"github.com/ChiefGuap/divvit2.0/internal/scanner"
	"github.com/ChiefGuap/divvit2.0/internal/service"
	"github.com/ChiefGuap/divvit2.0/internal/storage/sqlite"
	"github.com/ChiefGuap/divvit2.0/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	bills := service.NewBillService(store)
	snapshots := service.NewPollingSource(store, cfg.PollInterval)
	scanClient := scanner.New(cfg.Scanner.BaseURL, cfg.Scanner.Timeout)

	router := api.NewRouter(api.Deps{
		Auth:       api.NewAuthHandlers(authenticator, jwtManager),
		Bills:      api.NewBillHandlers(bills, snapshots),
		Scans:      api.NewScanHandlers(scanClient, bills),
		JWTManager: jwtManager,
	})

	// No WriteTimeout: it would cut the long-lived snapshot event
	// stream. Idle keep-alive connections are bounded instead.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}
