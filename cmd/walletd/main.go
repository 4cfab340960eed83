package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/api"
	"github.com/AlexZinkM/multiwallet/internal/app"
	"github.com/AlexZinkM/multiwallet/internal/config"
	"github.com/AlexZinkM/multiwallet/internal/handler"
	"github.com/AlexZinkM/multiwallet/internal/logger"

	"go.uber.org/zap"
)

// @title        Multiwallet API
// @version      1.0
// @description  Non-custodial key management for EVM, Tron and Solana
// @BasePath     /
func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Get()

	logger.Init(cfg.LogEnv)
	defer logger.Sync()

	// PIN is entered once and kept in memory, requests may override it
	if err := config.PromptForPIN(); err != nil {
		logger.Fatal("failed to read PIN", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize wallet", zap.Error(err))
	}
	defer a.Close()

	pin, err := config.GetPINBytes()
	if err == nil {
		err = a.Vault.VerifyPIN(ctx, pin)
		clear(pin)
	}
	if err != nil {
		logger.Fatal("PIN does not unlock the vault", zap.Error(err))
	}

	if err := a.WatchChanges(ctx); err != nil {
		logger.Warn("vault change notifications disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(a.Service, handler.StartupPIN),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("walletd listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
