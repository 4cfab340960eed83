// Package app assembles a wallet.Service from configuration. It is shared by
// walletd, walletctl and rekey.
package app

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/multiwallet/evm"
	"github.com/AlexZinkM/multiwallet/internal/client"
	"github.com/AlexZinkM/multiwallet/internal/config"
	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/store"
	"github.com/AlexZinkM/multiwallet/internal/vault"
	"github.com/AlexZinkM/multiwallet/internal/wallet"
	"github.com/AlexZinkM/multiwallet/solana"
	"github.com/AlexZinkM/multiwallet/tron"

	"go.uber.org/zap"
)

// App owns the storage backend and network clients behind Service.
type App struct {
	Service *wallet.Service
	Vault   *vault.Vault
	Backend store.Backend

	evm *client.EVMClient
}

// New opens the configured store and wires every chain.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	defaultStyle, err := hdkey.StyleByName(cfg.SolanaDefaultPathStyle)
	if err != nil {
		return nil, fmt.Errorf("SOLANA_DEFAULT_PATH_STYLE: %w", err)
	}

	backend, err := store.Open(ctx, store.Options{
		Backend:      cfg.StoreBackend,
		Path:         cfg.StorePath,
		RedisAddr:    cfg.RedisAddr,
		RedisChannel: cfg.RedisChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	solanaClient, err := client.NewSolanaClient(cfg.SolanaRPCURL, cfg.SolanaDefaultToken)
	if err != nil {
		backend.Close()
		return nil, err
	}
	evmClient, err := client.DialEVM(ctx, cfg.EVMRPCURL)
	if err != nil {
		backend.Close()
		return nil, err
	}
	tronClient := client.NewTronClient(cfg.TronAPIURL, cfg.TronAPIKey)

	network := client.NewNetwork().
		Register(model.ChainSolana, solanaClient, cfg.SolanaExplorerURL).
		Register(model.ChainEVM, evmClient, cfg.EVMExplorerURL).
		Register(model.ChainTron, tronClient, cfg.TronExplorerURL)

	v := vault.New(backend, backend, cfg.PBKDF2Iterations)
	svc := wallet.New(wallet.Options{
		Vault:       v,
		Resolver:    solana.NewResolver(network, defaultStyle),
		Preferences: solana.NewPreferenceStore(backend),
		EVM:         evm.NewBuilder(evmClient, cfg.EVMTokenGasLimit),
		Solana:      solana.NewBuilder(solanaClient),
		Tron:        tron.NewBuilder(tronClient, cfg.TronFeeLimitSun),
		Broadcaster: network,
	})

	logger.Info("wallet initialized",
		zap.String("store", cfg.StoreBackend),
		zap.String("solanaDefaultStyle", defaultStyle.Name()))

	return &App{Service: svc, Vault: v, Backend: backend, evm: evmClient}, nil
}

// WatchChanges logs vault writes made by this or another instance sharing
// the store until ctx is done.
func (a *App) WatchChanges(ctx context.Context) error {
	events, err := a.Backend.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to store events: %w", err)
	}
	go func() {
		for ev := range events {
			if ev.Type == vault.EventChanged {
				logger.Info("vault changed", zap.String("key", ev.Key))
			}
		}
	}()
	return nil
}

func (a *App) Close() error {
	a.evm.Close()
	return a.Backend.Close()
}
