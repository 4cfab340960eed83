// Re-encrypts the mnemonic and every imported key under a new PIN.
// Usage: go run ./cmd/rekey
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlexZinkM/multiwallet/internal/config"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/store"
	"github.com/AlexZinkM/multiwallet/internal/vault"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "rekey failed:", err)
		os.Exit(1)
	}
	fmt.Println("PIN changed")
}

func run(ctx context.Context) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	logger.Init(cfg.LogEnv)
	defer logger.Sync()

	backend, err := store.Open(ctx, store.Options{
		Backend:      cfg.StoreBackend,
		Path:         cfg.StorePath,
		RedisAddr:    cfg.RedisAddr,
		RedisChannel: cfg.RedisChannel,
	})
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := config.PromptForPIN(); err != nil {
		return err
	}
	oldPIN, err := config.GetPINBytes()
	if err != nil {
		return err
	}
	defer clear(oldPIN)

	v := vault.New(backend, backend, cfg.PBKDF2Iterations)
	// fail before asking for the new PIN
	if err := v.VerifyPIN(ctx, oldPIN); err != nil {
		return err
	}

	newPIN, err := config.PromptForNewPIN()
	if err != nil {
		return err
	}
	defer clear(newPIN)

	return v.ChangePIN(ctx, oldPIN, newPIN)
}
