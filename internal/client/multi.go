package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"go.uber.org/zap"
)

// ChainBackend is the per-chain network adapter used for balances and
// broadcasting.
type ChainBackend interface {
	GetBalance(ctx context.Context, address string) (*model.Balance, error)
	SendRaw(ctx context.Context, serialized []byte) (string, error)
}

// Network routes balance lookups and broadcasts to the backend registered
// for each chain. It implements model.BalanceLookup and model.Broadcaster.
type Network struct {
	backends  map[model.Chain]ChainBackend
	explorers map[model.Chain]string // fmt templates with one %s
}

func NewNetwork() *Network {
	return &Network{
		backends:  make(map[model.Chain]ChainBackend),
		explorers: make(map[model.Chain]string),
	}
}

// Register adds the backend for chain. explorer is an optional URL template
// such as "https://solscan.io/tx/%s".
func (n *Network) Register(chain model.Chain, backend ChainBackend, explorer string) *Network {
	n.backends[chain] = backend
	if explorer != "" {
		n.explorers[chain] = explorer
	}
	return n
}

func (n *Network) backend(chain model.Chain) (ChainBackend, error) {
	b, ok := n.backends[chain]
	if !ok {
		return nil, fmt.Errorf("%w: no network configured for %s", model.ErrUpstreamUnavailable, chain)
	}
	return b, nil
}

func (n *Network) GetBalance(ctx context.Context, chain model.Chain, address string) (*model.Balance, error) {
	b, err := n.backend(chain)
	if err != nil {
		return nil, err
	}
	balance, err := b.GetBalance(ctx, address)
	if err != nil {
		return nil, upstream(err)
	}
	return balance, nil
}

func (n *Network) Broadcast(ctx context.Context, tx *model.SignedTransaction) (*model.BroadcastResult, error) {
	if tx == nil || len(tx.Serialized) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", model.ErrMissingParameter)
	}
	b, err := n.backend(tx.Chain)
	if err != nil {
		return nil, err
	}

	hash, err := b.SendRaw(ctx, tx.Serialized)
	if err != nil {
		logger.Warn("broadcast failed", zap.String("chain", tx.Chain.String()), zap.Error(err))
		return nil, upstream(err)
	}
	logger.Info("transaction broadcast", zap.String("chain", tx.Chain.String()), zap.String("txHash", hash))

	return &model.BroadcastResult{
		TxHash:      hash,
		ExplorerURL: n.ExplorerURL(tx.Chain, hash),
	}, nil
}

// ExplorerURL returns the explorer link for hash, or "" when none is
// configured for chain.
func (n *Network) ExplorerURL(chain model.Chain, hash string) string {
	tmpl, ok := n.explorers[chain]
	if !ok || hash == "" {
		return ""
	}
	return fmt.Sprintf(tmpl, hash)
}

// upstream tags network failures. Validation errors keep their kind.
func upstream(err error) error {
	if errors.Is(err, model.ErrInvalidAddress) || errors.Is(err, model.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
}
