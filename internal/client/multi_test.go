package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBackend struct {
	balance *model.Balance
	hash    string
	err     error
	sent    []byte
}

func (f *fakeBackend) GetBalance(_ context.Context, _ string) (*model.Balance, error) {
	return f.balance, f.err
}

func (f *fakeBackend) SendRaw(_ context.Context, serialized []byte) (string, error) {
	f.sent = serialized
	return f.hash, f.err
}

func TestNetwork_Routing(t *testing.T) {
	t.Parallel()

	sol := &fakeBackend{
		balance: &model.Balance{Native: model.NativeBalance{Balance: big.NewInt(5)}},
		hash:    "5sig",
	}
	evm := &fakeBackend{hash: "0xabc"}

	n := NewNetwork().
		Register(model.ChainSolana, sol, "https://solscan.io/tx/%s").
		Register(model.ChainEVM, evm, "")

	balance, err := n.GetBalance(context.Background(), model.ChainSolana, "addr")
	require.NoError(t, err)
	require.True(t, balance.HasFunds())

	res, err := n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainSolana, Serialized: []byte{1}})
	require.NoError(t, err)
	require.Equal(t, "5sig", res.TxHash)
	require.Equal(t, "https://solscan.io/tx/5sig", res.ExplorerURL)
	require.Equal(t, []byte{1}, sol.sent)

	res, err = n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainEVM, Serialized: []byte{2}})
	require.NoError(t, err)
	require.Equal(t, "0xabc", res.TxHash)
	require.Empty(t, res.ExplorerURL)
}

func TestNetwork_Errors(t *testing.T) {
	t.Parallel()

	failing := &fakeBackend{err: errors.New("connection refused")}
	invalid := &fakeBackend{err: fmt.Errorf("%w: bad", model.ErrInvalidAddress)}
	n := NewNetwork().
		Register(model.ChainTron, failing, "").
		Register(model.ChainSolana, invalid, "")

	_, err := n.GetBalance(context.Background(), model.ChainEVM, "0x0")
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	_, err = n.GetBalance(context.Background(), model.ChainTron, "T")
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	_, err = n.GetBalance(context.Background(), model.ChainSolana, "x")
	require.ErrorIs(t, err, model.ErrInvalidAddress)
	require.NotErrorIs(t, err, model.ErrUpstreamUnavailable)

	_, err = n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainTron, Serialized: []byte{1}})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	_, err = n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainTron})
	require.ErrorIs(t, err, model.ErrMissingParameter)
}

// Not parallel: swaps the global logger.
func TestNetwork_BroadcastLogCaller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	t.Cleanup(func() { logger.Log = prev })

	ok := &fakeBackend{hash: "0xabc"}
	failing := &fakeBackend{err: errors.New("connection refused")}
	n := NewNetwork().
		Register(model.ChainEVM, ok, "").
		Register(model.ChainTron, failing, "")

	_, err := n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainEVM, Serialized: []byte{1}})
	require.NoError(t, err)
	_, err = n.Broadcast(context.Background(), &model.SignedTransaction{Chain: model.ChainTron, Serialized: []byte{1}})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "multi.go", filepath.Base(e.Caller.File), e.Message)
	}
}
