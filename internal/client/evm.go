package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMClient reads fee data and balances from an EVM JSON-RPC node and
// broadcasts signed transactions.
type EVMClient struct {
	eth *ethclient.Client
}

// DialEVM connects to the JSON-RPC endpoint at rpcURL.
func DialEVM(ctx context.Context, rpcURL string) (*EVMClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial evm rpc: %w", err)
	}
	return &EVMClient{eth: eth}, nil
}

func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

func (c *EVMClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, account)
}

func (c *EVMClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return c.eth.SuggestGasTipCap(ctx)
}

// BaseFee returns the base fee of the latest block.
func (c *EVMClient) BaseFee(ctx context.Context) (*big.Int, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	if header.BaseFee == nil {
		return nil, fmt.Errorf("chain does not support EIP-1559")
	}
	return header.BaseFee, nil
}

// GetBalance returns the native balance of address.
func (c *EVMClient) GetBalance(ctx context.Context, address string) (*model.Balance, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidAddress, address)
	}

	wei, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &model.Balance{
		Native: model.NativeBalance{
			Balance:  wei,
			Decimals: model.ChainEVM.NativeDecimals(),
			Symbol:   model.ChainEVM.NativeSymbol(),
		},
		Tokens: []model.TokenBalance{},
	}, nil
}

// SendRaw submits a serialized signed transaction and returns its hash.
func (c *EVMClient) SendRaw(ctx context.Context, serialized []byte) (string, error) {
	var tx types.Transaction
	if err := tx.UnmarshalBinary(serialized); err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, &tx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (c *EVMClient) Close() {
	c.eth.Close()
}
