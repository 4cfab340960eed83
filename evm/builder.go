// Package evm builds and signs EIP-1559 native and ERC-20 transfers.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/common"
	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// NativeGasLimit is the fixed cost of a plain value transfer.
	NativeGasLimit uint64 = 21000
	// DefaultTokenGasLimit covers an ERC-20 transfer on common tokens.
	DefaultTokenGasLimit uint64 = 100000
)

const erc20TransferABI = `[{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

var erc20ABI = mustParseABI(erc20TransferABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// PackTransfer ABI-encodes transfer(to, amount).
func PackTransfer(to ethcommon.Address, amount *big.Int) ([]byte, error) {
	data, err := erc20ABI.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}
	return data, nil
}

// NetworkState supplies the chain data a transfer depends on.
type NetworkState interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	BaseFee(ctx context.Context) (*big.Int, error)
}

// Builder builds and signs EVM transfers.
type Builder struct {
	state         NetworkState
	tokenGasLimit uint64
}

// NewBuilder creates a Builder. A zero tokenGasLimit means
// DefaultTokenGasLimit.
func NewBuilder(state NetworkState, tokenGasLimit uint64) *Builder {
	if tokenGasLimit == 0 {
		tokenGasLimit = DefaultTokenGasLimit
	}
	return &Builder{state: state, tokenGasLimit: tokenGasLimit}
}

// BuildAndSign validates params, builds a dynamic fee transaction and signs
// it with key. The transaction id is the transaction hash.
func (b *Builder) BuildAndSign(ctx context.Context, key *ecdsa.PrivateKey, params model.TransferParams) (*model.SignedTransaction, error) {
	if err := address.Validate(model.ChainEVM, params.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := address.Validate(model.ChainEVM, params.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: missing private key", model.ErrInvalidKey)
	}

	from := ethcommon.HexToAddress(params.From)
	to := ethcommon.HexToAddress(params.To)
	if crypto.PubkeyToAddress(key.PublicKey) != from {
		return nil, fmt.Errorf("%w: private key does not match from address", model.ErrInvalidKey)
	}

	var (
		recipient ethcommon.Address
		value     *big.Int
		data      []byte
		gasLimit  uint64
	)
	if params.IsToken {
		if params.TokenIdentifier == "" {
			return nil, fmt.Errorf("%w: token contract", model.ErrMissingParameter)
		}
		if err := address.Validate(model.ChainEVM, params.TokenIdentifier); err != nil {
			return nil, fmt.Errorf("token contract: %w", err)
		}
		if params.Decimals == nil {
			return nil, fmt.Errorf("%w: token decimals", model.ErrMissingParameter)
		}

		amount, err := common.ToMinUnits(params.Amount, *params.Decimals)
		if err != nil {
			return nil, err
		}
		data, err = PackTransfer(to, amount)
		if err != nil {
			return nil, err
		}

		recipient = ethcommon.HexToAddress(params.TokenIdentifier)
		value = new(big.Int)
		gasLimit = b.tokenGasLimit
	} else {
		amount, err := common.ToMinUnits(params.Amount, common.ETHDecimals)
		if err != nil {
			return nil, err
		}
		recipient = to
		value = amount
		gasLimit = NativeGasLimit
	}

	chainID, err := b.state.ChainID(ctx)
	if err != nil {
		return nil, upstream("chain id", err)
	}
	nonce, err := b.state.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, upstream("nonce", err)
	}
	tip, err := b.state.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, upstream("gas tip cap", err)
	}
	baseFee, err := b.state.BaseFee(ctx)
	if err != nil {
		return nil, upstream("base fee", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: MaxFeePerGas(baseFee, tip),
		Gas:       gasLimit,
		To:        &recipient,
		Value:     value,
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	serialized, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	metrics.SignedTransactions.WithLabelValues(model.ChainEVM.String(), metrics.TransferKind(params.IsToken)).Inc()

	return &model.SignedTransaction{
		Chain:      model.ChainEVM,
		Serialized: serialized,
		TxID:       signed.Hash().Hex(),
	}, nil
}

// MaxFeePerGas returns 2*baseFee + tip, leaving room for the base fee to
// double before the transaction is priced out.
func MaxFeePerGas(baseFee, tip *big.Int) *big.Int {
	fee := new(big.Int).Mul(baseFee, big.NewInt(2))
	return fee.Add(fee, tip)
}

func upstream(what string, err error) error {
	return fmt.Errorf("%w: failed to get %s: %v", model.ErrUpstreamUnavailable, what, err)
}
