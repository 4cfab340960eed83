// Package tron builds and signs TRX and TRC-20 transfers as protobuf
// encoded protocol.Transaction messages.
package tron

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/AlexZinkM/multiwallet/evm"
	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/common"
	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// DefaultFeeLimit caps the energy a TRC-20 transfer may burn, in SUN.
	DefaultFeeLimit int64 = 30_000_000

	// expiration is measured from the reference block timestamp
	expirationWindow = 60 * time.Second
)

// Block is the reference block a transaction is anchored to.
type Block struct {
	Number    int64
	ID        []byte // 32-byte block id
	Timestamp int64  // milliseconds
}

// NetworkState supplies the chain data a transfer depends on.
type NetworkState interface {
	LatestBlock(ctx context.Context) (*Block, error)
}

// Builder builds and signs Tron transfers.
type Builder struct {
	state    NetworkState
	feeLimit int64
	now      func() time.Time
}

// NewBuilder creates a Builder. A zero feeLimit means DefaultFeeLimit.
func NewBuilder(state NetworkState, feeLimit int64) *Builder {
	if feeLimit <= 0 {
		feeLimit = DefaultFeeLimit
	}
	return &Builder{state: state, feeLimit: feeLimit, now: time.Now}
}

// BuildAndSign validates params, builds the transfer and signs it with key.
// The transaction id is the hex SHA-256 of the raw data.
func (b *Builder) BuildAndSign(ctx context.Context, key *ecdsa.PrivateKey, params model.TransferParams) (*model.SignedTransaction, error) {
	owner, err := address.TronPayload(params.From)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := address.TronPayload(params.To)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: missing private key", model.ErrInvalidKey)
	}
	if address.TronAddress(&key.PublicKey) != params.From {
		return nil, fmt.Errorf("%w: private key does not match from address", model.ErrInvalidKey)
	}

	var (
		payload  []byte
		feeLimit int64
	)
	if params.IsToken {
		payload, err = tokenContract(owner, to, params)
		feeLimit = b.feeLimit
	} else {
		payload, err = nativeContract(owner, to, params)
	}
	if err != nil {
		return nil, err
	}

	block, err := b.state.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get latest block: %v", model.ErrUpstreamUnavailable, err)
	}
	if block == nil {
		return nil, fmt.Errorf("%w: no latest block", model.ErrUpstreamUnavailable)
	}
	if len(block.ID) != 32 {
		return nil, fmt.Errorf("%w: malformed block id", model.ErrUpstreamUnavailable)
	}

	raw := (&rawData{
		RefBlockBytes: refBlockBytes(block.Number),
		RefBlockHash:  block.ID[8:16],
		Expiration:    block.Timestamp + expirationWindow.Milliseconds(),
		Contract:      payload,
		Timestamp:     b.now().UnixMilli(),
		FeeLimit:      feeLimit,
	}).marshal()

	txID := sha256.Sum256(raw)

	// 65-byte recoverable signature, v in {0, 1}
	sig, err := crypto.Sign(txID[:], key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	metrics.SignedTransactions.WithLabelValues(model.ChainTron.String(), metrics.TransferKind(params.IsToken)).Inc()

	return &model.SignedTransaction{
		Chain:      model.ChainTron,
		Serialized: transaction(raw, sig),
		TxID:       hex.EncodeToString(txID[:]),
	}, nil
}

// refBlockBytes returns bytes 6..8 of the big-endian block number.
func refBlockBytes(number int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(number))
	return buf[6:8]
}

func nativeContract(owner, to [21]byte, params model.TransferParams) ([]byte, error) {
	sun, err := common.ToMinUnitsUint64(params.Amount, common.TRXDecimals)
	if err != nil {
		return nil, err
	}
	if sun > 1<<63-1 {
		return nil, fmt.Errorf("%w: amount overflows", model.ErrInvalidAmount)
	}

	value := transferContract(owner[:], to[:], int64(sun))
	return contract(TransferContractType, typeURLTransferContract, value), nil
}

func tokenContract(owner, to [21]byte, params model.TransferParams) ([]byte, error) {
	if params.TokenIdentifier == "" {
		return nil, fmt.Errorf("%w: token contract", model.ErrMissingParameter)
	}
	token, err := address.TronPayload(params.TokenIdentifier)
	if err != nil {
		return nil, fmt.Errorf("token contract: %w", err)
	}
	if params.Decimals == nil {
		return nil, fmt.Errorf("%w: token decimals", model.ErrMissingParameter)
	}

	amount, err := common.ToMinUnits(params.Amount, *params.Decimals)
	if err != nil {
		return nil, err
	}

	// TRC-20 shares the ERC-20 ABI, addresses without the 0x41 prefix
	var recipient [20]byte
	copy(recipient[:], to[1:])
	data, err := evm.PackTransfer(recipient, amount)
	if err != nil {
		return nil, err
	}

	value := triggerSmartContract(owner[:], token[:], 0, data)
	return contract(TriggerSmartContractType, typeURLTriggerSmartContract, value), nil
}
