// Package solana builds and signs Solana transfers and resolves which
// derivation path style a recovery phrase was used with.
package solana

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/common"
	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// NetworkState supplies the chain data a transfer depends on.
type NetworkState interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// Builder builds and signs native SOL and SPL token transfers.
type Builder struct {
	state NetworkState
}

func NewBuilder(state NetworkState) *Builder {
	return &Builder{state: state}
}

// BuildAndSign validates params, builds the transfer and signs it with key.
// The transaction id is the Base58 fee payer signature.
func (b *Builder) BuildAndSign(ctx context.Context, key ed25519.PrivateKey, params model.TransferParams) (*model.SignedTransaction, error) {
	// Validate addresses before anything else
	if err := address.Validate(model.ChainSolana, params.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := address.Validate(model.ChainSolana, params.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: invalid private key length", model.ErrInvalidKey)
	}
	wallet := solana.PrivateKey(key)

	fromPubkey := solana.MustPublicKeyFromBase58(params.From)
	toPubkey := solana.MustPublicKeyFromBase58(params.To)

	// Verify wallet matches from address
	if !wallet.PublicKey().Equals(fromPubkey) {
		return nil, fmt.Errorf("%w: private key does not match from address", model.ErrInvalidKey)
	}

	var (
		instructions []solana.Instruction
		err          error
	)
	if params.IsToken {
		instructions, err = b.tokenInstructions(ctx, fromPubkey, toPubkey, params)
	} else {
		instructions, err = nativeInstructions(fromPubkey, toPubkey, params)
	}
	if err != nil {
		return nil, err
	}

	if params.PriorityFee > 0 {
		priority := computebudget.NewSetComputeUnitPriceInstruction(params.PriorityFee).Build()
		instructions = append([]solana.Instruction{priority}, instructions...)
	}

	recent, err := b.state.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get recent blockhash: %v", model.ErrUpstreamUnavailable, err)
	}

	tx, err := solana.NewTransaction(instructions, recent, solana.TransactionPayer(fromPubkey))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Sign transaction
	_, err = tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if wallet.PublicKey().Equals(k) {
			return &wallet
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	serialized, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	metrics.SignedTransactions.WithLabelValues(model.ChainSolana.String(), metrics.TransferKind(params.IsToken)).Inc()

	return &model.SignedTransaction{
		Chain:      model.ChainSolana,
		Serialized: serialized,
		TxID:       tx.Signatures[0].String(),
	}, nil
}

func nativeInstructions(from, to solana.PublicKey, params model.TransferParams) ([]solana.Instruction, error) {
	// Convert SOL to lamports (1 SOL = 1,000,000,000 lamports)
	lamports, err := common.ToMinUnitsUint64(params.Amount, common.SOLDecimals)
	if err != nil {
		return nil, err
	}

	return []solana.Instruction{
		system.NewTransferInstruction(lamports, from, to).Build(),
	}, nil
}

func (b *Builder) tokenInstructions(ctx context.Context, from, to solana.PublicKey, params model.TransferParams) ([]solana.Instruction, error) {
	if params.TokenIdentifier == "" {
		return nil, fmt.Errorf("%w: token mint", model.ErrMissingParameter)
	}
	if err := address.Validate(model.ChainSolana, params.TokenIdentifier); err != nil {
		return nil, fmt.Errorf("token mint: %w", err)
	}
	mint := solana.MustPublicKeyFromBase58(params.TokenIdentifier)

	var decimals uint8
	if params.Decimals != nil {
		if *params.Decimals < 0 || *params.Decimals > 255 {
			return nil, fmt.Errorf("%w: decimals %d out of range", model.ErrInvalidAmount, *params.Decimals)
		}
		decimals = uint8(*params.Decimals)
	} else {
		// Validate the amount format before going to the network
		if _, err := common.ToMinUnits(params.Amount, common.MaxDecimals); err != nil {
			return nil, err
		}
		d, err := b.state.MintDecimals(ctx, mint)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get mint decimals: %v", model.ErrUpstreamUnavailable, err)
		}
		decimals = d
	}

	amount, err := common.ToMinUnitsUint64(params.Amount, int32(decimals))
	if err != nil {
		return nil, err
	}

	sourceTokenAccount, _, err := solana.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find source token account address: %w", err)
	}
	destTokenAccount, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find destination token account: %w", err)
	}

	exists, err := b.state.AccountExists(ctx, destTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get destination account info: %v", model.ErrUpstreamUnavailable, err)
	}

	instructions := make([]solana.Instruction, 0, 2)
	if !exists {
		// sender pays rent for the recipient's token account
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			from, // payer
			to,   // owner
			mint,
		).Build())
	}

	instructions = append(instructions, token.NewTransferCheckedInstruction(
		amount,
		decimals,
		sourceTokenAccount,
		mint,
		destTokenAccount,
		from,
		[]solana.PublicKey{},
	).Build())

	return instructions, nil
}
