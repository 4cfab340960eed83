package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaClient is a client for working with Solana RPC. It supplies network
// state to the transfer builder, balances to the path style resolver and
// broadcasts signed transactions.
type SolanaClient struct {
	rpcClient *rpc.Client
	rpcURL    string
	tokenMint solana.PublicKey // token reported next to SOL in balances
}

// NewSolanaClient creates a new Solana client. tokenMint may be empty.
func NewSolanaClient(rpcURL, tokenMint string) (*SolanaClient, error) {
	c := &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		rpcURL:    rpcURL,
	}
	if tokenMint != "" {
		mint, err := solana.PublicKeyFromBase58(tokenMint)
		if err != nil {
			return nil, fmt.Errorf("invalid token mint address: %w", err)
		}
		c.tokenMint = mint
	}
	return c, nil
}

// LatestBlockhash returns a finalized blockhash to anchor a transaction to.
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	// GetRecentBlockhash is deprecated, use GetLatestBlockhash
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return recent.Value.Blockhash, nil
}

// AccountExists reports whether account has been created on chain.
func (c *SolanaClient) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := c.rpcClient.GetAccountInfo(ctx, account)
	if err != nil {
		if isAccountNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account info: %w", err)
	}
	return info != nil && info.Value != nil, nil
}

// MintDecimals returns the decimals of an SPL token mint.
func (c *SolanaClient) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	supply, err := c.rpcClient.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply: %w", err)
	}
	if supply.Value == nil {
		return 0, fmt.Errorf("mint %s not found", mint)
	}
	return supply.Value.Decimals, nil
}

// GetBalance gets SOL (lamports) and, when configured, token balance for
// address.
func (c *SolanaClient) GetBalance(ctx context.Context, address string) (*model.Balance, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidAddress, err)
	}

	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get SOL balance: %w", err)
	}

	out := &model.Balance{
		Native: model.NativeBalance{
			Balance:  new(big.Int).SetUint64(balance.Value),
			Decimals: model.ChainSolana.NativeDecimals(),
			Symbol:   model.ChainSolana.NativeSymbol(),
		},
		Tokens: []model.TokenBalance{},
	}

	if c.tokenMint.IsZero() {
		return out, nil
	}

	token, err := c.tokenBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	if token != nil {
		out.Tokens = append(out.Tokens, *token)
	}
	return out, nil
}

// tokenBalance returns the balance of the owner's associated token account,
// or nil when the account does not exist.
func (c *SolanaClient) tokenBalance(ctx context.Context, owner solana.PublicKey) (*model.TokenBalance, error) {
	ataAddress, _, err := solana.FindAssociatedTokenAddress(owner, c.tokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ataAddress, rpc.CommitmentConfirmed)
	if err != nil {
		if isAccountNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token account balance: %w", err)
	}
	if balance.Value == nil {
		return nil, nil
	}

	amount, ok := new(big.Int).SetString(balance.Value.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse token balance amount %q", balance.Value.Amount)
	}

	return &model.TokenBalance{
		Identifier: c.tokenMint.String(),
		Balance:    amount,
		Decimals:   int32(balance.Value.Decimals),
	}, nil
}

// SendRaw submits a serialized signed transaction and returns its signature.
func (c *SolanaClient) SendRaw(ctx context.Context, serialized []byte) (string, error) {
	sig, err := c.rpcClient.SendRawTransactionWithOpts(ctx, serialized, rpc.TransactionOpts{
		SkipPreflight:       false, // Transaction validation before node
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig.String(), nil
}

// isAccountNotFoundError checks if error indicates that an account doesn't exist
func isAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "could not find account")
}
