package model

import (
	"context"
	"math/big"
)

// NativeBalance is the balance of a chain's native asset in minimum units.
type NativeBalance struct {
	Balance  *big.Int `json:"balance"`
	Decimals int32    `json:"decimals"`
	Symbol   string   `json:"symbol"`
}

// TokenBalance is the balance of one fungible token in minimum units.
type TokenBalance struct {
	Identifier string   `json:"identifier"`
	Balance    *big.Int `json:"balance"`
	Decimals   int32    `json:"decimals"`
	Symbol     string   `json:"symbol,omitempty"`
}

// Balance is the result of a balance lookup for one address.
type Balance struct {
	Native NativeBalance  `json:"native"`
	Tokens []TokenBalance `json:"tokens"`
}

// HasFunds reports whether the native balance or any token balance is
// nonzero.
func (b *Balance) HasFunds() bool {
	if b == nil {
		return false
	}
	if b.Native.Balance != nil && b.Native.Balance.Sign() > 0 {
		return true
	}
	for _, t := range b.Tokens {
		if t.Balance != nil && t.Balance.Sign() > 0 {
			return true
		}
	}
	return false
}

// BalanceLookup queries balances for an address.
type BalanceLookup interface {
	GetBalance(ctx context.Context, chain Chain, address string) (*Balance, error)
}

// Broadcaster submits a signed transaction to the network.
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *SignedTransaction) (*BroadcastResult, error)
}
