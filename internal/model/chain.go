package model

import (
	"fmt"
	"strings"
)

// Chain identifies an account model supported by the wallet.
type Chain string

const (
	ChainEVM    Chain = "evm"
	ChainTron   Chain = "tron"
	ChainSolana Chain = "solana"
)

// Chains lists every supported chain.
var Chains = []Chain{ChainEVM, ChainTron, ChainSolana}

// ParseChain parses a chain name case-insensitively. "eth" and "ethereum"
// are accepted as aliases of evm, "trx" of tron and "sol" of solana.
func ParseChain(s string) (Chain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "evm", "eth", "ethereum":
		return ChainEVM, nil
	case "tron", "trx":
		return ChainTron, nil
	case "solana", "sol":
		return ChainSolana, nil
	}
	return "", fmt.Errorf("%w: unknown chain %q", ErrMissingParameter, s)
}

// NativeSymbol returns the ticker of the chain's native asset.
func (c Chain) NativeSymbol() string {
	switch c {
	case ChainEVM:
		return "ETH"
	case ChainTron:
		return "TRX"
	case ChainSolana:
		return "SOL"
	}
	return ""
}

// NativeDecimals returns the number of decimals of the chain's native asset.
func (c Chain) NativeDecimals() int32 {
	switch c {
	case ChainEVM:
		return 18
	case ChainTron:
		return 6
	case ChainSolana:
		return 9
	}
	return 0
}

func (c Chain) String() string {
	return string(c)
}
