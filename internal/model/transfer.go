package model

import (
	"encoding/base64"
	"encoding/hex"
)

// TransferParams describes a native or token transfer request.
type TransferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"` // decimal string in whole units, e.g. "1.5"

	IsToken         bool   `json:"isToken,omitempty"`
	TokenIdentifier string `json:"tokenIdentifier,omitempty"` // contract or mint address
	Decimals        *int32 `json:"decimals,omitempty"`        // required for token transfers on EVM and Tron

	// PriorityFee is chain specific: micro-lamports per compute unit on
	// Solana, ignored elsewhere.
	PriorityFee uint64 `json:"priorityFee,omitempty"`
}

// SignedTransaction is a serialized signed transaction ready for broadcast.
type SignedTransaction struct {
	Chain      Chain  `json:"chain"`
	Serialized []byte `json:"serialized"`
	TxID       string `json:"txId"`
}

// SerializedHex returns the payload hex encoded with a 0x prefix (EVM style).
func (t *SignedTransaction) SerializedHex() string {
	return "0x" + hex.EncodeToString(t.Serialized)
}

// SerializedBase64 returns the payload base64 encoded (Solana RPC style).
func (t *SignedTransaction) SerializedBase64() string {
	return base64.StdEncoding.EncodeToString(t.Serialized)
}

// SignResponse represents response for POST /wallet/sign
type SignResponse struct {
	Chain      Chain  `json:"chain"`
	TxID       string `json:"txId"`
	Serialized string `json:"serialized"`
	TxHash     string `json:"txHash,omitempty"`
	Explorer   string `json:"explorerUrl,omitempty"`
}

// BroadcastResult is returned by a broadcast collaborator.
type BroadcastResult struct {
	TxHash      string `json:"txHash"`
	ExplorerURL string `json:"explorerUrl"`
}
