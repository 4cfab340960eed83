package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/tron"
)

const tronAPIKeyHeader = "TRON-PRO-API-KEY"

// TronClient is a client for the TronGrid HTTP API.
type TronClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewTronClient creates a new TronGrid client. apiKey may be empty.
func NewTronClient(baseURL, apiKey string) *TronClient {
	return &TronClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type nowBlockResponse struct {
	BlockID     string `json:"blockID"`
	BlockHeader struct {
		RawData struct {
			Number    int64 `json:"number"`
			Timestamp int64 `json:"timestamp"`
		} `json:"raw_data"`
	} `json:"block_header"`
}

// LatestBlock returns the head block used as the transaction reference.
func (c *TronClient) LatestBlock(ctx context.Context) (*tron.Block, error) {
	var resp nowBlockResponse
	if err := c.post(ctx, "/wallet/getnowblock", struct{}{}, &resp); err != nil {
		return nil, err
	}

	id, err := hex.DecodeString(resp.BlockID)
	if err != nil || len(id) != 32 {
		return nil, fmt.Errorf("unexpected block id %q", resp.BlockID)
	}

	return &tron.Block{
		Number:    resp.BlockHeader.RawData.Number,
		ID:        id,
		Timestamp: resp.BlockHeader.RawData.Timestamp,
	}, nil
}

type accountResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

// GetBalance returns the TRX balance (sun) of address. Accounts that were
// never activated report zero.
func (c *TronClient) GetBalance(ctx context.Context, addr string) (*model.Balance, error) {
	if !address.IsTronAddress(addr) {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidAddress, addr)
	}

	var resp accountResponse
	req := map[string]any{"address": addr, "visible": true}
	if err := c.post(ctx, "/wallet/getaccount", req, &resp); err != nil {
		return nil, err
	}

	return &model.Balance{
		Native: model.NativeBalance{
			Balance:  big.NewInt(resp.Balance),
			Decimals: model.ChainTron.NativeDecimals(),
			Symbol:   model.ChainTron.NativeSymbol(),
		},
		Tokens: []model.TokenBalance{},
	}, nil
}

type broadcastResponse struct {
	Result  bool   `json:"result"`
	TxID    string `json:"txid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendRaw broadcasts a serialized signed transaction and returns its id.
func (c *TronClient) SendRaw(ctx context.Context, serialized []byte) (string, error) {
	var resp broadcastResponse
	req := map[string]string{"transaction": hex.EncodeToString(serialized)}
	if err := c.post(ctx, "/wallet/broadcasthex", req, &resp); err != nil {
		return "", err
	}
	if !resp.Result {
		msg := resp.Message
		// TronGrid hex encodes the failure reason
		if decoded, err := hex.DecodeString(msg); err == nil {
			msg = string(decoded)
		}
		return "", fmt.Errorf("broadcast rejected: %s %s", resp.Code, msg)
	}
	return resp.TxID, nil
}

func (c *TronClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(tronAPIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tron api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
