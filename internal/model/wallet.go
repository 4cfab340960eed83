package model

// CreateWalletRequest represents request for POST /wallet/create
type CreateWalletRequest struct {
	Words int `json:"words"` // 12 or 24
}

// CreateWalletResponse represents response for POST /wallet/create
type CreateWalletResponse struct {
	Mnemonic string `json:"mnemonic"`
}

// ImportWalletRequest represents request for POST /wallet/import
type ImportWalletRequest struct {
	Mnemonic string `json:"mnemonic" binding:"required"`
}

// AddressResponse represents response for GET /wallet/address
type AddressResponse struct {
	Chain     Chain  `json:"chain"`
	Index     uint32 `json:"index"`
	Path      string `json:"path"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`        // hex, compressed for secp256k1
	QRCode    string `json:"qrCode,omitempty"` // base64 PNG, on request
}

// SignRequest represents request for POST /wallet/sign
type SignRequest struct {
	Chain     string         `json:"chain"`
	Index     uint32         `json:"index"`
	Imported  bool           `json:"imported,omitempty"` // sign with the imported key for params.from
	Broadcast bool           `json:"broadcast,omitempty"`
	Params    TransferParams `json:"params"`
}

// ImportKeyRequest represents request for POST /keys/import
type ImportKeyRequest struct {
	Chain      string `json:"chain"`
	PrivateKey string `json:"privateKey"`
	Label      string `json:"label,omitempty"`
}

// ChangePINRequest represents request for POST /pin/change
type ChangePINRequest struct {
	OldPIN string `json:"oldPin"`
	NewPIN string `json:"newPin"`
}

// ResolveResponse represents response for POST /solana/resolve
type ResolveResponse struct {
	Style   string        `json:"style"`
	Address string        `json:"address"`
	Results []StyleReport `json:"results"`
}

// StyleReport is the per-style outcome of Solana path style probing.
type StyleReport struct {
	Style   string `json:"style"`
	Path    string `json:"path"`
	Address string `json:"address"`
	Funded  bool   `json:"funded"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is returned by endpoints that have no payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SolanaStyleResponse represents response for GET /solana/style
type SolanaStyleResponse struct {
	Style string `json:"style"`
}
