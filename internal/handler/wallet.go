package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/multiwallet/internal/common"
	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/wallet"
)

// WalletHandler serves the wallet, key and PIN endpoints.
type WalletHandler struct {
	service *wallet.Service
	pin     PINSource
}

// NewWalletHandler creates a new WalletHandler. pin supplies the PIN when a
// request does not carry the X-Wallet-PIN header.
func NewWalletHandler(service *wallet.Service, pin PINSource) *WalletHandler {
	return &WalletHandler{service: service, pin: pin}
}

// Create handles POST /wallet/create
// @Summary      Create wallet
// @Description  Generates a new mnemonic and stores it encrypted under the PIN. The mnemonic is returned once.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  false  "Mnemonic length"
// @Success      200      {object}  model.CreateWalletResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateWalletRequest
	// empty body means 12 words
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, err.Error())
		return
	}

	pinBytes, err := requestPIN(r, h.pin)
	if err != nil {
		writePINRequired(w, err)
		return
	}
	defer clear(pinBytes) // Always clear PIN from memory

	mnemonic, err := h.service.CreateWallet(r.Context(), req.Words, pinBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CreateWalletResponse{Mnemonic: mnemonic})
}

// Import handles POST /wallet/import
// @Summary      Import wallet
// @Description  Validates a BIP39 mnemonic and stores it encrypted under the PIN
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportWalletRequest  true  "Mnemonic"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	pinBytes, err := requestPIN(r, h.pin)
	if err != nil {
		writePINRequired(w, err)
		return
	}
	defer clear(pinBytes)

	if err := h.service.ImportWallet(r.Context(), req.Mnemonic, pinBytes); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Wallet imported successfully"})
}

// Address handles GET /wallet/address
// @Summary      Derive address
// @Description  Derives the address of an account index. Without chain, addresses for every chain are returned.
// @Tags         wallet
// @Produce      json
// @Param        chain  query     string  false  "evm, tron or solana"
// @Param        index  query     int     false  "Account index"
// @Param        qr     query     bool    false  "Include a base64 PNG QR code (single chain only)"
// @Success      200    {object}  model.AddressResponse
// @Router       /wallet/address [get]
func (h *WalletHandler) Address(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	var index uint32
	if s := r.URL.Query().Get("index"); s != "" {
		v, err := strconv.ParseUint(s, 10, 31)
		if err != nil {
			writeBadRequest(w, "invalid index: must be between 0 and 2147483647")
			return
		}
		index = uint32(v)
	}

	pinBytes, err := requestPIN(r, h.pin)
	if err != nil {
		writePINRequired(w, err)
		return
	}
	defer clear(pinBytes)

	chainStr := r.URL.Query().Get("chain")
	if chainStr == "" {
		addrs, err := h.service.Addresses(r.Context(), pinBytes, index)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, addrs)
		return
	}

	chain, err := model.ParseChain(chainStr)
	if err != nil {
		writeError(w, err)
		return
	}

	addr, err := h.service.Address(r.Context(), pinBytes, chain, index)
	if err != nil {
		writeError(w, err)
		return
	}

	if withQR, _ := strconv.ParseBool(r.URL.Query().Get("qr")); withQR {
		addr.QRCode, err = common.AddressQRCode(addr.Address)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, addr)
}

// Sign handles POST /wallet/sign
// @Summary      Sign transfer
// @Description  Builds and signs a native or token transfer with a derived or imported key, optionally broadcasting it
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignRequest  true  "Transfer"
// @Success      200      {object}  model.SignResponse
// @Router       /wallet/sign [post]
func (h *WalletHandler) Sign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Index >= hdkey.HardenedOffset {
		writeBadRequest(w, fmt.Sprintf("invalid index: must be between 0 and %d", hdkey.HardenedOffset-1))
		return
	}

	chain, err := model.ParseChain(req.Chain)
	if err != nil {
		writeError(w, err)
		return
	}

	pinBytes, err := requestPIN(r, h.pin)
	if err != nil {
		writePINRequired(w, err)
		return
	}
	defer clear(pinBytes)

	var tx *model.SignedTransaction
	if req.Imported {
		tx, err = h.service.SignWithImportedKey(r.Context(), chain, pinBytes, req.Params)
	} else {
		tx, err = h.service.SignTransfer(r.Context(), chain, pinBytes, req.Index, req.Params)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := model.SignResponse{
		Chain:      tx.Chain,
		TxID:       tx.TxID,
		Serialized: encodeSigned(tx),
	}

	if req.Broadcast {
		res, err := h.service.Broadcast(r.Context(), tx)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.TxHash = res.TxHash
		resp.Explorer = res.ExplorerURL
	}

	writeJSON(w, http.StatusOK, resp)
}

// encodeSigned renders the payload the way each chain's RPC expects it.
func encodeSigned(tx *model.SignedTransaction) string {
	if tx.Chain == model.ChainSolana {
		return tx.SerializedBase64()
	}
	return tx.SerializedHex()
}

// ChangePIN handles POST /pin/change
// @Summary      Change PIN
// @Description  Re-encrypts the mnemonic and every imported key under a new PIN. Nothing is modified if any secret fails to decrypt.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChangePINRequest  true  "Old and new PIN"
// @Success      200      {object}  model.StatusResponse
// @Router       /pin/change [post]
func (h *WalletHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ChangePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	oldPIN, newPIN := []byte(req.OldPIN), []byte(req.NewPIN)
	defer clear(oldPIN)
	defer clear(newPIN)

	if len(newPIN) == 0 {
		writeError(w, fmt.Errorf("%w: newPin", model.ErrMissingParameter))
		return
	}

	if err := h.service.ChangePIN(r.Context(), oldPIN, newPIN); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "PIN changed"})
}
