package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/multiwallet/internal/model"
)

// ImportKey handles POST /keys/import
// @Summary      Import private key
// @Description  Stores a standalone private key encrypted under the PIN. EVM and Tron take hex, Solana a Base58 keypair or hex secret.
// @Tags         keys
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportKeyRequest  true  "Key"
// @Success      200      {object}  model.StoredKeyEntry
// @Router       /keys/import [post]
func (h *WalletHandler) ImportKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
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

	entry, err := h.service.ImportPrivateKey(r.Context(), chain, req.PrivateKey, req.Label, pinBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Keys handles GET and DELETE /keys
// @Summary      List or delete imported keys
// @Description  GET lists imported key metadata. DELETE removes one key (address and chain) or, without parameters, every imported key.
// @Tags         keys
// @Produce      json
// @Param        address  query     string  false  "Address (DELETE)"
// @Param        chain    query     string  false  "Chain (DELETE)"
// @Success      200      {array}   model.StoredKeyEntry
// @Router       /keys [get]
// @Router       /keys [delete]
func (h *WalletHandler) Keys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.service.Entries(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodDelete:
		addr := r.URL.Query().Get("address")
		chainStr := r.URL.Query().Get("chain")
		if addr == "" && chainStr == "" {
			if err := h.service.ClearKeys(r.Context()); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "All imported keys deleted"})
			return
		}

		chain, err := model.ParseChain(chainStr)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.service.DeleteKey(r.Context(), addr, chain); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "Key deleted"})

	default:
		http.Error(w, "Method not allowed. Should be GET or DELETE", http.StatusMethodNotAllowed)
	}
}
