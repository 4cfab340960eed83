package handler

import (
	"net/http"

	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/solana"
)

// Resolve handles POST /solana/resolve
// @Summary      Resolve Solana path style
// @Description  Probes account 0 of every Solana derivation style for funds and persists the chosen style
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.ResolveResponse
// @Router       /solana/resolve [post]
func (h *WalletHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	pinBytes, err := requestPIN(r, h.pin)
	if err != nil {
		writePINRequired(w, err)
		return
	}
	defer clear(pinBytes)

	res, err := h.service.ResolveSolanaStyle(r.Context(), pinBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse(res))
}

// Style handles GET /solana/style
// @Summary      Current Solana path style
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.SolanaStyleResponse
// @Router       /solana/style [get]
func (h *WalletHandler) Style(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	style, err := h.service.SolanaStyle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SolanaStyleResponse{Style: style.Name()})
}

func resolveResponse(res *solana.Resolution) model.ResolveResponse {
	out := model.ResolveResponse{
		Style:   res.Style.Name(),
		Address: res.Address,
		Results: make([]model.StyleReport, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		report := model.StyleReport{
			Style:   r.Style.Name(),
			Path:    r.Path.String(),
			Address: r.Address,
			Funded:  r.Funded,
		}
		if r.Err != nil {
			report.Error = model.UserMessage(r.Err)
		}
		out.Results = append(out.Results, report)
	}
	return out
}
