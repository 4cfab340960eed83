package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/config"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"go.uber.org/zap"
)

// PINHeader overrides the PIN entered at startup for a single request.
const PINHeader = "X-Wallet-PIN"

// PINSource returns the PIN to unlock the vault with. Callers clear the
// returned slice.
type PINSource func() ([]byte, error)

// StartupPIN reads the PIN prompted when walletd started.
func StartupPIN() ([]byte, error) {
	return config.GetPINBytes()
}

func requestPIN(r *http.Request, fallback PINSource) ([]byte, error) {
	if pin := strings.TrimSpace(r.Header.Get(PINHeader)); pin != "" {
		return []byte(pin), nil
	}
	if fallback == nil {
		return nil, errors.New("PIN not set")
	}
	return fallback()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and a user-safe body.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, model.NewErrorResponse(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDecryptionFailed):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrInvalidPath),
		errors.Is(err, model.ErrInvalidKey),
		errors.Is(err, model.ErrInvalidAddress),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrMissingParameter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: msg, Code: "BAD_REQUEST"})
}

func writePINRequired(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: err.Error(), Code: "PIN_REQUIRED"})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: "ok"})
}
