package api

import (
	"net/http"

	"github.com/AlexZinkM/multiwallet/internal/handler"
	"github.com/AlexZinkM/multiwallet/internal/metrics"
	"github.com/AlexZinkM/multiwallet/internal/wallet"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(service *wallet.Service, pin handler.PINSource) http.Handler {
	metrics.Init()

	walletHandler := handler.NewWalletHandler(service, pin)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", handler.Health)

	// Wallet endpoints
	mux.HandleFunc("/wallet/create", walletHandler.Create)
	mux.HandleFunc("/wallet/import", walletHandler.Import)
	mux.HandleFunc("/wallet/address", walletHandler.Address)
	mux.HandleFunc("/wallet/sign", walletHandler.Sign)
	mux.HandleFunc("/pin/change", walletHandler.ChangePIN)

	// Imported keys
	mux.HandleFunc("/keys", walletHandler.Keys)
	mux.HandleFunc("/keys/import", walletHandler.ImportKey)

	// Solana endpoints
	mux.HandleFunc("/solana/resolve", walletHandler.Resolve)
	mux.HandleFunc("/solana/style", walletHandler.Style)

	return metrics.Middleware(mux)
}
