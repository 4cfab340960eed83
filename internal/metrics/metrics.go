package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SignedTransactions counts transactions signed per chain and kind
	// (native or token).
	SignedTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiwallet_signed_transactions_total",
			Help: "Total number of signed transactions.",
		},
		[]string{"chain", "kind"},
	)

	// DecryptFailures counts vault blobs that failed to decrypt, which is
	// almost always a wrong PIN.
	DecryptFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "multiwallet_vault_decrypt_failures_total",
			Help: "Total number of failed vault decryptions.",
		},
	)

	// KDFDuration records PBKDF2 key derivation time.
	KDFDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "multiwallet_kdf_seconds",
			Help:    "PBKDF2 key derivation latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
	)

	// HTTPRequestsTotal counts walletd requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiwallet_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "multiwallet_http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)
)

var registerOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SignedTransactions)
		prometheus.MustRegister(DecryptFailures)
		prometheus.MustRegister(KDFDuration)
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}

// ObserveKDF records the time elapsed since start.
func ObserveKDF(start time.Time) {
	KDFDuration.Observe(time.Since(start).Seconds())
}

// TransferKind labels a transfer for SignedTransactions.
func TransferKind(isToken bool) string {
	if isToken {
		return "token"
	}
	return "native"
}
