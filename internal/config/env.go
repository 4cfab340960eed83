package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the PIN is prompted at runtime and stored in memory - use GetPINBytes()
type Config struct {
	Port   string `envconfig:"PORT" default:"8080"`
	LogEnv string `envconfig:"LOG_ENV" default:"development"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"badger"`
	StorePath    string `envconfig:"STORE_PATH" default:"./data"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"multiwallet.vault"`

	// PBKDF2 rounds for newly written blobs, never below 100000
	PBKDF2Iterations int `envconfig:"VAULT_PBKDF2_ITERATIONS" default:"100000"`

	SolanaRPCURL           string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	SolanaDefaultPathStyle string `envconfig:"SOLANA_DEFAULT_PATH_STYLE" default:"legacy"`
	SolanaDefaultToken     string `envconfig:"SOLANA_DEFAULT_TOKEN" default:"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"` // USDC mint
	SolanaExplorerURL      string `envconfig:"SOLANA_EXPLORER_URL" default:"https://solscan.io/tx/%s"`

	EVMRPCURL        string `envconfig:"EVM_RPC_URL" default:"https://ethereum-rpc.publicnode.com"`
	EVMTokenGasLimit uint64 `envconfig:"EVM_TOKEN_GAS_LIMIT" default:"100000"`
	EVMExplorerURL   string `envconfig:"EVM_EXPLORER_URL" default:"https://etherscan.io/tx/%s"`

	TronAPIURL      string `envconfig:"TRON_API_URL" default:"https://api.trongrid.io"`
	TronAPIKey      string `envconfig:"TRON_API_KEY"`
	TronFeeLimitSun int64  `envconfig:"TRON_FEE_LIMIT_SUN" default:"30000000"`
	TronExplorerURL string `envconfig:"TRON_EXPLORER_URL" default:"https://tronscan.org/#/transaction/%s"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	cfg = c
	return nil
}

// Set replaces the global configuration, for tests and embedding.
func Set(c *Config) {
	cfg = c
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetEVMRPCURL returns the EVM JSON-RPC URL from configuration
func GetEVMRPCURL() string {
	return Get().EVMRPCURL
}

// GetTronAPIURL returns the TronGrid compatible HTTP API URL
func GetTronAPIURL() string {
	return Get().TronAPIURL
}

var pinBytes []byte

// PromptForPIN prompts the user for the wallet PIN in the terminal.
// The PIN is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPIN() error {
	raw, err := readSecret("Enter wallet PIN: ")
	if err != nil {
		return err
	}

	pinBytes = make([]byte, len(raw))
	copy(pinBytes, raw)
	clear(raw)
	return nil
}

// PromptForNewPIN asks for a new PIN twice and returns it. Caller must zero
// the returned slice after use.
func PromptForNewPIN() ([]byte, error) {
	first, err := readSecret("Enter new PIN: ")
	if err != nil {
		return nil, err
	}
	second, err := readSecret("Repeat new PIN: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errors.New("PINs do not match")
	}
	return first, nil
}

func readSecret(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter PIN")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read PIN: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("PIN cannot be empty")
	}
	return raw, nil
}

// SetPIN stores pin in memory as if it had been prompted.
func SetPIN(pin []byte) {
	clear(pinBytes)
	pinBytes = append([]byte(nil), pin...)
}

// GetPINBytes returns the PIN stored in memory (from PromptForPIN).
// Returns an error if the PIN was not set.
// Caller must zero the returned slice after use for security.
func GetPINBytes() ([]byte, error) {
	if len(pinBytes) == 0 {
		return nil, errors.New("PIN not set: call PromptForPIN at startup")
	}
	out := make([]byte, len(pinBytes))
	copy(out, pinBytes)
	return out, nil
}
