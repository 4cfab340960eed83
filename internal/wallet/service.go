// Package wallet wires derivation, the vault and the chain builders into the
// operations exposed by walletd and walletctl.
package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/AlexZinkM/multiwallet/evm"
	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/vault"
	"github.com/AlexZinkM/multiwallet/solana"
	"github.com/AlexZinkM/multiwallet/tron"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Options are the collaborators of a Service. Builders and Broadcaster may
// be nil when the corresponding network is not configured.
type Options struct {
	Vault       *vault.Vault
	Resolver    *solana.Resolver
	Preferences *solana.PreferenceStore

	EVM    *evm.Builder
	Solana *solana.Builder
	Tron   *tron.Builder

	Broadcaster model.Broadcaster
}

// Service is the key-management facade. Secrets are decrypted per call and
// cleared before returning.
type Service struct {
	vault       *vault.Vault
	resolver    *solana.Resolver
	prefs       *solana.PreferenceStore
	evm         *evm.Builder
	solana      *solana.Builder
	tron        *tron.Builder
	broadcaster model.Broadcaster
	log         *zap.Logger
}

func New(opts Options) *Service {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = solana.NewResolver(nil, nil)
	}
	return &Service{
		vault:       opts.Vault,
		resolver:    resolver,
		prefs:       opts.Preferences,
		evm:         opts.EVM,
		solana:      opts.Solana,
		tron:        opts.Tron,
		broadcaster: opts.Broadcaster,
		log:         logger.Named("wallet"),
	}
}

// CreateWallet generates a new mnemonic, stores it under pin and returns it
// so it can be written down.
func (s *Service) CreateWallet(ctx context.Context, words int, pin []byte) (string, error) {
	if words == 0 {
		words = 12
	}
	mnemonic, err := hdkey.NewMnemonic(words)
	if err != nil {
		return "", err
	}
	if err := s.storeMnemonic(ctx, mnemonic, pin); err != nil {
		return "", err
	}
	s.log.Info("wallet created", zap.Int("words", words))
	return mnemonic, nil
}

// ImportWallet validates and stores an existing mnemonic.
func (s *Service) ImportWallet(ctx context.Context, mnemonic string, pin []byte) error {
	mnemonic = hdkey.NormalizeMnemonic(mnemonic)
	if !hdkey.ValidateMnemonic(mnemonic) {
		return fmt.Errorf("%w: invalid mnemonic", model.ErrInvalidKey)
	}
	if err := s.storeMnemonic(ctx, mnemonic, pin); err != nil {
		return err
	}
	s.log.Info("wallet imported")
	return nil
}

func (s *Service) storeMnemonic(ctx context.Context, mnemonic string, pin []byte) error {
	// every blob in the vault shares one PIN
	if err := s.vault.VerifyPIN(ctx, pin); err != nil {
		return err
	}

	secret := []byte(mnemonic)
	defer clear(secret)
	if err := s.vault.StoreMnemonic(ctx, secret, pin); err != nil {
		return err
	}

	if s.prefs != nil {
		if err := s.prefs.Reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

// withSeed decrypts the mnemonic and passes its seed to fn.
func (s *Service) withSeed(ctx context.Context, pin []byte, fn func(seed []byte) error) error {
	mnemonic, err := s.vault.RevealMnemonic(ctx, pin)
	if err != nil {
		return err
	}
	defer clear(mnemonic)

	seed, err := hdkey.SeedFromMnemonic(string(mnemonic), "")
	if err != nil {
		return err
	}
	defer clear(seed)

	return fn(seed)
}

// SolanaStyle returns the persisted path style, or the resolver default.
func (s *Service) SolanaStyle(ctx context.Context) (hdkey.PathStyle, error) {
	if s.prefs == nil {
		return s.resolver.DefaultStyle(), nil
	}
	return s.prefs.Load(ctx, s.resolver.DefaultStyle())
}

func (s *Service) deriveKey(ctx context.Context, seed []byte, chain model.Chain, index uint32) (*hdkey.DerivedKey, error) {
	var style hdkey.PathStyle
	if chain == model.ChainSolana {
		var err error
		if style, err = s.SolanaStyle(ctx); err != nil {
			return nil, err
		}
	}
	return hdkey.DeriveChainKey(seed, chain, style, index)
}

// Address derives the address of account index on chain.
func (s *Service) Address(ctx context.Context, pin []byte, chain model.Chain, index uint32) (*model.AddressResponse, error) {
	var resp *model.AddressResponse
	err := s.withSeed(ctx, pin, func(seed []byte) error {
		key, err := s.deriveKey(ctx, seed, chain, index)
		if err != nil {
			return err
		}
		defer key.Zero()

		addr, err := derivedAddress(key, chain)
		if err != nil {
			return err
		}
		pub, err := hdkey.PublicKey(key)
		if err != nil {
			return err
		}
		resp = &model.AddressResponse{
			Chain:     chain,
			Index:     index,
			Path:      key.Path.String(),
			Address:   addr,
			PublicKey: hex.EncodeToString(pub),
		}
		return nil
	})
	return resp, err
}

// Addresses derives account index on every supported chain.
func (s *Service) Addresses(ctx context.Context, pin []byte, index uint32) ([]model.AddressResponse, error) {
	out := make([]model.AddressResponse, 0, len(model.Chains))
	for _, chain := range model.Chains {
		resp, err := s.Address(ctx, pin, chain, index)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func derivedAddress(key *hdkey.DerivedKey, chain model.Chain) (string, error) {
	switch chain {
	case model.ChainEVM, model.ChainTron:
		priv, err := hdkey.Secp256k1Key(key)
		if err != nil {
			return "", err
		}
		return secp256k1Address(priv, chain), nil
	case model.ChainSolana:
		priv, err := hdkey.Ed25519Key(key)
		if err != nil {
			return "", err
		}
		defer clear(priv)
		return address.SolanaAddress(priv.Public().(ed25519.PublicKey)), nil
	}
	return "", fmt.Errorf("%w: unsupported chain %q", model.ErrMissingParameter, chain)
}

// ImportPrivateKey parses a standalone key for chain, encrypts it under pin
// and records it in the vault. EVM and Tron take hex, Solana a Base58
// keypair or hex secret.
func (s *Service) ImportPrivateKey(ctx context.Context, chain model.Chain, key, label string, pin []byte) (*model.StoredKeyEntry, error) {
	if err := s.vault.VerifyPIN(ctx, pin); err != nil {
		return nil, err
	}

	var (
		addr   string
		secret []byte
	)
	switch chain {
	case model.ChainEVM, model.ChainTron:
		priv, err := hdkey.ParseSecp256k1Hex(key)
		if err != nil {
			return nil, err
		}
		addr = secp256k1Address(priv, chain)
		secret = crypto.FromECDSA(priv)
	case model.ChainSolana:
		priv, err := hdkey.ParseEd25519(key)
		if err != nil {
			return nil, err
		}
		addr = address.SolanaAddress(priv.Public().(ed25519.PublicKey))
		secret = priv
	default:
		return nil, fmt.Errorf("%w: unsupported chain %q", model.ErrMissingParameter, chain)
	}
	defer clear(secret)

	entry := model.StoredKeyEntry{Address: addr, Chain: chain, Label: label}
	if err := s.vault.ImportKey(ctx, entry, secret, pin); err != nil {
		return nil, err
	}
	return s.vault.Entry(ctx, addr, chain)
}

// SignTransfer signs params with the key derived for account index on chain.
func (s *Service) SignTransfer(ctx context.Context, chain model.Chain, pin []byte, index uint32, params model.TransferParams) (*model.SignedTransaction, error) {
	var tx *model.SignedTransaction
	err := s.withSeed(ctx, pin, func(seed []byte) error {
		key, err := s.deriveKey(ctx, seed, chain, index)
		if err != nil {
			return err
		}
		defer key.Zero()

		switch key.Curve {
		case hdkey.Secp256k1:
			priv, err := hdkey.Secp256k1Key(key)
			if err != nil {
				return err
			}
			tx, err = s.signSecp256k1(ctx, chain, priv, params)
			return err
		case hdkey.Ed25519:
			priv, err := hdkey.Ed25519Key(key)
			if err != nil {
				return err
			}
			defer clear(priv)
			tx, err = s.signEd25519(ctx, priv, params)
			return err
		}
		return fmt.Errorf("%w: unsupported curve %s", model.ErrInvalidKey, key.Curve)
	})
	return tx, err
}

// SignWithImportedKey signs params with the imported key stored for
// params.From.
func (s *Service) SignWithImportedKey(ctx context.Context, chain model.Chain, pin []byte, params model.TransferParams) (*model.SignedTransaction, error) {
	if err := address.Validate(chain, params.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}

	secret, err := s.vault.Reveal(ctx, params.From, chain, pin)
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	switch chain {
	case model.ChainEVM, model.ChainTron:
		priv, err := crypto.ToECDSA(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: stored key is corrupt", model.ErrInvalidKey)
		}
		return s.signSecp256k1(ctx, chain, priv, params)
	case model.ChainSolana:
		if len(secret) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: stored key is corrupt", model.ErrInvalidKey)
		}
		return s.signEd25519(ctx, ed25519.PrivateKey(secret), params)
	}
	return nil, fmt.Errorf("%w: unsupported chain %q", model.ErrMissingParameter, chain)
}

func (s *Service) signEd25519(ctx context.Context, key ed25519.PrivateKey, params model.TransferParams) (*model.SignedTransaction, error) {
	if s.solana == nil {
		return nil, notConfigured(model.ChainSolana)
	}
	return s.solana.BuildAndSign(ctx, key, params)
}

// Broadcast submits tx through the configured network.
func (s *Service) Broadcast(ctx context.Context, tx *model.SignedTransaction) (*model.BroadcastResult, error) {
	if s.broadcaster == nil {
		return nil, notConfigured(tx.Chain)
	}
	return s.broadcaster.Broadcast(ctx, tx)
}

// ResolveSolanaStyle probes every Solana path style of the stored mnemonic
// and persists the winner.
func (s *Service) ResolveSolanaStyle(ctx context.Context, pin []byte) (*solana.Resolution, error) {
	var res *solana.Resolution
	err := s.withSeed(ctx, pin, func(seed []byte) error {
		var err error
		res, err = s.resolver.ResolveSeed(ctx, seed)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.prefs != nil {
		if err := s.prefs.SaveResolution(ctx, res); err != nil {
			return nil, err
		}
	}
	s.log.Info("solana path style resolved", zap.String("style", res.Style.Name()), zap.String("address", res.Address))
	return res, nil
}

func (s *Service) ChangePIN(ctx context.Context, oldPIN, newPIN []byte) error {
	return s.vault.ChangePIN(ctx, oldPIN, newPIN)
}

func (s *Service) DeleteKey(ctx context.Context, addr string, chain model.Chain) error {
	return s.vault.Delete(ctx, addr, chain)
}

func (s *Service) ClearKeys(ctx context.Context) error {
	return s.vault.Clear(ctx)
}

func (s *Service) Entries(ctx context.Context) ([]model.StoredKeyEntry, error) {
	return s.vault.Entries(ctx)
}

func notConfigured(chain model.Chain) error {
	return fmt.Errorf("%w: no network configured for %s", model.ErrUpstreamUnavailable, chain)
}
