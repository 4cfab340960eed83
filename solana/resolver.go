package solana

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/logger"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/store"

	"go.uber.org/zap"
)

// BalanceLookup is the balance collaborator used to probe path styles.
type BalanceLookup = model.BalanceLookup

// StyleResult is the outcome of probing one path style.
type StyleResult struct {
	Style   hdkey.PathStyle
	Path    hdkey.DerivationPath
	Address string
	Balance *model.Balance
	Funded  bool
	Err     error // lookup failure, the style then counts as unfunded
}

// Resolution is the style a mnemonic should use on Solana.
type Resolution struct {
	Style   hdkey.PathStyle
	Address string
	Results []StyleResult
}

// Resolver picks the Solana path style of an imported mnemonic by looking
// for funds under account 0 of every style.
type Resolver struct {
	balances     BalanceLookup
	defaultStyle hdkey.PathStyle
	log          *zap.Logger
}

// NewResolver creates a Resolver. defaultStyle is used when no style holds
// funds; nil means legacy. A nil balances resolves every mnemonic to the
// default.
func NewResolver(balances BalanceLookup, defaultStyle hdkey.PathStyle) *Resolver {
	if defaultStyle == nil {
		defaultStyle = hdkey.Legacy
	}
	return &Resolver{
		balances:     balances,
		defaultStyle: defaultStyle,
		log:          logger.Named("solana.resolver"),
	}
}

// DefaultStyle returns the fallback style.
func (r *Resolver) DefaultStyle() hdkey.PathStyle {
	return r.defaultStyle
}

// ResolvePathStyle probes every style in priority order and returns the
// first funded one, or the default style. A failed lookup is logged and
// treated as no balance.
func (r *Resolver) ResolvePathStyle(ctx context.Context, mnemonic string) (*Resolution, error) {
	seed, err := hdkey.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	return r.ResolveSeed(ctx, seed)
}

// ResolveSeed is ResolvePathStyle for an already derived seed.
func (r *Resolver) ResolveSeed(ctx context.Context, seed []byte) (*Resolution, error) {
	styles := hdkey.SolanaStyles()
	results := make([]StyleResult, 0, len(styles))

	var chosen *StyleResult
	var fallback *StyleResult
	for _, style := range styles {
		res, err := r.probe(ctx, seed, style)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	for i := range results {
		if chosen == nil && results[i].Funded {
			chosen = &results[i]
		}
		if results[i].Style.Name() == r.defaultStyle.Name() {
			fallback = &results[i]
		}
	}

	if chosen == nil {
		if fallback == nil {
			return nil, fmt.Errorf("%w: default style %s is not a solana style", model.ErrInvalidPath, r.defaultStyle.Name())
		}
		chosen = fallback
	}

	r.log.Info("solana path style resolved",
		zap.String("style", chosen.Style.Name()),
		zap.String("address", chosen.Address),
		zap.Bool("funded", chosen.Funded))

	return &Resolution{
		Style:   chosen.Style,
		Address: chosen.Address,
		Results: results,
	}, nil
}

func (r *Resolver) probe(ctx context.Context, seed []byte, style hdkey.PathStyle) (StyleResult, error) {
	path := style.Path(0)
	key, err := hdkey.DeriveKey(seed, path, hdkey.Ed25519)
	if err != nil {
		return StyleResult{}, fmt.Errorf("failed to derive %s: %w", style.Name(), err)
	}
	priv, err := hdkey.Ed25519Key(key)
	key.Zero()
	if err != nil {
		return StyleResult{}, err
	}
	addr := address.SolanaAddress(priv.Public().(ed25519.PublicKey))
	clear(priv)

	res := StyleResult{Style: style, Path: path, Address: addr}

	if r.balances == nil {
		res.Err = fmt.Errorf("%w: no balance lookup configured", model.ErrUpstreamUnavailable)
		return res, nil
	}

	balance, err := r.balances.GetBalance(ctx, model.ChainSolana, addr)
	if err != nil {
		r.log.Warn("balance lookup failed, treating style as unfunded",
			zap.String("style", style.Name()),
			zap.String("address", addr),
			zap.Error(err))
		res.Err = err
		return res, nil
	}

	res.Balance = balance
	res.Funded = balance.HasFunds()
	return res, nil
}

// PreferenceKey is the storage key of the persisted style name.
const PreferenceKey = "solana.pathStyle"

// PreferenceStore persists the chosen style through the storage port.
type PreferenceStore struct {
	store store.Store
}

func NewPreferenceStore(s store.Store) *PreferenceStore {
	return &PreferenceStore{store: s}
}

// Load returns the saved style, or fallback when none is saved.
func (p *PreferenceStore) Load(ctx context.Context, fallback hdkey.PathStyle) (hdkey.PathStyle, error) {
	var name string
	if err := p.store.Get(ctx, PreferenceKey, &name); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fallback, nil
		}
		return nil, fmt.Errorf("failed to load path style: %w", err)
	}
	return hdkey.StyleByName(name)
}

// Save persists style.
func (p *PreferenceStore) Save(ctx context.Context, style hdkey.PathStyle) error {
	if err := p.store.Set(ctx, PreferenceKey, style.Name()); err != nil {
		return fmt.Errorf("failed to save path style: %w", err)
	}
	return nil
}

// SaveResolution persists the style chosen by res.
func (p *PreferenceStore) SaveResolution(ctx context.Context, res *Resolution) error {
	return p.Save(ctx, res.Style)
}

// Reset forgets the saved style, e.g. after a different mnemonic is imported.
func (p *PreferenceStore) Reset(ctx context.Context) error {
	if err := p.store.Remove(ctx, PreferenceKey); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to reset path style: %w", err)
	}
	return nil
}
