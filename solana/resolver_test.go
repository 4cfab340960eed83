package solana

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeBalances struct {
	funded  map[string]bool
	failing map[string]bool
	queried []string
}

func (f *fakeBalances) GetBalance(_ context.Context, chain model.Chain, addr string) (*model.Balance, error) {
	f.queried = append(f.queried, addr)
	if chain != model.ChainSolana {
		return nil, errors.New("unexpected chain")
	}
	if f.failing[addr] {
		return nil, errors.New("rpc timeout")
	}

	b := &model.Balance{Native: model.NativeBalance{Balance: big.NewInt(0), Decimals: 9, Symbol: "SOL"}}
	if f.funded[addr] {
		b.Tokens = []model.TokenBalance{{Identifier: usdcMint, Balance: big.NewInt(1), Decimals: 6}}
	}
	return b, nil
}

// styleAddresses derives account 0 of every style.
func styleAddresses(t *testing.T) map[string]string {
	t.Helper()

	r := NewResolver(&fakeBalances{}, hdkey.Legacy)
	res, err := r.ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)

	out := map[string]string{}
	for _, sr := range res.Results {
		out[sr.Style.Name()] = sr.Address
	}
	require.Equal(t, abandonPrimary, out["primary"])
	return out
}

func TestResolveFirstFundedWins(t *testing.T) {
	t.Parallel()

	addrs := styleAddresses(t)

	balances := &fakeBalances{funded: map[string]bool{
		addrs["alternate"]: true,
		addrs["legacy"]:    true,
	}}
	res, err := NewResolver(balances, hdkey.Legacy).ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)

	require.Equal(t, "alternate", res.Style.Name())
	require.Equal(t, addrs["alternate"], res.Address)
	require.Len(t, res.Results, 3)
	require.Equal(t, []string{addrs["primary"], addrs["alternate"], addrs["legacy"]}, balances.queried)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	t.Parallel()

	addrs := styleAddresses(t)

	for _, style := range hdkey.SolanaStyles() {
		res, err := NewResolver(&fakeBalances{}, style).ResolvePathStyle(context.Background(), abandonMnemonic)
		require.NoError(t, err)
		require.Equal(t, style.Name(), res.Style.Name())
		require.Equal(t, addrs[style.Name()], res.Address)
	}

	// nil default means legacy
	res, err := NewResolver(&fakeBalances{}, nil).ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)
	require.Equal(t, "legacy", res.Style.Name())
}

func TestResolveToleratesLookupFailures(t *testing.T) {
	t.Parallel()

	addrs := styleAddresses(t)

	balances := &fakeBalances{
		failing: map[string]bool{addrs["primary"]: true},
		funded:  map[string]bool{addrs["legacy"]: true},
	}
	res, err := NewResolver(balances, hdkey.Primary).ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)
	require.Equal(t, "legacy", res.Style.Name())

	require.Error(t, res.Results[0].Err)
	require.False(t, res.Results[0].Funded)
	require.NoError(t, res.Results[2].Err)
	require.True(t, res.Results[2].Funded)
}

func TestResolveAllFailing(t *testing.T) {
	t.Parallel()

	addrs := styleAddresses(t)
	failing := map[string]bool{}
	for _, a := range addrs {
		failing[a] = true
	}

	res, err := NewResolver(&fakeBalances{failing: failing}, hdkey.Alternate).ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)
	require.Equal(t, "alternate", res.Style.Name())
}

func TestResolveInvalidMnemonic(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(&fakeBalances{}, nil).ResolvePathStyle(context.Background(), "not a mnemonic")
	require.ErrorIs(t, err, model.ErrInvalidKey)
}

func TestPreferenceStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := store.NewMemory()
	prefs := NewPreferenceStore(mem)

	style, err := prefs.Load(ctx, hdkey.Legacy)
	require.NoError(t, err)
	require.Equal(t, "legacy", style.Name())

	require.NoError(t, prefs.SaveResolution(ctx, &Resolution{Style: hdkey.Alternate}))

	style, err = prefs.Load(ctx, hdkey.Legacy)
	require.NoError(t, err)
	require.Equal(t, "alternate", style.Name())

	var raw string
	require.NoError(t, mem.Get(ctx, PreferenceKey, &raw))
	require.Equal(t, "alternate", raw)
}

func TestPreferenceStoreReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	prefs := NewPreferenceStore(store.NewMemory())

	require.NoError(t, prefs.Reset(ctx))
	require.NoError(t, prefs.Save(ctx, hdkey.Primary))
	require.NoError(t, prefs.Reset(ctx))

	style, err := prefs.Load(ctx, hdkey.Alternate)
	require.NoError(t, err)
	require.Equal(t, "alternate", style.Name())
}

func TestResolveWithoutBalanceLookup(t *testing.T) {
	t.Parallel()

	res, err := NewResolver(nil, hdkey.Primary).ResolvePathStyle(context.Background(), abandonMnemonic)
	require.NoError(t, err)
	require.Equal(t, "primary", res.Style.Name())
	for _, r := range res.Results {
		require.ErrorIs(t, r.Err, model.ErrUpstreamUnavailable)
		require.False(t, r.Funded)
	}
}
