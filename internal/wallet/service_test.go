package wallet

import (
	"context"
	"crypto/ed25519"
	"math/big"
	"strings"
	"testing"

	"github.com/AlexZinkM/multiwallet/evm"
	"github.com/AlexZinkM/multiwallet/internal/address"
	"github.com/AlexZinkM/multiwallet/internal/crypto"
	"github.com/AlexZinkM/multiwallet/internal/hdkey"
	"github.com/AlexZinkM/multiwallet/internal/model"
	"github.com/AlexZinkM/multiwallet/internal/store"
	"github.com/AlexZinkM/multiwallet/internal/vault"
	"github.com/AlexZinkM/multiwallet/solana"
	"github.com/AlexZinkM/multiwallet/tron"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	sol "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

const (
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	abandonEVM      = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	abandonSolana   = "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"
	hardhat0Key     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhat0Address = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	recipientEVM    = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

var pin = []byte("123456")

type evmState struct{}

func (evmState) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (evmState) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 3, nil
}
func (evmState) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (evmState) BaseFee(context.Context) (*big.Int, error) { return big.NewInt(10_000_000_000), nil }

type solanaState struct{}

func (solanaState) LatestBlockhash(context.Context) (sol.Hash, error) {
	return sol.HashFromBytes(make([]byte, 32)), nil
}
func (solanaState) AccountExists(context.Context, sol.PublicKey) (bool, error) { return true, nil }
func (solanaState) MintDecimals(context.Context, sol.PublicKey) (uint8, error) { return 6, nil }

type tronState struct{}

func (tronState) LatestBlock(context.Context) (*tron.Block, error) {
	return &tron.Block{Number: 1000, ID: make([]byte, 32), Timestamp: 1_700_000_000_000}, nil
}

// fundedBalances reports funds only for the addresses it holds.
type fundedBalances map[string]bool

func (f fundedBalances) GetBalance(_ context.Context, _ model.Chain, addr string) (*model.Balance, error) {
	amount := big.NewInt(0)
	if f[addr] {
		amount = big.NewInt(1)
	}
	return &model.Balance{Native: model.NativeBalance{Balance: amount}}, nil
}

type recordingBroadcaster struct {
	sent []*model.SignedTransaction
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, tx *model.SignedTransaction) (*model.BroadcastResult, error) {
	r.sent = append(r.sent, tx)
	return &model.BroadcastResult{TxHash: tx.TxID}, nil
}

func newTestService(t *testing.T, balances model.BalanceLookup, defaultStyle hdkey.PathStyle) *Service {
	t.Helper()

	mem := store.NewMemory()
	t.Cleanup(func() { _ = mem.Close() })

	return New(Options{
		Vault:       vault.New(mem, mem, crypto.MinIterations),
		Resolver:    solana.NewResolver(balances, defaultStyle),
		Preferences: solana.NewPreferenceStore(mem),
		EVM:         evm.NewBuilder(evmState{}, 0),
		Solana:      solana.NewBuilder(solanaState{}),
		Tron:        tron.NewBuilder(tronState{}, 0),
		Broadcaster: &recordingBroadcaster{},
	})
}

func TestCreateWallet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, nil)

	mnemonic, err := s.CreateWallet(ctx, 24, pin)
	require.NoError(t, err)
	require.Len(t, strings.Fields(mnemonic), 24)
	require.True(t, hdkey.ValidateMnemonic(mnemonic))

	addrs, err := s.Addresses(ctx, pin, 0)
	require.NoError(t, err)
	require.Len(t, addrs, len(model.Chains))
	for _, a := range addrs {
		require.NoError(t, address.Validate(a.Chain, a.Address))
	}

	_, err = s.CreateWallet(ctx, 15, pin)
	require.ErrorIs(t, err, model.ErrMissingParameter)
}

func TestImportWalletAddresses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, hdkey.Primary)
	require.NoError(t, s.ImportWallet(ctx, "  Abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon ABOUT ", pin))

	tests := []struct {
		chain model.Chain
		path  string
		want  string
	}{
		{model.ChainEVM, "m/44'/60'/0'/0/0", abandonEVM},
		{model.ChainSolana, "m/44'/501'/0'/0'", abandonSolana},
	}
	for _, tt := range tests {
		got, err := s.Address(ctx, pin, tt.chain, 0)
		require.NoError(t, err)
		require.Equal(t, tt.want, got.Address)
		require.Equal(t, tt.path, got.Path)
		require.NotEmpty(t, got.PublicKey)
	}

	tronAddr, err := s.Address(ctx, pin, model.ChainTron, 0)
	require.NoError(t, err)
	require.Equal(t, "m/44'/195'/0'/0/0", tronAddr.Path)
	require.True(t, address.IsTronAddress(tronAddr.Address))

	_, err = s.Address(ctx, []byte("000000"), model.ChainEVM, 0)
	require.ErrorIs(t, err, model.ErrDecryptionFailed)
}

func TestImportWalletValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, nil)

	err := s.ImportWallet(ctx, "abandon abandon abandon", pin)
	require.ErrorIs(t, err, model.ErrInvalidKey)

	_, err = s.Address(ctx, pin, model.ChainEVM, 0)
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))
	// replacing the mnemonic requires the vault PIN
	err = s.ImportWallet(ctx, abandonMnemonic, []byte("999999"))
	require.ErrorIs(t, err, model.ErrDecryptionFailed)

	for _, chain := range model.Chains {
		_, err = s.Address(ctx, pin, chain, 1<<31)
		require.ErrorIs(t, err, model.ErrInvalidPath, chain)
	}
	_, err = s.SignTransfer(ctx, model.ChainEVM, pin, 1<<31, model.TransferParams{
		From:   abandonEVM,
		To:     recipientEVM,
		Amount: "1",
	})
	require.ErrorIs(t, err, model.ErrInvalidPath)
}

func TestResolveSolanaStylePersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seed, err := hdkey.SeedFromMnemonic(abandonMnemonic, "")
	require.NoError(t, err)
	key, err := hdkey.DeriveKey(seed, hdkey.Alternate.Path(0), hdkey.Ed25519)
	require.NoError(t, err)
	priv, err := hdkey.Ed25519Key(key)
	require.NoError(t, err)
	alternate := address.SolanaAddress(priv.Public().(ed25519.PublicKey))

	s := newTestService(t, fundedBalances{alternate: true}, hdkey.Legacy)
	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))

	style, err := s.SolanaStyle(ctx)
	require.NoError(t, err)
	require.Equal(t, "legacy", style.Name())

	res, err := s.ResolveSolanaStyle(ctx, pin)
	require.NoError(t, err)
	require.Equal(t, "alternate", res.Style.Name())
	require.Equal(t, alternate, res.Address)

	got, err := s.Address(ctx, pin, model.ChainSolana, 0)
	require.NoError(t, err)
	require.Equal(t, alternate, got.Address)

	// a new mnemonic forgets the resolved style
	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))
	style, err = s.SolanaStyle(ctx)
	require.NoError(t, err)
	require.Equal(t, "legacy", style.Name())
}

func TestSignTransferDerived(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, hdkey.Primary)
	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))

	tx, err := s.SignTransfer(ctx, model.ChainEVM, pin, 0, model.TransferParams{
		From:   abandonEVM,
		To:     recipientEVM,
		Amount: "0.01",
	})
	require.NoError(t, err)
	require.Equal(t, model.ChainEVM, tx.Chain)

	var signed types.Transaction
	require.NoError(t, signed.UnmarshalBinary(tx.Serialized))
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), &signed)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(abandonEVM), sender)
	require.Equal(t, uint64(3), signed.Nonce())

	tronFrom, err := s.Address(ctx, pin, model.ChainTron, 0)
	require.NoError(t, err)
	tx, err = s.SignTransfer(ctx, model.ChainTron, pin, 0, model.TransferParams{
		From:   tronFrom.Address,
		To:     "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		Amount: "1.5",
	})
	require.NoError(t, err)
	require.Equal(t, model.ChainTron, tx.Chain)
	require.Len(t, tx.TxID, 64)

	tx, err = s.SignTransfer(ctx, model.ChainSolana, pin, 0, model.TransferParams{
		From:   abandonSolana,
		To:     sol.SystemProgramID.String(),
		Amount: "0.5",
	})
	require.NoError(t, err)
	require.Equal(t, model.ChainSolana, tx.Chain)

	// the derived key must match From
	_, err = s.SignTransfer(ctx, model.ChainEVM, pin, 1, model.TransferParams{
		From:   abandonEVM,
		To:     recipientEVM,
		Amount: "0.01",
	})
	require.ErrorIs(t, err, model.ErrInvalidKey)

	res, err := s.Broadcast(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, tx.TxID, res.TxHash)
}

func TestImportedKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, nil)

	entry, err := s.ImportPrivateKey(ctx, model.ChainEVM, "0x"+hardhat0Key, "hardhat", pin)
	require.NoError(t, err)
	require.Equal(t, hardhat0Address, entry.Address)
	require.Equal(t, "hardhat", entry.Label)

	tx, err := s.SignWithImportedKey(ctx, model.ChainEVM, pin, model.TransferParams{
		From:   strings.ToLower(hardhat0Address),
		To:     recipientEVM,
		Amount: "1",
	})
	require.NoError(t, err)
	var signed types.Transaction
	require.NoError(t, signed.UnmarshalBinary(tx.Serialized))
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), &signed)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(hardhat0Address), sender)

	tronEntry, err := s.ImportPrivateKey(ctx, model.ChainTron, hardhat0Key, "", pin)
	require.NoError(t, err)
	evmKey, err := ethcrypto.HexToECDSA(hardhat0Key)
	require.NoError(t, err)
	require.Equal(t, address.TronAddress(&evmKey.PublicKey), tronEntry.Address)

	solKey := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	solEntry, err := s.ImportPrivateKey(ctx, model.ChainSolana, base58.Encode(solKey), "phantom", pin)
	require.NoError(t, err)
	require.Equal(t, address.SolanaAddress(solKey.Public().(ed25519.PublicKey)), solEntry.Address)

	tx, err = s.SignWithImportedKey(ctx, model.ChainSolana, pin, model.TransferParams{
		From:   solEntry.Address,
		To:     sol.SystemProgramID.String(),
		Amount: "0.1",
	})
	require.NoError(t, err)
	require.Equal(t, model.ChainSolana, tx.Chain)

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	_, err = s.SignWithImportedKey(ctx, model.ChainEVM, pin, model.TransferParams{
		From:   recipientEVM,
		To:     hardhat0Address,
		Amount: "1",
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.ImportPrivateKey(ctx, model.ChainEVM, hardhat0Key, "", []byte("654321"))
	require.ErrorIs(t, err, model.ErrDecryptionFailed)

	_, err = s.ImportPrivateKey(ctx, model.ChainEVM, "not-a-key", "", pin)
	require.ErrorIs(t, err, model.ErrInvalidKey)

	require.NoError(t, s.DeleteKey(ctx, hardhat0Address, model.ChainEVM))
	require.ErrorIs(t, s.DeleteKey(ctx, hardhat0Address, model.ChainEVM), model.ErrNotFound)

	require.NoError(t, s.ClearKeys(ctx))
	entries, err = s.Entries(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestChangePIN(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(t, nil, nil)
	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))
	_, err := s.ImportPrivateKey(ctx, model.ChainEVM, hardhat0Key, "", pin)
	require.NoError(t, err)

	newPIN := []byte("654321")
	require.ErrorIs(t, s.ChangePIN(ctx, []byte("000000"), newPIN), model.ErrDecryptionFailed)
	require.NoError(t, s.ChangePIN(ctx, pin, newPIN))

	got, err := s.Address(ctx, newPIN, model.ChainEVM, 0)
	require.NoError(t, err)
	require.Equal(t, abandonEVM, got.Address)

	_, err = s.Address(ctx, pin, model.ChainEVM, 0)
	require.ErrorIs(t, err, model.ErrDecryptionFailed)
}

func TestNetworkNotConfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := store.NewMemory()
	s := New(Options{Vault: vault.New(mem, mem, crypto.MinIterations)})
	require.NoError(t, s.ImportWallet(ctx, abandonMnemonic, pin))

	_, err := s.SignTransfer(ctx, model.ChainEVM, pin, 0, model.TransferParams{
		From:   abandonEVM,
		To:     recipientEVM,
		Amount: "1",
	})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)

	_, err = s.Broadcast(ctx, &model.SignedTransaction{Chain: model.ChainEVM, Serialized: []byte{1}})
	require.ErrorIs(t, err, model.ErrUpstreamUnavailable)
}
