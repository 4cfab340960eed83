package address

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	usdtTronHex    = "41a614f803b6fd780986a42c78ec9c7f77e6ded13c"
	usdtTronBase58 = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	hardhat0       = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	solanaSystem   = "11111111111111111111111111111111"
	solanaUSDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestEVMAddress(t *testing.T) {
	t.Parallel()

	priv, err := crypto.HexToECDSA("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	require.Equal(t, hardhat0, EVMAddress(&priv.PublicKey))
}

func TestIsEVMAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{hardhat0, true},
		{strings.ToLower(hardhat0), true},
		{"0x" + strings.ToUpper(hardhat0[2:]), true},
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92267", false}, // checksum broken by last digit
		{"0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266", false}, // checksum broken by case
		{"f39Fd6e51aad88F6F4ce6aB8827279cffFb92266", false},
		{"0x1234", false},
		{"", false},
		{usdtTronBase58, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsEVMAddress(tt.in), tt.in)
	}
}

func TestTronConversions(t *testing.T) {
	t.Parallel()

	b58, err := TronHexToBase58(usdtTronHex)
	require.NoError(t, err)
	require.Equal(t, usdtTronBase58, b58)

	hexForm, err := TronBase58ToHex(usdtTronBase58)
	require.NoError(t, err)
	require.Equal(t, usdtTronHex, hexForm)

	evm := common.HexToAddress("0xa614f803b6fd780986a42c78ec9c7f77e6ded13c")
	require.Equal(t, usdtTronBase58, TronFromEVM(evm))

	h41, err := EVMTo41Hex(evm.Hex())
	require.NoError(t, err)
	require.Equal(t, usdtTronHex, h41)

	back, err := TronToEVM(usdtTronBase58)
	require.NoError(t, err)
	require.Equal(t, evm, back)
}

func TestTronAddressFromKey(t *testing.T) {
	t.Parallel()

	priv, err := crypto.HexToECDSA("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)

	tron := TronAddress(&priv.PublicKey)
	require.True(t, IsTronAddress(tron))
	require.Equal(t, byte('T'), tron[0])

	evm, err := TronToEVM(tron)
	require.NoError(t, err)
	require.Equal(t, hardhat0, evm.Hex())
}

func TestIsTronAddressRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u", // checksum
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6",  // length
		"AR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", // prefix
		"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj0t", // alphabet
		hardhat0,
	} {
		require.False(t, IsTronAddress(in), in)
	}

	_, err := TronHexToBase58("42a614f803b6fd780986a42c78ec9c7f77e6ded13c")
	require.ErrorIs(t, err, model.ErrInvalidAddress)

	_, err = EVMTo41Hex("0xzz")
	require.ErrorIs(t, err, model.ErrInvalidAddress)
}

func TestTronRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var evm [20]byte
		copy(evm[:], rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "account"))

		addr := TronFromEVM(evm)
		if !IsTronAddress(addr) {
			t.Fatalf("%s does not validate", addr)
		}
		back, err := TronToEVM(addr)
		if err != nil {
			t.Fatalf("decode %s: %v", addr, err)
		}
		if back != common.Address(evm) {
			t.Fatalf("round trip %x -> %s -> %x", evm, addr, back)
		}
	})
}

func TestSolanaAddress(t *testing.T) {
	t.Parallel()

	require.Equal(t, solanaSystem, SolanaAddress(make(ed25519.PublicKey, 32)))
	require.True(t, IsSolanaAddress(solanaSystem))
	require.True(t, IsSolanaAddress(solanaUSDCMint))

	require.False(t, IsSolanaAddress(""))
	require.False(t, IsSolanaAddress("1111"))
	require.False(t, IsSolanaAddress(usdtTronBase58))
	require.False(t, IsSolanaAddress(solanaUSDCMint+"0"))
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		chain model.Chain
		ok    bool
	}{
		{hardhat0, model.ChainEVM, true},
		{usdtTronBase58, model.ChainTron, true},
		{solanaUSDCMint, model.ChainSolana, true},
		{"hello", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		chain, ok := Detect(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.chain, chain, tt.in)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(model.ChainEVM, hardhat0))
	require.NoError(t, Validate(model.ChainTron, usdtTronBase58))
	require.NoError(t, Validate(model.ChainSolana, solanaUSDCMint))

	require.ErrorIs(t, Validate(model.ChainEVM, usdtTronBase58), model.ErrInvalidAddress)
	require.ErrorIs(t, Validate(model.ChainTron, hardhat0), model.ErrInvalidAddress)
	require.ErrorIs(t, Validate(model.ChainSolana, usdtTronBase58), model.ErrInvalidAddress)
	require.ErrorIs(t, Validate(model.Chain("btc"), hardhat0), model.ErrInvalidAddress)
}
