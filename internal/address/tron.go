package address

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/base58"
	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TronPrefix is the mainnet address version byte.
const TronPrefix = 0x41

var tronAddressRe = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

// TronFromEVM returns the Base58Check Tron address of a 20-byte account.
func TronFromEVM(evm [20]byte) string {
	payload := make([]byte, 0, 21)
	payload = append(payload, TronPrefix)
	payload = append(payload, evm[:]...)
	return base58.CheckEncode(payload)
}

// TronAddress returns the Tron address of pub.
func TronAddress(pub *ecdsa.PublicKey) string {
	return TronFromEVM(crypto.PubkeyToAddress(*pub))
}

// EVMTo41Hex converts a 0x EVM address to Tron hex form (41 + 40 hex).
func EVMTo41Hex(evmHex string) (string, error) {
	if !evmAddressRe.MatchString(evmHex) {
		return "", fmt.Errorf("%w: %q is not an EVM address", model.ErrInvalidAddress, evmHex)
	}
	return "41" + strings.ToLower(evmHex[2:]), nil
}

// TronHexToBase58 converts the 42-character hex form (41 prefix) to Base58.
func TronHexToBase58(hex41 string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hex41, "0x"))
	if err != nil || len(raw) != 21 || raw[0] != TronPrefix {
		return "", fmt.Errorf("%w: %q is not a 41-prefixed tron hex address", model.ErrInvalidAddress, hex41)
	}
	return base58.CheckEncode(raw), nil
}

// TronBase58ToHex converts a Base58 Tron address to its 41-prefixed hex form.
func TronBase58ToHex(addr string) (string, error) {
	payload, err := TronPayload(addr)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(payload[:]), nil
}

// TronPayload decodes a Base58 Tron address into its 21-byte payload
// (0x41 followed by the 20-byte account).
func TronPayload(addr string) ([21]byte, error) {
	var out [21]byte
	if !tronAddressRe.MatchString(addr) {
		return out, fmt.Errorf("%w: %q is not a tron address", model.ErrInvalidAddress, addr)
	}

	raw, err := base58.CheckDecode(addr)
	if err != nil {
		return out, fmt.Errorf("%w: %v", model.ErrInvalidAddress, err)
	}
	if len(raw) != 21 || raw[0] != TronPrefix {
		return out, fmt.Errorf("%w: %q has wrong payload", model.ErrInvalidAddress, addr)
	}

	copy(out[:], raw)
	return out, nil
}

// TronToEVM returns the 20-byte account behind a Tron address.
func TronToEVM(addr string) (common.Address, error) {
	payload, err := TronPayload(addr)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(payload[1:]), nil
}

// IsTronAddress reports whether s matches the Tron address format and its
// checksum verifies.
func IsTronAddress(s string) bool {
	_, err := TronPayload(s)
	return err == nil
}
