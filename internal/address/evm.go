// Package address encodes and validates account addresses for every
// supported chain.
package address

import (
	"crypto/ecdsa"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// EVMAddress returns the EIP-55 checksummed address of pub.
func EVMAddress(pub *ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(*pub).Hex()
}

// IsEVMAddress reports whether s is 0x followed by 40 hex characters. All
// lower or all upper case is accepted as is, mixed case must carry a valid
// EIP-55 checksum.
func IsEVMAddress(s string) bool {
	if !evmAddressRe.MatchString(s) {
		return false
	}

	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}
