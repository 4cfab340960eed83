package address

import (
	"crypto/ed25519"

	"github.com/AlexZinkM/multiwallet/internal/base58"
)

// SolanaAddress returns the Base58 encoding of a 32-byte ed25519 public key.
func SolanaAddress(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// IsSolanaAddress reports whether s decodes to exactly 32 bytes.
func IsSolanaAddress(s string) bool {
	if s == "" || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == ed25519.PublicKeySize
}
