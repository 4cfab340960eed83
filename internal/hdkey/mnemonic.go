package hdkey

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic generates a fresh English BIP39 phrase of 12 or 24 words.
func NewMnemonic(words int) (string, error) {
	var bits int
	switch words {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return "", fmt.Errorf("%w: mnemonic must have 12 or 24 words, got %d", model.ErrMissingParameter, words)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace and lower-cases the phrase.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// ValidateMnemonic reports whether the phrase is a valid BIP39 mnemonic with
// a correct checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic))
}

// SeedFromMnemonic validates the phrase checksum and returns its 64-byte
// BIP39 seed.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(mnemonic), passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid mnemonic", model.ErrInvalidKey)
	}
	return seed, nil
}
