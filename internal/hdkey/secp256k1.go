package hdkey

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
)

func deriveSecp256k1(seed []byte, path DerivationPath) (*DerivedKey, error) {
	// Network params only affect serialization, which is never used here
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create master key: %v", model.ErrInvalidKey, err)
	}

	for _, seg := range path {
		key, err = key.Derive(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to derive %s: %v", model.ErrInvalidPath, path, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}

	out := &DerivedKey{Curve: Secp256k1, Path: path}
	priv.Key.PutBytes(&out.PrivateKey)
	copy(out.ChainCode[:], key.ChainCode())
	priv.Zero()
	return out, nil
}

// Secp256k1Key converts a secp256k1 DerivedKey to an ECDSA private key.
func Secp256k1Key(k *DerivedKey) (*ecdsa.PrivateKey, error) {
	if k == nil || k.Curve != Secp256k1 {
		return nil, fmt.Errorf("%w: not a secp256k1 key", model.ErrInvalidKey)
	}
	priv, err := crypto.ToECDSA(k.PrivateKey[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidKey, err)
	}
	return priv, nil
}

// compressedPublicKey returns the 33-byte SEC1 compressed public key.
func compressedPublicKey(k *DerivedKey) []byte {
	priv, pub := btcec.PrivKeyFromBytes(k.PrivateKey[:])
	defer priv.Zero()
	return pub.SerializeCompressed()
}

// ParseSecp256k1Hex parses a standalone 32-byte private key given as 64 hex
// characters with an optional 0x prefix.
func ParseSecp256k1Hex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 64 {
		return nil, fmt.Errorf("%w: expected 64 hex characters", model.ErrInvalidKey)
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", model.ErrInvalidKey)
	}
	defer clear(raw)

	priv, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidKey, err)
	}
	return priv, nil
}
