// Package hdkey derives chain signing keys from a BIP39 seed: BIP32 over
// secp256k1 for EVM and Tron, SLIP-10 over ed25519 for Solana.
package hdkey

import (
	"crypto/ed25519"
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/model"
)

// Curve selects the derivation scheme.
type Curve int

const (
	Secp256k1 Curve = iota
	Ed25519
)

func (c Curve) String() string {
	switch c {
	case Secp256k1:
		return "secp256k1"
	case Ed25519:
		return "ed25519"
	}
	return fmt.Sprintf("curve(%d)", int(c))
}

// DerivedKey is a private key and chain code at Path. Call Zero once the key
// is no longer needed.
type DerivedKey struct {
	PrivateKey [32]byte
	ChainCode  [32]byte
	Curve      Curve
	Path       DerivationPath
}

// Zero wipes the key material.
func (k *DerivedKey) Zero() {
	if k == nil {
		return
	}
	clear(k.PrivateKey[:])
	clear(k.ChainCode[:])
}

// DeriveKey derives the key at path from seed. It is deterministic and
// performs no I/O.
func DeriveKey(seed []byte, path DerivationPath, curve Curve) (*DerivedKey, error) {
	switch curve {
	case Secp256k1:
		return deriveSecp256k1(seed, path)
	case Ed25519:
		return deriveEd25519(seed, path)
	}
	return nil, fmt.Errorf("%w: unsupported curve %s", model.ErrInvalidPath, curve)
}

// DeriveChainKey derives account index on chain, resolving the path with
// ChainPath.
func DeriveChainKey(seed []byte, chain model.Chain, style PathStyle, index uint32) (*DerivedKey, error) {
	path, err := ChainPath(chain, style, index)
	if err != nil {
		return nil, err
	}
	return DeriveKey(seed, path, CurveFor(chain))
}

// PublicKey returns the public key of k: SEC1 compressed for secp256k1, the
// raw 32 bytes for ed25519.
func PublicKey(k *DerivedKey) ([]byte, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: missing key", model.ErrInvalidKey)
	}
	switch k.Curve {
	case Secp256k1:
		return compressedPublicKey(k), nil
	case Ed25519:
		priv, err := Ed25519Key(k)
		if err != nil {
			return nil, err
		}
		defer clear(priv)
		return append([]byte(nil), priv[ed25519.SeedSize:]...), nil
	}
	return nil, fmt.Errorf("%w: unsupported curve %s", model.ErrInvalidKey, k.Curve)
}
