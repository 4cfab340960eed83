package hdkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/base58"
	"github.com/AlexZinkM/multiwallet/internal/model"
)

// SLIP-10 master key HMAC key for ed25519.
var ed25519SeedKey = []byte("ed25519 seed")

func deriveEd25519(seed []byte, path DerivationPath) (*DerivedKey, error) {
	if !path.IsHardened() {
		return nil, fmt.Errorf("%w: ed25519 supports hardened segments only, got %s", model.ErrInvalidPath, path)
	}

	out := &DerivedKey{Curve: Ed25519, Path: path}

	mac := hmac.New(sha512.New, ed25519SeedKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	copy(out.PrivateKey[:], sum[:32])
	copy(out.ChainCode[:], sum[32:])
	clear(sum)

	// 0x00 || key || be32(index)
	var data [1 + 32 + 4]byte
	for _, seg := range path {
		copy(data[1:33], out.PrivateKey[:])
		binary.BigEndian.PutUint32(data[33:], seg)

		mac = hmac.New(sha512.New, out.ChainCode[:])
		mac.Write(data[:])
		sum = mac.Sum(nil)
		copy(out.PrivateKey[:], sum[:32])
		copy(out.ChainCode[:], sum[32:])
		clear(sum)
	}
	clear(data[:])

	return out, nil
}

// Ed25519Key expands an ed25519 DerivedKey into a signing key.
func Ed25519Key(k *DerivedKey) (ed25519.PrivateKey, error) {
	if k == nil || k.Curve != Ed25519 {
		return nil, fmt.Errorf("%w: not an ed25519 key", model.ErrInvalidKey)
	}
	return ed25519.NewKeyFromSeed(k.PrivateKey[:]), nil
}

// ParseEd25519 parses a standalone Solana secret: a Base58 64-byte keypair
// (the format Solana wallets export), or hex of a 32-byte seed or 64-byte
// keypair. A 64-byte keypair must embed the public key of its seed.
func ParseEd25519(s string) (ed25519.PrivateKey, error) {
	s = strings.TrimSpace(s)

	raw, err := decodeEd25519Secret(s)
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			clear(priv)
			return nil, fmt.Errorf("%w: public key does not match secret", model.ErrInvalidKey)
		}
		return priv, nil
	}
	return nil, fmt.Errorf("%w: expected 32 or 64 bytes, got %d", model.ErrInvalidKey, len(raw))
}

func decodeEd25519Secret(s string) ([]byte, error) {
	hexStr := strings.TrimPrefix(s, "0x")
	if len(hexStr) == 64 || len(hexStr) == 128 {
		if raw, err := hex.DecodeString(hexStr); err == nil {
			return raw, nil
		}
	}

	raw, err := base58.Decode(s)
	if err != nil || len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected base58 keypair or hex secret", model.ErrInvalidKey)
	}
	return raw, nil
}
