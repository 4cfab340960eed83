// Package base58 implements the Bitcoin-alphabet Base58 encoding used for
// Solana addresses and keys, and the Base58Check variant used for Tron
// addresses.
package base58

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	// ErrInvalidCharacter is returned when decoding a string containing a
	// character outside the Bitcoin alphabet.
	ErrInvalidCharacter = errors.New("base58: invalid character")
	// ErrChecksum is returned by CheckDecode on a checksum mismatch.
	ErrChecksum = errors.New("base58: checksum mismatch")
	// ErrInvalidFormat is returned by CheckDecode when the input is too
	// short to carry a checksum.
	ErrInvalidFormat = errors.New("base58: invalid format")
)

var (
	bigRadix = big.NewInt(58)
	bigZero  = big.NewInt(0)

	// decodeMap maps an ASCII byte to its digit value, 0xff for invalid.
	decodeMap [256]byte
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = byte(i)
	}
}

// Encode encodes b as Base58. Every leading zero byte becomes one leading
// '1'.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	x := new(big.Int).SetBytes(b)
	mod := new(big.Int)

	// at most log(256)/log(58) ~ 1.37 digits per byte
	out := make([]byte, 0, len(b)*138/100+1)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}

	// digits were produced least significant first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Decode decodes a Base58 string. Every leading '1' becomes one leading
// zero byte. The empty string decodes to an empty slice.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return []byte{}, nil
	}

	x := new(big.Int)
	digit := new(big.Int)
	for i := 0; i < len(s); i++ {
		v := decodeMap[s[i]]
		if v == 0xff {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidCharacter, s[i], i)
		}
		x.Mul(x, bigRadix)
		x.Add(x, digit.SetInt64(int64(v)))
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == alphabet[0] {
		zeros++
	}

	body := x.Bytes()
	out := make([]byte, zeros+len(body))
	copy(out[zeros:], body)
	return out, nil
}

// checksum returns the first four bytes of SHA-256(SHA-256(payload)).
func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	var sum [4]byte
	copy(sum[:], second[:4])
	return sum
}

// CheckEncode appends the double SHA-256 checksum to payload and encodes
// the result.
func CheckEncode(payload []byte) string {
	sum := checksum(payload)

	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, payload...)
	buf = append(buf, sum[:]...)
	return Encode(buf)
}

// CheckDecode decodes s and verifies its trailing checksum, returning the
// payload without it.
func CheckDecode(s string) ([]byte, error) {
	decoded, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(decoded) < 5 {
		return nil, ErrInvalidFormat
	}

	payload := decoded[:len(decoded)-4]
	sum := checksum(payload)
	if !bytes.Equal(sum[:], decoded[len(decoded)-4:]) {
		return nil, ErrChecksum
	}
	return payload, nil
}
