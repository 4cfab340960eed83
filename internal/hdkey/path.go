package hdkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedOffset is added to an index to mark it hardened.
const HardenedOffset = hdkeychain.HardenedKeyStart

const (
	purposeBIP44 = 44
	coinTypeETH  = 60
	coinTypeTRX  = 195
	coinTypeSOL  = 501
)

// DerivationPath is the data structure representing an HD path.
type DerivationPath []uint32

// Hardened returns i with the hardened bit set.
func Hardened(i uint32) uint32 {
	return i + HardenedOffset
}

// IsHardened reports whether every segment of the path is hardened.
func (p DerivationPath) IsHardened() bool {
	for _, seg := range p {
		if seg < HardenedOffset {
			return false
		}
	}
	return true
}

func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, seg := range p {
		if seg >= HardenedOffset {
			fmt.Fprintf(&b, "/%d'", seg-HardenedOffset)
			continue
		}
		fmt.Fprintf(&b, "/%d", seg)
	}
	return b.String()
}

// ParsePath converts a path like "m/44'/60'/0'/0/0" to a DerivationPath.
// Hardened segments may be marked with ' or h. Segment values above 2^31-1
// are rejected, the hardened bit must come from the marker.
func ParsePath(s string) (DerivationPath, error) {
	elems := strings.Split(strings.TrimSpace(s), "/")
	if elems[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m/", model.ErrInvalidPath, s)
	}
	elems = elems[1:]

	path := make(DerivationPath, 0, len(elems))
	for _, elem := range elems {
		var offset uint32
		if strings.HasSuffix(elem, "'") || strings.HasSuffix(elem, "h") {
			offset = HardenedOffset
			elem = elem[:len(elem)-1]
		}

		v, err := strconv.ParseUint(elem, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid segment %q in %q", model.ErrInvalidPath, elem, s)
		}
		if v >= uint64(HardenedOffset) {
			return nil, fmt.Errorf("%w: segment %d out of range [0, %d]", model.ErrInvalidPath, v, HardenedOffset-1)
		}

		path = append(path, uint32(v)+offset)
	}

	return path, nil
}

// EVMPath returns m/44'/60'/0'/0/index.
func EVMPath(index uint32) DerivationPath {
	return DerivationPath{Hardened(purposeBIP44), Hardened(coinTypeETH), Hardened(0), 0, index}
}

// TronPath returns m/44'/195'/0'/0/index.
func TronPath(index uint32) DerivationPath {
	return DerivationPath{Hardened(purposeBIP44), Hardened(coinTypeTRX), Hardened(0), 0, index}
}

// ChainPath returns the derivation path of account index on chain. style
// is only consulted for Solana and defaults to the primary style when nil.
// index must be below HardenedOffset.
func ChainPath(chain model.Chain, style PathStyle, index uint32) (DerivationPath, error) {
	if index >= HardenedOffset {
		return nil, fmt.Errorf("%w: index %d out of range [0, %d]", model.ErrInvalidPath, index, HardenedOffset-1)
	}

	switch chain {
	case model.ChainEVM:
		return EVMPath(index), nil
	case model.ChainTron:
		return TronPath(index), nil
	case model.ChainSolana:
		if style == nil {
			style = Primary
		}
		return style.Path(index), nil
	}
	return nil, fmt.Errorf("%w: unsupported chain %q", model.ErrInvalidPath, chain)
}

// CurveFor returns the signing curve used by chain.
func CurveFor(chain model.Chain) Curve {
	if chain == model.ChainSolana {
		return Ed25519
	}
	return Secp256k1
}
