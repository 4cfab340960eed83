package hdkey

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"
)

// PathStyle is one of the Solana derivation layouts used by wallets in the
// wild. Every style is fully hardened.
type PathStyle interface {
	Name() string
	Path(index uint32) DerivationPath
}

// PrimaryStyle derives m/44'/501'/index'/0'.
type PrimaryStyle struct{}

func (PrimaryStyle) Name() string { return "primary" }

func (PrimaryStyle) Path(index uint32) DerivationPath {
	return DerivationPath{Hardened(purposeBIP44), Hardened(coinTypeSOL), Hardened(index), Hardened(0)}
}

// AlternateStyle derives m/44'/501'/0'/index'.
type AlternateStyle struct{}

func (AlternateStyle) Name() string { return "alternate" }

func (AlternateStyle) Path(index uint32) DerivationPath {
	return DerivationPath{Hardened(purposeBIP44), Hardened(coinTypeSOL), Hardened(0), Hardened(index)}
}

// LegacyStyle derives m/44'/501'/index'.
type LegacyStyle struct{}

func (LegacyStyle) Name() string { return "legacy" }

func (LegacyStyle) Path(index uint32) DerivationPath {
	return DerivationPath{Hardened(purposeBIP44), Hardened(coinTypeSOL), Hardened(index)}
}

var (
	Primary   PathStyle = PrimaryStyle{}
	Alternate PathStyle = AlternateStyle{}
	Legacy    PathStyle = LegacyStyle{}
)

// SolanaStyles returns the styles in probing priority order.
func SolanaStyles() []PathStyle {
	return []PathStyle{Primary, Alternate, Legacy}
}

// StyleByName looks a style up by its Name, case-insensitively.
func StyleByName(name string) (PathStyle, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range SolanaStyles() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown solana path style %q", model.ErrInvalidPath, name)
}
