package address

import (
	"fmt"

	"github.com/AlexZinkM/multiwallet/internal/model"
)

type detector struct {
	valid func(string) bool
	chain model.Chain
}

// ordered: formats are checked from most to least specific
var detectors = []detector{
	{IsEVMAddress, model.ChainEVM},
	{IsTronAddress, model.ChainTron},
	{IsSolanaAddress, model.ChainSolana},
}

// Detect returns the chain whose address format s matches.
func Detect(s string) (model.Chain, bool) {
	for _, d := range detectors {
		if d.valid(s) {
			return d.chain, true
		}
	}
	return "", false
}

// Validate checks s against chain's address format.
func Validate(chain model.Chain, s string) error {
	for _, d := range detectors {
		if d.chain != chain {
			continue
		}
		if !d.valid(s) {
			return fmt.Errorf("%w: %q is not a valid %s address", model.ErrInvalidAddress, s, chain)
		}
		return nil
	}
	return fmt.Errorf("%w: unsupported chain %q", model.ErrInvalidAddress, chain)
}
