package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals  = 9  // SOL has 9 decimals (lamports)
	TRXDecimals  = 6  // TRX has 6 decimals (SUN)
	ETHDecimals  = 18 // ETH has 18 decimals (wei)
	USDCDecimals = 6  // USDC has 6 decimals (micro)

	// MaxDecimals bounds token precision; 10^77 is the largest power of ten
	// below 2^256.
	MaxDecimals = 77
)

// ToMinUnits converts a decimal amount string to the chain's minimum units
// without float precision loss. Amounts must be strictly positive and carry
// no more fractional digits than decimals.
// Example: ToMinUnits("0.024981836", 9) = 24981836
func ToMinUnits(amount string, decimals int32) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: decimals %d out of range [0, %d]", model.ErrInvalidAmount, decimals, MaxDecimals)
	}

	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("%w: empty amount", model.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", model.ErrInvalidAmount, amount)
	}

	if !d.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", model.ErrInvalidAmount)
	}

	// Reject silently truncated precision, e.g. 7 decimals for USDC
	if -d.Exponent() > decimals && !d.Equal(d.Truncate(decimals)) {
		return nil, fmt.Errorf("%w: more than %d decimal places", model.ErrInvalidAmount, decimals)
	}

	units := d.Shift(decimals).BigInt()
	if units.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount is below one minimum unit", model.ErrInvalidAmount)
	}
	return units, nil
}

// ToMinUnitsUint64 is ToMinUnits for chains whose amounts fit in 64 bits
// (Solana lamports, Tron SUN, SPL tokens).
func ToMinUnitsUint64(amount string, decimals int32) (uint64, error) {
	n, err := ToMinUnits(amount, decimals)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: amount overflows 64 bits", model.ErrInvalidAmount)
	}
	return n.Uint64(), nil
}

// FormatUnits converts minimum units to a decimal string by inserting the
// decimal point.
// Example: FormatUnits(big.NewInt(24981836), 9) = "0.024981836"
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -decimals).String()
}

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return FormatUnits(new(big.Int).SetUint64(lamports), SOLDecimals)
}

// SOLToLamports converts SOL string to lamports without float precision loss
func SOLToLamports(sol string) (uint64, error) {
	return ToMinUnitsUint64(sol, SOLDecimals)
}
