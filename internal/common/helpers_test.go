package common

import (
	"math/big"
	"strings"
	"testing"

	"github.com/AlexZinkM/multiwallet/internal/model"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestToMinUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals int32
		want     string
		wantErr  error
	}{
		{name: "whole sol", amount: "1", decimals: 9, want: "1000000000"},
		{name: "fractional sol", amount: "0.024981836", decimals: 9, want: "24981836"},
		{name: "one wei", amount: "0.000000000000000001", decimals: 18, want: "1"},
		{name: "large eth", amount: "123456789.5", decimals: 18, want: "123456789500000000000000000"},
		{name: "trailing zeros beyond decimals", amount: "1.5000000", decimals: 6, want: "1500000"},
		{name: "spaces", amount: " 2.5 ", decimals: 6, want: "2500000"},
		{name: "zero", amount: "0", decimals: 6, wantErr: model.ErrInvalidAmount},
		{name: "negative", amount: "-1", decimals: 6, wantErr: model.ErrInvalidAmount},
		{name: "garbage", amount: "abc", decimals: 6, wantErr: model.ErrInvalidAmount},
		{name: "empty", amount: "", decimals: 6, wantErr: model.ErrInvalidAmount},
		{name: "too precise", amount: "0.0000001", decimals: 6, wantErr: model.ErrInvalidAmount},
		{name: "negative decimals", amount: "5", decimals: -2, wantErr: model.ErrInvalidAmount},
		{name: "negative decimals whole hundreds", amount: "500", decimals: -2, wantErr: model.ErrInvalidAmount},
		{name: "decimals above bound", amount: "1", decimals: MaxDecimals + 1, wantErr: model.ErrInvalidAmount},
		{name: "max decimals", amount: "1", decimals: MaxDecimals, want: "1" + strings.Repeat("0", MaxDecimals)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToMinUnits(tc.amount, tc.decimals)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestToMinUnitsUint64Overflow(t *testing.T) {
	t.Parallel()

	_, err := ToMinUnitsUint64("100000000000", 18)
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	n, err := SOLToLamports("1.5")
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000_000), n)
}

func TestFormatUnits(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.024981836", FormatUnits(big.NewInt(24981836), 9))
	require.Equal(t, "1.5", LamportsToSOL(1_500_000_000))
	require.Equal(t, "0", FormatUnits(nil, 9))
}

func TestFormatParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64Range(1, 1<<62).Draw(t, "value")
		decimals := rapid.Int32Range(0, 18).Draw(t, "decimals")

		s := FormatUnits(new(big.Int).SetUint64(v), decimals)
		back, err := ToMinUnits(s, decimals)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if back.Uint64() != v {
			t.Fatalf("round trip %d -> %q -> %s", v, s, back)
		}
	})
}
