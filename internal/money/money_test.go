package money_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalprop/propostas/internal/money"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "Zero", cents: 0, want: "R$ 0,00"},
		{name: "Cents only", cents: 5, want: "R$ 0,05"},
		{name: "One real", cents: 100, want: "R$ 1,00"},
		{name: "Thousands", cents: 123456, want: "R$ 1.234,56"},
		{name: "Millions", cents: 100000000, want: "R$ 1.000.000,00"},
		{name: "Negative", cents: -2550, want: "-R$ 25,50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.Format(tt.cents))
		})
	}
}

func TestFormatDigits(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Plain digits", raw: "10000", want: "R$ 100,00"},
		{name: "Already formatted", raw: "R$ 1.234,56", want: "R$ 1.234,56"},
		{name: "Empty", raw: "", want: "R$ 0,00"},
		{name: "No digits", raw: "abc", want: "R$ 0,00"},
		{name: "Appended keystroke", raw: "R$ 1.234,567", want: "R$ 12.345,67"},
		{name: "Overflow", raw: "99999999999999999999999", want: "R$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, money.FormatDigits(tt.raw))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    int64
		wantErr bool
	}{
		{name: "Formatted", display: "R$ 1.234,56", want: 123456},
		{name: "No cents", display: "1500", want: 150000},
		{name: "Single decimal", display: "10,5", want: 1050},
		{name: "Trailing comma", display: "10,", want: 1000},
		{name: "Leading comma", display: ",75", want: 75},
		{name: "Empty", display: "", want: 0},
		{name: "No digits", display: "R$", want: 0},
		{name: "Two commas", display: "1,2,3", wantErr: true},
		{name: "Largest", display: "92233720368547758,07", want: math.MaxInt64},
		{name: "Past int64", display: "92233720368547758,08", wantErr: true},
		{name: "Twenty digits", display: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.Parse(tt.display)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 9, 10, 99, 100, 101, 999, 1000, 123456, 10000000, 987654321012} {
		got, err := money.Parse(money.Format(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got, "round trip of %d", cents)
	}

	got, err := money.Parse(money.FormatDigits("10000"))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got)
}

func TestDecimalConversion(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1234.56").Equal(money.ToDecimal(123456)))
	assert.Equal(t, int64(1235), money.ToCents(decimal.RequireFromString("12.345")))
}

func TestParseDigits(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "Typed digits", raw: "10000", want: 10000},
		{name: "Formatted", raw: "R$ 100,00", want: 10000},
		{name: "Empty", raw: "", want: 0},
		{name: "Overflow", raw: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ParseDigits(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
