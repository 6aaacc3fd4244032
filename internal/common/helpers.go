package common

import (
	"github.com/shopspring/decimal"
)

const (
	ErgDecimals = 9 // ERG has 9 decimals (nanoERG)
)

// NanoErgToErg converts nanoERG to an ERG string without float precision loss
func NanoErgToErg(nanoErg int64) string {
	return formatWithDecimals(nanoErg, ErgDecimals)
}

// FormatTokenAmount converts raw token units to a display string.
// A nil decimals pointer means the token decimals are unknown and the raw amount is shown.
func FormatTokenAmount(amount int64, decimals *int) string {
	if decimals == nil || *decimals <= 0 {
		return decimal.NewFromInt(amount).String()
	}
	return formatWithDecimals(amount, *decimals)
}

// formatWithDecimals shifts value by decimals places keeping all fractional digits
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value int64, decimals int) string {
	return decimal.New(value, int32(-decimals)).StringFixed(int32(decimals))
}
