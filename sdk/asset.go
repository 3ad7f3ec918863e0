package sdk

import (
	"fmt"
	"strconv"
	"strings"
)

type Asset string

const (
	// AssetNMT is the governance token deposits are paid in.
	AssetNMT Asset = "nmt"

	// AssetDecimals is the number of fractional digits of one whole token.
	AssetDecimals = 9
	// AssetScale converts whole tokens to base units.
	AssetScale int64 = 1_000_000_000
)

// String returns the raw ticker string for logging or display.
// Example payload: sdk.AssetNMT.String()
func (a Asset) String() string {
	return string(a)
}

// Display renders units followed by the ticker, "1.500000000 nmt".
// Example payload: sdk.AssetNMT.Display(1_500_000_000)
func (a Asset) Display(units int64) string {
	return FormatUnits(units) + " " + a.String()
}

// FormatUnits renders base units as a fixed point decimal, 111111000000000 -> "111111.000000000".
// The whole int64 range is accepted.
func FormatUnits(units int64) string {
	sign := ""
	u := uint64(units)
	if units < 0 {
		sign = "-"
		u = uint64(-(units + 1)) + 1
	}
	whole := u / uint64(AssetScale)
	frac := u % uint64(AssetScale)
	return fmt.Sprintf("%s%d.%0*d", sign, whole, AssetDecimals, frac)
}

// ParseUnits is the inverse of FormatUnits and also accepts plain integers
// ("5" -> 5 tokens) and shorter fractions ("1.5").
// Example payload: sdk.ParseUnits("111111")
func ParseUnits(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(raw, "-") {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	wholeStr, fracStr, hasDot := strings.Cut(raw, ".")
	// ParseInt alone would let a sign through on either side of the dot
	if !isDigits(wholeStr) || (hasDot && !isDigits(fracStr)) {
		return 0, fmt.Errorf("invalid amount %q: want digits with an optional fraction", raw)
	}
	whole, err := strconv.ParseInt(wholeStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if len(fracStr) > AssetDecimals {
		return 0, fmt.Errorf("amount %q has more than %d decimals", raw, AssetDecimals)
	}
	var frac int64
	if fracStr != "" {
		frac, err = strconv.ParseInt(fracStr+strings.Repeat("0", AssetDecimals-len(fracStr)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
	}
	if whole > (1<<63-1-frac)/AssetScale {
		return 0, fmt.Errorf("amount %q overflows", raw)
	}
	return whole*AssetScale + frac, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
