package value

import (
	"fmt"
	"strconv"
	"strings"
)

// SizeFractionDigits is the fixed precision for stored size values.
const SizeFractionDigits = 4

// FormatDecimal renders a number with the fixed size precision
// (4 fractional digits), e.g. 12.5 → "12.5000".
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', SizeFractionDigits, 64)
}

// ParseDecimal parses a numeric token into the fixed-precision decimal
// representation. A single decimal comma is accepted as the separator
// ("12,5" → "12.5000"); legacy European exports use it.
func ParseDecimal(token string) (string, error) {
	cleaned := strings.TrimSpace(token)
	if cleaned == "" {
		return "", fmt.Errorf("empty numeric value")
	}
	if !strings.Contains(cleaned, ".") && strings.Count(cleaned, ",") == 1 {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", fmt.Errorf("invalid numeric value %q", token)
	}
	return FormatDecimal(f), nil
}
