package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// satoshisPerCoin is the fixed-point scale of Amount.
const satoshisPerCoin = 100_000_000

// Amount is a coin value in satoshis. It marshals to a decimal string with
// eight fractional digits so callers never see a floating-point value.
type Amount int64

// String renders the amount as a decimal coin value, e.g. "1.23450000".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%08d", sign, v/satoshisPerCoin, v%satoshisPerCoin)
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting decimal strings with up
// to eight fractional digits.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a decimal string: %w", err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAmount parses a decimal coin string into satoshis.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 8 {
		return 0, fmt.Errorf("amount %q has more than eight fractional digits", s)
	}
	fracPart += strings.Repeat("0", 8-len(fracPart))

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	v := whole*satoshisPerCoin + frac
	if neg {
		v = -v
	}
	return Amount(v), nil
}
