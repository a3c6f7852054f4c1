package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Symbol is a normalized trading pair. Base and Quote are uppercase asset
// codes; the canonical textual form is "BASE/QUOTE" and is what gets sent to
// exchanges and used in cache keys.
type Symbol struct {
	Base  string
	Quote string
}

// ParseSymbol converts user-facing spellings such as "btc-usdt", "BTC/USDT"
// or "Btc-Usdt" into a normalized Symbol. The input must decompose into
// exactly two non-empty asset codes separated by "-" or "/".
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "-"
	}

	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("%w: symbol %q must be two asset codes separated by '-' or '/'", ErrInvalidParameter, raw)
	}

	for _, p := range parts {
		if err := validateAssetCode(p); err != nil {
			return Symbol{}, fmt.Errorf("%w: symbol %q must be two asset codes separated by '-' or '/'", ErrInvalidParameter, raw)
		}
	}

	return Symbol{Base: parts[0], Quote: parts[1]}, nil
}

// validateAssetCode checks a single asset code after uppercasing.
// Codes are uppercase alphanumeric, 1-10 characters.
func validateAssetCode(code string) error {
	if code == "" || len(code) > 10 {
		return ErrInvalidParameter
	}
	for _, r := range code {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return ErrInvalidParameter
		}
	}
	return nil
}

// String returns the canonical "BASE/QUOTE" form, or "" for the zero value.
func (s Symbol) String() string {
	if s.Base == "" && s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

// Exchange returns the concatenated "BASEQUOTE" form most exchange REST
// APIs expect in requests.
func (s Symbol) Exchange() string {
	return s.Base + s.Quote
}
