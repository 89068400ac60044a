// Package symbol handles ticker normalization, validation, and the static
// symbol → company name catalogue used to correct inconsistent backend naming.
package symbol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// tickerRegex matches exchange tickers: a leading letter followed by up to nine
// letters, digits, dots, or dashes. Examples: AAPL, BRK.B, BTC-USD.
var tickerRegex = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// ErrInvalidSymbol is returned when a ticker does not match the expected format.
var ErrInvalidSymbol = errors.New("symbol: invalid ticker format")

// names is the authoritative display-name catalogue. It takes precedence over
// whatever name the backend attaches to a position.
var names = map[string]string{
	"AAPL":    "Apple Inc.",
	"MSFT":    "Microsoft Corporation",
	"GOOGL":   "Alphabet Inc.",
	"GOOG":    "Alphabet Inc.",
	"AMZN":    "Amazon.com Inc.",
	"META":    "Meta Platforms Inc.",
	"TSLA":    "Tesla Inc.",
	"NVDA":    "NVIDIA Corporation",
	"AMD":     "Advanced Micro Devices Inc.",
	"INTC":    "Intel Corporation",
	"NFLX":    "Netflix Inc.",
	"DIS":     "The Walt Disney Company",
	"KO":      "The Coca-Cola Company",
	"PEP":     "PepsiCo Inc.",
	"JPM":     "JPMorgan Chase & Co.",
	"BAC":     "Bank of America Corporation",
	"V":       "Visa Inc.",
	"MA":      "Mastercard Incorporated",
	"WMT":     "Walmart Inc.",
	"NKE":     "Nike Inc.",
	"BRK.B":   "Berkshire Hathaway Inc.",
	"SPY":     "SPDR S&P 500 ETF Trust",
	"QQQ":     "Invesco QQQ Trust",
	"BTC-USD": "Bitcoin",
	"ETH-USD": "Ethereum",
}

// Normalize trims whitespace and upper-cases a ticker.
func Normalize(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}

// Validate normalizes sym and checks it against the ticker format.
func Validate(sym string) (string, error) {
	n := Normalize(sym)
	if !tickerRegex.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, sym)
	}
	return n, nil
}

// Name returns the catalogue name for sym, if any.
func Name(sym string) (string, bool) {
	name, ok := names[Normalize(sym)]
	return name, ok
}

// DisplayName resolves a human-readable name with a three-tier fallback:
// the static catalogue, then the backend-supplied name, then the symbol itself.
func DisplayName(sym, backendName string) string {
	if name, ok := Name(sym); ok {
		return name
	}
	if n := strings.TrimSpace(backendName); n != "" {
		return n
	}
	return Normalize(sym)
}
