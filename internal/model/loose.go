package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// LooseNumber is a backend numeric field that may arrive as a JSON number,
// a JSON string, null, or not at all. It keeps the raw text; conversion to a
// decimal happens in the normalizer and never fails loudly.
type LooseNumber struct {
	Raw     string
	Present bool
}

// NewLooseNumber wraps raw text, e.g. a NUMERIC column read as TEXT.
func NewLooseNumber(raw string) LooseNumber {
	return LooseNumber{Raw: strings.TrimSpace(raw), Present: true}
}

// LooseFromPtr maps a nullable column to a LooseNumber; nil is absent.
func LooseFromPtr(raw *string) LooseNumber {
	if raw == nil {
		return LooseNumber{}
	}
	return NewLooseNumber(*raw)
}

// LooseFromDecimal wraps an already exact value.
func LooseFromDecimal(v decimal.Decimal) LooseNumber {
	return LooseNumber{Raw: v.String(), Present: true}
}

// UnmarshalJSON accepts any JSON value. Strings are unquoted, null clears the
// field, and anything else is kept verbatim so that it later coerces to zero.
func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = LooseNumber{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*n = NewLooseNumber(s)
			return nil
		}
	}
	*n = LooseNumber{Raw: string(data), Present: true}
	return nil
}

// MarshalJSON writes the raw text back as a JSON string, or null when absent.
func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.Present {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// Decimal parses the raw text. ok is false when the field is absent or the
// text is not a finite number.
func (n LooseNumber) Decimal() (v decimal.Decimal, ok bool) {
	if !n.Present || n.Raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(n.Raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// OrZero parses the raw text, coercing anything unusable to zero.
func (n LooseNumber) OrZero() decimal.Decimal {
	v, _ := n.Decimal()
	return v
}
