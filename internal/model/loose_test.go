package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLooseNumber_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		present bool
		want    string
		ok      bool
	}{
		{"number", `{"cantidad": 10.5}`, true, "10.5", true},
		{"string", `{"cantidad": "10.5"}`, true, "10.5", true},
		{"padded string", `{"cantidad": "  42 "}`, true, "42", true},
		{"null", `{"cantidad": null}`, false, "0", false},
		{"missing", `{}`, false, "0", false},
		{"garbage string", `{"cantidad": "abc"}`, true, "0", false},
		{"empty string", `{"cantidad": ""}`, true, "0", false},
		{"nan string", `{"cantidad": "NaN"}`, true, "0", false},
		{"bool", `{"cantidad": true}`, true, "0", false},
		{"object", `{"cantidad": {"v": 1}}`, true, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw RawPosition
			if err := json.Unmarshal([]byte(tt.json), &raw); err != nil {
				t.Fatalf("unmarshal must never fail, got %v", err)
			}
			if raw.Cantidad.Present != tt.present {
				t.Errorf("present: expected %v, got %v", tt.present, raw.Cantidad.Present)
			}
			v, ok := raw.Cantidad.Decimal()
			if ok != tt.ok {
				t.Errorf("ok: expected %v, got %v", tt.ok, ok)
			}
			if !v.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("value: expected %s, got %s", tt.want, v)
			}
		})
	}
}

func TestLooseNumber_MarshalRoundTrip(t *testing.T) {
	in := RawPosition{
		Symbol:       "AAPL",
		Cantidad:     NewLooseNumber("3"),
		PrecioActual: LooseFromDecimal(decimal.RequireFromString("189.25")),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out RawPosition
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Cantidad.OrZero().String() != "3" {
		t.Errorf("expected cantidad 3, got %s", out.Cantidad.OrZero())
	}
	if out.PrecioPromedio.Present {
		t.Error("absent field should stay absent")
	}
}

func TestLooseFromPtr(t *testing.T) {
	if LooseFromPtr(nil).Present {
		t.Error("nil pointer should be absent")
	}
	s := "7.25"
	if !LooseFromPtr(&s).OrZero().Equal(decimal.RequireFromString("7.25")) {
		t.Error("expected 7.25")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Symbol:     "AAPL",
		Type:       TransactionBuy,
		Quantity:   decimal.NewFromInt(1),
		Price:      decimal.NewFromInt(100),
		Timestamp:  time.Now(),
		ExecutedBy: ExecutorBot,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []func(tx *Transaction){
		func(tx *Transaction) { tx.Type = "HOLD" },
		func(tx *Transaction) { tx.ExecutedBy = "SCRIPT" },
		func(tx *Transaction) { tx.Quantity = decimal.Zero },
		func(tx *Transaction) { tx.Price = decimal.NewFromInt(-1) },
		func(tx *Transaction) { tx.Symbol = "" },
	}
	for i, mutate := range bad {
		tx := valid
		mutate(&tx)
		if err := tx.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
