package alert

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func holding(sym string, pct, pnlPct float64) model.DistributedPosition {
	return model.DistributedPosition{
		Position: model.Position{
			Symbol:               sym,
			UnrealizedPnLPercent: d(pnlPct),
		},
		Percentage: d(pct),
	}
}

func TestCheck_WithinLimits(t *testing.T) {
	c := NewChecker(d(40), d(20))

	alerts := c.Check([]model.DistributedPosition{
		holding("AAPL", 35, 5),
		holding("MSFT", 35, -10),
		holding("TSLA", 30, 0),
	})
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestCheck_Concentration(t *testing.T) {
	c := NewChecker(d(40), decimal.Zero)

	alerts := c.Check([]model.DistributedPosition{
		holding("AAPL", 60, 5),
		holding("MSFT", 40, 5), // exactly at the limit: allowed
	})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != KindConcentration || alerts[0].Symbol != "AAPL" {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}
	if !alerts[0].Value.Equal(d(60)) || !alerts[0].Threshold.Equal(d(40)) {
		t.Errorf("unexpected value/threshold: %s/%s", alerts[0].Value, alerts[0].Threshold)
	}
}

func TestCheck_Drawdown(t *testing.T) {
	c := NewChecker(decimal.Zero, d(20))

	alerts := c.Check([]model.DistributedPosition{
		holding("AAPL", 50, -20), // exactly at the limit: allowed
		holding("TSLA", 50, -35.5),
	})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != KindDrawdown || alerts[0].Symbol != "TSLA" {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}
	if !alerts[0].Threshold.Equal(d(-20)) {
		t.Errorf("expected threshold -20, got %s", alerts[0].Threshold)
	}
	if alerts[0].Message != "TSLA is down 35.50% (limit 20.00%)" {
		t.Errorf("unexpected message: %q", alerts[0].Message)
	}
}

func TestCheck_BothRulesOrdered(t *testing.T) {
	c := NewChecker(d(50), d(10))

	alerts := c.Check([]model.DistributedPosition{
		holding("TSLA", 80, -30),
		holding("AAPL", 20, -15),
	})
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	want := []struct {
		kind Kind
		sym  string
	}{
		{KindConcentration, "TSLA"},
		{KindDrawdown, "TSLA"},
		{KindDrawdown, "AAPL"},
	}
	for i, w := range want {
		if alerts[i].Kind != w.kind || alerts[i].Symbol != w.sym {
			t.Errorf("alert %d: expected %s/%s, got %s/%s", i, w.kind, w.sym, alerts[i].Kind, alerts[i].Symbol)
		}
	}
}

func TestCheck_DisabledRules(t *testing.T) {
	c := NewChecker(decimal.Zero, d(-5))

	alerts := c.Check([]model.DistributedPosition{holding("TSLA", 100, -90)})
	if len(alerts) != 0 {
		t.Errorf("expected no alerts with rules disabled, got %+v", alerts)
	}
}

func TestCheck_EmptyDistribution(t *testing.T) {
	alerts := NewChecker(d(40), d(20)).Check(nil)
	if alerts == nil || len(alerts) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", alerts)
	}
}
