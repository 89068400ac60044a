// Package alert flags portfolio holdings that breach allocation limits.
//
// Two rules are checked against a distribution (see valuation.Distribute):
// a single holding's share of the portfolio exceeding MaxWeight, and a
// holding's unrealized loss exceeding MaxLossPercent.
package alert

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

// Kind identifies which rule raised an alert.
type Kind string

const (
	KindConcentration Kind = "CONCENTRATION"
	KindDrawdown      Kind = "DRAWDOWN"
)

// Alert is one rule breach for one holding.
type Alert struct {
	Kind      Kind            `json:"kind"`
	Symbol    string          `json:"symbol"`
	Value     decimal.Decimal `json:"value"`     // observed percentage
	Threshold decimal.Decimal `json:"threshold"` // configured limit
	Message   string          `json:"message"`
}

// Checker holds the allocation limits. A zero limit disables its rule.
type Checker struct {
	// MaxWeight is the largest allowed share of portfolio value, in percent.
	MaxWeight decimal.Decimal

	// MaxLossPercent is the largest allowed unrealized loss, in percent,
	// expressed as a positive number.
	MaxLossPercent decimal.Decimal
}

// NewChecker creates a checker with the given limits. Negative limits are
// treated as disabled.
func NewChecker(maxWeight, maxLossPercent decimal.Decimal) *Checker {
	if maxWeight.IsNegative() {
		maxWeight = decimal.Zero
	}
	if maxLossPercent.IsNegative() {
		maxLossPercent = decimal.Zero
	}
	return &Checker{
		MaxWeight:      maxWeight,
		MaxLossPercent: maxLossPercent,
	}
}

// Check returns every breach in dist, in distribution order. A holding can
// raise both kinds; concentration is reported first.
func (c *Checker) Check(dist []model.DistributedPosition) []Alert {
	alerts := []Alert{}

	for _, p := range dist {
		// 1. Concentration: share of portfolio value strictly above the limit.
		if c.MaxWeight.IsPositive() && p.Percentage.GreaterThan(c.MaxWeight) {
			alerts = append(alerts, Alert{
				Kind:      KindConcentration,
				Symbol:    p.Symbol,
				Value:     p.Percentage,
				Threshold: c.MaxWeight,
				Message: fmt.Sprintf("%s is %s%% of the portfolio (limit %s%%)",
					p.Symbol, p.Percentage.StringFixed(2), c.MaxWeight.StringFixed(2)),
			})
		}

		// 2. Drawdown: loss deeper than the limit.
		if c.MaxLossPercent.IsPositive() && p.UnrealizedPnLPercent.LessThan(c.MaxLossPercent.Neg()) {
			alerts = append(alerts, Alert{
				Kind:      KindDrawdown,
				Symbol:    p.Symbol,
				Value:     p.UnrealizedPnLPercent,
				Threshold: c.MaxLossPercent.Neg(),
				Message: fmt.Sprintf("%s is down %s%% (limit %s%%)",
					p.Symbol, p.UnrealizedPnLPercent.Abs().StringFixed(2), c.MaxLossPercent.StringFixed(2)),
			})
		}
	}

	return alerts
}
