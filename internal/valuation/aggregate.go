package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

// Aggregate folds positions into portfolio-level metrics:
//
//	totalValue      = Σ marketValue
//	totalPnL        = Σ unrealizedPnL
//	totalCost       = totalValue - totalPnL
//	totalPnLPercent = totalPnL / totalCost * 100   (0 when totalCost <= 0)
//
// Positions with exactly zero P/L count as neither winning nor losing.
// An empty input yields all-zero metrics.
func Aggregate(positions []model.Position) model.PortfolioMetrics {
	m := model.PortfolioMetrics{
		TotalValue:      decimal.Zero,
		TotalPnL:        decimal.Zero,
		TotalPnLPercent: decimal.Zero,
		TotalCost:       decimal.Zero,
		PositionCount:   len(positions),
	}

	for _, p := range positions {
		m.TotalValue = m.TotalValue.Add(p.MarketValue)
		m.TotalPnL = m.TotalPnL.Add(p.UnrealizedPnL)

		switch p.UnrealizedPnL.Sign() {
		case 1:
			m.WinningCount++
		case -1:
			m.LosingCount++
		}
	}

	m.TotalCost = m.TotalValue.Sub(m.TotalPnL)
	if m.TotalCost.IsPositive() {
		m.TotalPnLPercent = m.TotalPnL.Mul(hundred).Div(m.TotalCost).Round(PercentScale)
	}
	return m
}

// Summarize aggregates positions and adds the UI-facing ratios and the
// best and worst performers.
func Summarize(positions []model.Position) model.PortfolioSummary {
	m := Aggregate(positions)
	return model.PortfolioSummary{
		Metrics:        m,
		WinRate:        WinRate(m),
		ProfitFactor:   ProfitFactor(m),
		BestPerformer:  BestPerformer(positions),
		WorstPerformer: WorstPerformer(positions),
	}
}

// WinRate is the percentage of positions currently in profit.
func WinRate(m model.PortfolioMetrics) decimal.Decimal {
	if m.PositionCount <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.WinningCount)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(m.PositionCount))).
		Round(PercentScale)
}

// ProfitFactor is the ratio of winning to losing position counts.
//
// This is count-based, not P/L-magnitude-based. With no losing positions it
// degrades to the raw winner count instead of dividing by zero.
func ProfitFactor(m model.PortfolioMetrics) decimal.Decimal {
	winners := decimal.NewFromInt(int64(m.WinningCount))
	if m.LosingCount <= 0 {
		return winners
	}
	return winners.Div(decimal.NewFromInt(int64(m.LosingCount))).Round(PercentScale)
}

// BestPerformer returns the winning position with the largest unrealized P/L,
// or nil when nothing is in profit. Ties keep the first occurrence.
func BestPerformer(positions []model.Position) *model.Position {
	var best *model.Position
	for i := range positions {
		p := positions[i]
		if !p.UnrealizedPnL.IsPositive() {
			continue
		}
		if best == nil || p.UnrealizedPnL.GreaterThan(best.UnrealizedPnL) {
			best = &p
		}
	}
	return best
}

// WorstPerformer returns the losing position with the smallest unrealized P/L,
// or nil when nothing is at a loss. Ties keep the first occurrence.
func WorstPerformer(positions []model.Position) *model.Position {
	var worst *model.Position
	for i := range positions {
		p := positions[i]
		if !p.UnrealizedPnL.IsNegative() {
			continue
		}
		if worst == nil || p.UnrealizedPnL.LessThan(worst.UnrealizedPnL) {
			worst = &p
		}
	}
	return worst
}
