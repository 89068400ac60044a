package valuation

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

// Distribute computes each position's share of total market value:
//
//	percentage = marketValue / totalValue * 100   (0 when totalValue <= 0)
//
// rounded to PercentScale. The result is sorted by descending percentage;
// equal percentages keep their input order.
func Distribute(positions []model.Position) []model.DistributedPosition {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.MarketValue)
	}

	dist := make([]model.DistributedPosition, len(positions))
	for i, p := range positions {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = p.MarketValue.Mul(hundred).Div(total).Round(PercentScale)
		}
		dist[i] = model.DistributedPosition{Position: p, Percentage: pct}
	}

	slices.SortStableFunc(dist, func(a, b model.DistributedPosition) int {
		return b.Percentage.Cmp(a.Percentage)
	})
	return dist
}

// TopHoldings returns at most n entries of an already sorted distribution.
// n <= 0 returns the whole slice.
func TopHoldings(dist []model.DistributedPosition, n int) []model.DistributedPosition {
	if n <= 0 || n >= len(dist) {
		return dist
	}
	return dist[:n]
}
