// Package ranking builds the leaderboard: each user's cash balance plus the
// live value of their portfolio, ordered by total capital.
package ranking

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/valuation"
)

// InitialBalance is the cash every account starts with.
var InitialBalance = decimal.NewFromInt(50000)

// DefaultDisplayLimit is how many leaderboard rows a view shows by default.
const DefaultDisplayLimit = 150

var hundred = decimal.NewFromInt(100)

// ComposeRanking turns per-user summaries into leaderboard rows:
//
//	totalCapital       = cashBalance + portfolioValue
//	totalReturnPercent = (totalCapital - initialBalance) / initialBalance * 100
//
// Rows are sorted by totalCapital descending. Ties keep input order; ranks are
// 1-based and assigned after sorting. The input is not modified.
func ComposeRanking(users []model.UserSummary, initialBalance decimal.Decimal) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(users))
	for _, u := range users {
		capital := u.CashBalance.Add(u.PortfolioValue)
		entries = append(entries, model.RankingEntry{
			UserID:             u.UserID,
			DisplayName:        u.DisplayName,
			CashBalance:        u.CashBalance,
			PortfolioValue:     u.PortfolioValue,
			TotalCapital:       capital,
			TotalReturnPercent: ReturnPercent(capital, initialBalance),
		})
	}

	slices.SortStableFunc(entries, func(a, b model.RankingEntry) int {
		return b.TotalCapital.Cmp(a.TotalCapital)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// ReturnPercent is the gain over the starting balance as a percentage,
// rounded to 2 places. A non-positive initial balance yields 0.
func ReturnPercent(capital, initialBalance decimal.Decimal) decimal.Decimal {
	if !initialBalance.IsPositive() {
		return decimal.Zero
	}
	return capital.Sub(initialBalance).Mul(hundred).Div(initialBalance).Round(valuation.PercentScale)
}

// Top returns the first n entries. n <= 0 returns all of them.
func Top(entries []model.RankingEntry, n int) []model.RankingEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
