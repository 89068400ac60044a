// Package model defines the view-model types shared across the portfolio engine.
// All monetary values use shopspring/decimal, never float64.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawPosition is one holding as the backend sends it. Numeric fields are
// loosely typed: they may be numbers, strings, null, or missing.
// Field names follow the backend's wire format.
type RawPosition struct {
	Symbol          string      `json:"symbol"`
	Cantidad        LooseNumber `json:"cantidad"`
	PrecioPromedio  LooseNumber `json:"precioPromedio"`
	PrecioActual    LooseNumber `json:"precioActual"`
	ValorMercado    LooseNumber `json:"valorMercado"`
	GananciaPerdida LooseNumber `json:"gananciaPerdida"`
	Nombre          string      `json:"nombre,omitempty"`
}

// Position is the canonical, numeric-safe shape of one open holding.
type Position struct {
	Symbol               string          `json:"symbol"`
	Name                 string          `json:"name"`
	Quantity             decimal.Decimal `json:"quantity"`
	AverageCost          decimal.Decimal `json:"average_cost"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	MarketValue          decimal.Decimal `json:"market_value"`           // quantity * currentPrice
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`         // marketValue - quantity * averageCost
	UnrealizedPnLPercent decimal.Decimal `json:"unrealized_pnl_percent"` // 0 when averageCost is 0
}

// DistributedPosition is a position with its share of the portfolio's value.
type DistributedPosition struct {
	Position
	Percentage decimal.Decimal `json:"percentage"`
}

// PortfolioMetrics is derived on every fetch and never persisted.
type PortfolioMetrics struct {
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	TotalPnLPercent decimal.Decimal `json:"total_pnl_percent"`
	PositionCount   int             `json:"position_count"`
	WinningCount    int             `json:"winning_count"`
	LosingCount     int             `json:"losing_count"`
	TotalCost       decimal.Decimal `json:"total_cost"` // totalValue - totalPnL
}

// PortfolioSummary is what portfolio views render: the metrics plus the
// UI-facing ratios and the best/worst holdings.
type PortfolioSummary struct {
	Metrics        PortfolioMetrics `json:"metrics"`
	WinRate        decimal.Decimal  `json:"win_rate"`
	ProfitFactor   decimal.Decimal  `json:"profit_factor"` // count-based, see valuation.ProfitFactor
	BestPerformer  *Position        `json:"best_performer"`
	WorstPerformer *Position        `json:"worst_performer"`
}

// TransactionType is the side of an executed trade.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Executor records who placed a trade.
type Executor string

const (
	ExecutorManual Executor = "MANUAL"
	ExecutorBot    Executor = "BOT"
)

// Transaction is an immutable record of an executed trade.
// Once created, these are never modified.
type Transaction struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Type       TransactionType `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Timestamp  time.Time       `json:"timestamp"`
	ExecutedBy Executor        `json:"executed_by"`
}

// TransactionSummary totals a set of transactions, typically one symbol's history.
type TransactionSummary struct {
	Symbol       string          `json:"symbol,omitempty"`
	Count        int             `json:"count"`
	Buys         int             `json:"buys"`
	Sells        int             `json:"sells"`
	BoughtQty    decimal.Decimal `json:"bought_qty"`
	SoldQty      decimal.Decimal `json:"sold_qty"`
	BuyNotional  decimal.Decimal `json:"buy_notional"`
	SellNotional decimal.Decimal `json:"sell_notional"`
	BotCount     int             `json:"bot_count"`
	ManualCount  int             `json:"manual_count"`
}

// RankingUser is one row of the backend's base leaderboard list, before enrichment.
type RankingUser struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	BalanceActual decimal.Decimal `json:"balanceActual"`
}

// UserSummary bundles one user's cash balance and live portfolio valuation.
// PortfolioErr is set when the portfolio fetch failed and PortfolioValue fell back to 0.
type UserSummary struct {
	UserID         string          `json:"user_id"`
	DisplayName    string          `json:"display_name"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	PortfolioErr   error           `json:"-"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Rank               int             `json:"rank"` // 1-based
	UserID             string          `json:"user_id"`
	DisplayName        string          `json:"display_name"`
	CashBalance        decimal.Decimal `json:"cash_balance"`
	PortfolioValue     decimal.Decimal `json:"portfolio_value"`
	TotalCapital       decimal.Decimal `json:"total_capital"` // cash + portfolio
	TotalReturnPercent decimal.Decimal `json:"total_return_percent"`
}
