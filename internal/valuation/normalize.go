// Package valuation derives portfolio view-models from raw backend records:
// normalized positions, portfolio-level metrics, and allocation weights.
//
// Every function is a pure transform over immutable input. Malformed numeric
// input coerces to zero and every division is guarded, so results never carry
// NaN or Infinity.
//
// All monetary values use shopspring/decimal, never float64.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/symbol"
)

var (
	// PercentScale is the number of decimal places kept for percentages and ratios.
	PercentScale int32 = 2

	// PriceScale is the number of decimal places for derived prices.
	PriceScale int32 = 8

	hundred = decimal.NewFromInt(100)
)

// Normalize converts raw backend positions into canonical positions.
// Closed positions (quantity <= 0) are dropped; input order is preserved.
func Normalize(raw []model.RawPosition) []model.Position {
	positions := make([]model.Position, 0, len(raw))
	for _, r := range raw {
		if p, ok := NormalizePosition(r); ok {
			positions = append(positions, p)
		}
	}
	return positions
}

// NormalizePosition converts one raw record. ok is false for closed positions.
//
// Market value and unrealized P/L are recomputed from quantity, average cost,
// and current price when those are present; the backend's own figures are used
// only to fill gaps.
func NormalizePosition(r model.RawPosition) (model.Position, bool) {
	qty, _ := nonNegative(r.Cantidad)
	if !qty.IsPositive() {
		return model.Position{}, false
	}
	avgCost, avgOK := nonNegative(r.PrecioPromedio)
	price, priceOK := nonNegative(r.PrecioActual)
	backendValue, valueOK := nonNegative(r.ValorMercado)

	var marketValue decimal.Decimal
	switch {
	case priceOK:
		marketValue = qty.Mul(price)
	case valueOK:
		// No live price: derive it from the backend's market value.
		marketValue = backendValue
		price = backendValue.Div(qty).Round(PriceScale)
		priceOK = true
	}

	pnl := r.GananciaPerdida.OrZero()
	if avgOK && priceOK {
		pnl = marketValue.Sub(qty.Mul(avgCost))
	}

	sym := symbol.Normalize(r.Symbol)
	return model.Position{
		Symbol:               sym,
		Name:                 symbol.DisplayName(sym, r.Nombre),
		Quantity:             qty,
		AverageCost:          avgCost,
		CurrentPrice:         price,
		MarketValue:          marketValue,
		UnrealizedPnL:        pnl,
		UnrealizedPnLPercent: PnLPercent(avgCost, price),
	}, true
}

// PnLPercent returns (price - avgCost) / avgCost * 100 rounded to PercentScale,
// or zero when the position was never priced (avgCost <= 0).
func PnLPercent(avgCost, price decimal.Decimal) decimal.Decimal {
	if !avgCost.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(avgCost).Mul(hundred).Div(avgCost).Round(PercentScale)
}

// nonNegative parses n, coercing unparsable and negative values to zero.
// ok reports whether a usable value was present.
func nonNegative(n model.LooseNumber) (decimal.Decimal, bool) {
	v, ok := n.Decimal()
	if !ok || v.IsNegative() {
		return decimal.Zero, false
	}
	return v, true
}
