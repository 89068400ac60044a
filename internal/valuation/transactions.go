package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/symbol"
)

// FilterBySymbol returns the transactions for sym (case-insensitive) in their
// original order. The input slice is not modified.
func FilterBySymbol(txs []model.Transaction, sym string) []model.Transaction {
	want := symbol.Normalize(sym)
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if symbol.Normalize(tx.Symbol) == want {
			out = append(out, tx)
		}
	}
	return out
}

// SummarizeTransactions totals buys, sells, notional, and executor counts.
// Symbol is set only when every transaction shares the same symbol.
func SummarizeTransactions(txs []model.Transaction) model.TransactionSummary {
	s := model.TransactionSummary{
		Count:        len(txs),
		BoughtQty:    decimal.Zero,
		SoldQty:      decimal.Zero,
		BuyNotional:  decimal.Zero,
		SellNotional: decimal.Zero,
	}

	for i, tx := range txs {
		sym := symbol.Normalize(tx.Symbol)
		switch {
		case i == 0:
			s.Symbol = sym
		case s.Symbol != sym:
			s.Symbol = ""
		}

		notional := tx.Quantity.Mul(tx.Price)
		switch tx.Type {
		case model.TransactionBuy:
			s.Buys++
			s.BoughtQty = s.BoughtQty.Add(tx.Quantity)
			s.BuyNotional = s.BuyNotional.Add(notional)
		case model.TransactionSell:
			s.Sells++
			s.SoldQty = s.SoldQty.Add(tx.Quantity)
			s.SellNotional = s.SellNotional.Add(notional)
		}

		switch tx.ExecutedBy {
		case model.ExecutorBot:
			s.BotCount++
		case model.ExecutorManual:
			s.ManualCount++
		}
	}
	return s
}
