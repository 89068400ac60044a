package valuation

import (
	"testing"
	"time"

	"github.com/tradedash/portfolio-engine/internal/model"
)

func tx(sym string, typ model.TransactionType, qty, price float64, by model.Executor) model.Transaction {
	return model.Transaction{
		Symbol:     sym,
		Type:       typ,
		Quantity:   d(qty),
		Price:      d(price),
		Timestamp:  time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
		ExecutedBy: by,
	}
}

func TestFilterBySymbol(t *testing.T) {
	txs := []model.Transaction{
		tx("AAPL", model.TransactionBuy, 10, 100, model.ExecutorManual),
		tx("TSLA", model.TransactionBuy, 1, 200, model.ExecutorBot),
		tx("aapl", model.TransactionSell, 4, 120, model.ExecutorBot),
	}

	got := FilterBySymbol(txs, " AAPL")
	if len(got) != 2 {
		t.Fatalf("expected 2 AAPL transactions, got %d", len(got))
	}
	if got[0].Type != model.TransactionBuy || got[1].Type != model.TransactionSell {
		t.Errorf("expected input order preserved, got %+v", got)
	}
	if len(txs) != 3 {
		t.Error("input slice must not be modified")
	}
	if got := FilterBySymbol(txs, "MSFT"); len(got) != 0 {
		t.Errorf("expected no MSFT transactions, got %d", len(got))
	}
}

func TestSummarizeTransactions(t *testing.T) {
	s := SummarizeTransactions([]model.Transaction{
		tx("AAPL", model.TransactionBuy, 10, 100, model.ExecutorManual),
		tx("AAPL", model.TransactionBuy, 5, 110, model.ExecutorBot),
		tx("aapl", model.TransactionSell, 4, 120, model.ExecutorBot),
	})

	if s.Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %q", s.Symbol)
	}
	if s.Count != 3 || s.Buys != 2 || s.Sells != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if !s.BoughtQty.Equal(d(15)) || !s.SoldQty.Equal(d(4)) {
		t.Errorf("unexpected quantities: bought=%s sold=%s", s.BoughtQty, s.SoldQty)
	}
	if !s.BuyNotional.Equal(d(1550)) || !s.SellNotional.Equal(d(480)) {
		t.Errorf("unexpected notional: buy=%s sell=%s", s.BuyNotional, s.SellNotional)
	}
	if s.BotCount != 2 || s.ManualCount != 1 {
		t.Errorf("unexpected executor counts: bot=%d manual=%d", s.BotCount, s.ManualCount)
	}
}

func TestSummarizeTransactions_MixedSymbols(t *testing.T) {
	s := SummarizeTransactions([]model.Transaction{
		tx("AAPL", model.TransactionBuy, 1, 1, model.ExecutorManual),
		tx("TSLA", model.TransactionBuy, 1, 1, model.ExecutorManual),
	})
	if s.Symbol != "" {
		t.Errorf("expected empty symbol for mixed history, got %q", s.Symbol)
	}
}

func TestSummarizeTransactions_Empty(t *testing.T) {
	s := SummarizeTransactions(nil)
	if s.Count != 0 || !s.BoughtQty.IsZero() || !s.BuyNotional.IsZero() {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
