// Package store defines the backend data interface consumed by the portfolio
// engine. Implementations include the external REST backend, PostgreSQL,
// a Redis read-through cache wrapper, and in-memory (for testing).
//
// The engine never persists anything: every implementation is read-only from
// the engine's point of view and returns fresh, caller-owned slices.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

// ErrNotFound is returned when the requested user or record does not exist.
var ErrNotFound = errors.New("store: not found")

// Source is the read interface to the trading backend.
type Source interface {
	// GetPositions returns a user's open positions exactly as the backend
	// reports them; numeric fields are loosely typed.
	GetPositions(ctx context.Context, userID string) ([]model.RawPosition, error)

	// GetBalance returns a user's spendable cash balance.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// ListRankingUsers returns the base leaderboard list in backend order.
	ListRankingUsers(ctx context.Context) ([]model.RankingUser, error)

	// GetTransactionsBySymbol returns a user's executed trades for one symbol,
	// oldest first.
	GetTransactionsBySymbol(ctx context.Context, userID, symbol string) ([]model.Transaction, error)
}
