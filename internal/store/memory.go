package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/symbol"
)

// MemorySource implements Source with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemorySource struct {
	mu           sync.RWMutex
	users        []model.RankingUser // backend order
	balances     map[string]decimal.Decimal
	positions    map[string][]model.RawPosition
	transactions []model.Transaction
}

// NewMemorySource creates a new in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		balances:  make(map[string]decimal.Decimal),
		positions: make(map[string][]model.RawPosition),
	}
}

// AddUser registers a user at the end of the ranking list. The cash balance
// starts at the user's BalanceActual.
func (s *MemorySource) AddUser(u model.RankingUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == u.ID {
			return fmt.Errorf("user %s already exists", u.ID)
		}
	}
	s.users = append(s.users, u)
	s.balances[u.ID] = u.BalanceActual
	if _, ok := s.positions[u.ID]; !ok {
		s.positions[u.ID] = nil
	}
	return nil
}

// SetBalance overrides a registered user's cash balance.
func (s *MemorySource) SetBalance(userID string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	s.balances[userID] = balance
	return nil
}

// SetPositions replaces a registered user's raw positions.
func (s *MemorySource) SetPositions(userID string, positions []model.RawPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	// Store a copy to avoid external mutation.
	s.positions[userID] = append([]model.RawPosition(nil), positions...)
	return nil
}

// InsertTransaction appends a validated trade record, assigning an ID if missing.
func (s *MemorySource) InsertTransaction(tx model.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[tx.UserID]; !ok {
		return fmt.Errorf("user %s: %w", tx.UserID, ErrNotFound)
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	tx.Symbol = symbol.Normalize(tx.Symbol)
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *MemorySource) GetPositions(_ context.Context, userID string) ([]model.RawPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions, ok := s.positions[userID]
	if !ok {
		return nil, fmt.Errorf("positions for user %s: %w", userID, ErrNotFound)
	}
	return append([]model.RawPosition{}, positions...), nil
}

func (s *MemorySource) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, ok := s.balances[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("balance for user %s: %w", userID, ErrNotFound)
	}
	return balance, nil
}

func (s *MemorySource) ListRankingUsers(_ context.Context) ([]model.RankingUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]model.RankingUser{}, s.users...), nil
}

func (s *MemorySource) GetTransactionsBySymbol(_ context.Context, userID, sym string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.balances[userID]; !ok {
		return nil, fmt.Errorf("transactions for user %s: %w", userID, ErrNotFound)
	}
	want := symbol.Normalize(sym)
	result := []model.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID == userID && tx.Symbol == want {
			result = append(result, tx)
		}
	}
	return result, nil
}
