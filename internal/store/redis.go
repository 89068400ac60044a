package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
)

// CachedSource wraps a primary Source with a Redis read-through cache.
// Reads check Redis first then fall back to the primary; entries expire after
// the configured TTL. Redis errors never fail a read.
type CachedSource struct {
	primary Source
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedSource creates a cached wrapper around a primary source.
func NewCachedSource(primary Source, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// Invalidate drops every cached entry for a user, plus the ranking list.
func (s *CachedSource) Invalidate(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, positionsKey(userID), balanceKey(userID), rankingUsersKey).Err()
}

// --- Read-through (check cache first) ---

func (s *CachedSource) GetPositions(ctx context.Context, userID string) ([]model.RawPosition, error) {
	data, err := s.rdb.Get(ctx, positionsKey(userID)).Bytes()
	if err == nil {
		var positions []model.RawPosition
		if json.Unmarshal(data, &positions) == nil {
			return positions, nil
		}
	}

	// Cache miss.
	positions, err := s.primary.GetPositions(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cacheJSON(ctx, positionsKey(userID), positions)
	return positions, nil
}

func (s *CachedSource) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	cached, err := s.rdb.Get(ctx, balanceKey(userID)).Result()
	if err == nil {
		if balance, perr := decimal.NewFromString(cached); perr == nil {
			return balance, nil
		}
	}

	balance, err := s.primary.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	s.rdb.Set(ctx, balanceKey(userID), balance.String(), s.ttl)
	return balance, nil
}

func (s *CachedSource) ListRankingUsers(ctx context.Context) ([]model.RankingUser, error) {
	data, err := s.rdb.Get(ctx, rankingUsersKey).Bytes()
	if err == nil {
		var users []model.RankingUser
		if json.Unmarshal(data, &users) == nil {
			return users, nil
		}
	}

	users, err := s.primary.ListRankingUsers(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheJSON(ctx, rankingUsersKey, users)
	return users, nil
}

// --- Passthrough (not cached) ---

func (s *CachedSource) GetTransactionsBySymbol(ctx context.Context, userID, symbol string) ([]model.Transaction, error) {
	return s.primary.GetTransactionsBySymbol(ctx, userID, symbol)
}

// --- Cache helpers ---

func (s *CachedSource) cacheJSON(ctx context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

const rankingUsersKey = "ranking:users"

func positionsKey(uid string) string { return fmt.Sprintf("positions:%s", uid) }
func balanceKey(uid string) string   { return fmt.Sprintf("balance:%s", uid) }
