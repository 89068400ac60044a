package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tradedash/portfolio-engine/internal/metrics"
	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/store"
	"github.com/tradedash/portfolio-engine/internal/valuation"
)

// Composer fetches every ranked user's balance and portfolio concurrently and
// composes the leaderboard. A failed per-user fetch falls back to a default
// value; only a failure of the base user list fails the whole ranking.
type Composer struct {
	source         store.Source
	logger         *slog.Logger
	concurrency    int
	fetchTimeout   time.Duration
	initialBalance decimal.Decimal
}

// Option configures a Composer.
type Option func(*Composer)

// WithConcurrency caps in-flight per-user fetches. n <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(c *Composer) { c.concurrency = n }
}

// WithFetchTimeout bounds each user's balance and portfolio fetches.
// Zero disables the per-user timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Composer) { c.fetchTimeout = d }
}

// WithInitialBalance overrides InitialBalance for return calculations.
func WithInitialBalance(v decimal.Decimal) Option {
	return func(c *Composer) { c.initialBalance = v }
}

// WithLogger sets the logger used for per-user fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// NewComposer creates a Composer reading from source.
func NewComposer(source store.Source, opts ...Option) *Composer {
	c := &Composer{
		source:         source,
		logger:         slog.Default(),
		initialBalance: InitialBalance,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitialBalance returns the starting balance returns are measured against.
func (c *Composer) InitialBalance() decimal.Decimal {
	return c.initialBalance
}

// Compose builds the full, untruncated leaderboard.
func (c *Composer) Compose(ctx context.Context) ([]model.RankingEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RankingComposeDuration.Observe(time.Since(start).Seconds())
	}()

	users, err := c.source.ListRankingUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ranking users: %w", err)
	}

	summaries, err := c.Summaries(ctx, users)
	if err != nil {
		return nil, err
	}

	entries := ComposeRanking(summaries, c.initialBalance)
	metrics.RankingUsers.Set(float64(len(entries)))
	return entries, nil
}

// Summaries enriches every user in parallel. The result has one summary per
// user, in input order. It fails only if ctx is done.
func (c *Composer) Summaries(ctx context.Context, users []model.RankingUser) ([]model.UserSummary, error) {
	summaries := make([]model.UserSummary, len(users))

	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for i, u := range users {
		g.Go(func() error {
			summaries[i] = c.summarize(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Composer) summarize(ctx context.Context, u model.RankingUser) model.UserSummary {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	summary := model.UserSummary{
		UserID:      u.ID,
		DisplayName: u.Name,
	}
	if summary.DisplayName == "" {
		summary.DisplayName = u.ID
	}

	// Balance and positions are independent and fetched together.
	var g errgroup.Group
	g.Go(func() error {
		balance, err := c.source.GetBalance(ctx, u.ID)
		if err != nil {
			c.logger.Warn("balance fetch failed, using ranking balance",
				"user_id", u.ID, "err", err)
			metrics.EnrichmentFailures.WithLabelValues("balance").Inc()
			balance = u.BalanceActual
		}
		summary.CashBalance = balance
		return nil
	})
	g.Go(func() error {
		value, err := c.portfolioValue(ctx, u.ID)
		if err != nil {
			c.logger.Warn("portfolio fetch failed, valuing at zero",
				"user_id", u.ID, "err", err)
			metrics.EnrichmentFailures.WithLabelValues("portfolio").Inc()
			summary.PortfolioErr = err
			value = decimal.Zero
		}
		summary.PortfolioValue = value
		return nil
	})
	_ = g.Wait()

	return summary
}

func (c *Composer) portfolioValue(ctx context.Context, userID string) (decimal.Decimal, error) {
	raw, err := c.source.GetPositions(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return valuation.Aggregate(valuation.Normalize(raw)).TotalValue, nil
}
