// Package dashboard provides the HTTP handlers behind the portfolio and
// leaderboard views: valuation, allocation, alerts, trade history, and ranking.
//
// Every response is derived from a fresh backend fetch; nothing is persisted.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/alert"
	"github.com/tradedash/portfolio-engine/internal/metrics"
	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/ranking"
	"github.com/tradedash/portfolio-engine/internal/store"
	"github.com/tradedash/portfolio-engine/internal/symbol"
	"github.com/tradedash/portfolio-engine/internal/valuation"
)

// BroadcastSize is how many leaderboard rows a ranking_updated message carries.
const BroadcastSize = 10

// Invalidator is implemented by sources that cache per-user data.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Service serves the dashboard API.
type Service struct {
	source   store.Source
	composer *ranking.Composer
	checker  *alert.Checker
	wsHub    *WSHub // optional WebSocket hub for ranking broadcasts
}

// NewService creates a new dashboard service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(src store.Source, composer *ranking.Composer, checker *alert.Checker, hub *WSHub) *Service {
	if composer == nil {
		composer = ranking.NewComposer(src)
	}
	if checker == nil {
		checker = alert.NewChecker(decimal.Zero, decimal.Zero)
	}
	return &Service{
		source:   src,
		composer: composer,
		checker:  checker,
		wsHub:    hub,
	}
}

// --- Response types ---

// PortfolioResponse is the JSON body for GET /portfolio/{userID}.
type PortfolioResponse struct {
	UserID    string           `json:"user_id"`
	Positions []model.Position `json:"positions"`
	model.PortfolioSummary
}

// DistributionResponse is the JSON body for GET /portfolio/{userID}/distribution.
type DistributionResponse struct {
	UserID     string                      `json:"user_id"`
	TotalValue decimal.Decimal             `json:"total_value"`
	Holdings   []model.DistributedPosition `json:"holdings"`
	Total      int                         `json:"total"` // holdings before truncation
}

// AlertsResponse is the JSON body for GET /portfolio/{userID}/alerts.
type AlertsResponse struct {
	UserID string        `json:"user_id"`
	Alerts []alert.Alert `json:"alerts"`
}

// TransactionsResponse is the JSON body for GET /portfolio/{userID}/transactions.
type TransactionsResponse struct {
	UserID       string                   `json:"user_id"`
	Transactions []model.Transaction      `json:"transactions"`
	Summary      model.TransactionSummary `json:"summary"`
}

// RankingResponse is the JSON body for GET /ranking.
type RankingResponse struct {
	Entries        []model.RankingEntry `json:"entries"`
	Total          int                  `json:"total"` // users ranked before truncation
	InitialBalance decimal.Decimal      `json:"initial_balance"`
	ComputedAt     time.Time            `json:"computed_at"`
}

// --- HTTP Handlers ---

// GetPortfolio handles GET /api/v1/portfolio/{userID}
// Returns normalized positions, aggregate metrics, ratios and best/worst holdings.
func (s *Service) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	positions, ok := s.loadPositions(w, r, userID)
	if !ok {
		return
	}

	writeJSON(w, PortfolioResponse{
		UserID:           userID,
		Positions:        positions,
		PortfolioSummary: valuation.Summarize(positions),
	})
}

// GetDistribution handles GET /api/v1/portfolio/{userID}/distribution?top=N
func (s *Service) GetDistribution(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, "top must be a non-negative integer", http.StatusBadRequest)
		return
	}

	positions, ok := s.loadPositions(w, r, userID)
	if !ok {
		return
	}

	dist := valuation.Distribute(positions)
	writeJSON(w, DistributionResponse{
		UserID:     userID,
		TotalValue: valuation.Aggregate(positions).TotalValue,
		Holdings:   valuation.TopHoldings(dist, top),
		Total:      len(dist),
	})
}

// GetAlerts handles GET /api/v1/portfolio/{userID}/alerts
func (s *Service) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	positions, ok := s.loadPositions(w, r, userID)
	if !ok {
		return
	}

	alerts := s.checker.Check(valuation.Distribute(positions))
	for _, a := range alerts {
		metrics.AlertsRaised.WithLabelValues(string(a.Kind)).Inc()
	}

	writeJSON(w, AlertsResponse{UserID: userID, Alerts: alerts})
}

// GetTransactions handles GET /api/v1/portfolio/{userID}/transactions?symbol=SYM
func (s *Service) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	sym, err := symbol.Validate(r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := s.source.GetTransactionsBySymbol(r.Context(), userID, sym)
	if err != nil {
		writeSourceError(w, "failed to load transactions", userID, err)
		return
	}

	// Backends may ignore the symbol filter.
	txs = valuation.FilterBySymbol(txs, sym)

	writeJSON(w, TransactionsResponse{
		UserID:       userID,
		Transactions: txs,
		Summary:      valuation.SummarizeTransactions(txs),
	})
}

// Refresh handles POST /api/v1/portfolio/{userID}/refresh
// Drops cached backend data for the user so the next read is fresh.
func (s *Service) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if inv, ok := s.source.(Invalidator); ok {
		if err := inv.Invalidate(r.Context(), userID); err != nil {
			slog.Warn("cache invalidation failed", "user_id", userID, "err", err)
			writeError(w, "failed to invalidate cache", http.StatusBadGateway)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRanking handles GET /api/v1/ranking?limit=N
// limit defaults to ranking.DefaultDisplayLimit; limit=0 returns every user.
func (s *Service) GetRanking(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", ranking.DefaultDisplayLimit)
	if err != nil {
		writeError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	entries, err := s.composer.Compose(r.Context())
	if err != nil {
		slog.Error("ranking composition failed", "err", err)
		writeError(w, "failed to load ranking", http.StatusBadGateway)
		return
	}

	computedAt := time.Now().UTC()
	slog.Info("ranking composed", "users", len(entries))

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:       "ranking_updated",
			Entries:    ranking.Top(entries, BroadcastSize),
			Total:      len(entries),
			ComputedAt: computedAt,
		})
	}

	writeJSON(w, RankingResponse{
		Entries:        ranking.Top(entries, limit),
		Total:          len(entries),
		InitialBalance: s.composer.InitialBalance(),
		ComputedAt:     computedAt,
	})
}

// loadPositions fetches and normalizes a user's positions, writing the error
// response itself when the fetch fails.
func (s *Service) loadPositions(w http.ResponseWriter, r *http.Request, userID string) ([]model.Position, bool) {
	raw, err := s.source.GetPositions(r.Context(), userID)
	if err != nil {
		writeSourceError(w, "failed to load positions", userID, err)
		return nil, false
	}

	positions := valuation.Normalize(raw)
	metrics.PositionsNormalized.WithLabelValues("kept").Add(float64(len(positions)))
	metrics.PositionsNormalized.WithLabelValues("dropped").Add(float64(len(raw) - len(positions)))
	return positions, true
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative")
	}
	return n, nil
}

// writeSourceError maps a backend failure to 404 or 502.
func writeSourceError(w http.ResponseWriter, message, userID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}
	slog.Error(message, "user_id", userID, "err", err)
	writeError(w, message, http.StatusBadGateway)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
