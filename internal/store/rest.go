package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/symbol"
)

// DefaultRESTTimeout bounds a single backend request when no client is supplied.
const DefaultRESTTimeout = 10 * time.Second

// RESTSource implements Source against the trading backend's REST API.
//
//	GET /portafolio/{userID}                      -> []RawPosition
//	GET /usuarios/{userID}/balance                -> {"balance": number|string}
//	GET /ranking                                  -> []{id, name, balanceActual}
//	GET /transacciones/{userID}?symbol={symbol}   -> []{id, userId, symbol, type, quantity, price, timestamp, executedBy}
type RESTSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// RESTOption configures a RESTSource.
type RESTOption func(*RESTSource)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(s *RESTSource) { s.client = c }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) RESTOption {
	return func(s *RESTSource) { s.token = token }
}

// NewRESTSource creates a source for the backend rooted at baseURL.
func NewRESTSource(baseURL string, opts ...RESTOption) *RESTSource {
	s := &RESTSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultRESTTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RESTSource) GetPositions(ctx context.Context, userID string) ([]model.RawPosition, error) {
	var positions []model.RawPosition
	if err := s.getJSON(ctx, "/portafolio/"+url.PathEscape(userID), &positions); err != nil {
		return nil, fmt.Errorf("positions for user %s: %w", userID, err)
	}
	if positions == nil {
		positions = []model.RawPosition{}
	}
	return positions, nil
}

type balanceResponse struct {
	Balance model.LooseNumber `json:"balance"`
}

func (s *RESTSource) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var resp balanceResponse
	if err := s.getJSON(ctx, "/usuarios/"+url.PathEscape(userID)+"/balance", &resp); err != nil {
		return decimal.Zero, fmt.Errorf("balance for user %s: %w", userID, err)
	}
	balance, ok := resp.Balance.Decimal()
	if !ok {
		return decimal.Zero, fmt.Errorf("balance for user %s: unparsable value %q", userID, resp.Balance.Raw)
	}
	return balance, nil
}

// backendID accepts numeric and string ids.
type backendID string

func (id *backendID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = backendID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = backendID(n.String())
	return nil
}

type rankingUserResponse struct {
	ID            backendID         `json:"id"`
	Name          string            `json:"name"`
	BalanceActual model.LooseNumber `json:"balanceActual"`
}

func (s *RESTSource) ListRankingUsers(ctx context.Context) ([]model.RankingUser, error) {
	var resp []rankingUserResponse
	if err := s.getJSON(ctx, "/ranking", &resp); err != nil {
		return nil, fmt.Errorf("list ranking users: %w", err)
	}

	users := make([]model.RankingUser, 0, len(resp))
	for _, r := range resp {
		users = append(users, model.RankingUser{
			ID:            string(r.ID),
			Name:          r.Name,
			BalanceActual: r.BalanceActual.OrZero(),
		})
	}
	return users, nil
}

// transactionResponse is one transaction in the backend's camelCase wire
// format. Ids may be numeric; amounts may be numbers or strings.
type transactionResponse struct {
	ID         backendID         `json:"id"`
	UserID     backendID         `json:"userId"`
	Symbol     string            `json:"symbol"`
	Type       string            `json:"type"`
	Quantity   model.LooseNumber `json:"quantity"`
	Price      model.LooseNumber `json:"price"`
	Timestamp  time.Time         `json:"timestamp"`
	ExecutedBy string            `json:"executedBy"`
}

func (s *RESTSource) GetTransactionsBySymbol(ctx context.Context, userID, sym string) ([]model.Transaction, error) {
	path := "/transacciones/" + url.PathEscape(userID) + "?symbol=" + url.QueryEscape(symbol.Normalize(sym))

	var resp []transactionResponse
	if err := s.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("transactions for user %s: %w", userID, err)
	}

	txs := make([]model.Transaction, 0, len(resp))
	for _, r := range resp {
		tx := model.Transaction{
			ID:         string(r.ID),
			UserID:     string(r.UserID),
			Symbol:     symbol.Normalize(r.Symbol),
			Type:       model.TransactionType(strings.ToUpper(strings.TrimSpace(r.Type))),
			Quantity:   r.Quantity.OrZero(),
			Price:      r.Price.OrZero(),
			Timestamp:  r.Timestamp,
			ExecutedBy: model.Executor(strings.ToUpper(strings.TrimSpace(r.ExecutedBy))),
		}
		if tx.UserID == "" {
			tx.UserID = userID
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *RESTSource) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
