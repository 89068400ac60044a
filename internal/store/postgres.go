package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradedash/portfolio-engine/internal/model"
	"github.com/tradedash/portfolio-engine/internal/symbol"
)

// PostgresSource implements Source by reading the trading backend's
// PostgreSQL database directly. Numeric columns are NUMERIC and are selected
// as TEXT so that nothing is lost before the normalizer sees them.
//
// Expected tables:
//
//	users        (id, name, balance_actual, created_at)
//	positions    (user_id, symbol, cantidad, precio_promedio, precio_actual,
//	              valor_mercado, ganancia_perdida, nombre)
//	transactions (id, user_id, symbol, type, quantity, price, executed_at, executed_by)
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a new PostgreSQL-backed source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) GetPositions(ctx context.Context, userID string) ([]model.RawPosition, error) {
	if err := s.userExists(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT symbol,
		        cantidad::TEXT, precio_promedio::TEXT, precio_actual::TEXT,
		        valor_mercado::TEXT, ganancia_perdida::TEXT,
		        COALESCE(nombre, '')
		 FROM positions WHERE user_id = $1 ORDER BY symbol`, userID)
	if err != nil {
		return nil, fmt.Errorf("query positions for %s: %w", userID, err)
	}
	defer rows.Close()

	positions := []model.RawPosition{}
	for rows.Next() {
		var p model.RawPosition
		var qty, avg, price, value, pnl *string

		if err := rows.Scan(&p.Symbol, &qty, &avg, &price, &value, &pnl, &p.Nombre); err != nil {
			return nil, err
		}

		p.Cantidad = model.LooseFromPtr(qty)
		p.PrecioPromedio = model.LooseFromPtr(avg)
		p.PrecioActual = model.LooseFromPtr(price)
		p.ValorMercado = model.LooseFromPtr(value)
		p.GananciaPerdida = model.LooseFromPtr(pnl)

		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *PostgresSource) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balanceS string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(balance_actual, 0)::TEXT FROM users WHERE id = $1`, userID).
		Scan(&balanceS)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("balance for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance %s: %w", userID, err)
	}

	balance, err := decimal.NewFromString(balanceS)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %s: %w", userID, err)
	}
	return balance, nil
}

func (s *PostgresSource) ListRankingUsers(ctx context.Context) ([]model.RankingUser, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(balance_actual, 0)::TEXT
		 FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list ranking users: %w", err)
	}
	defer rows.Close()

	users := []model.RankingUser{}
	for rows.Next() {
		var u model.RankingUser
		var balanceS string
		if err := rows.Scan(&u.ID, &u.Name, &balanceS); err != nil {
			return nil, err
		}
		u.BalanceActual = model.NewLooseNumber(balanceS).OrZero()
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresSource) GetTransactionsBySymbol(ctx context.Context, userID, sym string) ([]model.Transaction, error) {
	if err := s.userExists(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, symbol, type,
		        quantity::TEXT, price::TEXT, executed_at, executed_by
		 FROM transactions
		 WHERE user_id = $1 AND UPPER(symbol) = $2
		 ORDER BY executed_at`, userID, symbol.Normalize(sym))
	if err != nil {
		return nil, fmt.Errorf("query transactions for %s: %w", userID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *PostgresSource) userExists(ctx context.Context, userID string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// pgxRows is the subset of pgx.Rows used by the scanners.
type pgxRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanTransactions(rows pgxRows) ([]model.Transaction, error) {
	txs := []model.Transaction{}
	for rows.Next() {
		var tx model.Transaction
		var typ, executedBy, qtyS, priceS string

		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Symbol, &typ,
			&qtyS, &priceS, &tx.Timestamp, &executedBy); err != nil {
			return nil, err
		}

		tx.Type = model.TransactionType(typ)
		tx.ExecutedBy = model.Executor(executedBy)

		var err error
		if tx.Quantity, err = decimal.NewFromString(qtyS); err != nil {
			return nil, fmt.Errorf("transaction %s quantity %q: %w", tx.ID, qtyS, err)
		}
		if tx.Price, err = decimal.NewFromString(priceS); err != nil {
			return nil, fmt.Errorf("transaction %s price %q: %w", tx.ID, priceS, err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}

		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
