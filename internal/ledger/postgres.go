package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quantterm/backend/internal/contracts"
	"github.com/quantterm/backend/pkg/database"
	"github.com/quantterm/backend/pkg/logger"
)

// PostgresStore reads portfolio ledgers from PostgreSQL.
//
// Schema:
//
//	CREATE TABLE portfolios (
//	    name        TEXT PRIMARY KEY,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE transactions (
//	    id          BIGSERIAL PRIMARY KEY,
//	    portfolio   TEXT NOT NULL REFERENCES portfolios(name),
//	    ticker      TEXT NOT NULL,
//	    tx_type     TEXT NOT NULL,
//	    shares      DOUBLE PRECISION NOT NULL,
//	    price       DOUBLE PRECISION NOT NULL,
//	    trade_date  DATE NOT NULL,
//	    sequence    INT NOT NULL DEFAULT 0
//	);
//
// portfolios.updated_at must be bumped by whatever writes transactions;
// it drives returns-cache invalidation the same way file mtime does for
// the file backend.
type PostgresStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewPostgresStore creates a Postgres-backed ledger.
func NewPostgresStore(db *database.DB, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: log.WithComponent("ledger_pg"),
	}
}

// Transactions returns the portfolio's entries ordered by insertion.
func (s *PostgresStore) Transactions(ctx context.Context, portfolio string) ([]contracts.Transaction, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT ticker, tx_type, shares, price, trade_date, sequence
		FROM transactions
		WHERE portfolio = $1
		ORDER BY id`, portfolio)
	if err != nil {
		return nil, fmt.Errorf("query transactions for %s: %w", portfolio, err)
	}
	defer rows.Close()

	var txs []contracts.Transaction
	for rows.Next() {
		var (
			tx        contracts.Transaction
			txType    string
			tradeDate time.Time
		)
		if err := rows.Scan(&tx.Ticker, &txType, &tx.Shares, &tx.Price, &tradeDate, &tx.Sequence); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := contracts.ParseTxType(txType)
		if err != nil {
			return nil, fmt.Errorf("portfolio %s: %w", portfolio, err)
		}
		tx.Type = parsed
		tx.Date = contracts.DayOf(tradeDate)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions for %s: %w", portfolio, err)
	}
	return txs, nil
}

// LastModified reads the portfolio's updated_at timestamp.
func (s *PostgresStore) LastModified(ctx context.Context, portfolio string) (time.Time, error) {
	var updatedAt time.Time
	err := s.db.Pool.QueryRow(ctx,
		`SELECT updated_at FROM portfolios WHERE name = $1`, portfolio,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, fmt.Errorf("portfolio %q not found", portfolio)
		}
		return time.Time{}, fmt.Errorf("query mtime for %s: %w", portfolio, err)
	}
	return updatedAt, nil
}

// List returns all portfolio names, sorted.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT name FROM portfolios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

var _ contracts.TransactionLedger = (*PostgresStore)(nil)
