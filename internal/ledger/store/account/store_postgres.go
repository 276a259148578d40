package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"mintbank/internal/ledger/models"
	"mintbank/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresStore persists accounts in PostgreSQL. Balances are stored as
// NUMERIC and scanned through their decimal string form; the version column
// drives compare-and-set.
//
// Schema:
//
//	CREATE TABLE accounts (
//	    identity   TEXT PRIMARY KEY,
//	    balance    NUMERIC(20, 2) NOT NULL CHECK (balance >= 0),
//	    version    BIGINT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create atomically inserts a new account. The primary key constraint makes
// concurrent registrations of the same identity resolve to exactly one
// winner.
func (s *PostgresStore) Create(ctx context.Context, identity string, initialBalance decimal.Decimal) (*models.Account, error) {
	now := time.Now()
	query := `
		INSERT INTO accounts (identity, balance, version, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
	`
	_, err := s.db.ExecContext(ctx, query, identity, initialBalance.String(), now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sentinel.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return &models.Account{
		Identity:  identity,
		Balance:   initialBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Get returns the account or sentinel.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, identity string) (*models.Account, error) {
	query := `
		SELECT identity, balance, version, created_at, updated_at
		FROM accounts
		WHERE identity = $1
	`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, identity))
}

// CompareAndSet performs the optimistic update. The WHERE clause on version
// means a lost race updates zero rows and mutates nothing.
func (s *PostgresStore) CompareAndSet(ctx context.Context, identity string, expectedVersion uint64, newBalance decimal.Decimal) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE identity = $3 AND version = $4
		RETURNING identity, balance, version, created_at, updated_at
	`
	acc, err := s.scanAccount(s.db.QueryRowContext(ctx, query, newBalance.String(), time.Now(), identity, expectedVersion))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	// Zero rows updated: distinguish a missing account from a version race.
	if _, getErr := s.Get(ctx, identity); getErr != nil {
		return nil, getErr
	}
	return nil, sentinel.ErrVersionConflict
}

func (s *PostgresStore) scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		acc     models.Account
		balance string
	)
	err := row.Scan(&acc.Identity, &balance, &acc.Version, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	acc.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse stored balance: %w", err)
	}
	return &acc, nil
}
