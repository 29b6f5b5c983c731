// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package store provides the PostgreSQL connection pool, transaction
// plumbing, and schema migrations shared by all repositories.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry parameters for startup. The database is commonly still
// warming up when the process starts under an orchestrator.
const (
	connectBaseDelay  = 250 * time.Millisecond
	connectMaxRetries = 6
)

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and verifies the connection, retrying pings
// with exponential backoff so a briefly unavailable database does not fail
// startup.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewExponential(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").Wrap(err)
	}

	return &DB{pool: pool}, nil
}

// Pool exposes the underlying connection pool for repositories.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx. Helpers
// that must work both inside and outside transactions accept this.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the pool surface repositories depend on. *pgxpool.Pool satisfies
// it, as does pgxmock's pool in tests.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// txKey is the context key for the active transaction.
type txKey struct{}

// Transactor runs functions inside a database transaction. The active
// pgx.Tx is stored in context so that transaction-aware repository methods
// participate in the same transaction.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a Transactor backed by the given connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// If fn returns nil, the transaction is committed. Otherwise it is rolled
// back and no partial writes are observable.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// TxFrom returns the transaction stored in ctx, or nil if none is active.
func TxFrom(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// QuerierFrom returns the active transaction from ctx if present, falling
// back to the pool. Repository methods route all queries through this so
// they transparently join an enclosing transaction.
func QuerierFrom(ctx context.Context, pool Pool) Querier {
	if tx := TxFrom(ctx); tx != nil {
		return tx
	}
	return pool
}

// BeginFrom starts a transaction scope from ctx: a nested transaction
// (savepoint) when a transaction is already active, or a new top-level
// transaction otherwise.
func BeginFrom(ctx context.Context, pool Pool) (pgx.Tx, error) {
	if tx := TxFrom(ctx); tx != nil {
		nested, err := tx.Begin(ctx)
		if err != nil {
			return nil, oops.Code("TX_SAVEPOINT_FAILED").Wrap(err)
		}
		return nested, nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	return tx, nil
}
