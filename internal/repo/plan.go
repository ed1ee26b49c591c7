// Package repo stores plan documents. A document is an opaque JSON blob
// saved under a string key; each save overwrites the previous one in full.
// Three backends implement PlanStore: Postgres, a local directory (diskv) and
// Redis. No business logic lives here, only storage and error mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/trip-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PlanStore is the persistence contract for plan documents.
// The service layer depends on this interface, not on a concrete backend.
type PlanStore interface {
	// Get returns the document stored under key.
	// Returns domain.ErrNotFound if nothing is stored there.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores doc under key, replacing any previous document.
	Put(ctx context.Context, key string, doc []byte) error

	// Delete removes the document under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// pgPlanStore is the Postgres implementation of PlanStore.
type pgPlanStore struct {
	db db
}

// NewPGPlanStore constructs a PlanStore backed by the plan_documents table.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPGPlanStore(db db) PlanStore {
	return &pgPlanStore{db: db}
}

// Get reads the document column for key.
func (s *pgPlanStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT document FROM plan_documents WHERE key = @key`

	var doc []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.PlanStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.PlanStore.Get: %w", err)
	}
	return doc, nil
}

// Put upserts the document for key.
func (s *pgPlanStore) Put(ctx context.Context, key string, doc []byte) error {
	const q = `
		INSERT INTO plan_documents (key, document)
		VALUES (@key, @document)
		ON CONFLICT (key) DO UPDATE
		SET document   = EXCLUDED.document,
		    updated_at = now()`

	args := pgx.NamedArgs{
		"key":      key,
		"document": string(doc),
	}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.PlanStore.Put: %w", err)
	}
	return nil
}

// Delete removes the row for key, if any.
func (s *pgPlanStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM plan_documents WHERE key = @key`

	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("repo.PlanStore.Delete: %w", err)
	}
	return nil
}
