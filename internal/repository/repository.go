// Package repository handles all interactions with the database.
//
// Trainers and trainees are each stored as a person row (an_user) plus a
// role row (ausbilder / auszubildender). Every operation that writes more
// than one statement runs inside a single transaction, so a role row never
// exists without its person row and vice versa.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	// ErrNotFound is returned when the requested role or person does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoChanges is returned by Edit when the change set is empty.
	ErrNoChanges = errors.New("no fields to update")

	// ErrInUse is returned when a row cannot be deleted because other rows
	// still reference it, e.g. a trainer who supervises trainees.
	ErrInUse = errors.New("record is still referenced")
)

// ConflictError reports that a person with the given email already exists.
type ConflictError struct {
	Email    string
	PersonID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("person with email %q already exists (user_id %d)", e.Email, e.PersonID)
}

// InvalidFieldsError lists edit keys that were rejected, with the reason.
type InvalidFieldsError struct {
	Fields map[string]string
}

func (e *InvalidFieldsError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid fields: " + strings.Join(keys, ", ")
}

// inTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise, including when fn panics. A failed rollback is logged,
// never returned, so the caller always sees the original error.
func inTx(ctx context.Context, db DB, logger *zerolog.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The request context may already be cancelled; the rollback must still reach the server.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("failed to roll back transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}
