package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schemaSQL string

// schemaLockID serialises concurrent EnsureSchema calls across processes.
const schemaLockID int64 = 727_100_301

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnsureSchema creates the registry tables if they do not exist yet.
//
// The DDL is idempotent and runs in one transaction holding an advisory
// lock. It does not track versions.
func EnsureSchema(ctx context.Context, db Beginner, logger *zerolog.Logger) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	// No arguments, so pgx sends this over the simple protocol and the
	// multi-statement script is accepted.
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}

	logger.Info().Msg("database schema ensured")
	return nil
}
