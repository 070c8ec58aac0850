package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/training-registry/internal/model"
	"github.com/deppfellow/training-registry/internal/sqlerr"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	personTable = "an_user"

	// personEmailConstraint is the name PostgreSQL gives the UNIQUE on an_user.email.
	personEmailConstraint = "an_user_email_key"
)

// roleKind describes one role table hanging off an_user.
type roleKind struct {
	name       string // used in errors and logs
	table      string
	idColumn   string
	roleFields map[string]fieldType // editable role columns, beside personFields
}

type roleQueries struct {
	exists       string
	lockRole     string
	deleteRole   string
	deletePerson string
}

func newRoleQueries(kind roleKind) roleQueries {
	return roleQueries{
		exists:       fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", kind.table, kind.idColumn),
		lockRole:     fmt.Sprintf("SELECT user_id FROM %s WHERE %s = $1 FOR UPDATE", kind.table, kind.idColumn),
		deleteRole:   fmt.Sprintf("DELETE FROM %s WHERE %s = $1", kind.table, kind.idColumn),
		deletePerson: "DELETE FROM an_user WHERE user_id = $1",
	}
}

// roleStore holds the operations every role kind shares: lookups, the
// person-then-role create, the two-table edit, and the two-table delete.
type roleStore struct {
	db     DB
	logger *zerolog.Logger
	kind   roleKind
	q      roleQueries
	psql   sq.StatementBuilderType
}

func newRoleStore(db DB, logger *zerolog.Logger, kind roleKind) roleStore {
	return roleStore{
		db:     db,
		logger: logger,
		kind:   kind,
		q:      newRoleQueries(kind),
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Exists reports whether a role row with the given id exists.
func (s *roleStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, s.q.exists, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", s.kind.name, err)
	}
	return exists, nil
}

// ExistsPersonByEmail reports whether any person uses the given email.
func (s *roleStore) ExistsPersonByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM an_user WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// GetPersonByEmail returns the person with the given email or ErrNotFound.
func (s *roleStore) GetPersonByEmail(ctx context.Context, email string) (*model.Person, error) {
	var p model.Person
	err := s.db.QueryRow(ctx, `
		SELECT user_id, vorname, nachname, email, abteilung
		FROM an_user
		WHERE email = $1`, email).
		Scan(&p.ID, &p.Vorname, &p.Nachname, &p.Email, &p.Abteilung)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person by email: %w", err)
	}
	return &p, nil
}

// create inserts the person and then, in the same transaction, the role row
// built by insertRole. It returns the new role id.
func (s *roleStore) create(ctx context.Context, person model.NewPerson, insertRole func(tx pgx.Tx, userID int64) (int64, error)) (int64, error) {
	existing, err := s.GetPersonByEmail(ctx, person.Email)
	switch {
	case err == nil:
		return 0, &ConflictError{Email: person.Email, PersonID: existing.ID}
	case !errors.Is(err, ErrNotFound):
		return 0, err
	}

	var roleID int64
	err = inTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		var userID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO an_user (pw_hash, vorname, nachname, email, abteilung)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING user_id`,
			person.PwHash, person.Vorname, person.Nachname, person.Email, person.Abteilung,
		).Scan(&userID)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}

		roleID, err = insertRole(tx, userID)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", s.kind.name, err)
		}
		return nil
	})
	if err != nil {
		// Lost a race against a concurrent create with the same email.
		if isEmailViolation(err) {
			return 0, s.emailConflict(ctx, person.Email)
		}
		return 0, err
	}

	s.logger.Debug().
		Str("kind", s.kind.name).
		Int64(s.kind.idColumn, roleID).
		Msg("created role record")

	return roleID, nil
}

// Edit applies changes to the person row and the role row of id in one
// transaction. Keys must appear in the person or role allow-list.
func (s *roleStore) Edit(ctx context.Context, id int64, changes map[string]any) error {
	personChanges, roleChanges, err := splitChanges(changes, s.kind.roleFields)
	if err != nil {
		return err
	}

	err = inTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		userID, err := s.lockRole(ctx, tx, id)
		if err != nil {
			return err
		}

		if len(personChanges) > 0 {
			query := s.psql.Update(personTable).SetMap(personChanges).Where(sq.Eq{"user_id": userID})
			if err := execBuilder(ctx, tx, query); err != nil {
				return fmt.Errorf("failed to update person: %w", err)
			}
		}

		if len(roleChanges) > 0 {
			query := s.psql.Update(s.kind.table).SetMap(roleChanges).Where(sq.Eq{s.kind.idColumn: id})
			if err := execBuilder(ctx, tx, query); err != nil {
				return fmt.Errorf("failed to update %s: %w", s.kind.name, err)
			}
		}
		return nil
	})
	if err != nil {
		if email, ok := personChanges["email"].(string); ok && isEmailViolation(err) {
			return s.emailConflict(ctx, email)
		}
		return err
	}

	return nil
}

// Delete removes the role row and then its person row in one transaction
// and returns the deleted person's id.
func (s *roleStore) Delete(ctx context.Context, id int64) (int64, error) {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	var userID int64
	err = inTx(ctx, s.db, s.logger, func(tx pgx.Tx) error {
		var err error
		userID, err = s.lockRole(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, s.q.deleteRole, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.kind.name, err)
		}

		if _, err := tx.Exec(ctx, s.q.deletePerson, userID); err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}
		return nil
	})
	if err != nil {
		if sqlerr.IsCode(err, sqlerr.ForeignKeyViolation) {
			return 0, fmt.Errorf("%s %d: %w", s.kind.name, id, ErrInUse)
		}
		return 0, err
	}

	return userID, nil
}

// lockRole reads the owning user_id of the role row and locks it until
// the transaction ends.
func (s *roleStore) lockRole(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	var userID int64
	err := tx.QueryRow(ctx, s.q.lockRole, id).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock %s: %w", s.kind.name, err)
	}
	return userID, nil
}

// emailConflict builds the ConflictError for an email that was taken
// between our check and our write.
func (s *roleStore) emailConflict(ctx context.Context, email string) error {
	conflict := &ConflictError{Email: email}

	existing, err := s.GetPersonByEmail(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("could not resolve conflicting person")
		return conflict
	}

	conflict.PersonID = existing.ID
	return conflict
}

func execBuilder(ctx context.Context, tx pgx.Tx, b sq.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = tx.Exec(ctx, query, args...)
	return err
}

func isEmailViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return sqlerr.MapCode(pgErr.Code) == sqlerr.UniqueViolation && pgErr.ConstraintName == personEmailConstraint
}
