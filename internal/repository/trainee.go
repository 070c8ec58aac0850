package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/training-registry/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var traineeKind = roleKind{
	name:     "trainee",
	table:    "auszubildender",
	idColumn: "azubi_id",
	roleFields: map[string]fieldType{
		"ausbilder_id":      idField,
		"ausbildungsbeginn": dateField,
		"ausbildungsberuf":  textField,
	},
}

// TraineeRepository stores trainees (an_user + auszubildender).
type TraineeRepository struct {
	roleStore
}

func NewTraineeRepository(db DB, logger *zerolog.Logger) *TraineeRepository {
	return &TraineeRepository{roleStore: newRoleStore(db, logger, traineeKind)}
}

// GetAll lists every trainee's email and id.
func (r *TraineeRepository) GetAll(ctx context.Context) ([]model.TraineeSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT us.email, az.azubi_id
		FROM an_user us
		JOIN auszubildender az ON us.user_id = az.user_id
		ORDER BY az.azubi_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainees: %w", err)
	}

	trainees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TraineeSummary, error) {
		var t model.TraineeSummary
		err := row.Scan(&t.Email, &t.ID)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan trainees: %w", err)
	}

	return trainees, nil
}

// GetByID returns the trainee joined with its person record.
func (r *TraineeRepository) GetByID(ctx context.Context, id int64) (*model.Trainee, error) {
	var t model.Trainee
	err := r.db.QueryRow(ctx, `
		SELECT us.user_id, us.vorname, us.nachname, us.email, us.abteilung,
		       az.azubi_id, az.ausbilder_id, az.ausbildungsbeginn, az.ausbildungsberuf
		FROM an_user us
		JOIN auszubildender az ON us.user_id = az.user_id
		WHERE az.azubi_id = $1`, id).
		Scan(&t.Person.ID, &t.Vorname, &t.Nachname, &t.Email, &t.Abteilung,
			&t.ID, &t.AusbilderID, &t.Ausbildungsbeginn, &t.Ausbildungsberuf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainee: %w", err)
	}

	return &t, nil
}

// Create inserts the person and the trainee row and returns the new azubi_id.
// An ausbilder_id that does not exist fails the whole transaction.
func (r *TraineeRepository) Create(ctx context.Context, payload model.NewTrainee) (int64, error) {
	return r.create(ctx, payload.NewPerson, func(tx pgx.Tx, userID int64) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO auszubildender (user_id, ausbilder_id, ausbildungsbeginn, ausbildungsberuf)
			VALUES ($1, $2, $3, $4)
			RETURNING azubi_id`,
			userID, payload.AusbilderID, payload.Ausbildungsbeginn, payload.Ausbildungsberuf,
		).Scan(&id)
		return id, err
	})
}
