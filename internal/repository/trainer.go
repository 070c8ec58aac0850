package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/training-registry/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var trainerKind = roleKind{
	name:       "trainer",
	table:      "ausbilder",
	idColumn:   "ausbilder_id",
	roleFields: map[string]fieldType{},
}

// TrainerRepository stores trainers (an_user + ausbilder).
type TrainerRepository struct {
	roleStore
}

func NewTrainerRepository(db DB, logger *zerolog.Logger) *TrainerRepository {
	return &TrainerRepository{roleStore: newRoleStore(db, logger, trainerKind)}
}

// GetAll lists every trainer's email and id.
func (r *TrainerRepository) GetAll(ctx context.Context) ([]model.TrainerSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT us.email, au.ausbilder_id
		FROM an_user us
		JOIN ausbilder au ON us.user_id = au.user_id
		ORDER BY au.ausbilder_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainers: %w", err)
	}

	trainers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TrainerSummary, error) {
		var t model.TrainerSummary
		err := row.Scan(&t.Email, &t.ID)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan trainers: %w", err)
	}

	return trainers, nil
}

// GetByID returns the trainer joined with its person record.
func (r *TrainerRepository) GetByID(ctx context.Context, id int64) (*model.Trainer, error) {
	var t model.Trainer
	err := r.db.QueryRow(ctx, `
		SELECT us.user_id, us.vorname, us.nachname, us.email, us.abteilung, au.ausbilder_id
		FROM an_user us
		JOIN ausbilder au ON us.user_id = au.user_id
		WHERE au.ausbilder_id = $1`, id).
		Scan(&t.Person.ID, &t.Vorname, &t.Nachname, &t.Email, &t.Abteilung, &t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}

	return &t, nil
}

// Create inserts the person and the trainer row and returns the new ausbilder_id.
func (r *TrainerRepository) Create(ctx context.Context, payload model.NewTrainer) (int64, error) {
	return r.create(ctx, payload.NewPerson, func(tx pgx.Tx, userID int64) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, "INSERT INTO ausbilder (user_id) VALUES ($1) RETURNING ausbilder_id", userID).Scan(&id)
		return id, err
	})
}
