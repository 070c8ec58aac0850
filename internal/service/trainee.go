package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/training-registry/internal/errs"
	"github.com/deppfellow/training-registry/internal/lib/job"
	"github.com/deppfellow/training-registry/internal/model"
)

// TraineeRepository is what TraineeService needs from storage.
type TraineeRepository interface {
	GetAll(ctx context.Context) ([]model.TraineeSummary, error)
	GetByID(ctx context.Context, id int64) (*model.Trainee, error)
	Create(ctx context.Context, payload model.NewTrainee) (int64, error)
	Edit(ctx context.Context, id int64, changes map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
}

// TrainerLookup checks supervising trainers.
type TrainerLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type TraineeService struct {
	repo     TraineeRepository
	trainers TrainerLookup
	enqueuer WelcomeEnqueuer
}

func NewTraineeService(repo TraineeRepository, trainers TrainerLookup, enqueuer WelcomeEnqueuer) *TraineeService {
	return &TraineeService{repo: repo, trainers: trainers, enqueuer: enqueuer}
}

func (s *TraineeService) List(ctx context.Context) ([]model.TraineeSummary, error) {
	trainees, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, mapError("trainee", 0, err)
	}
	return trainees, nil
}

func (s *TraineeService) Get(ctx context.Context, id int64) (*model.Trainee, error) {
	trainee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("trainee", id, err)
	}
	return trainee, nil
}

// Create checks the supervising trainer, stores the trainee, and queues
// the welcome e-mail. The foreign key still guards against a trainer
// deleted between the check and the insert.
func (s *TraineeService) Create(ctx context.Context, payload model.NewTrainee) (int64, error) {
	exists, err := s.trainers.Exists(ctx, payload.AusbilderID)
	if err != nil {
		return 0, mapError("trainer", payload.AusbilderID, err)
	}
	if !exists {
		code := "TRAINER_NOT_FOUND"
		return 0, errs.NewBadRequestError("The referenced trainer does not exist", true, &code, []errs.FieldError{
			{Field: "ausbilder_id", Error: fmt.Sprintf("no trainer with id %d", payload.AusbilderID)},
		}, nil)
	}

	id, err := s.repo.Create(ctx, payload)
	if err != nil {
		return 0, mapError("trainee", 0, err)
	}

	enqueueWelcome(ctx, s.enqueuer, job.WelcomeEmailPayload{
		To:        payload.Email,
		FirstName: payload.Vorname,
		Role:      "Auszubildender",
		Abteilung: payload.Abteilung,
	})

	return id, nil
}

func (s *TraineeService) Edit(ctx context.Context, id int64, changes map[string]any) error {
	if err := s.repo.Edit(ctx, id, changes); err != nil {
		return mapError("trainee", id, err)
	}
	return nil
}

// Delete removes the trainee and its person record and returns the person id.
func (s *TraineeService) Delete(ctx context.Context, id int64) (int64, error) {
	userID, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, mapError("trainee", id, err)
	}
	return userID, nil
}
