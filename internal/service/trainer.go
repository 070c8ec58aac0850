package service

import (
	"context"

	"github.com/deppfellow/training-registry/internal/lib/job"
	"github.com/deppfellow/training-registry/internal/model"
)

// TrainerRepository is what TrainerService needs from storage.
type TrainerRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetAll(ctx context.Context) ([]model.TrainerSummary, error)
	GetByID(ctx context.Context, id int64) (*model.Trainer, error)
	Create(ctx context.Context, payload model.NewTrainer) (int64, error)
	Edit(ctx context.Context, id int64, changes map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type TrainerService struct {
	repo     TrainerRepository
	enqueuer WelcomeEnqueuer
}

func NewTrainerService(repo TrainerRepository, enqueuer WelcomeEnqueuer) *TrainerService {
	return &TrainerService{repo: repo, enqueuer: enqueuer}
}

func (s *TrainerService) List(ctx context.Context) ([]model.TrainerSummary, error) {
	trainers, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, mapError("trainer", 0, err)
	}
	return trainers, nil
}

func (s *TrainerService) Get(ctx context.Context, id int64) (*model.Trainer, error) {
	trainer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError("trainer", id, err)
	}
	return trainer, nil
}

// Create stores the trainer and queues the welcome e-mail.
func (s *TrainerService) Create(ctx context.Context, payload model.NewTrainer) (int64, error) {
	id, err := s.repo.Create(ctx, payload)
	if err != nil {
		return 0, mapError("trainer", 0, err)
	}

	enqueueWelcome(ctx, s.enqueuer, job.WelcomeEmailPayload{
		To:        payload.Email,
		FirstName: payload.Vorname,
		Role:      "Ausbilder",
		Abteilung: payload.Abteilung,
	})

	return id, nil
}

func (s *TrainerService) Edit(ctx context.Context, id int64, changes map[string]any) error {
	if err := s.repo.Edit(ctx, id, changes); err != nil {
		return mapError("trainer", id, err)
	}
	return nil
}

// Delete removes the trainer and its person record and returns the person id.
func (s *TrainerService) Delete(ctx context.Context, id int64) (int64, error) {
	userID, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, mapError("trainer", id, err)
	}
	return userID, nil
}
