package service

import (
	"github.com/deppfellow/training-registry/internal/repository"
	"github.com/deppfellow/training-registry/internal/server"
)

// Services groups the business services for the handler layer.
type Services struct {
	Trainer *TrainerService
	Trainee *TraineeService
}

// NewServices wires services to the repositories and, when Redis is
// configured, to the job queue.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var enqueuer WelcomeEnqueuer
	if s.Job != nil {
		enqueuer = s.Job
	}

	return &Services{
		Trainer: NewTrainerService(repos.Trainer, enqueuer),
		Trainee: NewTraineeService(repos.Trainee, repos.Trainer, enqueuer),
	}, nil
}
