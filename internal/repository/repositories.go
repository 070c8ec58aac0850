package repository

import (
	"github.com/deppfellow/training-registry/internal/server"
)

// Repositories groups every repository so services get one dependency.
type Repositories struct {
	Trainer *TrainerRepository
	Trainee *TraineeRepository
}

// NewRepositories builds the repositories on the server's shared pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Trainer: NewTrainerRepository(s.DB.Pool, s.Logger),
		Trainee: NewTraineeRepository(s.DB.Pool, s.Logger),
	}
}
