package handler

import (
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/deppfellow/training-registry/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one object.
type Handlers struct {
	Trainer *TrainerHandler
	Trainee *TraineeHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Trainer: NewTrainerHandler(s, services.Trainer),
		Trainee: NewTraineeHandler(s, services.Trainee),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
