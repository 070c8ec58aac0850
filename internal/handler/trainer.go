package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/training-registry/internal/model"
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/labstack/echo/v4"
)

// TrainerService is the business API the trainer routes call.
type TrainerService interface {
	List(ctx context.Context) ([]model.TrainerSummary, error)
	Get(ctx context.Context, id int64) (*model.Trainer, error)
	Create(ctx context.Context, payload model.NewTrainer) (int64, error)
	Edit(ctx context.Context, id int64, changes map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type trainerIDResponse struct {
	ID int64 `json:"ausbilder_id"`
}

type trainerDeleteResponse struct {
	ID     int64 `json:"ausbilder_id"`
	UserID int64 `json:"user_id"`
}

// TrainerHandler serves /trainer.
type TrainerHandler struct {
	Handler
	service TrainerService

	get    echo.HandlerFunc
	create echo.HandlerFunc
	edit   echo.HandlerFunc
	remove echo.HandlerFunc
}

func NewTrainerHandler(s *server.Server, svc TrainerService) *TrainerHandler {
	h := &TrainerHandler{
		Handler: NewHandler(s),
		service: svc,
	}

	h.get = Handle(h.handleGet, http.StatusOK)
	h.create = Handle(h.handleCreate, http.StatusOK)
	h.edit = Handle(h.handleEdit, http.StatusOK)
	h.remove = Handle(h.handleDelete, http.StatusOK)

	return h
}

// Get lists trainers, or returns one when ?id= is set.
func (h *TrainerHandler) Get(c echo.Context) error {
	return h.get(c)
}

// Post creates a trainer, or edits one when ?id= is set.
func (h *TrainerHandler) Post(c echo.Context) error {
	if c.QueryParam("id") != "" {
		return h.edit(c)
	}
	return h.create(c)
}

func (h *TrainerHandler) Patch(c echo.Context) error {
	return h.edit(c)
}

func (h *TrainerHandler) Delete(c echo.Context) error {
	return h.remove(c)
}

func (h *TrainerHandler) handleGet(c echo.Context, req *GetRequest) (any, error) {
	ctx := c.Request().Context()

	if req.ID == "" {
		return h.service.List(ctx)
	}

	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	return h.service.Get(ctx, id)
}

func (h *TrainerHandler) handleCreate(c echo.Context, req *CreateTrainerRequest) (trainerIDResponse, error) {
	id, err := h.service.Create(c.Request().Context(), req.NewTrainer)
	if err != nil {
		return trainerIDResponse{}, err
	}
	return trainerIDResponse{ID: id}, nil
}

func (h *TrainerHandler) handleEdit(c echo.Context, req *EditRequest) (trainerIDResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return trainerIDResponse{}, err
	}

	if err := h.service.Edit(c.Request().Context(), id, req.Changes); err != nil {
		return trainerIDResponse{}, err
	}
	return trainerIDResponse{ID: id}, nil
}

func (h *TrainerHandler) handleDelete(c echo.Context, req *DeleteRequest) (trainerDeleteResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return trainerDeleteResponse{}, err
	}

	userID, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return trainerDeleteResponse{}, err
	}
	return trainerDeleteResponse{ID: id, UserID: userID}, nil
}
