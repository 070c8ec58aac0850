package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/training-registry/internal/model"
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/labstack/echo/v4"
)

// TraineeService is the business API the trainee routes call.
type TraineeService interface {
	List(ctx context.Context) ([]model.TraineeSummary, error)
	Get(ctx context.Context, id int64) (*model.Trainee, error)
	Create(ctx context.Context, payload model.NewTrainee) (int64, error)
	Edit(ctx context.Context, id int64, changes map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type traineeIDResponse struct {
	ID int64 `json:"azubi_id"`
}

type traineeDeleteResponse struct {
	ID     int64 `json:"azubi_id"`
	UserID int64 `json:"user_id"`
}

// TraineeHandler serves /trainee.
type TraineeHandler struct {
	Handler
	service TraineeService

	get    echo.HandlerFunc
	create echo.HandlerFunc
	edit   echo.HandlerFunc
	remove echo.HandlerFunc
}

func NewTraineeHandler(s *server.Server, svc TraineeService) *TraineeHandler {
	h := &TraineeHandler{
		Handler: NewHandler(s),
		service: svc,
	}

	h.get = Handle(h.handleGet, http.StatusOK)
	h.create = Handle(h.handleCreate, http.StatusOK)
	h.edit = Handle(h.handleEdit, http.StatusOK)
	h.remove = Handle(h.handleDelete, http.StatusOK)

	return h
}

// Get lists trainees, or returns one when ?id= is set.
func (h *TraineeHandler) Get(c echo.Context) error {
	return h.get(c)
}

// Post creates a trainee, or edits one when ?id= is set.
func (h *TraineeHandler) Post(c echo.Context) error {
	if c.QueryParam("id") != "" {
		return h.edit(c)
	}
	return h.create(c)
}

func (h *TraineeHandler) Patch(c echo.Context) error {
	return h.edit(c)
}

func (h *TraineeHandler) Delete(c echo.Context) error {
	return h.remove(c)
}

func (h *TraineeHandler) handleGet(c echo.Context, req *GetRequest) (any, error) {
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

func (h *TraineeHandler) handleCreate(c echo.Context, req *CreateTraineeRequest) (traineeIDResponse, error) {
	id, err := h.service.Create(c.Request().Context(), req.NewTrainee)
	if err != nil {
		return traineeIDResponse{}, err
	}
	return traineeIDResponse{ID: id}, nil
}

func (h *TraineeHandler) handleEdit(c echo.Context, req *EditRequest) (traineeIDResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return traineeIDResponse{}, err
	}

	if err := h.service.Edit(c.Request().Context(), id, req.Changes); err != nil {
		return traineeIDResponse{}, err
	}
	return traineeIDResponse{ID: id}, nil
}

func (h *TraineeHandler) handleDelete(c echo.Context, req *DeleteRequest) (traineeDeleteResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return traineeDeleteResponse{}, err
	}

	userID, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return traineeDeleteResponse{}, err
	}
	return traineeDeleteResponse{ID: id, UserID: userID}, nil
}
