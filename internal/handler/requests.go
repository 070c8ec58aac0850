package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/deppfellow/training-registry/internal/errs"
	"github.com/deppfellow/training-registry/internal/model"
	"github.com/deppfellow/training-registry/internal/validation"
	"github.com/labstack/echo/v4"
)

// GetRequest lists when ID is empty and fetches one record otherwise.
type GetRequest struct {
	ID string `query:"id" validate:"omitempty,number"`
}

func (r *GetRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteRequest struct {
	ID string `query:"id" validate:"required,number"`
}

func (r *DeleteRequest) Validate() error {
	return validation.Struct(r)
}

// EditRequest carries the id from the query string and the changes as a
// free-form JSON object. Numbers are kept as json.Number so ids are not
// rounded through float64.
type EditRequest struct {
	ID      string `json:"id" validate:"required,number"`
	Changes map[string]any
}

func (r *EditRequest) Bind(c echo.Context) error {
	r.ID = c.QueryParam("id")
	r.Changes = map[string]any{}
	return decodeBody(c, &r.Changes)
}

func (r *EditRequest) Validate() error {
	return validation.Struct(r)
}

type CreateTrainerRequest struct {
	model.NewTrainer
}

func (r *CreateTrainerRequest) Bind(c echo.Context) error {
	return decodeBody(c, &r.NewTrainer)
}

func (r *CreateTrainerRequest) Validate() error {
	return validation.Struct(r)
}

type CreateTraineeRequest struct {
	model.NewTrainee
}

func (r *CreateTraineeRequest) Bind(c echo.Context) error {
	return decodeBody(c, &r.NewTrainee)
}

func (r *CreateTraineeRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if r.Ausbildungsbeginn.IsZero() {
		return validation.CustomValidationErrors{
			{Field: "ausbildungsbeginn", Message: "is required"},
		}
	}

	return nil
}

// decodeBody decodes the JSON request body into dst regardless of the
// Content-Type header. An empty body leaves dst untouched.
func decodeBody(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must be a JSON object: "+err.Error()).SetInternal(err)
	}

	return nil
}

// parseID converts a validated numeric id. Only overflow can fail here.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{
			{Field: "id", Error: "must be a valid id"},
		}, nil)
	}
	return id, nil
}
