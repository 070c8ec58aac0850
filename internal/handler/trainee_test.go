package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/training-registry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTraineeService struct {
	getFn    func(ctx context.Context, id int64) (*model.Trainee, error)
	createFn func(ctx context.Context, payload model.NewTrainee) (int64, error)
	deleteFn func(ctx context.Context, id int64) (int64, error)
}

func (m *mockTraineeService) List(ctx context.Context) ([]model.TraineeSummary, error) {
	return []model.TraineeSummary{}, nil
}

func (m *mockTraineeService) Get(ctx context.Context, id int64) (*model.Trainee, error) {
	return m.getFn(ctx, id)
}

func (m *mockTraineeService) Create(ctx context.Context, payload model.NewTrainee) (int64, error) {
	return m.createFn(ctx, payload)
}

func (m *mockTraineeService) Edit(ctx context.Context, id int64, changes map[string]any) error {
	return nil
}

func (m *mockTraineeService) Delete(ctx context.Context, id int64) (int64, error) {
	return m.deleteFn(ctx, id)
}

func TestTraineeHandler_EmptyList(t *testing.T) {
	h := NewTraineeHandler(nil, &mockTraineeService{})

	c, rec := newTestContext(http.MethodGet, "/trainee", "")
	require.NoError(t, h.Get(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTraineeHandler_Create(t *testing.T) {
	h := NewTraineeHandler(nil, &mockTraineeService{
		createFn: func(ctx context.Context, payload model.NewTrainee) (int64, error) {
			assert.Equal(t, int64(1), payload.AusbilderID)
			assert.Equal(t, model.NewDate(2024, time.August, 1), payload.Ausbildungsbeginn)
			assert.Equal(t, "Fachinformatiker", payload.Ausbildungsberuf)
			return 5, nil
		},
	})

	c, rec := newTestContext(http.MethodPost, "/trainee", `{
		"pw_hash": "x", "vorname": "Tom", "nachname": "C", "email": "tom@x.com", "abteilung": "IT",
		"ausbilder_id": 1, "ausbildungsbeginn": "2024-08-01", "ausbildungsberuf": "Fachinformatiker"
	}`)
	require.NoError(t, h.Post(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"azubi_id":5}`, rec.Body.String())
}

func TestTraineeHandler_CreateBadDate(t *testing.T) {
	h := NewTraineeHandler(nil, &mockTraineeService{})

	c, _ := newTestContext(http.MethodPost, "/trainee", `{"ausbildungsbeginn": "01.08.2024"}`)
	httpErr := requireHTTPStatus(t, h.Post(c), http.StatusBadRequest)
	assert.Contains(t, httpErr.Message, "YYYY-MM-DD")
}

func TestTraineeHandler_GetByID(t *testing.T) {
	h := NewTraineeHandler(nil, &mockTraineeService{
		getFn: func(ctx context.Context, id int64) (*model.Trainee, error) {
			return &model.Trainee{
				ID:                id,
				Person:            model.Person{ID: 20, Vorname: "Tom", Nachname: "C", Email: "tom@x.com", Abteilung: "IT"},
				AusbilderID:       1,
				Ausbildungsbeginn: model.NewDate(2024, time.August, 1),
				Ausbildungsberuf:  "Fachinformatiker",
			}, nil
		},
	})

	c, rec := newTestContext(http.MethodGet, "/trainee?id=3", "")
	require.NoError(t, h.Get(c))
	assert.JSONEq(t, `{
		"azubi_id": 3, "user_id": 20, "vorname": "Tom", "nachname": "C", "email": "tom@x.com",
		"abteilung": "IT", "ausbilder_id": 1, "ausbildungsbeginn": "2024-08-01",
		"ausbildungsberuf": "Fachinformatiker"
	}`, rec.Body.String())
}

func TestTraineeHandler_Delete(t *testing.T) {
	h := NewTraineeHandler(nil, &mockTraineeService{
		deleteFn: func(ctx context.Context, id int64) (int64, error) {
			return 20, nil
		},
	})

	c, rec := newTestContext(http.MethodDelete, "/trainee?id=3", "")
	require.NoError(t, h.Delete(c))
	assert.JSONEq(t, `{"azubi_id":3,"user_id":20}`, rec.Body.String())
}
