package repository

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/deppfellow/training-registry/internal/database"
	"github.com/deppfellow/training-registry/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("registry"),
		postgres.WithUsername("registry"),
		postgres.WithPassword("registry"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		return 1
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		return 1
	}
	defer testPool.Close()

	logger := zerolog.Nop()
	if err := database.EnsureSchema(ctx, testPool, &logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply schema: %v\n", err)
		return 1
	}

	return m.Run()
}

// setupTestDB skips in short mode and truncates all tables after the test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Cleanup(func() {
		_, err := testPool.Exec(context.Background(), "TRUNCATE auszubildender, ausbilder, an_user RESTART IDENTITY CASCADE")
		if err != nil {
			t.Logf("Failed to truncate tables: %v", err)
		}
	})

	return testPool
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestIntegration_TrainerLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTrainerRepository(pool, nopLogger())
	ctx := context.Background()

	id, err := repo.Create(ctx, ana())
	require.NoError(t, err)

	trainer, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", trainer.Vorname)
	assert.Equal(t, "ana@x.com", trainer.Email)

	_, err = repo.Create(ctx, ana())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, trainer.Person.ID, conflict.PersonID)

	userID, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, trainer.Person.ID, userID)

	_, err = repo.GetByID(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := repo.ExistsPersonByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, countRows(t, pool, "an_user"))
}

func TestIntegration_TraineeWithUnknownTrainerLeavesNoPerson(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTraineeRepository(pool, nopLogger())

	_, err := repo.Create(context.Background(), model.NewTrainee{
		NewPerson:         model.NewPerson{PwHash: "y", Vorname: "Ben", Nachname: "C", Email: "ben@x.com", Abteilung: "IT"},
		AusbilderID:       999,
		Ausbildungsbeginn: model.NewDate(2024, time.September, 1),
		Ausbildungsberuf:  "Fachinformatiker",
	})
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, pool, "an_user"))
	assert.Equal(t, 0, countRows(t, pool, "auszubildender"))
}

func TestIntegration_TraineeEditAndListing(t *testing.T) {
	pool := setupTestDB(t)
	trainers := NewTrainerRepository(pool, nopLogger())
	trainees := NewTraineeRepository(pool, nopLogger())
	ctx := context.Background()

	trainerID, err := trainers.Create(ctx, ana())
	require.NoError(t, err)

	traineeID, err := trainees.Create(ctx, model.NewTrainee{
		NewPerson:         model.NewPerson{PwHash: "y", Vorname: "Ben", Nachname: "C", Email: "ben@x.com", Abteilung: "IT"},
		AusbilderID:       trainerID,
		Ausbildungsbeginn: model.NewDate(2024, time.September, 1),
		Ausbildungsberuf:  "Fachinformatiker",
	})
	require.NoError(t, err)

	err = trainees.Edit(ctx, traineeID, map[string]any{
		"nachname":          "Clark",
		"ausbildungsbeginn": "2024-10-01",
	})
	require.NoError(t, err)

	trainee, err := trainees.GetByID(ctx, traineeID)
	require.NoError(t, err)
	assert.Equal(t, "Clark", trainee.Nachname)
	assert.Equal(t, "2024-10-01", trainee.Ausbildungsbeginn.String())
	assert.Equal(t, trainerID, trainee.AusbilderID)

	list, err := trainees.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TraineeSummary{{Email: "ben@x.com", ID: traineeID}}, list)

	// The trainer still supervises Ben.
	_, err = trainers.Delete(ctx, trainerID)
	require.ErrorIs(t, err, ErrInUse)
	assert.Equal(t, 2, countRows(t, pool, "an_user"))

	_, err = trainees.Delete(ctx, traineeID)
	require.NoError(t, err)
	_, err = trainers.Delete(ctx, trainerID)
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, pool, "an_user"))
}

func TestIntegration_EditEmailCollision(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTrainerRepository(pool, nopLogger())
	ctx := context.Background()

	anaID, err := repo.Create(ctx, ana())
	require.NoError(t, err)

	carl := ana()
	carl.Email = "carl@x.com"
	carl.Vorname = "Carl"
	_, err = repo.Create(ctx, carl)
	require.NoError(t, err)

	err = repo.Edit(ctx, anaID, map[string]any{"email": "carl@x.com"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	trainer, err := repo.GetByID(ctx, anaID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", trainer.Email)
}

func TestIntegration_EmptyListing(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewTrainerRepository(pool, nopLogger())

	list, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
