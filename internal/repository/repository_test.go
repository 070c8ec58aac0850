package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/deppfellow/training-registry/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectPersonByEmail = regexp.QuoteMeta("SELECT user_id, vorname, nachname, email, abteilung")
	insertPerson        = regexp.QuoteMeta("INSERT INTO an_user (pw_hash, vorname, nachname, email, abteilung)")
	insertTrainer       = regexp.QuoteMeta("INSERT INTO ausbilder (user_id) VALUES ($1) RETURNING ausbilder_id")
	insertTrainee       = regexp.QuoteMeta("INSERT INTO auszubildender (user_id, ausbilder_id, ausbildungsbeginn, ausbildungsberuf)")
	existsTrainer       = regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM ausbilder WHERE ausbilder_id = $1)")
	lockTrainer         = regexp.QuoteMeta("SELECT user_id FROM ausbilder WHERE ausbilder_id = $1 FOR UPDATE")
	lockTrainee         = regexp.QuoteMeta("SELECT user_id FROM auszubildender WHERE azubi_id = $1 FOR UPDATE")
	deleteTrainer       = regexp.QuoteMeta("DELETE FROM ausbilder WHERE ausbilder_id = $1")
	deletePerson        = regexp.QuoteMeta("DELETE FROM an_user WHERE user_id = $1")
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func ana() model.NewTrainer {
	return model.NewTrainer{NewPerson: model.NewPerson{
		PwHash: "x", Vorname: "Ana", Nachname: "B", Email: "ana@x.com", Abteilung: "IT",
	}}
}

func personRows(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return mock.NewRows([]string{"user_id", "vorname", "nachname", "email", "abteilung"})
}

func TestTrainerCreate_Commits(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())
	ctx := context.Background()

	mock.ExpectQuery(selectPersonByEmail).WithArgs("ana@x.com").WillReturnRows(personRows(mock))
	mock.ExpectBegin()
	mock.ExpectQuery(insertPerson).
		WithArgs("x", "Ana", "B", "ana@x.com", "IT").
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectQuery(insertTrainer).
		WithArgs(int64(11)).
		WillReturnRows(mock.NewRows([]string{"ausbilder_id"}).AddRow(int64(3)))
	mock.ExpectCommit()

	id, err := repo.Create(ctx, ana())
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerCreate_DuplicateEmailNoWrites(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(selectPersonByEmail).
		WithArgs("ana@x.com").
		WillReturnRows(personRows(mock).AddRow(int64(11), "Ana", "B", "ana@x.com", "IT"))

	_, err := repo.Create(context.Background(), ana())

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(11), conflict.PersonID)
	assert.Equal(t, "ana@x.com", conflict.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerCreate_RoleInsertFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(selectPersonByEmail).WithArgs("ana@x.com").WillReturnRows(personRows(mock))
	mock.ExpectBegin()
	mock.ExpectQuery(insertPerson).
		WithArgs("x", "Ana", "B", "ana@x.com", "IT").
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectQuery(insertTrainer).WithArgs(int64(11)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), ana())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert trainer")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerCreate_ConcurrentDuplicateIsConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(selectPersonByEmail).WithArgs("ana@x.com").WillReturnRows(personRows(mock))
	mock.ExpectBegin()
	mock.ExpectQuery(insertPerson).
		WithArgs("x", "Ana", "B", "ana@x.com", "IT").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "an_user_email_key"})
	mock.ExpectRollback()
	mock.ExpectQuery(selectPersonByEmail).
		WithArgs("ana@x.com").
		WillReturnRows(personRows(mock).AddRow(int64(42), "Ana", "B", "ana@x.com", "IT"))

	_, err := repo.Create(context.Background(), ana())

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(42), conflict.PersonID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTraineeCreate_UnknownTrainerRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewTraineeRepository(mock, nopLogger())

	payload := model.NewTrainee{
		NewPerson:         model.NewPerson{PwHash: "y", Vorname: "Ben", Nachname: "C", Email: "ben@x.com", Abteilung: "IT"},
		AusbilderID:       999,
		Ausbildungsbeginn: model.NewDate(2024, time.September, 1),
		Ausbildungsberuf:  "Fachinformatiker",
	}

	mock.ExpectQuery(selectPersonByEmail).WithArgs("ben@x.com").WillReturnRows(personRows(mock))
	mock.ExpectBegin()
	mock.ExpectQuery(insertPerson).
		WithArgs("y", "Ben", "C", "ben@x.com", "IT").
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(12)))
	mock.ExpectQuery(insertTrainee).
		WithArgs(int64(12), int64(999), pgxmock.AnyArg(), "Fachinformatiker").
		WillReturnError(&pgconn.PgError{Code: "23503", TableName: "auszubildender", ColumnName: "ausbilder_id"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), payload)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23503", pgErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(existsTrainer).WithArgs(int64(5)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.Delete(context.Background(), 5)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerDelete_RemovesRoleThenPerson(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(existsTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectExec(deleteTrainer).WithArgs(int64(3)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(deletePerson).WithArgs(int64(11)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	userID, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(11), userID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerDelete_PersonDeleteFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(existsTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectExec(deleteTrainer).WithArgs(int64(3)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(deletePerson).WithArgs(int64(11)).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerDelete_StillSupervisingIsInUse(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(existsTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectExec(deleteTrainer).WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23503", TableName: "auszubildender"})
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), 3)
	require.ErrorIs(t, err, ErrInUse)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_EmptyChanges(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	err := repo.Edit(context.Background(), 3, map[string]any{})
	require.ErrorIs(t, err, ErrNoChanges)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_UnknownFieldNoQueries(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	err := repo.Edit(context.Background(), 3, map[string]any{"user_id": 99, "vorname": "Anna"})

	var invalid *InvalidFieldsError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "user_id")
	assert.NotContains(t, invalid.Fields, "vorname")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_TrainerRejectsTraineeFields(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	err := repo.Edit(context.Background(), 3, map[string]any{"ausbildungsberuf": "Koch"})

	var invalid *InvalidFieldsError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "ausbildungsberuf")
}

func TestEdit_TraineeUpdatesBothTables(t *testing.T) {
	mock := newMock(t)
	repo := NewTraineeRepository(mock, nopLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainee).WithArgs(int64(7)).
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(12)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE an_user SET email = $1, vorname = $2 WHERE user_id = $3")).
		WithArgs("ben.c@x.com", "Benedikt", int64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE auszubildender SET ausbilder_id = $1, ausbildungsberuf = $2 WHERE azubi_id = $3")).
		WithArgs(int64(2), "Koch", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Edit(context.Background(), 7, map[string]any{
		"vorname":          "Benedikt",
		"email":            "ben.c@x.com",
		"ausbilder_id":     float64(2),
		"ausbildungsberuf": "Koch",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_MissingRoleRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainer).WithArgs(int64(404)).WillReturnRows(mock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	err := repo.Edit(context.Background(), 404, map[string]any{"vorname": "Anna"})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_EmailTakenIsConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(lockTrainer).WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow(int64(11)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE an_user SET email = $1 WHERE user_id = $2")).
		WithArgs("ben@x.com", int64(11)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "an_user_email_key"})
	mock.ExpectRollback()
	mock.ExpectQuery(selectPersonByEmail).
		WithArgs("ben@x.com").
		WillReturnRows(personRows(mock).AddRow(int64(12), "Ben", "C", "ben@x.com", "IT"))

	err := repo.Edit(context.Background(), 3, map[string]any{"email": "ben@x.com"})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(12), conflict.PersonID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainerGetAll(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT us.email, au.ausbilder_id")).
		WillReturnRows(mock.NewRows([]string{"email", "ausbilder_id"}).
			AddRow("ana@x.com", int64(1)).
			AddRow("carl@x.com", int64(2)))

	trainers, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.TrainerSummary{
		{Email: "ana@x.com", ID: 1},
		{Email: "carl@x.com", ID: 2},
	}, trainers)
}

func TestTrainerGetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE au.ausbilder_id = $1")).
		WithArgs(int64(9)).
		WillReturnRows(mock.NewRows([]string{"user_id", "vorname", "nachname", "email", "abteilung", "ausbilder_id"}))

	_, err := repo.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInTx_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = inTx(context.Background(), mock, nopLogger(), func(_ pgx.Tx) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	mock := newMock(t)
	repo := NewTrainerRepository(mock, nopLogger())

	mock.ExpectQuery(existsTrainer).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetPersonByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewTraineeRepository(mock, nopLogger())

	mock.ExpectQuery(selectPersonByEmail).
		WithArgs("ana@x.com").
		WillReturnRows(personRows(mock).AddRow(int64(12), "Ana", "B", "ana@x.com", "IT"))
	mock.ExpectQuery(selectPersonByEmail).
		WithArgs("nobody@x.com").
		WillReturnRows(personRows(mock))

	person, err := repo.GetPersonByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, &model.Person{ID: 12, Vorname: "Ana", Nachname: "B", Email: "ana@x.com", Abteilung: "IT"}, person)

	_, err = repo.GetPersonByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
