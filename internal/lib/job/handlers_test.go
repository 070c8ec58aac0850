package job

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/training-registry/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to   string
	data email.WelcomeData
	err  error
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to string, data email.WelcomeData) error {
	f.to = to
	f.data = data
	return f.err
}

func newTestService(mailer WelcomeMailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{mailer: mailer, logger: &logger}
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestService(mailer)

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "ana@x.com", FirstName: "Ana", Role: "Ausbilder", Abteilung: "IT"})
	require.NoError(t, err)
	assert.Equal(t, TaskWelcome, task.Type())

	require.NoError(t, svc.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, "ana@x.com", mailer.to)
	assert.Equal(t, email.WelcomeData{FirstName: "Ana", Role: "Ausbilder", Abteilung: "IT"}, mailer.data)
}

func TestHandleWelcomeEmailTask_SendFailureRetries(t *testing.T) {
	svc := newTestService(&fakeMailer{err: errors.New("provider down")})

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "ana@x.com"})
	require.NoError(t, err)

	err = svc.handleWelcomeEmailTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleWelcomeEmailTask_BadPayloadSkipsRetry(t *testing.T) {
	svc := newTestService(&fakeMailer{})

	err := svc.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
