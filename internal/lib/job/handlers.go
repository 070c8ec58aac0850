package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/training-registry/internal/lib/email"
	"github.com/hibiken/asynq"
)

// handleWelcomeEmailTask decodes the payload and sends the mail. A returned
// error makes Asynq retry the task.
func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Str("role", p.Role).
		Msg("Processing welcome email task")

	err := j.mailer.SendWelcomeEmail(ctx, p.To, email.WelcomeData{
		FirstName: p.FirstName,
		Role:      p.Role,
		Abteilung: p.Abteilung,
	})
	if err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Successfully sent welcome email")

	return nil
}
