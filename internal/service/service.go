// Package service contains the business logic.
//
// It sits between the handler and repository layers. It calls the
// repositories, turns repository errors into API errors, and triggers
// side effects such as the welcome e-mail after a successful create.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/deppfellow/training-registry/internal/errs"
	"github.com/deppfellow/training-registry/internal/lib/job"
	"github.com/deppfellow/training-registry/internal/repository"
	"github.com/deppfellow/training-registry/internal/sqlerr"
	"github.com/rs/zerolog"
)

// WelcomeEnqueuer queues the welcome e-mail. *job.JobService implements it.
type WelcomeEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, p job.WelcomeEmailPayload) error
}

// mapError turns a repository error into an *errs.HTTPError.
func mapError(kind string, id int64, err error) error {
	var conflict *repository.ConflictError
	var invalid *repository.InvalidFieldsError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", kind), true, nil).
			WithFieldErrors(errs.FieldError{Field: "id", Error: fmt.Sprintf("no %s with id %d", kind, id)})

	case errors.As(err, &conflict):
		code := "PERSON_ALREADY_EXISTS"
		return errs.NewConflictError("A person with this email already exists", &code, map[string]any{
			"user_id": conflict.PersonID,
		})

	case errors.Is(err, repository.ErrInUse):
		code := fmt.Sprintf("%s_IN_USE", upper(kind))
		return errs.NewConflictError(fmt.Sprintf("The %s is still referenced and cannot be deleted", kind), &code, nil)

	case errors.Is(err, repository.ErrNoChanges):
		return errs.NewBadRequestError("No fields to update", true, nil, nil, nil)

	case errors.As(err, &invalid):
		fields := make([]string, 0, len(invalid.Fields))
		for f := range invalid.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		fieldErrors := make([]errs.FieldError, 0, len(fields))
		for _, f := range fields {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: f, Error: invalid.Fields[f]})
		}
		return errs.NewBadRequestError("Validation failed", true, nil, fieldErrors, nil)
	}

	return sqlerr.HandleError(err)
}

func upper(s string) string {
	return errs.MakeUpperCaseWithUnderscores(s)
}

// enqueueWelcome queues the welcome e-mail. The record is already
// committed, so a failure is only logged.
func enqueueWelcome(ctx context.Context, enqueuer WelcomeEnqueuer, p job.WelcomeEmailPayload) {
	if enqueuer == nil {
		return
	}

	if err := enqueuer.EnqueueWelcomeEmail(ctx, p); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("to", p.To).
			Msg("failed to enqueue welcome email")
	}
}
