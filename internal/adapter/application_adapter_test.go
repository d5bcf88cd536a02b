package adapter_test

import (
	"context"
	"fmt"
	"testing"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationAdapter(t *testing.T) {
	ctx := context.Background()

	for _, e := range backends(t) {
		t.Run(e.name, func(t *testing.T) {
			set := e.set
			seedCandidate(t, set, "cand-1")
			seedCandidate(t, set, "cand-2")
			job := seedJob(t, set, "backend-engineer")

			app := &domain.Application{CandidateID: "cand-1", JobID: job.ID, CoverLetter: strPtr("Hello")}
			require.NoError(t, set.Applications.Create(ctx, "cand-1", app))
			assert.NotEmpty(t, app.ID)
			assert.Equal(t, domain.ApplicationStatusSubmitted, app.Status)

			t.Run("second application for the same job is a duplicate", func(t *testing.T) {
				err := set.Applications.Create(ctx, "cand-1", &domain.Application{CandidateID: "cand-1", JobID: job.ID})
				assert.ErrorIs(t, err, apperror.ErrDuplicateApplication)

				list, err := set.Applications.ListByCandidate(ctx, "cand-1")
				require.NoError(t, err)
				assert.Len(t, list, 1)
			})

			t.Run("applying for someone else is an ownership violation", func(t *testing.T) {
				err := set.Applications.Create(ctx, "cand-2", &domain.Application{CandidateID: "cand-1", JobID: job.ID})
				assert.ErrorIs(t, err, apperror.ErrOwnershipViolation)
			})

			t.Run("unknown job", func(t *testing.T) {
				err := set.Applications.Create(ctx, "cand-2", &domain.Application{CandidateID: "cand-2", JobID: "no-such-job"})
				assert.ErrorIs(t, err, apperror.ErrNotFound)
			})

			t.Run("lookup by candidate and job", func(t *testing.T) {
				got, err := set.Applications.GetByCandidateAndJob(ctx, "cand-1", job.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, app.ID, got.ID)
				assert.Equal(t, "Hello", *got.CoverLetter)
			})

			t.Run("ownership is checked before the state machine", func(t *testing.T) {
				_, err := set.Applications.Transition(ctx, "cand-2", app.ID, domain.ApplicationStatusHired)
				assert.ErrorIs(t, err, apperror.ErrOwnershipViolation)
			})

			t.Run("happy path to hired", func(t *testing.T) {
				for _, to := range []domain.ApplicationStatus{
					domain.ApplicationStatusUnderReview,
					domain.ApplicationStatusOffered,
					domain.ApplicationStatusHired,
				} {
					got, err := set.Applications.Transition(ctx, "cand-1", app.ID, to)
					require.NoError(t, err, "to %s", to)
					assert.Equal(t, to, got.Status)
				}
			})

			t.Run("hired to withdrawn is rejected and status unchanged", func(t *testing.T) {
				_, err := set.Applications.Transition(ctx, "cand-1", app.ID, domain.ApplicationStatusWithdrawn)
				assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

				got, err := set.Applications.GetByID(ctx, app.ID)
				require.NoError(t, err)
				assert.Equal(t, domain.ApplicationStatusHired, got.Status)
			})

			t.Run("missing application", func(t *testing.T) {
				_, err := set.Applications.Transition(ctx, "cand-1", "nope", domain.ApplicationStatusWithdrawn)
				assert.ErrorIs(t, err, apperror.ErrNotFound)
			})

			t.Run("list with jobs", func(t *testing.T) {
				list, err := set.Applications.ListByCandidateWithJobs(ctx, "cand-1")
				require.NoError(t, err)
				require.Len(t, list, 1)
				require.NotNil(t, list[0].Job)
				assert.Equal(t, "Backend Engineer", list[0].Job.Title)
			})

			t.Run("closed jobs take no applications", func(t *testing.T) {
				closed := seedJob(t, set, "closed-role")
				require.NoError(t, set.Jobs.Close(ctx, closed.ID))
				err := set.Applications.Create(ctx, "cand-2", &domain.Application{CandidateID: "cand-2", JobID: closed.ID})
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})

			t.Run("delete", func(t *testing.T) {
				other := seedJob(t, set, "frontend-engineer")
				withdrawn := &domain.Application{CandidateID: "cand-2", JobID: other.ID}
				require.NoError(t, set.Applications.Create(ctx, "cand-2", withdrawn))

				assert.ErrorIs(t, set.Applications.Delete(ctx, "cand-1", withdrawn.ID), apperror.ErrOwnershipViolation)
				require.NoError(t, set.Applications.Delete(ctx, "cand-2", withdrawn.ID))
				assert.ErrorIs(t, set.Applications.Delete(ctx, "cand-2", withdrawn.ID), apperror.ErrNotFound)
			})
		})
	}
}

func TestApplicationStateMachine(t *testing.T) {
	tests := []struct {
		from, to domain.ApplicationStatus
		ok       bool
	}{
		{domain.ApplicationStatusSubmitted, domain.ApplicationStatusUnderReview, true},
		{domain.ApplicationStatusSubmitted, domain.ApplicationStatusOffered, false},
		{domain.ApplicationStatusUnderReview, domain.ApplicationStatusOffered, true},
		{domain.ApplicationStatusUnderReview, domain.ApplicationStatusRejected, true},
		{domain.ApplicationStatusOffered, domain.ApplicationStatusHired, true},
		{domain.ApplicationStatusOffered, domain.ApplicationStatusRejected, true},
		{domain.ApplicationStatusOffered, domain.ApplicationStatusWithdrawn, true},
		{domain.ApplicationStatusHired, domain.ApplicationStatusWithdrawn, false},
		{domain.ApplicationStatusRejected, domain.ApplicationStatusWithdrawn, false},
		{domain.ApplicationStatusWithdrawn, domain.ApplicationStatusSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, domain.CanTransition(tt.from, tt.to))
		})
	}

	for _, terminal := range []domain.ApplicationStatus{
		domain.ApplicationStatusHired, domain.ApplicationStatusRejected, domain.ApplicationStatusWithdrawn,
	} {
		assert.True(t, terminal.IsTerminal(), terminal)
	}
}
