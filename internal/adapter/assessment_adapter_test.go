package adapter_test

import (
	"context"
	"encoding/json"
	"testing"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentAdapter(t *testing.T) {
	ctx := context.Background()

	for _, e := range backends(t) {
		t.Run(e.name, func(t *testing.T) {
			set := e.set
			seedCandidate(t, set, "cand-1")

			score := 87.5
			sessions := []*domain.Assessment{
				{CandidateID: "cand-1", Type: "typing", Status: domain.AssessmentStatusCompleted, Score: &score, XPAwarded: 50, Result: json.RawMessage(`{"wpm":72}`)},
				{CandidateID: "cand-1", Type: "typing", Status: domain.AssessmentStatusCompleted, XPAwarded: 30},
				{CandidateID: "cand-1", Type: "disc", Status: domain.AssessmentStatusCompleted, XPAwarded: 20},
				{CandidateID: "cand-1", Type: "disc", Status: domain.AssessmentStatusAbandoned, XPAwarded: 0},
				{CandidateID: "cand-1", Type: "disc"},
			}
			for _, s := range sessions {
				require.NoError(t, set.Assessments.Append(ctx, "cand-1", s))
			}

			t.Run("progress counts completed sessions only", func(t *testing.T) {
				p, err := set.Assessments.Progress(ctx, "cand-1")
				require.NoError(t, err)
				assert.Equal(t, 3, p.Completed)
				assert.Equal(t, 100, p.TotalXP)
				assert.Equal(t, map[string]int{"typing": 2, "disc": 1}, p.ByType)
			})

			t.Run("sessions read back intact", func(t *testing.T) {
				got, err := set.Assessments.GetByID(ctx, sessions[0].ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.NotNil(t, got.Score)
				assert.InDelta(t, 87.5, *got.Score, 0.001)
				assert.JSONEq(t, `{"wpm":72}`, string(got.Result))
				assert.NotNil(t, got.CompletedAt)

				started, err := set.Assessments.GetByID(ctx, sessions[4].ID)
				require.NoError(t, err)
				assert.Equal(t, domain.AssessmentStatusStarted, started.Status)
				assert.Nil(t, started.CompletedAt)
			})

			t.Run("list", func(t *testing.T) {
				list, err := set.Assessments.ListByCandidate(ctx, "cand-1")
				require.NoError(t, err)
				assert.Len(t, list, len(sessions))
			})

			t.Run("append is owner only", func(t *testing.T) {
				err := set.Assessments.Append(ctx, "intruder", &domain.Assessment{CandidateID: "cand-1", Type: "typing"})
				assert.ErrorIs(t, err, apperror.ErrOwnershipViolation)
			})

			t.Run("unknown status is invalid", func(t *testing.T) {
				err := set.Assessments.Append(ctx, "cand-1", &domain.Assessment{CandidateID: "cand-1", Type: "typing", Status: "paused"})
				assert.ErrorIs(t, err, apperror.ErrValidation)
			})
		})
	}
}
