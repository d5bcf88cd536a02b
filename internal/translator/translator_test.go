package translator_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var ts = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// roundTrip pushes an entity through the legacy write mapping and back.
func roundTrip[T any, P interface {
	*T
	Normalize()
}](t *testing.T, m translator.Mapping, entity *T) (*T, map[string]any) {
	t.Helper()
	legacyRow, err := translator.ToLegacy(m, entity)
	require.NoError(t, err)
	back, err := translator.FromLegacy[T, P](m, legacyRow)
	require.NoError(t, err)
	return back, legacyRow
}

func TestRoundTrip(t *testing.T) {
	t.Run("candidate", func(t *testing.T) {
		in := &domain.Candidate{
			ID: "c-1", Email: "ada@example.com",
			FirstName: ptr("Ada"), LastName: ptr("Lovelace"),
			Phone: ptr("+44 20 0000"), Username: ptr("ada"),
			IsActive: true, CreatedAt: ts, UpdatedAt: ts,
		}
		in.Normalize()
		out, legacyRow := roundTrip[domain.Candidate](t, translator.Candidate, in)
		assert.Equal(t, in, out)
		assert.Equal(t, "Ada", legacyRow["firstName"])
		assert.NotContains(t, legacyRow, "full_name", "derived fields are never written")
		assert.Equal(t, "Ada Lovelace", out.FullName)
	})

	t.Run("profile drops only the enumerated canonical-only fields", func(t *testing.T) {
		in := &domain.Profile{
			CandidateID: "c-1", Location: ptr("Osaka"), Bio: ptr("hi"),
			Position: ptr("Engineer"), Gender: ptr("female"), Birthday: ptr(ts),
			EmploymentStatus: ptr("employed"), SalaryMin: ptr(100), SalaryMax: ptr(200),
			SalaryCurrency: ptr("JPY"),
			Gamification:   domain.Gamification{XP: 40, Level: 2, Badges: []string{"first-login"}},
			CreatedAt:      ts, UpdatedAt: ts,
		}
		out, _ := roundTrip[domain.Profile](t, translator.Profile, in)

		require.Len(t, translator.Profile.CanonicalOnly, 1)
		assert.Equal(t, "gamification.badges", translator.Profile.CanonicalOnly[0].Canonical)
		assert.Equal(t, []string{}, out.Gamification.Badges)

		out.Gamification.Badges = in.Gamification.Badges
		assert.Equal(t, in, out)
	})

	t.Run("job maps status enum", func(t *testing.T) {
		in := &domain.Job{
			ID: "j-1", AgencyID: ptr("a-1"), Title: "Backend Engineer", Slug: "backend-engineer",
			Description: ptr("Go"), Location: ptr("Tokyo"), EmploymentType: ptr("full_time"),
			SalaryMin: ptr(1), SalaryMax: ptr(2), Status: domain.JobStatusClosed,
			PostedAt: ptr(ts), CreatedAt: ts, UpdatedAt: ts,
		}
		out, legacyRow := roundTrip[domain.Job](t, translator.Job, in)
		assert.Equal(t, in, out)
		assert.Equal(t, "ARCHIVED", legacyRow["status"])
	})

	t.Run("resume keeps both payloads independent", func(t *testing.T) {
		in := &domain.Resume{
			ID: "r-1", CandidateID: "c-1", Slug: "c-1-abc", Title: ptr("CV"),
			RawData: json.RawMessage(`{"skills":["go"]}`), IsPrimary: true,
			CreatedAt: ts, UpdatedAt: ts,
		}
		out, _ := roundTrip[domain.Resume](t, translator.Resume, in)
		assert.JSONEq(t, string(in.RawData), string(out.RawData))
		assert.Nil(t, out.ImprovedData)
		assert.True(t, out.IsPrimary)
	})

	t.Run("application", func(t *testing.T) {
		in := &domain.Application{
			ID: "ap-1", CandidateID: "c-1", JobID: "j-1", ResumeID: ptr("r-1"),
			Status: domain.ApplicationStatusUnderReview, CoverLetter: ptr("hello"),
			CreatedAt: ts, UpdatedAt: ts,
		}
		out, legacyRow := roundTrip[domain.Application](t, translator.Application, in)
		assert.Equal(t, in, out)
		assert.Equal(t, "IN_REVIEW", legacyRow["status"])
	})

	t.Run("assessment", func(t *testing.T) {
		in := &domain.Assessment{
			ID: "as-1", CandidateID: "c-1", Type: "typing", Status: domain.AssessmentStatusCompleted,
			Score: ptr(87.5), Result: json.RawMessage(`{"wpm":87}`), XPAwarded: 10,
			StartedAt: ts, CompletedAt: ptr(ts.Add(time.Minute)), CreatedAt: ts,
		}
		out, _ := roundTrip[domain.Assessment](t, translator.Assessment, in)
		assert.JSONEq(t, string(in.Result), string(out.Result))
		out.Result = in.Result
		assert.Equal(t, in, out)
	})

	t.Run("agency", func(t *testing.T) {
		in := &domain.Agency{ID: "a-1", Name: "Acme", Slug: "acme", Website: ptr("https://acme.test"), CreatedAt: ts, UpdatedAt: ts}
		out, _ := roundTrip[domain.Agency](t, translator.Agency, in)
		assert.Equal(t, in, out)
	})
}

func TestToCanonical(t *testing.T) {
	t.Run("nullable fields default to nil and lists to empty", func(t *testing.T) {
		row := map[string]any{
			"userId":    "c-1",
			"createdAt": ts,
			"updatedAt": ts,
		}
		out, err := translator.ToCanonical(translator.Profile, row)
		require.NoError(t, err)
		assert.Contains(t, out, "location")
		assert.Nil(t, out["location"])
		gam := out["gamification"].(map[string]any)
		assert.Equal(t, []string{}, gam["badges"])
		assert.Nil(t, gam["xp"])
	})

	t.Run("missing required field is a shape error", func(t *testing.T) {
		row := map[string]any{
			"id":        "c-9",
			"email":     "",
			"isActive":  true,
			"createdAt": ts,
			"updatedAt": ts,
		}
		_, err := translator.ToCanonical(translator.Candidate, row)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrShape)

		var se *apperror.ShapeError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "c-9", se.ID)
		assert.Equal(t, "email", se.Field)
	})

	t.Run("loosely typed driver values are coerced", func(t *testing.T) {
		row := map[string]any{
			"id":        []byte("c-2"),
			"email":     "b@example.com",
			"isActive":  int64(1),
			"createdAt": "2025-03-14 09:26:53",
			"updatedAt": "2025-03-14T09:26:53Z",
		}
		c, err := translator.FromLegacy[domain.Candidate](translator.Candidate, row)
		require.NoError(t, err)
		assert.Equal(t, "c-2", c.ID)
		assert.True(t, c.IsActive)
		assert.True(t, c.CreatedAt.Equal(ts))
		assert.Equal(t, "", c.FullName)
	})

	t.Run("unknown enum value is rejected", func(t *testing.T) {
		row := map[string]any{
			"id": "ap-1", "userId": "c-1", "jobId": "j-1", "status": "LOST",
			"createdAt": ts, "updatedAt": ts,
		}
		_, err := translator.ToCanonical(translator.Application, row)
		assert.ErrorIs(t, err, apperror.ErrShape)
	})
}

func TestMappingLookups(t *testing.T) {
	col, err := translator.Candidate.LegacyColumn("first_name")
	require.NoError(t, err)
	assert.Equal(t, "firstName", col)

	_, err = translator.Candidate.LegacyColumn("full_name")
	assert.Error(t, err)

	v, err := translator.Application.LegacyValue("status", string(domain.ApplicationStatusHired))
	require.NoError(t, err)
	assert.Equal(t, "HIRED", v)

	assert.Equal(t, []string{"id", "email", "is_active", "created_at", "updated_at"}, translator.Candidate.Required())

	for _, f := range []domain.Family{
		domain.FamilyAgencies, domain.FamilyCandidates, domain.FamilyProfiles, domain.FamilyJobs,
		domain.FamilyResumes, domain.FamilyApplications, domain.FamilyAssessments,
	} {
		_, err := translator.For(f)
		assert.NoError(t, err, f)
	}
}
