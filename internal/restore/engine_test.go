package restore_test

import (
	"context"
	"testing"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/backup"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/featureflag"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/internal/restore"
	"go-recruitment-datalayer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioFamilies = []domain.Family{
	domain.FamilyCandidates, domain.FamilyAgencies, domain.FamilyJobs,
	domain.FamilyApplications, domain.FamilyResumes,
}

// scenarioArtifact backs up the seeded scenario from the legacy backend.
func scenarioArtifact(t *testing.T) *backup.Artifact {
	t.Helper()
	set := adapter.NewSet(adapter.Deps{Legacy: testutil.LegacyDB(t), Now: testutil.NewClock().Now})
	testutil.SeedScenario(t, set)

	a, err := backup.NewEngine(set.Sources(), nil, 4).Snapshot(context.Background(), scenarioFamilies, nil)
	require.NoError(t, err)
	return a
}

func TestEngine_RestoreScenario(t *testing.T) {
	ctx := context.Background()
	a := scenarioArtifact(t)
	target := testutil.NewRecruitmentBackend()
	engine := restore.NewEngine(target, 500, nil)

	report, err := engine.Restore(ctx, a)
	require.NoError(t, err)
	assert.True(t, report.OK(), "errors: %v", report.Errors)
	assert.Equal(t, []string{"agencies", "candidates", "jobs", "resumes", "applications"}, report.Order)
	assert.Equal(t, 12, report.TotalRestored)
	assert.Equal(t, testutil.ScenarioCounts, report.Restored)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	t.Run("idempotent", func(t *testing.T) {
		again, err := engine.Restore(ctx, a)
		require.NoError(t, err)
		assert.True(t, again.OK(), "errors: %v", again.Errors)
		for table, want := range testutil.ScenarioCounts {
			assert.Len(t, target.Rows(table), want, table)
		}
	})

	t.Run("restored rows read back through migrated adapters", func(t *testing.T) {
		set := adapter.NewSet(adapter.Deps{
			Flags: featureflag.NewStatic("candidates", "applications", "jobs"),
			Next:  target,
		})
		c, err := set.Candidates.GetByID(ctx, "cand-1")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "CandidateA", c.FullName)
		assert.NotContains(t, target.Rows("candidates")[0], "full_name")

		apps, err := set.Applications.ListByCandidateWithJobs(ctx, "cand-1")
		require.NoError(t, err)
		require.Len(t, apps, 2)
		for _, app := range apps {
			require.NotNil(t, app.Job)
			assert.NotNil(t, app.ResumeID)
		}
	})
}

func TestEngine_RestoreIsolatesFamilyFailure(t *testing.T) {
	ctx := context.Background()
	a := &backup.Artifact{Data: map[string][]backup.Record{
		"candidates": {{"id": "cand-1", "email": "a@example.com", "is_active": true,
			"created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"}},
		"applications": {{"id": "app-1", "candidate_id": "cand-1", "job_id": "missing-job", "status": "submitted",
			"created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"}},
		"assessments": {{"id": "as-1", "candidate_id": "cand-1", "type": "typing", "status": "completed",
			"xp_awarded": 10, "started_at": "2025-01-01T00:00:00Z", "created_at": "2025-01-01T00:00:00Z"}},
		"payments": {{"id": "pay-1"}},
	}}
	target := testutil.NewRecruitmentBackend()

	report, err := restore.NewEngine(target, 10, nil).Restore(ctx, a)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Contains(t, report.Errors["applications"], baas.ErrForeignKeyViolation.Error())
	assert.Equal(t, "unknown family", report.Errors["payments"])
	assert.Equal(t, 1, report.Restored["candidates"])
	assert.Equal(t, 1, report.Restored["assessments"])
	assert.Equal(t, 0, report.Restored["applications"])
	assert.Equal(t, 2, report.TotalRestored)
	assert.Empty(t, target.Rows("applications"))
}

func TestEngine_RestoreRejectsMismatchedMetadata(t *testing.T) {
	ctx := context.Background()
	a := scenarioArtifact(t)
	a.Metadata.RecordCounts["applications"] = 5
	target := testutil.NewRecruitmentBackend()

	_, err := restore.NewEngine(target, 500, nil).Restore(ctx, a)
	require.ErrorIs(t, err, restore.ErrArtifactMismatch)
	assert.Zero(t, target.Calls("agencies"))
	assert.Zero(t, target.Calls("candidates"))
}

func TestEngine_RestoreBatches(t *testing.T) {
	ctx := context.Background()
	a := scenarioArtifact(t)
	a.Metadata = nil
	target := testutil.NewRecruitmentBackend()

	report, err := restore.NewEngine(target, 2, nil).Restore(ctx, a)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, target.Calls("candidates"), "3 rows in batches of 2")
	assert.Equal(t, 2, target.Calls("applications"))
	assert.Equal(t, 1, target.Calls("agencies"))
}

func TestEngine_RestoreWithoutData(t *testing.T) {
	_, err := restore.NewEngine(testutil.NewRecruitmentBackend(), 1, nil).Restore(context.Background(), &backup.Artifact{})
	assert.ErrorIs(t, err, backup.ErrDataMissing)
}
