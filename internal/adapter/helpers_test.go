package adapter_test

import (
	"context"
	"testing"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/featureflag"
	"go-recruitment-datalayer/internal/schema"
	"go-recruitment-datalayer/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	name   string
	set    *adapter.Set
	legacy *gorm.DB
	next   *testutil.MemoryBackend
}

// backends returns one environment with every family on the legacy backend
// and one with every family migrated.
func backends(t *testing.T) []env {
	t.Helper()

	var all []string
	for _, f := range schema.Families() {
		all = append(all, f.String())
	}

	legacyDB := testutil.LegacyDB(t)
	legacyMem := testutil.NewRecruitmentBackend()
	newDB := testutil.LegacyDB(t)
	newMem := testutil.NewRecruitmentBackend()

	return []env{
		{
			name: "legacy",
			set: adapter.NewSet(adapter.Deps{
				Flags: featureflag.NewStatic(), Legacy: legacyDB, Next: legacyMem, Now: testutil.NewClock().Now,
			}),
			legacy: legacyDB,
			next:   legacyMem,
		},
		{
			name: "new",
			set: adapter.NewSet(adapter.Deps{
				Flags: featureflag.NewStatic(all...), Legacy: newDB, Next: newMem, Now: testutil.NewClock().Now,
			}),
			legacy: newDB,
			next:   newMem,
		},
	}
}

func strPtr(s string) *string { return &s }

func seedCandidate(t *testing.T, set *adapter.Set, id string) *domain.Candidate {
	t.Helper()
	c := &domain.Candidate{ID: id, Email: id + "@example.com", FirstName: strPtr("Ana"), LastName: strPtr("Putri")}
	require.NoError(t, set.Candidates.Create(context.Background(), c))
	return c
}

func seedJob(t *testing.T, set *adapter.Set, slug string) *domain.Job {
	t.Helper()
	ctx := context.Background()
	agency := &domain.Agency{Name: "Acme Staffing", Slug: slug + "-agency"}
	require.NoError(t, set.Agencies.Create(ctx, agency))
	job := &domain.Job{AgencyID: &agency.ID, Title: "Backend Engineer", Slug: slug}
	require.NoError(t, set.Jobs.Create(ctx, job))
	return job
}
