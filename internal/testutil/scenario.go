package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/domain"

	"github.com/stretchr/testify/require"
)

// Scenario counts seeded by SeedScenario.
var ScenarioCounts = map[string]int{
	"agencies":     1,
	"candidates":   3,
	"jobs":         2,
	"resumes":      2,
	"applications": 4,
}

// SeedScenario writes one agency, three candidates, two jobs, two primary
// resumes and four applications through set's adapters.
func SeedScenario(t testing.TB, set *adapter.Set) {
	t.Helper()
	ctx := context.Background()

	agency := &domain.Agency{Name: "Nusantara Talent", Slug: "nusantara-talent"}
	require.NoError(t, set.Agencies.Create(ctx, agency))

	var candidates []string
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("cand-%d", i)
		first := fmt.Sprintf("Candidate%c", 'A'+i-1)
		require.NoError(t, set.Candidates.Create(ctx, &domain.Candidate{
			ID: id, Email: id + "@example.com", FirstName: &first,
		}))
		candidates = append(candidates, id)
	}

	var jobs []string
	for _, slug := range []string{"welder", "caregiver"} {
		job := &domain.Job{AgencyID: &agency.ID, Title: "Open " + slug + " role", Slug: slug}
		require.NoError(t, set.Jobs.Create(ctx, job))
		jobs = append(jobs, job.ID)
	}

	resumes := map[string]string{}
	for _, cand := range candidates[:2] {
		r, err := set.Resumes.SavePrimary(ctx, cand, cand, domain.ResumeInput{
			RawData: json.RawMessage(`{"name":"` + cand + `"}`),
		})
		require.NoError(t, err)
		resumes[cand] = r.ID
	}

	pairs := [][2]int{{0, 0}, {0, 1}, {1, 0}, {2, 1}}
	for _, p := range pairs {
		cand := candidates[p[0]]
		app := &domain.Application{CandidateID: cand, JobID: jobs[p[1]]}
		if id, ok := resumes[cand]; ok {
			app.ResumeID = &id
		}
		require.NoError(t, set.Applications.Create(ctx, cand, app))
	}
}
