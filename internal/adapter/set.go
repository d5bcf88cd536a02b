package adapter

import (
	"context"
	"fmt"

	"go-recruitment-datalayer/internal/domain"
)

// Source is a family readable in bulk from its authoritative backend.
type Source interface {
	Family() domain.Family
	Export(ctx context.Context, opts domain.ListOptions) ([]any, error)
}

// Probe reads one row from a named backend without consulting the flags.
type Probe interface {
	Family() domain.Family
	FetchFrom(ctx context.Context, b domain.Backend, id string) (map[string]any, error)
}

// Set wires every adapter over one Deps.
type Set struct {
	Agencies     *AgencyAdapter
	Candidates   *CandidateAdapter
	Profiles     *ProfileAdapter
	Jobs         *JobAdapter
	Resumes      *ResumeAdapter
	Applications *ApplicationAdapter
	Assessments  *AssessmentAdapter
}

func NewSet(deps Deps) *Set {
	deps = deps.withDefaults()
	candidates := NewCandidateAdapter(deps)
	jobs := NewJobAdapter(deps)
	return &Set{
		Agencies:     NewAgencyAdapter(deps),
		Candidates:   candidates,
		Profiles:     NewProfileAdapter(deps, candidates),
		Jobs:         jobs,
		Resumes:      NewResumeAdapter(deps, NewSlugSource(deps.Now)),
		Applications: NewApplicationAdapter(deps, jobs),
		Assessments:  NewAssessmentAdapter(deps),
	}
}

// Sources lists every family's bulk reader, keyed by family.
func (s *Set) Sources() map[domain.Family]Source {
	return map[domain.Family]Source{
		domain.FamilyAgencies:     s.Agencies.core,
		domain.FamilyCandidates:   s.Candidates.core,
		domain.FamilyProfiles:     s.Profiles.core,
		domain.FamilyJobs:         s.Jobs.core,
		domain.FamilyResumes:      s.Resumes.core,
		domain.FamilyApplications: s.Applications.core,
		domain.FamilyAssessments:  s.Assessments.core,
	}
}

func (s *Set) Probe(family domain.Family) (Probe, error) {
	src, ok := s.Sources()[family]
	if !ok {
		return nil, fmt.Errorf("adapter: unknown family %q", family)
	}
	return src.(Probe), nil
}
