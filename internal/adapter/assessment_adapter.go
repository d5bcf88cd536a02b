package adapter

import (
	"context"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"

	"github.com/google/uuid"
)

// AssessmentAdapter is append-only: sessions are never updated or deleted.
type AssessmentAdapter struct {
	core *family[domain.Assessment, *domain.Assessment]
}

var _ domain.AssessmentRepository = (*AssessmentAdapter)(nil)

// NewAssessmentAdapter creates a new assessment adapter
func NewAssessmentAdapter(deps Deps) *AssessmentAdapter {
	return &AssessmentAdapter{core: newFamily[domain.Assessment](deps, domain.FamilyAssessments)}
}

func (a *AssessmentAdapter) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

func (a *AssessmentAdapter) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Assessment, error) {
	return a.core.findMany(ctx, a.core.route(),
		baas.Where(baas.Eq("candidate_id", candidateID)).OrderBy("started_at", true))
}

// Append records a session for the acting candidate.
func (a *AssessmentAdapter) Append(ctx context.Context, actingID string, s *domain.Assessment) error {
	if err := owns(actingID, s.CandidateID, "assessment for candidate "+s.CandidateID); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := a.core.deps.now()
	if s.Status == "" {
		s.Status = domain.AssessmentStatusStarted
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	if s.Status == domain.AssessmentStatusCompleted && s.CompletedAt == nil {
		s.CompletedAt = &now
	}
	s.CreatedAt = now
	s.Normalize()
	if err := a.core.validate(s); err != nil {
		return err
	}
	return a.core.insert(ctx, a.core.route(), s)
}

// Progress aggregates the candidate's completed sessions. Started and
// abandoned sessions count toward nothing.
func (a *AssessmentAdapter) Progress(ctx context.Context, candidateID string) (*domain.AssessmentProgress, error) {
	sessions, err := a.core.findMany(ctx, a.core.route(), baas.Where(
		baas.Eq("candidate_id", candidateID),
		baas.Eq("status", domain.AssessmentStatusCompleted),
	))
	if err != nil {
		return nil, err
	}

	p := &domain.AssessmentProgress{CandidateID: candidateID, ByType: map[string]int{}}
	for _, s := range sessions {
		p.Completed++
		p.ByType[s.Type]++
		p.TotalXP += s.XPAwarded
	}
	return p, nil
}
