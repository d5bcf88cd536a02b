package adapter

import (
	"context"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/internal/translator"
	"go-recruitment-datalayer/pkg/apperror"
)

type ProfileAdapter struct {
	core       *family[domain.Profile, *domain.Profile]
	candidates *CandidateAdapter
}

var _ domain.ProfileRepository = (*ProfileAdapter)(nil)

// NewProfileAdapter creates a new profile adapter. Candidate existence is
// checked through candidates so it follows that family's routing.
func NewProfileAdapter(deps Deps, candidates *CandidateAdapter) *ProfileAdapter {
	return &ProfileAdapter{
		core:       newFamily[domain.Profile](deps, domain.FamilyProfiles),
		candidates: candidates,
	}
}

func (a *ProfileAdapter) GetByCandidateID(ctx context.Context, candidateID string) (*domain.Profile, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("candidate_id", candidateID))
}

// Upsert creates the profile on first write and overwrites it afterwards.
func (a *ProfileAdapter) Upsert(ctx context.Context, actingID string, p *domain.Profile) (*domain.Profile, error) {
	if err := owns(actingID, p.CandidateID, "profile "+p.CandidateID); err != nil {
		return nil, err
	}
	candidate, err := a.candidates.GetByID(ctx, p.CandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, apperror.NotFound("candidate " + p.CandidateID)
	}

	b := a.core.route()
	existing, err := a.core.findOne(ctx, b, baas.Eq("candidate_id", p.CandidateID))
	if err != nil {
		return nil, err
	}

	now := a.core.deps.now()
	p.UpdatedAt = now
	p.Normalize()
	if existing == nil {
		p.CreatedAt = now
		if err := a.core.validate(p); err != nil {
			return nil, err
		}
		if err := a.core.insert(ctx, b, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	p.CreatedAt = existing.CreatedAt
	if err := a.core.validate(p); err != nil {
		return nil, err
	}
	patch, err := translator.Encode(p)
	if err != nil {
		return nil, err
	}
	delete(patch, "candidate_id")
	delete(patch, "created_at")
	if _, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("candidate_id", p.CandidateID)}, patch); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *ProfileAdapter) Delete(ctx context.Context, actingID, candidateID string) error {
	if err := owns(actingID, candidateID, "profile "+candidateID); err != nil {
		return err
	}
	n, err := a.core.remove(ctx, a.core.route(), baas.Eq("candidate_id", candidateID))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("profile " + candidateID)
	}
	return nil
}
