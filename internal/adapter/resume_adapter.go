package adapter

import (
	"context"
	"errors"
	"time"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/google/uuid"
)

type ResumeAdapter struct {
	core  *family[domain.Resume, *domain.Resume]
	slugs *SlugSource
}

var _ domain.ResumeRepository = (*ResumeAdapter)(nil)

// NewResumeAdapter creates a new resume adapter
func NewResumeAdapter(deps Deps, slugs *SlugSource) *ResumeAdapter {
	if slugs == nil {
		slugs = NewSlugSource(deps.Now)
	}
	return &ResumeAdapter{
		core:  newFamily[domain.Resume](deps, domain.FamilyResumes),
		slugs: slugs,
	}
}

func (a *ResumeAdapter) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

func (a *ResumeAdapter) GetBySlug(ctx context.Context, slug string) (*domain.Resume, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("slug", slug))
}

func (a *ResumeAdapter) GetPrimary(ctx context.Context, candidateID string) (*domain.Resume, error) {
	return a.primary(ctx, a.core.route(), candidateID)
}

func (a *ResumeAdapter) primary(ctx context.Context, b domain.Backend, candidateID string) (*domain.Resume, error) {
	rows, err := a.core.findMany(ctx, b,
		baas.Where(baas.Eq("candidate_id", candidateID), baas.Eq("is_primary", true)).
			OrderBy("updated_at", true).WithLimit(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (a *ResumeAdapter) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Resume, error) {
	return a.core.findMany(ctx, a.core.route(),
		baas.Where(baas.Eq("candidate_id", candidateID)).OrderBy("created_at", true))
}

// SavePrimary writes the candidate's primary resume: it updates the existing
// primary row in place, or creates one when the candidate has none. Nil
// payloads in input keep the stored payloads. Losing a race to create the
// first primary turns into an update of the winner's row.
func (a *ResumeAdapter) SavePrimary(ctx context.Context, actingID, candidateID string, input domain.ResumeInput) (*domain.Resume, error) {
	if err := owns(actingID, candidateID, "resume of candidate "+candidateID); err != nil {
		return nil, err
	}

	b := a.core.route()
	existing, err := a.primary(ctx, b, candidateID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return a.overwrite(ctx, b, existing, input)
	}

	now := a.core.deps.now()
	r := &domain.Resume{
		ID:           uuid.NewString(),
		CandidateID:  candidateID,
		Slug:         a.slugs.Next(candidateID),
		Title:        input.Title,
		RawData:      input.RawData,
		ImprovedData: input.ImprovedData,
		IsPrimary:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.Normalize()
	if err := a.core.validate(r); err != nil {
		return nil, err
	}
	err = a.core.insert(ctx, b, r)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, err
	}

	winner, getErr := a.primary(ctx, b, candidateID)
	if getErr != nil || winner == nil {
		return nil, err
	}
	a.core.log.Info("concurrent primary resume creation, updating the existing row",
		"candidate_id", candidateID, "resume_id", winner.ID)
	return a.overwrite(ctx, b, winner, input)
}

func (a *ResumeAdapter) overwrite(ctx context.Context, b domain.Backend, existing *domain.Resume, input domain.ResumeInput) (*domain.Resume, error) {
	now := a.core.deps.now()
	patch := map[string]any{"updated_at": now}
	if input.Title != nil {
		existing.Title = input.Title
		patch["title"] = *input.Title
	}
	if input.RawData != nil {
		existing.RawData = input.RawData
		patch["raw_data"] = input.RawData
	}
	if input.ImprovedData != nil {
		existing.ImprovedData = input.ImprovedData
		patch["improved_data"] = input.ImprovedData
	}
	existing.UpdatedAt = now
	existing.Normalize()
	if err := a.core.validate(existing); err != nil {
		return nil, err
	}
	if _, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", existing.ID)}, patch); err != nil {
		return nil, err
	}
	return existing, nil
}

// Update rewrites a resume. Promoting it to primary demotes the candidate's
// current primary first; if the promotion then fails, the demoted row is put
// back so the candidate never ends up without a primary.
func (a *ResumeAdapter) Update(ctx context.Context, actingID string, r *domain.Resume) error {
	b := a.core.route()
	existing, err := a.core.findOne(ctx, b, baas.Eq("id", r.ID))
	if err != nil {
		return err
	}
	if existing == nil {
		return apperror.NotFound("resume " + r.ID)
	}
	if err := owns(actingID, existing.CandidateID, "resume "+r.ID); err != nil {
		return err
	}
	if r.CandidateID != "" && r.CandidateID != existing.CandidateID {
		return apperror.Validation("a resume cannot change owner", nil)
	}

	r.CandidateID = existing.CandidateID
	r.Slug = existing.Slug
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = a.core.deps.now()
	r.Normalize()
	if err := a.core.validate(r); err != nil {
		return err
	}

	var demoted *domain.Resume
	if r.IsPrimary && !existing.IsPrimary {
		if demoted, err = a.primary(ctx, b, r.CandidateID); err != nil {
			return err
		}
		if demoted != nil {
			if _, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", demoted.ID)},
				map[string]any{"is_primary": false, "updated_at": r.UpdatedAt}); err != nil {
				return err
			}
		}
	}

	n, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", r.ID)}, map[string]any{
		"title":         r.Title,
		"raw_data":      r.RawData,
		"improved_data": r.ImprovedData,
		"is_primary":    r.IsPrimary,
		"updated_at":    r.UpdatedAt,
	})
	if err == nil && n == 0 {
		err = apperror.NotFound("resume " + r.ID)
	}
	if err != nil {
		if demoted != nil {
			a.repromote(ctx, b, demoted)
		}
		return err
	}
	return nil
}

// repromote undoes a demotion. It runs even when ctx is already cancelled.
func (a *ResumeAdapter) repromote(ctx context.Context, b domain.Backend, prev *domain.Resume) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if _, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", prev.ID)},
		map[string]any{"is_primary": true, "updated_at": prev.UpdatedAt}); err != nil {
		a.core.log.Error("failed to restore primary resume after aborted promotion",
			"candidate_id", prev.CandidateID, "resume_id", prev.ID, "error", err)
	}
}

func (a *ResumeAdapter) Delete(ctx context.Context, actingID, id string) error {
	b := a.core.route()
	existing, err := a.core.findOne(ctx, b, baas.Eq("id", id))
	if err != nil {
		return err
	}
	if existing == nil {
		return apperror.NotFound("resume " + id)
	}
	if err := owns(actingID, existing.CandidateID, "resume "+id); err != nil {
		return err
	}
	n, err := a.core.remove(ctx, b, baas.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("resume " + id)
	}
	return nil
}
