package adapter

import (
	"context"
	"errors"
	"strings"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/apperror"
)

type CandidateAdapter struct {
	core *family[domain.Candidate, *domain.Candidate]
}

var _ domain.CandidateRepository = (*CandidateAdapter)(nil)

// NewCandidateAdapter creates a new candidate adapter
func NewCandidateAdapter(deps Deps) *CandidateAdapter {
	return &CandidateAdapter{core: newFamily[domain.Candidate](deps, domain.FamilyCandidates)}
}

func (a *CandidateAdapter) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

// GetByEmail matches case-insensitively; emails are stored lower-cased.
func (a *CandidateAdapter) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("email", normalizeEmail(email)))
}

func (a *CandidateAdapter) GetByUsername(ctx context.Context, username string) (*domain.Candidate, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("username", strings.ToLower(strings.TrimSpace(username))))
}

// Create inserts a candidate. The id is the identity provider's subject and
// must be supplied by the caller.
func (a *CandidateAdapter) Create(ctx context.Context, c *domain.Candidate) error {
	now := a.core.deps.now()
	c.Email = normalizeEmail(c.Email)
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Normalize()
	if err := a.core.validate(c); err != nil {
		return err
	}
	return a.core.insert(ctx, a.core.route(), c)
}

// Update overwrites the mutable fields. The email is fixed once set.
func (a *CandidateAdapter) Update(ctx context.Context, actingID string, c *domain.Candidate) error {
	if err := owns(actingID, c.ID, "candidate "+c.ID); err != nil {
		return err
	}
	b := a.core.route()
	existing, err := a.core.findOne(ctx, b, baas.Eq("id", c.ID))
	if err != nil {
		return err
	}
	if existing == nil {
		return apperror.NotFound("candidate " + c.ID)
	}
	if c.Email != "" && normalizeEmail(c.Email) != existing.Email {
		return apperror.Validation("email cannot be changed", nil)
	}

	c.Email = existing.Email
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = a.core.deps.now()
	c.Normalize()
	if err := a.core.validate(c); err != nil {
		return err
	}

	patch := map[string]any{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"phone":      c.Phone,
		"is_active":  c.IsActive,
		"updated_at": c.UpdatedAt,
	}
	if c.Username != nil {
		username, err := a.checkUsername(ctx, b, c.ID, *c.Username)
		if err != nil {
			return err
		}
		c.Username = &username
		patch["username"] = username
	}
	n, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", c.ID)}, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("candidate " + c.ID)
	}
	return nil
}

// SoftDelete deactivates the candidate; the row is kept.
func (a *CandidateAdapter) SoftDelete(ctx context.Context, actingID, id string) error {
	if err := owns(actingID, id, "candidate "+id); err != nil {
		return err
	}
	n, err := a.core.update(ctx, a.core.route(), []baas.Filter{baas.Eq("id", id)}, map[string]any{
		"is_active":  false,
		"updated_at": a.core.deps.now(),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("candidate " + id)
	}
	return nil
}

// EnsureCandidate returns the candidate with id, creating it on the first
// authenticated touch. A concurrent creation of the same id is not an error.
func (a *CandidateAdapter) EnsureCandidate(ctx context.Context, id, email string) (*domain.Candidate, error) {
	existing, err := a.GetByID(ctx, id)
	if err != nil || existing != nil {
		return existing, err
	}

	c := &domain.Candidate{ID: id, Email: email}
	if err := a.Create(ctx, c); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			if winner, getErr := a.GetByID(ctx, id); getErr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}
	a.core.log.Info("candidate created on first touch", "id", id)
	return c, nil
}

// AssignUsername sets the unique handle chosen after sign-up.
func (a *CandidateAdapter) AssignUsername(ctx context.Context, actingID, id, username string) error {
	if err := owns(actingID, id, "candidate "+id); err != nil {
		return err
	}
	b := a.core.route()
	username, err := a.checkUsername(ctx, b, id, username)
	if err != nil {
		return err
	}

	n, err := a.core.update(ctx, b, []baas.Filter{baas.Eq("id", id)}, map[string]any{
		"username":   username,
		"updated_at": a.core.deps.now(),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("candidate " + id)
	}
	return nil
}

// checkUsername normalises a requested handle and rejects malformed ones and
// ones held by another candidate.
func (a *CandidateAdapter) checkUsername(ctx context.Context, b domain.Backend, id, username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := a.core.deps.Validate.Var(username, "required,min=3,max=64,valid_slug"); err != nil {
		return "", apperror.Validation("username must be 3-64 lower-case letters, digits or hyphens", err)
	}
	taken, err := a.core.findOne(ctx, b, baas.Eq("username", username))
	if err != nil {
		return "", err
	}
	if taken != nil && taken.ID != id {
		return "", apperror.Conflict("username "+username+" is taken", nil)
	}
	return username, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
