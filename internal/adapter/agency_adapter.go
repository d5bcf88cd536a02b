package adapter

import (
	"context"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/google/uuid"
)

type AgencyAdapter struct {
	core *family[domain.Agency, *domain.Agency]
}

var _ domain.AgencyRepository = (*AgencyAdapter)(nil)

// NewAgencyAdapter creates a new agency adapter
func NewAgencyAdapter(deps Deps) *AgencyAdapter {
	return &AgencyAdapter{core: newFamily[domain.Agency](deps, domain.FamilyAgencies)}
}

func (a *AgencyAdapter) GetByID(ctx context.Context, id string) (*domain.Agency, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

func (a *AgencyAdapter) GetBySlug(ctx context.Context, slug string) (*domain.Agency, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("slug", slug))
}

func (a *AgencyAdapter) Create(ctx context.Context, agency *domain.Agency) error {
	if agency.ID == "" {
		agency.ID = uuid.NewString()
	}
	now := a.core.deps.now()
	agency.CreatedAt = now
	agency.UpdatedAt = now
	if err := a.core.validate(agency); err != nil {
		return err
	}
	return a.core.insert(ctx, a.core.route(), agency)
}

func (a *AgencyAdapter) Update(ctx context.Context, agency *domain.Agency) error {
	agency.UpdatedAt = a.core.deps.now()
	if err := a.core.validate(agency); err != nil {
		return err
	}
	n, err := a.core.update(ctx, a.core.route(), []baas.Filter{baas.Eq("id", agency.ID)}, map[string]any{
		"name":       agency.Name,
		"slug":       agency.Slug,
		"website":    agency.Website,
		"updated_at": agency.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("agency " + agency.ID)
	}
	return nil
}

func (a *AgencyAdapter) Delete(ctx context.Context, id string) error {
	n, err := a.core.remove(ctx, a.core.route(), baas.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("agency " + id)
	}
	return nil
}
