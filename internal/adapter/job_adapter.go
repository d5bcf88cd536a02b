package adapter

import (
	"context"
	"sync"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// jobBatchSize caps the ids sent in one `id in (...)` query.
const jobBatchSize = 100

type JobAdapter struct {
	core *family[domain.Job, *domain.Job]
}

var _ domain.JobRepository = (*JobAdapter)(nil)

// NewJobAdapter creates a new job adapter
func NewJobAdapter(deps Deps) *JobAdapter {
	return &JobAdapter{core: newFamily[domain.Job](deps, domain.FamilyJobs)}
}

func (a *JobAdapter) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

func (a *JobAdapter) GetBySlug(ctx context.Context, slug string) (*domain.Job, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("slug", slug))
}

// GetByIDs fetches jobs in batches, at most FanOut batches in flight. Ids
// with no row are absent from the result.
func (a *JobAdapter) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Job, error) {
	seen := make(map[string]struct{}, len(ids))
	var unique []any
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	out := make(map[string]*domain.Job, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	b := a.core.route()
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.core.deps.FanOut)
	for start := 0; start < len(unique); start += jobBatchSize {
		batch := unique[start:min(start+jobBatchSize, len(unique))]
		g.Go(func() error {
			jobs, err := a.core.findMany(gctx, b, baas.Where(baas.In("id", batch...)))
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for i := range jobs {
				out[jobs[i].ID] = &jobs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *JobAdapter) Create(ctx context.Context, job *domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := a.core.deps.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.PostedAt == nil {
		job.PostedAt = &now
	}
	job.Normalize()
	if err := a.core.validate(job); err != nil {
		return err
	}
	return a.core.insert(ctx, a.core.route(), job)
}

func (a *JobAdapter) Update(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = a.core.deps.now()
	job.Normalize()
	if err := a.core.validate(job); err != nil {
		return err
	}
	n, err := a.core.update(ctx, a.core.route(), []baas.Filter{baas.Eq("id", job.ID)}, map[string]any{
		"agency_id":       job.AgencyID,
		"title":           job.Title,
		"slug":            job.Slug,
		"description":     job.Description,
		"location":        job.Location,
		"employment_type": job.EmploymentType,
		"salary_min":      job.SalaryMin,
		"salary_max":      job.SalaryMax,
		"status":          job.Status,
		"updated_at":      job.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("job " + job.ID)
	}
	return nil
}

// Close is the soft delete for jobs: the row stays for its applications.
func (a *JobAdapter) Close(ctx context.Context, id string) error {
	n, err := a.core.update(ctx, a.core.route(), []baas.Filter{baas.Eq("id", id)}, map[string]any{
		"status":     domain.JobStatusClosed,
		"updated_at": a.core.deps.now(),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("job " + id)
	}
	return nil
}
