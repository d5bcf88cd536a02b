package adapter

import (
	"context"
	"errors"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/repository/baas"
	"go-recruitment-datalayer/pkg/apperror"

	"github.com/google/uuid"
)

type ApplicationAdapter struct {
	core *family[domain.Application, *domain.Application]
	jobs *JobAdapter
}

var _ domain.ApplicationRepository = (*ApplicationAdapter)(nil)

// NewApplicationAdapter creates a new application adapter. Job lookups go
// through jobs so they follow that family's routing.
func NewApplicationAdapter(deps Deps, jobs *JobAdapter) *ApplicationAdapter {
	return &ApplicationAdapter{
		core: newFamily[domain.Application](deps, domain.FamilyApplications),
		jobs: jobs,
	}
}

func (a *ApplicationAdapter) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("id", id))
}

func (a *ApplicationAdapter) GetByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*domain.Application, error) {
	return a.core.findOne(ctx, a.core.route(), baas.Eq("candidate_id", candidateID), baas.Eq("job_id", jobID))
}

// ListByCandidate returns the candidate's applications, newest first.
func (a *ApplicationAdapter) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	return a.core.findMany(ctx, a.core.route(),
		baas.Where(baas.Eq("candidate_id", candidateID)).OrderBy("created_at", true))
}

// ListByCandidateWithJobs enriches each application with its job using one
// batched job lookup rather than a read per application.
func (a *ApplicationAdapter) ListByCandidateWithJobs(ctx context.Context, candidateID string) ([]domain.ApplicationWithJob, error) {
	apps, err := a.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	jobIDs := make([]string, len(apps))
	for i, app := range apps {
		jobIDs[i] = app.JobID
	}
	jobs, err := a.jobs.GetByIDs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ApplicationWithJob, len(apps))
	for i, app := range apps {
		out[i] = domain.ApplicationWithJob{Application: app, Job: jobs[app.JobID]}
	}
	return out, nil
}

// Create submits an application. A second application for the same
// (candidate, job) fails with DuplicateApplication, including when two
// submissions race past the pre-check.
func (a *ApplicationAdapter) Create(ctx context.Context, actingID string, app *domain.Application) error {
	if err := owns(actingID, app.CandidateID, "application for candidate "+app.CandidateID); err != nil {
		return err
	}

	job, err := a.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		return apperror.NotFound("job " + app.JobID)
	}
	if job.Status == domain.JobStatusClosed {
		return apperror.Validation("job "+app.JobID+" is closed", nil)
	}

	b := a.core.route()
	existing, err := a.core.findOne(ctx, b, baas.Eq("candidate_id", app.CandidateID), baas.Eq("job_id", app.JobID))
	if err != nil {
		return err
	}
	if existing != nil {
		return apperror.DuplicateApplication(app.CandidateID, app.JobID)
	}

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := a.core.deps.now()
	app.Status = domain.ApplicationStatusSubmitted
	app.CreatedAt = now
	app.UpdatedAt = now
	if err := a.core.validate(app); err != nil {
		return err
	}

	if err := a.core.insert(ctx, b, app); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return apperror.DuplicateApplication(app.CandidateID, app.JobID)
		}
		return err
	}
	return nil
}

// Transition moves an application along the status state machine.
// Ownership is checked before the transition itself. The write is
// conditional on the status read, so a concurrent transition makes this
// one fail instead of overwriting it.
func (a *ApplicationAdapter) Transition(ctx context.Context, actingID, id string, to domain.ApplicationStatus) (*domain.Application, error) {
	b := a.core.route()
	app, err := a.core.findOne(ctx, b, baas.Eq("id", id))
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application " + id)
	}
	if err := owns(actingID, app.CandidateID, "application "+id); err != nil {
		return nil, err
	}
	if !to.Valid() || !domain.CanTransition(app.Status, to) {
		return nil, apperror.InvalidTransition(string(app.Status), string(to))
	}

	now := a.core.deps.now()
	n, err := a.core.update(ctx, b,
		[]baas.Filter{baas.Eq("id", id), baas.Eq("status", string(app.Status))},
		map[string]any{"status": string(to), "updated_at": now})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		current, err := a.core.findOne(ctx, b, baas.Eq("id", id))
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperror.NotFound("application " + id)
		}
		return nil, apperror.InvalidTransition(string(current.Status), string(to))
	}

	app.Status = to
	app.UpdatedAt = now
	return app, nil
}

func (a *ApplicationAdapter) Delete(ctx context.Context, actingID, id string) error {
	b := a.core.route()
	app, err := a.core.findOne(ctx, b, baas.Eq("id", id))
	if err != nil {
		return err
	}
	if app == nil {
		return apperror.NotFound("application " + id)
	}
	if err := owns(actingID, app.CandidateID, "application "+id); err != nil {
		return err
	}
	n, err := a.core.remove(ctx, b, baas.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("application " + id)
	}
	return nil
}
