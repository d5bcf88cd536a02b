package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

// Application status constants
const (
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusOffered     ApplicationStatus = "offered"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"
)

// submitted → under_review → {offered, rejected}; offered → {hired, rejected};
// any non-terminal state → withdrawn.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted:   {ApplicationStatusUnderReview, ApplicationStatusWithdrawn},
	ApplicationStatusUnderReview: {ApplicationStatusOffered, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	ApplicationStatusOffered:     {ApplicationStatusHired, ApplicationStatusRejected, ApplicationStatusWithdrawn},
}

// IsTerminal reports whether no transition may leave s.
func (s ApplicationStatus) IsTerminal() bool {
	_, ok := applicationTransitions[s]
	return !ok
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusUnderReview, ApplicationStatusOffered,
		ApplicationStatusRejected, ApplicationStatusHired, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether from → to is an edge of the state machine.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range applicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application represents a job application from a candidate.
// (CandidateID, JobID) is unique.
type Application struct {
	ID          string            `json:"id" validate:"required"`
	CandidateID string            `json:"candidate_id" validate:"required"`
	JobID       string            `json:"job_id" validate:"required"`
	ResumeID    *string           `json:"resume_id"`
	Status      ApplicationStatus `json:"status" validate:"required"`
	CoverLetter *string           `json:"cover_letter" validate:"omitempty,max=10000"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (a *Application) Normalize() {
	if a.Status == "" {
		a.Status = ApplicationStatusSubmitted
	}
}

// ApplicationWithJob is an application enriched with its job; Job is nil when
// the job row no longer exists.
type ApplicationWithJob struct {
	Application
	Job *Job `json:"job"`
}

type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*Application, error)
	GetByCandidateAndJob(ctx context.Context, candidateID, jobID string) (*Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Application, error)
	ListByCandidateWithJobs(ctx context.Context, candidateID string) ([]ApplicationWithJob, error)
	Create(ctx context.Context, actingID string, app *Application) error
	Transition(ctx context.Context, actingID, id string, to ApplicationStatus) (*Application, error)
	Delete(ctx context.Context, actingID, id string) error
}
