package domain

import (
	"context"
	"time"
)

const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

type Job struct {
	ID             string     `json:"id" validate:"required"`
	AgencyID       *string    `json:"agency_id"`
	Title          string     `json:"title" validate:"required,min=3,max=200"`
	Slug           string     `json:"slug" validate:"required,max=200,valid_slug"`
	Description    *string    `json:"description"`
	Location       *string    `json:"location"`
	EmploymentType *string    `json:"employment_type"`
	SalaryMin      *int       `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int       `json:"salary_max" validate:"omitempty,min=0"`
	Status         string     `json:"status" validate:"required,oneof=open closed"`
	PostedAt       *time.Time `json:"posted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (j *Job) Normalize() {
	if j.Status == "" {
		j.Status = JobStatusOpen
	}
}

type JobRepository interface {
	GetByID(ctx context.Context, id string) (*Job, error)
	GetBySlug(ctx context.Context, slug string) (*Job, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Job, error)
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	Close(ctx context.Context, id string) error
}
