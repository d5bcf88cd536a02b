package domain

import (
	"context"
	"time"
)

// Agency is a recruitment agency that owns job postings.
type Agency struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required,max=200"`
	Slug      string    `json:"slug" validate:"required,max=200,valid_slug"`
	Website   *string   `json:"website" validate:"omitempty,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Agency) Normalize() {}

type AgencyRepository interface {
	GetByID(ctx context.Context, id string) (*Agency, error)
	GetBySlug(ctx context.Context, slug string) (*Agency, error)
	Create(ctx context.Context, agency *Agency) error
	Update(ctx context.Context, agency *Agency) error
	Delete(ctx context.Context, id string) error
}
