package domain

import (
	"context"
	"time"
)

// Candidate is owned by the identity system; the id is the auth subject.
type Candidate struct {
	ID        string    `json:"id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	FirstName *string   `json:"first_name" validate:"omitempty,max=100,valid_name"`
	LastName  *string   `json:"last_name" validate:"omitempty,max=100,valid_name"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone" validate:"omitempty,valid_phone"`
	Username  *string   `json:"username" validate:"omitempty,min=3,max=64"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize recomputes derived fields.
func (c *Candidate) Normalize() {
	c.FullName = JoinName(c.FirstName, c.LastName)
}

type CandidateRepository interface {
	GetByID(ctx context.Context, id string) (*Candidate, error)
	GetByEmail(ctx context.Context, email string) (*Candidate, error)
	GetByUsername(ctx context.Context, username string) (*Candidate, error)
	Create(ctx context.Context, candidate *Candidate) error
	Update(ctx context.Context, actingID string, candidate *Candidate) error
	SoftDelete(ctx context.Context, actingID, id string) error
	EnsureCandidate(ctx context.Context, id, email string) (*Candidate, error)
	AssignUsername(ctx context.Context, actingID, id, username string) error
}
