package domain

import (
	"context"
	"time"
)

// Gamification is the progress summary shown on the candidate portal.
type Gamification struct {
	XP     int      `json:"xp"`
	Level  int      `json:"level"`
	Badges []string `json:"badges"`
}

// Profile is 1:1 with Candidate; CandidateID is the owning key.
type Profile struct {
	CandidateID      string       `json:"candidate_id" validate:"required"`
	Location         *string      `json:"location" validate:"omitempty,max=200"`
	Bio              *string      `json:"bio" validate:"omitempty,max=2000,no_emoji"`
	Position         *string      `json:"position" validate:"omitempty,max=200"`
	Gender           *string      `json:"gender"`
	Birthday         *time.Time   `json:"birthday" validate:"omitempty,not_future"`
	EmploymentStatus *string      `json:"employment_status"`
	SalaryMin        *int         `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax        *int         `json:"salary_max" validate:"omitempty,min=0"`
	SalaryCurrency   *string      `json:"salary_currency" validate:"omitempty,len=3"`
	Gamification     Gamification `json:"gamification"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (p *Profile) Normalize() {
	if p.Gamification.Badges == nil {
		p.Gamification.Badges = []string{}
	}
}

type ProfileRepository interface {
	GetByCandidateID(ctx context.Context, candidateID string) (*Profile, error)
	Upsert(ctx context.Context, actingID string, profile *Profile) (*Profile, error)
	Delete(ctx context.Context, actingID, candidateID string) error
}
