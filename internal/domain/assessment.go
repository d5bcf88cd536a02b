package domain

import (
	"context"
	"encoding/json"
	"time"
)

const (
	AssessmentStatusStarted   = "started"
	AssessmentStatusCompleted = "completed"
	AssessmentStatusAbandoned = "abandoned"
)

// Assessment is one session of a typing, DISC or similar test. Rows are
// immutable once inserted.
type Assessment struct {
	ID          string          `json:"id" validate:"required"`
	CandidateID string          `json:"candidate_id" validate:"required"`
	Type        string          `json:"type" validate:"required,max=50"`
	Status      string          `json:"status" validate:"required,oneof=started completed abandoned"`
	Score       *float64        `json:"score"`
	Result      json.RawMessage `json:"result"`
	XPAwarded   int             `json:"xp_awarded" validate:"min=0"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (a *Assessment) Normalize() {
	a.Result = nullToNil(a.Result)
}

// AssessmentProgress aggregates completed sessions.
type AssessmentProgress struct {
	CandidateID string         `json:"candidate_id"`
	Completed   int            `json:"completed"`
	ByType      map[string]int `json:"by_type"`
	TotalXP     int            `json:"total_xp"`
}

type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (*Assessment, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Assessment, error)
	Append(ctx context.Context, actingID string, session *Assessment) error
	Progress(ctx context.Context, candidateID string) (*AssessmentProgress, error)
}
