package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Resume holds two independent payloads: data extracted from the uploaded
// file and a separately generated improved version. Either may be nil.
type Resume struct {
	ID           string          `json:"id" validate:"required"`
	CandidateID  string          `json:"candidate_id" validate:"required"`
	Slug         string          `json:"slug" validate:"required"`
	Title        *string         `json:"title" validate:"omitempty,max=200"`
	RawData      json.RawMessage `json:"raw_data"`
	ImprovedData json.RawMessage `json:"improved_data"`
	IsPrimary    bool            `json:"is_primary"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (r *Resume) Normalize() {
	r.RawData = nullToNil(r.RawData)
	r.ImprovedData = nullToNil(r.ImprovedData)
}

// ResumeInput is the writable part of a resume. Nil payloads leave the stored
// payload untouched on update.
type ResumeInput struct {
	Title        *string
	RawData      json.RawMessage
	ImprovedData json.RawMessage
}

type ResumeRepository interface {
	GetByID(ctx context.Context, id string) (*Resume, error)
	GetBySlug(ctx context.Context, slug string) (*Resume, error)
	GetPrimary(ctx context.Context, candidateID string) (*Resume, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Resume, error)
	SavePrimary(ctx context.Context, actingID, candidateID string, input ResumeInput) (*Resume, error)
	Update(ctx context.Context, actingID string, resume *Resume) error
	Delete(ctx context.Context, actingID, id string) error
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
