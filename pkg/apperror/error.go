package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the backend that produced it.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindShape                Kind = "shape_error"
	KindDuplicateApplication Kind = "duplicate_application"
	KindInvalidTransition    Kind = "invalid_transition"
	KindBackendUnavailable   Kind = "backend_unavailable"
	KindOwnershipViolation   Kind = "ownership_violation"
	KindConflict             Kind = "conflict"
	KindValidation           Kind = "validation"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the caller may retry with backoff.
func (e *AppError) Retryable() bool {
	return e.Kind == KindBackendUnavailable
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound             = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrShape                = &AppError{Kind: KindShape, Message: "shape error"}
	ErrDuplicateApplication = &AppError{Kind: KindDuplicateApplication, Message: "duplicate application"}
	ErrInvalidTransition    = &AppError{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrBackendUnavailable   = &AppError{Kind: KindBackendUnavailable, Message: "backend unavailable"}
	ErrOwnershipViolation   = &AppError{Kind: KindOwnershipViolation, Message: "ownership violation"}
	ErrConflict             = &AppError{Kind: KindConflict, Message: "conflict"}
	ErrValidation           = &AppError{Kind: KindValidation, Message: "validation failed"}
)

func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

// ShapeError reports a legacy row that is missing a field the canonical
// contract requires. The row needs backfill.
type ShapeError struct {
	Family string
	ID     string
	Field  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s %q: required field %q missing on legacy row", e.Family, e.ID, e.Field)
}

func Shape(family, id, field string) *AppError {
	se := &ShapeError{Family: family, ID: id, Field: field}
	return New(KindShape, "legacy row predates schema contract", se)
}

func DuplicateApplication(candidateID, jobID string) *AppError {
	return New(KindDuplicateApplication,
		fmt.Sprintf("candidate %s already applied to job %s", candidateID, jobID), nil)
}

func InvalidTransition(from, to string) *AppError {
	return New(KindInvalidTransition, fmt.Sprintf("cannot transition from %s to %s", from, to), nil)
}

func BackendUnavailable(backend string, err error) *AppError {
	return New(KindBackendUnavailable, backend+" backend call failed", err)
}

func OwnershipViolation(actor, resource string) *AppError {
	return New(KindOwnershipViolation, fmt.Sprintf("%s does not own %s", actor, resource), nil)
}

func Conflict(message string, err error) *AppError {
	return New(KindConflict, message, err)
}

func Validation(message string, err error) *AppError {
	return New(KindValidation, message, err)
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
