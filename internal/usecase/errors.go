package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hireboard/internal/domain/candidate"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTransition     = errors.New("invalid stage transition")
	ErrStageConflict         = errors.New("candidate stage changed concurrently")
	ErrStageChangeInProgress = errors.New("stage change already in progress")
	ErrSessionState          = errors.New("session does not accept this action")
	ErrUnavailable           = errors.New("temporarily unavailable")
	ErrInternal              = errors.New("internal error")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// ValidationError reports per-field problems. Fields are JSON field names or
// question ids.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func newValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// TransitionError is returned when a stage move is not allowed.
type TransitionError struct {
	From candidate.Stage
	To   candidate.Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move candidate from %s to %s", e.From.Label(), e.To.Label())
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
