package util

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so callers can branch with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrPersistence   = errors.New("persistence failure")
	ErrConfiguration = errors.New("missing configuration")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrUpstream      = errors.New("upstream service failure")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrRoadmapNotFound     = fmt.Errorf("roadmap %w", ErrNotFound)
	ErrModuleNotFound      = fmt.Errorf("module %w", ErrNotFound)
	ErrResourceNotFound    = fmt.Errorf("resource %w", ErrNotFound)
	ErrAssignmentNotFound  = fmt.Errorf("assignment %w", ErrNotFound)
	ErrQuizNotFound        = fmt.Errorf("quiz %w", ErrNotFound)
	ErrQuestionNotFound    = fmt.Errorf("question %w", ErrNotFound)
	ErrSubmissionNotFound  = fmt.Errorf("submission %w", ErrNotFound)
	ErrLevelNotFound       = fmt.Errorf("level %w", ErrNotFound)
	ErrBadgeNotFound       = fmt.Errorf("badge %w", ErrNotFound)
	ErrJobDescNotFound     = fmt.Errorf("job description %w", ErrNotFound)
	ErrGeneratedQuizAbsent = fmt.Errorf("generated quiz %w", ErrNotFound)

	ErrSubmissionAlreadyGraded = fmt.Errorf("%w: submission already graded", ErrConflict)
	ErrEmailConflict           = fmt.Errorf("%w: email belongs to another account", ErrConflict)
	ErrUsernameTaken           = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrLevelExists             = fmt.Errorf("%w: level with this name or threshold already exists", ErrConflict)
	ErrBadgeExists             = fmt.Errorf("%w: badge with this name already exists", ErrConflict)
	ErrQuizAlreadyGenerated    = fmt.Errorf("%w: job description already has a generated quiz", ErrConflict)

	ErrInactiveUser   = fmt.Errorf("%w: user is inactive", ErrForbidden)
	ErrAdminRequired  = fmt.Errorf("%w: admin privileges required", ErrForbidden)
	ErrMissingEmail   = fmt.Errorf("%w: email missing from identity token", ErrValidation)
	ErrInvalidAnswers = fmt.Errorf("%w: malformed answer map", ErrValidation)
)

// Persistence wraps a store failure so that the surrounding transaction rolls back
// and the HTTP layer reports it as an internal error.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Validation builds a validation error with a readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
