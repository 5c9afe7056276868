package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrOperatorNotFound        = errors.New("operator not found")
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrQuoteNotFound           = errors.New("quote not found")
	ErrQuoteAlreadyResolved    = errors.New("quote already resolved")
	ErrQuoteActive             = errors.New("ticket already has an active quote")
	ErrQuoteExpired            = errors.New("quote acceptance window expired")
	ErrInvalidAcceptToken      = errors.New("invalid accept token")
	ErrIdentifierExhausted     = errors.New("could not reserve a unique quote identifier")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrOrderLocked             = errors.New("order can no longer be deleted")
	ErrSelfDelete              = errors.New("cannot delete own account")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrUnauthorized            = errors.New("authentication required")
	ErrForbidden               = errors.New("permission denied")
	ErrSessionNotFound         = errors.New("session not found")
	ErrInternalServerError     = errors.New("internal server error")

	ErrValidation        = errors.New("validation failed")
	ErrDependencyFailure = errors.New("dependency failure")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Dependency stages
const (
	StageRender   = "render"
	StageNotify   = "notify"
	StagePersist  = "persist"
	StageArchive  = "archive"
	StageSchedule = "schedule"
)

// DependencyError reports a failed collaborator call (renderer, mailer, store)
// together with the ticket and stage it happened in. Callers may retry.
type DependencyError struct {
	Stage    string
	TicketID int
	Err      error
}

func NewDependencyError(stage string, ticketID int, err error) *DependencyError {
	return &DependencyError{Stage: stage, TicketID: ticketID, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s failed for ticket %d: %v", e.Stage, e.TicketID, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyFailure
}
