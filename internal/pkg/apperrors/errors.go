package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	// ErrInvalidTransition means the requested status is not a direct
	// successor of the application's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorizedActor means the actor's role does not match the
	// authority tier required to act on the application's current status.
	ErrUnauthorizedActor = errors.New("actor not authorized for this transition")

	// ErrGatePending means a KYC or risk precondition is not satisfied yet.
	// Retryable: the caller may re-attempt once the evidence changes.
	ErrGatePending = errors.New("gate precondition pending")

	// ErrGateRejected means a KYC or risk precondition failed permanently.
	ErrGateRejected = errors.New("gate precondition rejected")

	// ErrConflictingUpdate means a concurrent write won the version check.
	// Safe to retry after re-reading the application.
	ErrConflictingUpdate = errors.New("conflicting concurrent update")

	// ErrScheduleGeneration means the amortization inputs were invalid; the
	// disbursement must not proceed.
	ErrScheduleGeneration = errors.New("installment schedule generation failed")

	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	ErrLoanFullyPaid = errors.New("loan is already fully paid")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	ErrConflict = errors.New("resource conflict")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
