package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated     = errors.New("authentication required")
	ErrAlreadyAuthenticated = errors.New("already signed in, log out first")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPackageNotFound      = errors.New("package not found")
)

// ValidationError is a local input error. It is raised before any backend
// call and shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrDateRequired           = &ValidationError{Message: "Please select a date"}
	ErrSlotRequired           = &ValidationError{Message: "Please select a time slot"}
	ErrSlotUnavailable        = &ValidationError{Message: "Selected time slot is not available"}
	ErrInvalidDate            = &ValidationError{Message: "Date must be in YYYY-MM-DD format"}
	ErrPasswordMismatch       = &ValidationError{Message: "Passwords do not match"}
	ErrRescheduleDateRequired = &ValidationError{Message: "Please select a new date"}
	ErrInvalidTimeSlot        = &ValidationError{Message: "Time slot must be one of the clinic time slots"}
	ErrInvalidMode            = &ValidationError{Message: "Mode must be login or register"}
	ErrTransitionNotAllowed   = &ValidationError{Message: "This action is not allowed for the booking's current status"}
	ErrPatientAccountRequired = &ValidationError{Message: "Bookings are made with a patient account, log out first"}
)

// AuthenticationError is a rejected login or registration.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// BookingCreationError is a rejected booking submission.
type BookingCreationError struct {
	Message string
	Err     error
}

func (e *BookingCreationError) Error() string {
	return e.Message
}

func (e *BookingCreationError) Unwrap() error {
	return e.Err
}

// OperationError is any other rejected write. Message is what the user sees.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
