package services

import (
	"errors"
	"fmt"
)

// ValidationError represents a rejected input with per-field messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NewValidationErrors creates a validation error from a field map.
func NewValidationErrors(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// NotFoundError represents a missing resource, or one the caller is not
// allowed to know exists.
type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}

// PermissionError represents an authenticated caller acting outside its role.
type PermissionError struct {
	Message string `json:"message"`
}

func (e *PermissionError) Error() string {
	return e.Message
}

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

// IsPermissionError checks if an error is a PermissionError
func IsPermissionError(err error) (*PermissionError, bool) {
	var permissionErr *PermissionError
	if errors.As(err, &permissionErr) {
		return permissionErr, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g., already exists)
type ConflictError struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Message:  message,
	}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}

// StateError represents an operation applied to a resource in the wrong
// state (acknowledging an offer, confirming an unpaid invoice).
type StateError struct {
	Message string `json:"message"`
}

func (e *StateError) Error() string {
	return e.Message
}

func NewStateError(message string) *StateError {
	return &StateError{Message: message}
}

// IsStateError checks if an error is a StateError
func IsStateError(err error) (*StateError, bool) {
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		return stateErr, true
	}
	return nil, false
}

// UnavailableError represents a dependency (object storage) that is not
// configured or not reachable.
type UnavailableError struct {
	Service string `json:"service"`
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable", e.Service)
}

func NewUnavailableError(service string) *UnavailableError {
	return &UnavailableError{Service: service}
}

// IsUnavailableError checks if an error is an UnavailableError
func IsUnavailableError(err error) (*UnavailableError, bool) {
	var unavailableErr *UnavailableError
	if errors.As(err, &unavailableErr) {
		return unavailableErr, true
	}
	return nil, false
}
