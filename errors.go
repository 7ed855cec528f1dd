// Package cannon structured error types for better error handling
package cannon

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// n <= 0 or buffers inconsistent with n²
	ErrTypeInvalidDimension ErrorType = iota
	// Process count cannot host a grid
	ErrTypeProcessCount
	// Transport failures while exchanging blocks
	ErrTypeCommunication
	// Lifecycle stage called out of order
	ErrTypeLifecycle
	// Invalid argument errors
	ErrTypeInvalidArg
)

// CannonError represents a structured error with context
type CannonError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *CannonError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannon %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cannon %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *CannonError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidDimension:
		return "InvalidDimension"
	case ErrTypeProcessCount:
		return "ProcessCountDegenerate"
	case ErrTypeCommunication:
		return "Communication"
	case ErrTypeLifecycle:
		return "Lifecycle"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// NewDimensionError creates an invalid dimension error
func NewDimensionError(op string, message string) error {
	return &CannonError{
		Type:    ErrTypeInvalidDimension,
		Op:      op,
		Message: message,
	}
}

// NewProcessCountError creates a degenerate process count error
func NewProcessCountError(op string, message string, err error) error {
	return &CannonError{
		Type:    ErrTypeProcessCount,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewCommunicationError creates a communication error
func NewCommunicationError(op string, message string, err error) error {
	return &CannonError{
		Type:    ErrTypeCommunication,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewLifecycleError creates a lifecycle ordering error
func NewLifecycleError(op string, message string) error {
	return &CannonError{
		Type:    ErrTypeLifecycle,
		Op:      op,
		Message: message,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &CannonError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

func isType(err error, t ErrorType) bool {
	var e *CannonError
	return errors.As(err, &e) && e.Type == t
}

// IsDimensionError checks if an error is an invalid dimension error
func IsDimensionError(err error) bool {
	return isType(err, ErrTypeInvalidDimension)
}

// IsProcessCountError checks if an error is a degenerate process count error
func IsProcessCountError(err error) bool {
	return isType(err, ErrTypeProcessCount)
}

// IsCommunicationError checks if an error is a communication error
func IsCommunicationError(err error) bool {
	return isType(err, ErrTypeCommunication)
}

// IsLifecycleError checks if an error is a lifecycle ordering error
func IsLifecycleError(err error) bool {
	return isType(err, ErrTypeLifecycle)
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	return isType(err, ErrTypeInvalidArg)
}
