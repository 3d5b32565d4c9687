package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrGetFailed          ErrorCode = "GET_FAILED"
	ErrCreateFailed       ErrorCode = "CREATE_FAILED"
	ErrUpdateFailed       ErrorCode = "UPDATE_FAILED"

	// Booking consensus rejections
	ErrInvalidParticipants ErrorCode = "INVALID_PARTICIPANTS"
	ErrSlotUnavailable     ErrorCode = "SLOT_UNAVAILABLE"
	ErrGroupAlreadyBooked  ErrorCode = "GROUP_ALREADY_BOOKED"
	ErrAlreadyResolved     ErrorCode = "ALREADY_RESOLVED"
	ErrNotAMember          ErrorCode = "NOT_A_MEMBER"
	ErrNotOrganizer        ErrorCode = "NOT_ORGANIZER"
	ErrTerminalState       ErrorCode = "TERMINAL_STATE"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *AppError carrying the same code,
// so callers can write errors.Is(err, errors.New(errors.ErrNotFound)).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New returns a bare AppError for use as an errors.Is target.
func New(code ErrorCode) *AppError {
	return &AppError{Code: code}
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ae *AppError
	if errors.As(err, &ae) && ae != nil {
		return ae.Code == code
	}
	return false
}

// FromError returns err as an AppError, classifying anything foreign as internal.
func FromError(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return NewAppError(ErrInternalServer, message, err)
}
