package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a bot error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrEmptyInput      ErrorCode = "EMPTY_INPUT"      // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrNoMatch         ErrorCode = "NO_MATCH"         // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrInvalidCategory ErrorCode = "INVALID_CATEGORY" // 422
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// BotError represents a structured error with code, status, and details.
type BotError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *BotError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *BotError {
	return &BotError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewEmptyInput creates a 400 error for input that is empty after trimming.
// Chat transports treat it as "no reply".
func NewEmptyInput() *BotError {
	return &BotError{
		Code:    ErrEmptyInput,
		Status:  400,
		Message: "input is empty",
	}
}

// NewNotFound creates a 404 error for a list position that does not exist.
func NewNotFound(list string, position int) *BotError {
	return &BotError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no item at position %d in list %q", position, list),
		Details: map[string]any{"list": list, "position": position},
	}
}

// NewNoMatch creates a 404 error when a done-marker matched no open item.
func NewNoMatch(match string) *BotError {
	return &BotError{
		Code:    ErrNoMatch,
		Status:  404,
		Message: fmt.Sprintf("no open item matches %q", match),
		Details: map[string]any{"match": match},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *BotError {
	return &BotError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInvalidCategory creates a 422 error for a category outside the fixed set.
func NewInvalidCategory(name string, valid []string) *BotError {
	return &BotError{
		Code:    ErrInvalidCategory,
		Status:  422,
		Message: fmt.Sprintf("unknown category %q (valid: %s)", name, strings.Join(valid, ", ")),
		Details: map[string]any{"category": name, "valid_categories": valid},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *BotError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &BotError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a BotError with the given code.
func Is(err error, code ErrorCode) bool {
	var bErr *BotError
	if stderrors.As(err, &bErr) {
		return bErr.Code == code
	}
	return false
}

// As returns the BotError wrapped by err, if any.
func As(err error) (*BotError, bool) {
	var bErr *BotError
	if stderrors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}
