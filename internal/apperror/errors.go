package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// Error pairs a client-facing message with one of the sentinel kinds.
// Error() returns the bare message; the kind surfaces through errors.Is.
type Error struct {
	msg  string
	kind error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func Validation(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: ErrValidation}
}

func NotFound(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: ErrNotFound}
}

func Forbidden(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: ErrForbidden}
}

func Conflict(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...), kind: ErrConflict}
}

// Status maps an error to its HTTP status code. Anything outside the
// taxonomy is a server error.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-facing message for an error. Internal
// errors are not leaked to callers.
func Message(err error) string {
	if Status(err) == fiber.StatusInternalServerError {
		return "Server error"
	}
	return err.Error()
}
