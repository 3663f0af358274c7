package usecase

import "errors"

// Error taxonomy used across the marketplace flow. Handlers map each type to
// a status code; everything unexpected becomes an InternalError so a lookup
// fault is never presented to the buyer as empty stock.

type NoContentError struct {
	Message string
}

func (e *NoContentError) Error() string { return e.Message }

func NoContent(msg string) error { return &NoContentError{Message: msg} }

func IsNoContent(err error) bool {
	var e *NoContentError
	return errors.As(err, &e)
}

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func BadRequest(msg string) error { return &BadRequestError{Message: msg} }

func IsBadRequest(err error) bool {
	var e *BadRequestError
	return errors.As(err, &e)
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(msg string) error { return &ForbiddenError{Message: msg} }

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(msg string) error { return &ConflictError{Message: msg} }

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// InternalError covers unexpected failures, including any worker that misses
// its rendezvous timeout in the fan-out paths.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *InternalError) Unwrap() error { return e.Err }

func Internal(msg string, err error) error { return &InternalError{Message: msg, Err: err} }

func IsInternal(err error) bool {
	var e *InternalError
	return errors.As(err, &e)
}
