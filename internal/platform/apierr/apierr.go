package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/quidz-backend/internal/pkg/errors"
)

// Error carries the HTTP status and machine-readable code for a failure.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel that corresponds to the status.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Status {
	case http.StatusNotFound:
		return target == pkgerrors.ErrNotFound
	case http.StatusUnauthorized:
		return target == pkgerrors.ErrUnauthorized
	case http.StatusForbidden:
		return target == pkgerrors.ErrForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return target == pkgerrors.ErrInvalidArgument
	case http.StatusConflict:
		return target == pkgerrors.ErrConflict
	case http.StatusServiceUnavailable:
		return target == pkgerrors.ErrUnavailable
	}
	return false
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Unauthorized(code string) *Error {
	return New(http.StatusUnauthorized, code, errors.New(code))
}

func NotFound(code string) *Error {
	return New(http.StatusNotFound, code, errors.New(code))
}

func Forbidden(code string) *Error {
	return New(http.StatusForbidden, code, errors.New(code))
}

func Conflict(code string, err error) *Error {
	if err == nil {
		err = errors.New(code)
	}
	return New(http.StatusConflict, code, err)
}

func Unavailable(feature string) *Error {
	return New(http.StatusServiceUnavailable, "feature_unavailable", fmt.Errorf("%s is not configured", feature))
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}
