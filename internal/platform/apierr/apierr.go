package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidQuestionIndex = "invalid_question_index"
	CodeNoSuitableQuestion   = "no_suitable_question"
	CodeUpstreamUnavailable  = "upstream_unavailable"
)

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

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidRequest(msg string) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, errors.New(msg))
}

func InvalidQuestionIndex() *Error {
	return New(http.StatusBadRequest, CodeInvalidQuestionIndex, errors.New("Invalid question index"))
}

func NoSuitableQuestion() *Error {
	return New(http.StatusBadRequest, CodeNoSuitableQuestion, errors.New("No suitable question found"))
}

// UpstreamUnavailable wraps a failed provider call. The detail names the
// deployment but not the provider's error body.
func UpstreamUnavailable(key string, err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamUnavailable, &upstreamError{key: key, err: err})
}

type upstreamError struct {
	key string
	err error
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("deployment %q unavailable", e.key)
}

func (e *upstreamError) Unwrap() error { return e.err }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err carries an *Error with the given code.
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
