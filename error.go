package freeze

import (
	"errors"
	"fmt"
)

// Generic error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
)

// Crawl engine error codes.
const (
	// EINVALIDURL is returned when a URL cannot be parsed or resolved to an
	// absolute http(s) URL.
	EINVALIDURL = "invalid_url"

	// ENOTDISCOVERED is returned when a frontier transition is requested for
	// a URL that is not pending.
	ENOTDISCOVERED = "not_discovered"

	// ENOTFAILED is returned when rediscovering a URL that is not failed.
	ENOTFAILED = "not_failed"

	// EFETCH is returned for network errors, timeouts and non-2xx responses.
	EFETCH = "fetch_failed"

	EALREADYSTARTED  = "already_started"
	ENOTSTARTED      = "not_started"
	ECRAWLINPROGRESS = "crawl_in_progress"
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("freeze error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
