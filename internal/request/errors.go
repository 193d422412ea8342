package request

import (
	"errors"
	"fmt"
)

const (
	// NoticeRequestFailed is shown when a failure carries no message of its own.
	NoticeRequestFailed = "Request failed"
	// errRequestFallback is the error text when a failed envelope has no message.
	errRequestFallback = "request error"
)

// APIError is an envelope that came back with a code other than CodeSuccess.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// SessionExpired reports whether the code is one of the re-authentication codes.
func (e *APIError) SessionExpired() bool {
	return IsReauthCode(e.Code)
}

// IsSessionExpired reports whether err is an APIError with a re-authentication code.
func IsSessionExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.SessionExpired()
}

// StatusError is a non-2xx response whose body was not an envelope.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// DecodeError means a success envelope's data did not fit the requested type.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s data: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
