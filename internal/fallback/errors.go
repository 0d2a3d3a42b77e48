package fallback

import (
	"errors"
	"fmt"
	"net/http"

	"homebase/internal/apperr"
	"homebase/internal/gateway"
)

// RemoteUnavailableError means the remote could not be reached or reported
// itself unable to serve (503/504).
type RemoteUnavailableError struct {
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: %v", e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// RemoteRejectedError is a well-formed request the remote refused with a 4xx
// status other than 404.
type RemoteRejectedError struct {
	StatusCode int
	Message    string
	Details    []apperr.FieldError
	Err        error
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("remote rejected request (status %d): %s", e.StatusCode, e.Message)
}

func (e *RemoteRejectedError) Unwrap() error { return e.Err }

// TotalFailureError is returned by a write when both the remote and the local
// store failed.
type TotalFailureError struct {
	Op     string
	Remote error
	Local  error
}

func (e *TotalFailureError) Error() string {
	return fmt.Sprintf("%s failed on both tiers: remote: %v; local: %v", e.Op, e.Remote, e.Local)
}

func (e *TotalFailureError) Unwrap() []error { return []error{e.Remote, e.Local} }

// classify maps a gateway failure onto the error taxonomy. Failures that are
// neither unavailable nor rejected are returned unchanged.
func classify(err error) error {
	re, ok := gateway.AsRemoteError(err)
	if !ok {
		return &RemoteUnavailableError{Err: err}
	}
	switch {
	case re.Kind == gateway.KindTransport:
		return &RemoteUnavailableError{Err: err}
	case re.StatusCode == http.StatusServiceUnavailable, re.StatusCode == http.StatusGatewayTimeout:
		return &RemoteUnavailableError{Err: err}
	case re.StatusCode >= 400 && re.StatusCode < 500:
		return &RemoteRejectedError{StatusCode: re.StatusCode, Message: re.Message, Details: re.Details, Err: err}
	default:
		return err
	}
}

func isRemoteNotFound(err error) bool {
	re, ok := gateway.AsRemoteError(err)
	return ok && re.Kind == gateway.KindHTTP && re.StatusCode == http.StatusNotFound
}

// IsUnavailable reports whether err is, or wraps, a *RemoteUnavailableError.
func IsUnavailable(err error) bool {
	var u *RemoteUnavailableError
	return errors.As(err, &u)
}

// IsRejected reports whether err is, or wraps, a *RemoteRejectedError.
func IsRejected(err error) bool {
	var r *RemoteRejectedError
	return errors.As(err, &r)
}
