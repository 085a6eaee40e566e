package questiongen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorKind classifies a ServiceError.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindServerError     ErrorKind = "server_error"
	KindAPIError        ErrorKind = "api_error"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindEmptyResponse   ErrorKind = "empty_response"
)

// ServiceError is a definitive failure reported by the generation service.
// Unlike a ConnectivityError it is surfaced to the user.
type ServiceError struct {
	Kind   ErrorKind
	Status int
	Body   string
	Err    error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case KindServerError:
		return "Server error. Our AI service might be busy. Please try again."
	case KindEmptyResponse:
		return "No questions were generated. The content might be too short or complex."
	case KindInvalidResponse:
		if e.Err != nil {
			return fmt.Sprintf("Invalid response from question service: %v", e.Err)
		}
		return "Invalid response from question service."
	default:
		body := e.Body
		if len(body) > 100 {
			body = body[:100]
		}
		return fmt.Sprintf("API Error (%d): %s", e.Status, body)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ConnectivityError means the service could not be reached at all.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("question service unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is a reachability failure: a dial or
// transport error, a timeout, or an explicit ConnectivityError.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	var ce *ConnectivityError
	if errors.As(err, &ce) {
		return true
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func statusError(status int, body []byte) *ServiceError {
	e := &ServiceError{Status: status, Body: string(body)}
	switch {
	case status == 429:
		e.Kind = KindRateLimited
	case status == 500:
		e.Kind = KindServerError
	default:
		e.Kind = KindAPIError
	}
	return e
}
