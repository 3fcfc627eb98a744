package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports an upstream that could not be reached, answered with
// a non-2xx status, rate limited the caller, or was short-circuited.
type NetworkError struct {
	URL         string
	StatusCode  int
	RateLimited bool
	Err         error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error: GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError reports a payload whose shape did not match the expected records.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: GET %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsDecodeError reports whether err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.RateLimited
}
