package github

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the API failure taxonomy. Callers classify failures
// with errors.Is instead of inspecting raw status codes.
var (
	// ErrNotFound means the repository, branch, folder or file does not exist
	ErrNotFound = errors.New("not found on GitHub")

	// ErrRateLimited means GitHub rejected the request with 403, which for
	// unauthenticated API access almost always means the rate limit
	ErrRateLimited = errors.New("GitHub API rate limit exceeded")

	// ErrAuthRequired means the resource needs authentication (private repo)
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnsupportedEncoding means the blob endpoint returned content in an
	// encoding other than base64
	ErrUnsupportedEncoding = errors.New("unsupported blob encoding")
)

// APIError carries the HTTP status of a failed API request together with
// the request URL. Unwrap maps well-known statuses onto the sentinel
// errors above so errors.Is keeps working through wrapping.
type APIError struct {
	StatusCode int
	URL        string
}

// Error returns a human readable description of the failure.
func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("%v (HTTP 401 for %s)", ErrAuthRequired, e.URL)
	case http.StatusForbidden:
		return fmt.Sprintf("%v (HTTP 403 for %s)", ErrRateLimited, e.URL)
	case http.StatusNotFound:
		return fmt.Sprintf("%v (HTTP 404 for %s)", ErrNotFound, e.URL)
	default:
		return fmt.Sprintf("GitHub API request failed with HTTP %d for %s", e.StatusCode, e.URL)
	}
}

// Unwrap returns the sentinel matching the status code, or nil for
// statuses outside the taxonomy.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthRequired
	case http.StatusForbidden:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}
