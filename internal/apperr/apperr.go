// Package apperr holds the error types shared by the webhook client, the
// response extractor and the HTTP layer. Handlers classify failures with
// errors.As against these types.
package apperr

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// TransportError is a network failure reaching a remote endpoint.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamHTTPError is a non-2xx answer from a remote endpoint.
type UpstreamHTTPError struct {
	Status  int
	Message string
	Body    string
}

func (e *UpstreamHTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.Status, e.Message)
}

// MalformedResponseError is a 2xx answer whose body none of the extraction
// rules understand.
type MalformedResponseError struct {
	Reason  string
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	if e.Snippet == "" {
		return "malformed upstream response: " + e.Reason
	}
	return fmt.Sprintf("malformed upstream response: %s (body: %s)", e.Reason, e.Snippet)
}

type NoImageURLError struct {
	Snippet string
}

func (e *NoImageURLError) Error() string {
	if e.Snippet == "" {
		return "no image URL in response"
	}
	return "no image URL in response: " + e.Snippet
}

// NoProcessedImageError is returned when an upload/modify response carries no
// usable image. Empty marks the "workflow ran but produced nothing" case.
type NoProcessedImageError struct {
	Empty   bool
	Snippet string
}

func (e *NoProcessedImageError) Error() string {
	if e.Empty {
		return "workflow completed but returned no data, check the n8n workflow configuration"
	}
	if e.Snippet == "" {
		return "no processed image data in response"
	}
	return "no processed image data in response, response structure: " + e.Snippet
}

type ValidationError struct {
	Field   string
	Message string
	// TooLarge marks payloads rejected by the upload ceiling.
	TooLarge bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsUpstream reports whether err originates from a remote endpoint rather than
// from this service.
func IsUpstream(err error) bool {
	var (
		transport *TransportError
		upstream  *UpstreamHTTPError
		malformed *MalformedResponseError
		noURL     *NoImageURLError
		noImage   *NoProcessedImageError
	)
	return errors.As(err, &transport) ||
		errors.As(err, &upstream) ||
		errors.As(err, &malformed) ||
		errors.As(err, &noURL) ||
		errors.As(err, &noImage)
}

// Truncate shortens s to at most n bytes for log lines and error snippets.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
