// Package errs defines the error taxonomy shared by the request engine.
//
// Every failure returned by the engine wraps one of the sentinel errors below,
// so callers classify with errors.Is. Failures that carry a payload (HTTP
// status, decoded body, unexpected media status) are typed and recovered with
// errors.As.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Categories.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrInput         = errors.New("invalid input")
	ErrTransport     = errors.New("transport error")
	ErrDecode        = errors.New("decode error")
)

// Configuration errors.
var (
	ErrUnknownOperation       = fmt.Errorf("%w: unknown operation", ErrConfiguration)
	ErrUnresolvedPathTemplate = fmt.Errorf("%w: unresolved path template", ErrConfiguration)
	ErrUnsupportedMethod      = fmt.Errorf("%w: unsupported method", ErrConfiguration)
	ErrUnsupportedContentType = fmt.Errorf("%w: unsupported request content types", ErrConfiguration)
	ErrInvalidCommandTree     = fmt.Errorf("%w: invalid command tree", ErrConfiguration)
	ErrPaginationUnsupported  = fmt.Errorf("%w: pagination only supported for GET", ErrConfiguration)
	ErrBodyNotAllowed         = fmt.Errorf("%w: request body not allowed", ErrConfiguration)
)

// Input errors.
var (
	ErrMissingRequiredParam = fmt.Errorf("%w: missing required path param", ErrInput)
	ErrMissingBody          = fmt.Errorf("%w: request body required", ErrInput)
	ErrUnexpectedBody       = fmt.Errorf("%w: request body not supported for this operation", ErrInput)
	ErrSourceNotFound       = fmt.Errorf("%w: source not found", ErrInput)
)

// Credential errors.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Response and workflow errors.
var (
	ErrEmptyErrorResponse         = errors.New("empty error response")
	ErrMalformedPaginatedResponse = errors.New("expected paginated response with items[]")
	ErrMalformedRegistration      = errors.New("malformed media registration")
	ErrProcessingFailed           = errors.New("media processing failed")
	ErrProcessingTimeout          = errors.New("media processing timeout")
)

// APIError is a non-2xx response whose body decoded as JSON.
type APIError struct {
	Operation string
	Status    int
	Body      any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	body, err := json.Marshal(e.Body)
	if err != nil {
		body = []byte(fmt.Sprintf("%v", e.Body))
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s: http %d: %s", e.Operation, e.Status, body)
	}
	return fmt.Sprintf("http %d: %s", e.Status, body)
}

// UploadFailedError is a non-2xx response from the object-storage upload.
type UploadFailedError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload failed (http %d): %s", e.Status, e.Body)
}

// UnexpectedStatusError is a media status outside the known lifecycle.
type UnexpectedStatusError struct {
	Status string
}

// Error implements the error interface.
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("media status: %s", e.Status)
}

// IsAPIError reports whether err wraps an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
