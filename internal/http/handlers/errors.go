package handlers

// Stable error codes for failures that are not part of the token or
// recording-rule taxonomies.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "request_too_large"
	ErrCodeInternal         = "internal_error"
)
