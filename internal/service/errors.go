package service

import "fmt"

// ErrorCategory is the closed taxonomy surfaced to callers. Handlers map a
// PipelineError to the {success:false, category, message, details} envelope;
// nothing in the pipeline retries automatically.
type ErrorCategory string

const (
	CategoryNotAMeme             ErrorCategory = "not_a_meme"
	CategoryServiceNotConfigured ErrorCategory = "service_not_configured"
	CategoryRateLimited          ErrorCategory = "rate_limited"
	CategoryInvalidResponse      ErrorCategory = "invalid_response"
	CategoryInvalidImage         ErrorCategory = "invalid_image"
	CategoryNetworkError         ErrorCategory = "network_error"
	CategoryStorageError         ErrorCategory = "storage_error"
	CategoryUnknown              ErrorCategory = "unknown"
)

// PipelineError is a categorized failure from the analysis pipeline.
type PipelineError struct {
	Category ErrorCategory
	Message  string
	Details  string
	Err      error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the wrapped error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newPipelineError(category ErrorCategory, message, details string, err error) *PipelineError {
	return &PipelineError{Category: category, Message: message, Details: details, Err: err}
}

// CategoryOf extracts the error category, defaulting to unknown.
// Parameters:
//   - err: any error.
//
// Returns:
//   - ErrorCategory: the categorized failure kind.
func CategoryOf(err error) ErrorCategory {
	if pe, ok := err.(*PipelineError); ok {
		return pe.Category
	}
	return CategoryUnknown
}
