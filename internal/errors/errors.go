package errors

import "fmt"

// ErrorCode represents a pipeline error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrInsufficientInput ErrorCode = "INSUFFICIENT_INPUT"  // 422
	ErrNoResponse        ErrorCode = "NO_RESPONSE"         // 502
	ErrParseFailure      ErrorCode = "PARSE_FAILURE"       // 422 (soft: zero codes)
	ErrDialogNotFound    ErrorCode = "DIALOG_NOT_FOUND"    // 404
	ErrNoClinicalContent ErrorCode = "NO_CLINICAL_CONTENT" // 404
	ErrFieldNotFound     ErrorCode = "FIELD_NOT_FOUND"     // 404 (soft: skip field)
	ErrLoginFailed       ErrorCode = "LOGIN_FAILED"        // 401
	ErrNavigationFailed  ErrorCode = "NAVIGATION_FAILED"   // 502
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// PipelineError represents a structured error with code, status, and details.
type PipelineError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInsufficientInput creates an error for clinical notes below the usability floor.
func NewInsufficientInput(minChars, actual int) *PipelineError {
	return &PipelineError{
		Code:    ErrInsufficientInput,
		Status:  422,
		Message: fmt.Sprintf("clinical notes too short for prediction: %d chars (min %d)", actual, minChars),
		Details: map[string]any{"min_chars": minChars, "actual_chars": actual},
	}
}

// NewNoResponse creates an error for a prediction service that returned no text
// on the final retry attempt.
func NewNoResponse(attempts int) *PipelineError {
	return &PipelineError{
		Code:    ErrNoResponse,
		Status:  502,
		Message: fmt.Sprintf("prediction service returned no text after %d attempts", attempts),
		Details: map[string]any{"attempts": attempts},
	}
}

// NewParseFailure creates an error for a response with no recognizable coding payload.
func NewParseFailure(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrParseFailure,
		Status:  422,
		Message: msg,
	}
}

// NewDialogNotFound creates an error for a notes dialog that could not be opened.
func NewDialogNotFound() *PipelineError {
	return &PipelineError{
		Code:    ErrDialogNotFound,
		Status:  404,
		Message: "could not open the progress notes dialog",
	}
}

// NewNoClinicalContent creates an error for a frame scan that matched no clinical markers.
func NewNoClinicalContent(framesScanned int) *PipelineError {
	return &PipelineError{
		Code:    ErrNoClinicalContent,
		Status:  404,
		Message: "no clinical content found in any embedded frame",
		Details: map[string]any{"frames_scanned": framesScanned},
	}
}

// NewFieldNotFound creates an error for a form field that matched no candidate selector.
func NewFieldNotFound(field string) *PipelineError {
	return &PipelineError{
		Code:    ErrFieldNotFound,
		Status:  404,
		Message: fmt.Sprintf("form field not found: %s", field),
		Details: map[string]any{"field": field},
	}
}

// NewLoginFailed creates an error for a failed EHR login.
func NewLoginFailed(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrLoginFailed,
		Status:  401,
		Message: msg,
	}
}

// NewNavigationFailed creates an error for a navigation step that could not complete.
func NewNavigationFailed(step string) *PipelineError {
	return &PipelineError{
		Code:    ErrNavigationFailed,
		Status:  502,
		Message: fmt.Sprintf("navigation step failed: %s", step),
		Details: map[string]any{"step": step},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PipelineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PipelineError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a PipelineError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Code == code
	}
	return false
}
