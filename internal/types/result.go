package types

// ProcessingStatus is the outcome of processing a single notification event.
// Values are ordered by severity, not by retry-worthiness.
type ProcessingStatus string

const (
	StatusSuccess     ProcessingStatus = "success"
	StatusSkipped     ProcessingStatus = "skipped"
	StatusAborted     ProcessingStatus = "aborted"
	StatusNotPossible ProcessingStatus = "not_possible"
	StatusFailure     ProcessingStatus = "failure"
)

// IsRetryable reports whether the event source should re-deliver the event.
// Only Failure qualifies; the other outcomes are terminal.
func (s ProcessingStatus) IsRetryable() bool {
	return s == StatusFailure
}

// ProcessingResult is the value returned to the transport layer.
type ProcessingResult struct {
	Status      ProcessingStatus `json:"status"`
	Description string           `json:"description"`
	Code        ErrorCode        `json:"code,omitempty"`
}

// Success builds a successful result.
func Success(description string) ProcessingResult {
	return ProcessingResult{Status: StatusSuccess, Description: description}
}

// Skipped builds a skipped result.
func Skipped(description string) ProcessingResult {
	return ProcessingResult{Status: StatusSkipped, Description: description}
}

// Failure builds a retryable result.
func Failure(description string) ProcessingResult {
	return ProcessingResult{Status: StatusFailure, Description: description}
}

// ResultFromError classifies err and builds the matching result.
func ResultFromError(err error) ProcessingResult {
	code := CodeOf(err)
	return ProcessingResult{
		Status:      code.Outcome(),
		Description: err.Error(),
		Code:        code,
	}
}
