package pipeline

import "fmt"

// ExtractionError means the PDF bytes could not be turned into text.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SummarizationError means the language model call failed.
type SummarizationError struct {
	FileName string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s: %v", e.FileName, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// DeliveryError means neither the channel post nor the DM fallback landed.
type DeliveryError struct {
	FileName string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver summary for %s: %v", e.FileName, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
