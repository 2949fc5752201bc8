package parser

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFileType   = errors.New("unsupported file type: only CSV and PDF statements are accepted")
	ErrNoTransactionsFound   = errors.New("no transactions found in statement")
	ErrUnreadableFile        = errors.New("statement file could not be read")
	ErrConfiguration         = errors.New("AI extraction is not configured: missing API key")
	ErrEmptyResponse         = errors.New("AI service returned an empty response")
	ErrAIResponseUnparseable = errors.New("AI response could not be parsed as transactions")
)

// ServiceError is returned when the completion service answers with a
// non-success status.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("AI service error: status %d: %s", e.StatusCode, e.Body)
}
