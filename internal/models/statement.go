package models

import (
	"time"

	"github.com/google/uuid"
)

type StatementStatus string

const (
	StatementStatusPending   StatementStatus = "pending"
	StatementStatusProcessed StatementStatus = "processed"
	StatementStatusFailed    StatementStatus = "failed"
)

type Statement struct {
	ID               uuid.UUID       `db:"id"`
	UserID           uuid.UUID       `db:"user_id"`
	FileName         string          `db:"file_name"`
	FileType         string          `db:"file_type"`
	ContentType      string          `db:"content_type"`
	FileSize         int64           `db:"file_size"`
	StorageKey       string          `db:"storage_key"`
	Status           StatementStatus `db:"status"`
	ParseMethod      string          `db:"parse_method"`
	TransactionCount int             `db:"transaction_count"`
	ErrorMessage     string          `db:"error_message"`
	UploadedAt       time.Time       `db:"uploaded_at"`
	ProcessedAt      *time.Time      `db:"processed_at"`
}

// Processed mirrors the boolean flag clients of the upload API expect.
func (s *Statement) Processed() bool {
	return s.Status == StatementStatusProcessed
}
