package dto

import (
	"time"

	"statement-ingest/internal/models"
)

type StatementResponse struct {
	ID               string `json:"id"`
	FileName         string `json:"file_name" example:"january.csv"`
	FileType         string `json:"file_type" example:"csv"`
	FileSize         int64  `json:"file_size"`
	Status           string `json:"status" example:"processed"`
	Processed        bool   `json:"processed"`
	ParseMethod      string `json:"parse_method,omitempty" example:"csv"`
	TransactionCount int    `json:"transaction_count"`
	ErrorMessage     string `json:"error_message,omitempty"`
	UploadedAt       string `json:"uploaded_at"`
	ProcessedAt      string `json:"processed_at,omitempty"`
}

func NewStatementResponse(st *models.Statement) StatementResponse {
	resp := StatementResponse{
		ID:               st.ID.String(),
		FileName:         st.FileName,
		FileType:         st.FileType,
		FileSize:         st.FileSize,
		Status:           string(st.Status),
		Processed:        st.Processed(),
		ParseMethod:      st.ParseMethod,
		TransactionCount: st.TransactionCount,
		ErrorMessage:     st.ErrorMessage,
		UploadedAt:       st.UploadedAt.Format(time.RFC3339),
	}
	if st.ProcessedAt != nil {
		resp.ProcessedAt = st.ProcessedAt.Format(time.RFC3339)
	}
	return resp
}

type ProcessStatementResponse struct {
	Statement    StatementResponse     `json:"statement"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ParseStatementResponse is returned by the dry-run parse endpoint.
type ParseStatementResponse struct {
	FileName     string                `json:"file_name"`
	Format       string                `json:"format" example:"pdf"`
	Method       string                `json:"method" example:"pdf_heuristic"`
	Count        int                   `json:"count"`
	Transactions []TransactionResponse `json:"transactions"`
}
