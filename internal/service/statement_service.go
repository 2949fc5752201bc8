package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/filestore"
	"statement-ingest/internal/models"
	"statement-ingest/internal/parser"
	"statement-ingest/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrStatementNotFound = errors.New("statement not found")

// maxErrorMessage bounds the failure text stored on a statement.
const maxErrorMessage = 500

type StatementStore interface {
	Create(ctx context.Context, st *models.Statement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Statement, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, parseMethod string, count int) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

type TransactionStore interface {
	ReplaceForStatement(ctx context.Context, statementID uuid.UUID, transactions []*models.Transaction) error
	GetByStatementID(ctx context.Context, statementID uuid.UUID) ([]*models.Transaction, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error)
}

type StatementParser interface {
	Parse(ctx context.Context, f parser.File) (*parser.Result, error)
}

type StatementService struct {
	statements   StatementStore
	transactions TransactionStore
	files        filestore.Store
	parser       StatementParser
	logger       *zap.Logger
}

func NewStatementService(
	statements StatementStore,
	transactions TransactionStore,
	files filestore.Store,
	p StatementParser,
	logger *zap.Logger,
) *StatementService {
	return &StatementService{
		statements:   statements,
		transactions: transactions,
		files:        files,
		parser:       p,
		logger:       logger,
	}
}

// Parse runs the parser on an uploaded file without persisting anything.
func (s *StatementService) Parse(ctx context.Context, file parser.File) (*dto.ParseStatementResponse, error) {
	result, err := s.parser.Parse(ctx, file)
	if err != nil {
		return nil, err
	}

	txs := make([]dto.TransactionResponse, len(result.Transactions))
	for i, tx := range result.Transactions {
		txs[i] = dto.NewParsedTransactionResponse(tx)
	}

	return &dto.ParseStatementResponse{
		FileName:     file.Name,
		Format:       string(result.Format),
		Method:       string(result.Method),
		Count:        len(txs),
		Transactions: txs,
	}, nil
}

// Upload stores the file and records a pending statement.
func (s *StatementService) Upload(ctx context.Context, userID uuid.UUID, fileName, contentType string, file io.Reader) (*dto.StatementResponse, error) {
	format, err := parser.DetectFormat(fileName, contentType)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := id.String() + "." + string(format)

	size, err := s.files.Save(ctx, key, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	st := &models.Statement{
		ID:          id,
		UserID:      userID,
		FileName:    filepath.Base(fileName),
		FileType:    string(format),
		ContentType: contentType,
		FileSize:    size,
		StorageKey:  key,
		Status:      models.StatementStatusPending,
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.statements.Create(ctx, st); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned file", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create statement record: %w", err)
	}

	s.logger.Info("Statement uploaded",
		zap.String("statement_id", id.String()),
		zap.String("format", string(format)),
		zap.Int64("size", size),
	)

	resp := dto.NewStatementResponse(st)
	return &resp, nil
}

// Process parses the stored file and replaces the statement's transactions.
// A parse failure marks the statement failed and is returned unchanged.
func (s *StatementService) Process(ctx context.Context, userID, statementID uuid.UUID) (*dto.ProcessStatementResponse, error) {
	st, err := s.getOwned(ctx, userID, statementID)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.String("statement_id", statementID.String()))

	data, err := s.readFile(ctx, st.StorageKey)
	if err != nil {
		s.markFailed(ctx, logger, st, err)
		return nil, err
	}

	result, err := s.parser.Parse(ctx, parser.File{
		Name:        st.FileName,
		ContentType: st.ContentType,
		Data:        data,
	})
	if err != nil {
		s.markFailed(ctx, logger, st, err)
		return nil, err
	}

	source := models.SourceCSVUpload
	if result.Format == parser.FormatPDF {
		source = models.SourcePDFUpload
	}

	now := time.Now().UTC()
	transactions := make([]*models.Transaction, len(result.Transactions))
	for i, ptx := range result.Transactions {
		transactions[i] = &models.Transaction{
			ID:          uuid.New(),
			UserID:      st.UserID,
			StatementID: st.ID,
			Date:        ptx.Date,
			Description: ptx.Description,
			Amount:      ptx.Amount,
			Type:        models.TransactionType(ptx.Type),
			Category:    ptx.Category,
			Source:      source,
			CreatedAt:   now,
		}
	}

	if err := s.transactions.ReplaceForStatement(ctx, st.ID, transactions); err != nil {
		s.markFailed(ctx, logger, st, err)
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}

	if err := s.statements.MarkProcessed(ctx, st.ID, string(result.Method), len(transactions)); err != nil {
		return nil, fmt.Errorf("failed to update statement: %w", err)
	}

	st.Status = models.StatementStatusProcessed
	st.ParseMethod = string(result.Method)
	st.TransactionCount = len(transactions)
	st.ErrorMessage = ""
	st.ProcessedAt = &now

	logger.Info("Statement processed",
		zap.String("method", string(result.Method)),
		zap.Int("transactions", len(transactions)),
	)

	resp := &dto.ProcessStatementResponse{
		Statement:    dto.NewStatementResponse(st),
		Transactions: make([]dto.TransactionResponse, len(transactions)),
	}
	for i, tx := range transactions {
		resp.Transactions[i] = dto.NewTransactionResponse(tx)
	}
	return resp, nil
}

func (s *StatementService) ListStatements(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.StatementResponse, error) {
	statements, err := s.statements.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StatementResponse, len(statements))
	for i, st := range statements {
		responses[i] = dto.NewStatementResponse(st)
	}
	return responses, nil
}

func (s *StatementService) GetStatementTransactions(ctx context.Context, userID, statementID uuid.UUID) (*dto.ListTransactionsResponse, error) {
	if _, err := s.getOwned(ctx, userID, statementID); err != nil {
		return nil, err
	}

	transactions, err := s.transactions.GetByStatementID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	return newListTransactionsResponse(transactions), nil
}

// ListTransactions returns the user's transactions with from <= date < to.
// A zero bound is open.
func (s *StatementService) ListTransactions(ctx context.Context, userID uuid.UUID, from, to time.Time) (*dto.ListTransactionsResponse, error) {
	transactions, err := s.transactions.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return newListTransactionsResponse(transactions), nil
}

func newListTransactionsResponse(transactions []*models.Transaction) *dto.ListTransactionsResponse {
	resp := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(transactions)),
		Count:        len(transactions),
	}
	for i, tx := range transactions {
		resp.Transactions[i] = dto.NewTransactionResponse(tx)
	}
	return resp
}

// getOwned loads a statement and hides statements of other users.
func (s *StatementService) getOwned(ctx context.Context, userID, statementID uuid.UUID) (*models.Statement, error) {
	st, err := s.statements.GetByID(ctx, statementID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, statementID)
	}
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, statementID)
	}
	return st, nil
}

func (s *StatementService) readFile(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.files.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", parser.ErrUnreadableFile, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", parser.ErrUnreadableFile, err)
	}
	return data, nil
}

func (s *StatementService) markFailed(ctx context.Context, logger *zap.Logger, st *models.Statement, cause error) {
	logger.Warn("Statement processing failed", zap.Error(cause))

	message := cause.Error()
	if len(message) > maxErrorMessage {
		message = strings.ToValidUTF8(message[:maxErrorMessage], "")
	}
	if err := s.statements.MarkFailed(ctx, st.ID, message); err != nil {
		logger.Error("Failed to mark statement as failed", zap.Error(err))
	}
}
