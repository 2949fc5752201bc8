package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"statement-ingest/internal/filestore"
	"statement-ingest/internal/models"
	"statement-ingest/internal/parser"
	"statement-ingest/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStatementStore struct {
	CreateFunc        func(ctx context.Context, st *models.Statement) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.Statement, error)
	ListByUserIDFunc  func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Statement, error)
	MarkProcessedFunc func(ctx context.Context, id uuid.UUID, parseMethod string, count int) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID, message string) error
}

func (m *mockStatementStore) Create(ctx context.Context, st *models.Statement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, st)
	}
	return nil
}

func (m *mockStatementStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStatementStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Statement, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockStatementStore) MarkProcessed(ctx context.Context, id uuid.UUID, parseMethod string, count int) error {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, id, parseMethod, count)
	}
	return nil
}

func (m *mockStatementStore) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, message)
	}
	return nil
}

type mockTransactionStore struct {
	ReplaceForStatementFunc func(ctx context.Context, statementID uuid.UUID, transactions []*models.Transaction) error
	GetByStatementIDFunc    func(ctx context.Context, statementID uuid.UUID) ([]*models.Transaction, error)
	ListByUserIDFunc        func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error)
}

func (m *mockTransactionStore) ReplaceForStatement(ctx context.Context, statementID uuid.UUID, transactions []*models.Transaction) error {
	if m.ReplaceForStatementFunc != nil {
		return m.ReplaceForStatementFunc(ctx, statementID, transactions)
	}
	return nil
}

func (m *mockTransactionStore) GetByStatementID(ctx context.Context, statementID uuid.UUID) ([]*models.Transaction, error) {
	if m.GetByStatementIDFunc != nil {
		return m.GetByStatementIDFunc(ctx, statementID)
	}
	return nil, nil
}

func (m *mockTransactionStore) ListByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, from, to)
	}
	return nil, nil
}

const sampleCSV = "Date,Description,Amount\n" +
	"2024-01-05,SWIGGY ORDER 1234,-450.00\n" +
	"2024-01-06,SALARY CREDIT,50000.00\n"

func newTestService(t *testing.T, statements *mockStatementStore, transactions *mockTransactionStore) (*StatementService, filestore.Store) {
	t.Helper()
	files, err := filestore.NewLocal(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	p := parser.New(parser.WithLogger(zap.NewNop()))
	return NewStatementService(statements, transactions, files, p, zap.NewNop()), files
}

func TestStatementService_Parse(t *testing.T) {
	svc, _ := newTestService(t, &mockStatementStore{}, &mockTransactionStore{})

	resp, err := svc.Parse(context.Background(), parser.File{
		Name: "january.csv",
		Data: []byte(sampleCSV),
	})
	require.NoError(t, err)

	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, "csv", resp.Method)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "2024-01-05", resp.Transactions[0].Date)
	assert.Equal(t, "expense", resp.Transactions[0].Type)
	assert.Equal(t, "Food", resp.Transactions[0].Category)
	assert.True(t, resp.Transactions[0].Amount.Equal(decimal.RequireFromString("450")))
	assert.Equal(t, "income", resp.Transactions[1].Type)
}

func TestStatementService_Parse_Unsupported(t *testing.T) {
	svc, _ := newTestService(t, &mockStatementStore{}, &mockTransactionStore{})

	_, err := svc.Parse(context.Background(), parser.File{Name: "statement.xlsx", Data: []byte("x")})
	assert.ErrorIs(t, err, parser.ErrUnsupportedFileType)
}

func TestStatementService_Upload(t *testing.T) {
	userID := uuid.New()
	var created *models.Statement
	statements := &mockStatementStore{
		CreateFunc: func(_ context.Context, st *models.Statement) error {
			created = st
			return nil
		},
	}
	svc, files := newTestService(t, statements, &mockTransactionStore{})

	resp, err := svc.Upload(context.Background(), userID, "january.csv", "text/csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, models.StatementStatusPending, created.Status)
	assert.Equal(t, "csv", created.FileType)
	assert.EqualValues(t, len(sampleCSV), created.FileSize)
	assert.Equal(t, created.ID.String()+".csv", created.StorageKey)
	assert.False(t, resp.Processed)

	rc, err := files.Open(context.Background(), created.StorageKey)
	require.NoError(t, err)
	rc.Close()
}

func TestStatementService_Upload_RejectsUnsupportedBeforeStoring(t *testing.T) {
	statements := &mockStatementStore{
		CreateFunc: func(context.Context, *models.Statement) error {
			t.Fatal("statement must not be recorded")
			return nil
		},
	}
	svc, _ := newTestService(t, statements, &mockTransactionStore{})

	_, err := svc.Upload(context.Background(), uuid.New(), "photo.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, parser.ErrUnsupportedFileType)
}

func TestStatementService_Upload_RemovesFileWhenRecordFails(t *testing.T) {
	var key string
	statements := &mockStatementStore{
		CreateFunc: func(_ context.Context, st *models.Statement) error {
			key = st.StorageKey
			return errors.New("db down")
		},
	}
	svc, files := newTestService(t, statements, &mockTransactionStore{})

	_, err := svc.Upload(context.Background(), uuid.New(), "january.csv", "", strings.NewReader(sampleCSV))
	require.Error(t, err)

	_, err = files.Open(context.Background(), key)
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}

func storedStatement(t *testing.T, files filestore.Store, userID uuid.UUID, name, content string) *models.Statement {
	t.Helper()
	st := &models.Statement{
		ID:         uuid.New(),
		UserID:     userID,
		FileName:   name,
		StorageKey: uuid.NewString() + "-" + name,
		Status:     models.StatementStatusPending,
		UploadedAt: time.Now(),
	}
	_, err := files.Save(context.Background(), st.StorageKey, strings.NewReader(content))
	require.NoError(t, err)
	return st
}

func TestStatementService_Process(t *testing.T) {
	userID := uuid.New()
	statements := &mockStatementStore{}
	var replaced []*models.Transaction
	var marked struct {
		method string
		count  int
	}
	transactions := &mockTransactionStore{
		ReplaceForStatementFunc: func(_ context.Context, _ uuid.UUID, txs []*models.Transaction) error {
			replaced = txs
			return nil
		},
	}
	svc, files := newTestService(t, statements, transactions)
	st := storedStatement(t, files, userID, "january.csv", sampleCSV)

	statements.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*models.Statement, error) {
		assert.Equal(t, st.ID, id)
		return st, nil
	}
	statements.MarkProcessedFunc = func(_ context.Context, id uuid.UUID, method string, count int) error {
		marked.method, marked.count = method, count
		return nil
	}
	statements.MarkFailedFunc = func(context.Context, uuid.UUID, string) error {
		t.Fatal("statement must not be marked failed")
		return nil
	}

	resp, err := svc.Process(context.Background(), userID, st.ID)
	require.NoError(t, err)

	require.Len(t, replaced, 2)
	for _, tx := range replaced {
		assert.Equal(t, st.ID, tx.StatementID)
		assert.Equal(t, userID, tx.UserID)
		assert.Equal(t, models.SourceCSVUpload, tx.Source)
		assert.False(t, tx.Amount.IsNegative())
	}
	assert.Equal(t, "csv", marked.method)
	assert.Equal(t, 2, marked.count)

	assert.True(t, resp.Statement.Processed)
	assert.Equal(t, 2, resp.Statement.TransactionCount)
	assert.Len(t, resp.Transactions, 2)
}

func TestStatementService_Process_MarksFailed(t *testing.T) {
	userID := uuid.New()
	statements := &mockStatementStore{}
	svc, files := newTestService(t, statements, &mockTransactionStore{
		ReplaceForStatementFunc: func(context.Context, uuid.UUID, []*models.Transaction) error {
			t.Fatal("nothing should be persisted")
			return nil
		},
	})
	st := storedStatement(t, files, userID, "empty.csv", "Date,Description,Amount\n")

	var failure string
	statements.GetByIDFunc = func(context.Context, uuid.UUID) (*models.Statement, error) { return st, nil }
	statements.MarkFailedFunc = func(_ context.Context, _ uuid.UUID, message string) error {
		failure = message
		return nil
	}

	_, err := svc.Process(context.Background(), userID, st.ID)
	assert.ErrorIs(t, err, parser.ErrNoTransactionsFound)
	assert.Equal(t, parser.ErrNoTransactionsFound.Error(), failure)
}

func TestStatementService_Process_MissingFile(t *testing.T) {
	userID := uuid.New()
	st := &models.Statement{ID: uuid.New(), UserID: userID, FileName: "a.csv", StorageKey: "missing.csv"}
	failed := false
	statements := &mockStatementStore{
		GetByIDFunc:    func(context.Context, uuid.UUID) (*models.Statement, error) { return st, nil },
		MarkFailedFunc: func(context.Context, uuid.UUID, string) error { failed = true; return nil },
	}
	svc, _ := newTestService(t, statements, &mockTransactionStore{})

	_, err := svc.Process(context.Background(), userID, st.ID)
	assert.ErrorIs(t, err, parser.ErrUnreadableFile)
	assert.ErrorIs(t, err, filestore.ErrNotFound)
	assert.True(t, failed)
}

func TestStatementService_OwnershipHidden(t *testing.T) {
	owner := uuid.New()
	st := &models.Statement{ID: uuid.New(), UserID: owner}
	statements := &mockStatementStore{
		GetByIDFunc: func(context.Context, uuid.UUID) (*models.Statement, error) { return st, nil },
	}
	svc, _ := newTestService(t, statements, &mockTransactionStore{})

	_, err := svc.Process(context.Background(), uuid.New(), st.ID)
	assert.ErrorIs(t, err, ErrStatementNotFound)

	_, err = svc.GetStatementTransactions(context.Background(), uuid.New(), st.ID)
	assert.ErrorIs(t, err, ErrStatementNotFound)
}

func TestStatementService_NotFound(t *testing.T) {
	svc, _ := newTestService(t, &mockStatementStore{}, &mockTransactionStore{})

	_, err := svc.Process(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrStatementNotFound)
}

func TestStatementService_ListTransactions(t *testing.T) {
	userID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	transactions := &mockTransactionStore{
		ListByUserIDFunc: func(_ context.Context, gotUser uuid.UUID, gotFrom, gotTo time.Time) ([]*models.Transaction, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, from, gotFrom)
			assert.Equal(t, to, gotTo)
			return []*models.Transaction{{
				ID:          uuid.New(),
				UserID:      userID,
				Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				Description: "UBER TRIP",
				Amount:      decimal.RequireFromString("230.50"),
				Type:        models.TransactionTypeExpense,
				Category:    "Transport",
				Source:      models.SourcePDFUpload,
			}}, nil
		},
	}
	svc, _ := newTestService(t, &mockStatementStore{}, transactions)

	resp, err := svc.ListTransactions(context.Background(), userID, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "2024-01-10", resp.Transactions[0].Date)
	assert.Equal(t, "pdf_upload", resp.Transactions[0].Source)
	assert.Equal(t, "230.5", resp.Transactions[0].Amount.String())
}
