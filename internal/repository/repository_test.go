package repository

import (
	"context"
	"testing"
	"time"

	"statement-ingest/internal/models"
	pgstore "statement-ingest/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("statements"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pgstore.Migrate(ctx, pool))
	return pool
}

func newStatement(userID uuid.UUID, name string, uploaded time.Time) *models.Statement {
	return &models.Statement{
		ID:         uuid.New(),
		UserID:     userID,
		FileName:   name,
		FileType:   "csv",
		StorageKey: uuid.NewString() + ".csv",
		Status:     models.StatementStatusPending,
		UploadedAt: uploaded,
	}
}

func newTransaction(st *models.Statement, date time.Time, desc, amount string, typ models.TransactionType) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		UserID:      st.UserID,
		StatementID: st.ID,
		Date:        date,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    "Uncategorized",
		Source:      models.SourceCSVUpload,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRepositories(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	statements := NewStatementRepository(pool, logger)
	transactions := NewTransactionRepository(pool, logger)

	userID := uuid.New()
	older := newStatement(userID, "dec.csv", time.Now().Add(-time.Hour).UTC())
	st := newStatement(userID, "jan.csv", time.Now().UTC())
	require.NoError(t, statements.Create(ctx, older))
	require.NoError(t, statements.Create(ctx, st))

	t.Run("get and list", func(t *testing.T) {
		got, err := statements.GetByID(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, "jan.csv", got.FileName)
		assert.Equal(t, models.StatementStatusPending, got.Status)
		assert.Nil(t, got.ProcessedAt)

		list, err := statements.ListByUserID(ctx, userID, 10, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, st.ID, list[0].ID)

		_, err = statements.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("replace and query transactions", func(t *testing.T) {
		jan15 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
		feb01 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

		first := []*models.Transaction{newTransaction(st, jan15, "Zomato", "250.00", models.TransactionTypeExpense)}
		require.NoError(t, transactions.ReplaceForStatement(ctx, st.ID, first))

		second := []*models.Transaction{
			newTransaction(st, jan15, "Zomato", "250.00", models.TransactionTypeExpense),
			newTransaction(st, feb01, "Salary", "50000.00", models.TransactionTypeIncome),
		}
		require.NoError(t, transactions.ReplaceForStatement(ctx, st.ID, second))

		got, err := transactions.GetByStatementID(ctx, st.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, decimal.RequireFromString("250").Equal(got[0].Amount))
		assert.Equal(t, models.TransactionTypeIncome, got[1].Type)

		january, err := transactions.ListByUserID(ctx, userID, jan15.AddDate(0, 0, -14), feb01)
		require.NoError(t, err)
		require.Len(t, january, 1)
		assert.Equal(t, "Zomato", january[0].Description)

		all, err := transactions.ListByUserID(ctx, userID, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("mark processed and failed", func(t *testing.T) {
		require.NoError(t, statements.MarkProcessed(ctx, st.ID, "csv", 2))
		got, err := statements.GetByID(ctx, st.ID)
		require.NoError(t, err)
		assert.True(t, got.Processed())
		assert.Equal(t, 2, got.TransactionCount)
		assert.NotNil(t, got.ProcessedAt)

		require.NoError(t, statements.MarkFailed(ctx, older.ID, "no transactions found"))
		got, err = statements.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatementStatusFailed, got.Status)
		assert.Equal(t, "no transactions found", got.ErrorMessage)

		assert.ErrorIs(t, statements.MarkProcessed(ctx, uuid.New(), "csv", 0), ErrNotFound)
	})
}
