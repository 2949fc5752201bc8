package repository

import (
	"context"
	"time"

	"statement-ingest/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "user_id", "statement_id", "date", "description", "amount", "type", "category", "source", "created_at",
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForStatement swaps the statement's transactions for the given set
// in one database transaction, so reprocessing never duplicates rows.
func (r *TransactionRepository) ReplaceForStatement(ctx context.Context, statementID uuid.UUID, transactions []*models.Transaction) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		del, args, err := squirrel.Delete("transactions").
			Where(squirrel.Eq{"statement_id": statementID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, del, args...)
		if err != nil {
			return err
		}
		if n := tag.RowsAffected(); n > 0 {
			r.logger.Debug("Removed previous transactions", zap.String("statement_id", statementID.String()), zap.Int64("count", n))
		}

		for start := 0; start < len(transactions); start += insertBatchSize {
			end := min(start+insertBatchSize, len(transactions))
			if err := insertTransactions(ctx, tx, transactions[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertBatchSize keeps a multi-row insert under the 65535 bind parameter
// limit.
const insertBatchSize = 1000

func insertTransactions(ctx context.Context, tx pgx.Tx, transactions []*models.Transaction) error {
	builder := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		PlaceholderFormat(squirrel.Dollar)
	for _, t := range transactions {
		builder = builder.Values(t.ID, t.UserID, t.StatementID, t.Date, t.Description, t.Amount, t.Type, t.Category, t.Source, t.CreatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) GetByStatementID(ctx context.Context, statementID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"statement_id": statementID}).
		OrderBy("date ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

// ListByUserID returns the user's transactions with from <= date < to.
// A zero bound is open.
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error) {
	where := squirrel.And{squirrel.Eq{"user_id": userID}}
	if !from.IsZero() {
		where = append(where, squirrel.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		where = append(where, squirrel.Lt{"date": to})
	}

	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(where).
		OrderBy("date ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

func (r *TransactionRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Transaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.StatementID, &t.Date, &t.Description, &t.Amount, &t.Type, &t.Category, &t.Source, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}
