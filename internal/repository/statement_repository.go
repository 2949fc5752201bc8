package repository

import (
	"context"
	"errors"
	"time"

	"statement-ingest/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("record not found")

var statementColumns = []string{
	"id", "user_id", "file_name", "file_type", "content_type", "file_size", "storage_key",
	"status", "parse_method", "transaction_count", "error_message", "uploaded_at", "processed_at",
}

type StatementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatementRepository(db *pgxpool.Pool, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StatementRepository) Create(ctx context.Context, st *models.Statement) error {
	query := squirrel.Insert("statements").
		Columns(statementColumns...).
		Values(st.ID, st.UserID, st.FileName, st.FileType, st.ContentType, st.FileSize, st.StorageKey,
			st.Status, st.ParseMethod, st.TransactionCount, st.ErrorMessage, st.UploadedAt, st.ProcessedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *StatementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error) {
	query := squirrel.Select(statementColumns...).
		From("statements").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	st, err := scanStatement(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *StatementRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Statement, error) {
	query := squirrel.Select(statementColumns...).
		From("statements").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("uploaded_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statements := []*models.Statement{}
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, st)
	}

	return statements, rows.Err()
}

// MarkProcessed records a successful parse.
func (r *StatementRepository) MarkProcessed(ctx context.Context, id uuid.UUID, parseMethod string, count int) error {
	return r.update(ctx, id, squirrel.Eq{
		"status":            models.StatementStatusProcessed,
		"parse_method":      parseMethod,
		"transaction_count": count,
		"error_message":     "",
		"processed_at":      time.Now().UTC(),
	})
}

// MarkFailed records a failed parse. Transactions from an earlier
// successful run are left untouched.
func (r *StatementRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx, id, squirrel.Eq{
		"status":        models.StatementStatusFailed,
		"error_message": message,
		"processed_at":  time.Now().UTC(),
	})
}

func (r *StatementRepository) update(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	query := squirrel.Update("statements").
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStatement(row pgx.Row) (*models.Statement, error) {
	var st models.Statement
	err := row.Scan(
		&st.ID, &st.UserID, &st.FileName, &st.FileType, &st.ContentType, &st.FileSize, &st.StorageKey,
		&st.Status, &st.ParseMethod, &st.TransactionCount, &st.ErrorMessage, &st.UploadedAt, &st.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
