package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/weather-query-service/internal/model"
)

// QueryLogRepository handles persistence of per-query usage records,
// used for cost monitoring of the LLM and upstream APIs.
// Go interfaces are implicit — any struct that has these methods satisfies it,
// which makes test doubles trivial.
type QueryLogRepository interface {
	Create(ctx context.Context, rec *model.QueryRecord) error
	Count(ctx context.Context) (int64, error)
	CountByProvider(ctx context.Context, kind model.ProviderKind) (int64, error)
	CountFailed(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.QueryRecord, error)
}

// sqliteQueryLogRepository is the SQLite implementation. The struct is
// unexported — only the interface is public.
type sqliteQueryLogRepository struct {
	db *sqlx.DB
}

// NewQueryLogRepository creates a new SQLite-backed QueryLogRepository.
func NewQueryLogRepository(db *sqlx.DB) QueryLogRepository {
	return &sqliteQueryLogRepository{db: db}
}

func (r *sqliteQueryLogRepository) Create(ctx context.Context, rec *model.QueryRecord) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO queries (query, provider, llm_provider, llm_model, success, error_message, duration_ms)
		VALUES (:query, :provider, :llm_provider, :llm_model, :success, :error_message, :duration_ms)
	`, rec)
	if err != nil {
		return fmt.Errorf("creating query record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *sqliteQueryLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM queries")
	return count, err
}

func (r *sqliteQueryLogRepository) CountByProvider(ctx context.Context, kind model.ProviderKind) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM queries WHERE provider = ?", kind)
	return count, err
}

func (r *sqliteQueryLogRepository) CountFailed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM queries WHERE success = 0")
	return count, err
}

func (r *sqliteQueryLogRepository) Recent(ctx context.Context, limit int) ([]model.QueryRecord, error) {
	var records []model.QueryRecord
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM queries ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent queries: %w", err)
	}
	return records, nil
}
