package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fleveque/weather-query-service/internal/model"
)

// setupTestDB creates a temporary SQLite database for testing.
// testing.T's TempDir() is cleaned up automatically after the test.
func setupTestDB(t *testing.T) QueryLogRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewQueryLogRepository(db)
}

func TestQueryLogRepository_CreateAndRecent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	duration := int64(1500)
	rec := &model.QueryRecord{
		Query:       "What's the weather like in Chicago tomorrow?",
		Provider:    model.KindForecast,
		LLMProvider: "openai",
		LLMModel:    "gpt-4o-mini",
		Success:     true,
		DurationMs:  &duration,
	}

	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("creating record: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected record ID to be set after create")
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("listing recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recent))
	}
	if recent[0].Provider != model.KindForecast {
		t.Errorf("expected forecast provider, got %s", recent[0].Provider)
	}
	if recent[0].DurationMs == nil || *recent[0].DurationMs != 1500 {
		t.Error("expected duration to round-trip")
	}
}

func TestQueryLogRepository_Counts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	errMsg := "routing query: model unavailable"
	records := []*model.QueryRecord{
		{Query: "a", Provider: model.KindForecast, Success: true},
		{Query: "b", Provider: model.KindForecast, Success: true},
		{Query: "c", Provider: model.KindClimatology, Success: true},
		{Query: "d", Provider: model.KindForecast, Success: false, ErrorMessage: &errMsg},
	}
	for _, rec := range records {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("creating record %s: %v", rec.Query, err)
		}
	}

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting: %v", err)
	}
	if total != 4 {
		t.Errorf("expected 4 records, got %d", total)
	}

	forecast, err := repo.CountByProvider(ctx, model.KindForecast)
	if err != nil {
		t.Fatalf("counting forecast: %v", err)
	}
	if forecast != 3 {
		t.Errorf("expected 3 forecast records, got %d", forecast)
	}

	failed, err := repo.CountFailed(ctx)
	if err != nil {
		t.Fatalf("counting failed: %v", err)
	}
	if failed != 1 {
		t.Errorf("expected 1 failed record, got %d", failed)
	}
}

func TestQueryLogRepository_RecentLimit(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &model.QueryRecord{Query: "q", Provider: model.KindForecast, Success: true}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("creating record: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("listing recent: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("expected limit of 3, got %d", len(recent))
	}
}
