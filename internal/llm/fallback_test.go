package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/model"
)

// cannedClient answers every call with a fixed result or error.
type cannedClient struct {
	name    string
	kind    model.ProviderKind
	summary string
	err     error
	calls   int
}

func (c *cannedClient) ChooseProvider(_ context.Context, _ string, _ time.Time) (model.ProviderKind, error) {
	c.calls++
	return c.kind, c.err
}

func (c *cannedClient) ExtractParameters(_ context.Context, _ string, _ model.ProviderKind, _ time.Time) (*model.QueryParams, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &model.QueryParams{}, nil
}

func (c *cannedClient) Summarize(_ context.Context, _ string, _ string) (string, error) {
	c.calls++
	return c.summary, c.err
}

func (c *cannedClient) ProviderName() string { return c.name }
func (c *cannedClient) ModelName() string    { return c.name + "-model" }

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &cannedClient{name: "primary", kind: model.KindClimatology}
	backup := &cannedClient{name: "backup", kind: model.KindForecast}

	fb := NewFallback([]Interpreter{primary, backup}, 0, zap.NewNop())

	kind, err := fb.ChooseProvider(context.Background(), "q", time.Now())
	if err != nil {
		t.Fatalf("routing: %v", err)
	}
	if kind != model.KindClimatology {
		t.Errorf("expected the primary's answer, got %s", kind)
	}
	if backup.calls != 0 {
		t.Error("backup must not be called when the primary succeeds")
	}
}

func TestFallback_FallsThroughOnFailure(t *testing.T) {
	primary := &cannedClient{name: "primary", err: errors.New("quota exceeded")}
	backup := &cannedClient{name: "backup", summary: "warm and clear"}

	fb := NewFallback([]Interpreter{primary, backup}, 0, zap.NewNop())

	summary, err := fb.Summarize(context.Background(), "q", "{}")
	if err != nil {
		t.Fatalf("summarizing: %v", err)
	}
	if summary != "warm and clear" {
		t.Errorf("expected the backup's answer, got %q", summary)
	}
	if primary.calls != 1 || backup.calls != 1 {
		t.Errorf("expected both clients tried once, got %d and %d", primary.calls, backup.calls)
	}
}

func TestFallback_AllFail(t *testing.T) {
	boom := errors.New("model unavailable")
	fb := NewFallback([]Interpreter{
		&cannedClient{name: "a", err: boom},
		&cannedClient{name: "b", err: boom},
	}, 0, zap.NewNop())

	_, err := fb.ExtractParameters(context.Background(), "q", model.KindForecast, time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the last error wrapped, got %v", err)
	}
}

func TestFallback_NoClients(t *testing.T) {
	fb := NewFallback(nil, 0, zap.NewNop())

	if _, err := fb.ChooseProvider(context.Background(), "q", time.Now()); err == nil {
		t.Fatal("expected an error with no clients configured")
	}
}
