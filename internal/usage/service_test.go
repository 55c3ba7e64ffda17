package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealflow-backend/internal/llm"
)

func fixedService(day time.Time) *Service {
	svc := NewService()
	svc.now = func() time.Time { return day }
	return svc
}

func TestRecordCallAggregatesPerDay(t *testing.T) {
	day := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	svc := fixedService(day)

	svc.RecordCall("user-1", "openai", 100, 40, false)
	svc.RecordCall("user-1", "openai", 50, 0, true)
	svc.RecordCall("user-1", "ollama", 30, 10, false)
	svc.RecordCall("user-2", "openai", 999, 1, false)

	records, err := svc.ListByUser(context.Background(), "user-1", 30)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}

	byBackend := make(map[string]Record)
	for _, rec := range records {
		byBackend[rec.Backend] = rec
		if rec.Day != "2025-04-02" {
			t.Fatalf("day = %q", rec.Day)
		}
	}

	oa := byBackend["openai"]
	if oa.Calls != 2 || oa.Failures != 1 || oa.PromptChars != 150 || oa.CompletionChars != 40 {
		t.Fatalf("openai record = %+v", oa)
	}
	ol := byBackend["ollama"]
	if ol.Calls != 1 || ol.Failures != 0 {
		t.Fatalf("ollama record = %+v", ol)
	}
}

func TestListByUserWindowsDays(t *testing.T) {
	svc := NewService()

	days := []string{"2025-04-01", "2025-04-02", "2025-04-03"}
	for _, day := range days {
		d := day
		svc.now = func() time.Time {
			parsed, _ := time.Parse(dayFormat, d)
			return parsed
		}
		svc.RecordCall("user-1", "openai", 10, 5, false)
	}

	records, err := svc.ListByUser(context.Background(), "user-1", 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want the 2 most recent days", len(records))
	}
	if records[0].Day != "2025-04-03" || records[1].Day != "2025-04-02" {
		t.Fatalf("days = [%s %s]", records[0].Day, records[1].Day)
	}
}

type scriptedBackend struct {
	name  string
	out   string
	err   error
	calls int
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	b.calls++
	return b.out, b.err
}

func TestInstrumentBooksCallsAndFailures(t *testing.T) {
	day := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	svc := fixedService(day)

	good := &scriptedBackend{name: "openai", out: "fine"}
	wrapped := svc.Instrument("user-1", good)
	if wrapped.Name() != "openai" {
		t.Fatalf("Name = %q", wrapped.Name())
	}
	if _, err := wrapped.Complete(context.Background(), "prompt", 64); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	bad := &scriptedBackend{name: "openai", err: errors.New("boom")}
	if _, err := svc.Instrument("user-1", bad).Complete(context.Background(), "xx", 64); err == nil {
		t.Fatal("expected the wrapped error to pass through")
	}

	records, err := svc.ListByUser(context.Background(), "user-1", 30)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	rec := records[0]
	if rec.Calls != 2 || rec.Failures != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.PromptChars != int64(len("prompt")+len("xx")) {
		t.Fatalf("prompt chars = %d", rec.PromptChars)
	}
	if rec.CompletionChars != int64(len("fine")) {
		t.Fatalf("completion chars = %d", rec.CompletionChars)
	}
}

func TestInstrumentNilSafety(t *testing.T) {
	var nilSvc *Service
	backend := &scriptedBackend{name: "openai", out: "ok"}
	if got := nilSvc.Instrument("user-1", backend); got != llm.Backend(backend) {
		t.Fatal("nil service should return the backend unchanged")
	}

	svc := NewService()
	if got := svc.Instrument("user-1", nil); got != nil {
		t.Fatal("nil backend should stay nil")
	}
	// Blank user ids are dropped silently.
	svc.RecordCall("", "openai", 1, 1, false)
	records, _ := svc.ListByUser(context.Background(), "", 30)
	if len(records) != 0 {
		t.Fatalf("records for blank user = %+v", records)
	}
}
