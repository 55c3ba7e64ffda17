package usage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreAddUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewPGStore(db)

	mock.ExpectExec("INSERT INTO model_usage").
		WithArgs("user-1", "openai", "2025-04-02", 1, 1, int64(150), int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	delta := Delta{Calls: 1, Failures: 1, PromptChars: 150, CompletionChars: 40}
	if err := s.Add(context.Background(), "user-1", "openai", "2025-04-02", delta); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewPGStore(db)

	rows := sqlmock.NewRows([]string{
		"user_id", "backend", "day", "calls", "failures", "prompt_chars", "completion_chars",
	}).
		AddRow("user-1", "ollama", "2025-04-02", 3, 0, int64(500), int64(120)).
		AddRow("user-1", "openai", "2025-04-01", 1, 1, int64(80), int64(0))

	mock.ExpectQuery("SELECT user_id, backend, day").
		WithArgs("user-1", 7).
		WillReturnRows(rows)

	records, err := s.ListByUser(context.Background(), "user-1", 7)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Backend != "ollama" || records[0].Calls != 3 {
		t.Fatalf("first record = %+v", records[0])
	}
	if records[1].Day != "2025-04-01" || records[1].Failures != 1 {
		t.Fatalf("second record = %+v", records[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
