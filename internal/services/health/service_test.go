package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusAlwaysOK(t *testing.T) {
	svc := NewService()
	status := svc.Status()
	if !status["ok"] {
		t.Fatalf("expected ok=true, got %v", status)
	}
}

func TestCheckAllProbesPass(t *testing.T) {
	svc := NewService(
		Probe{Name: "a", Check: func(ctx context.Context) error { return nil }},
		Probe{Name: "b", Check: func(ctx context.Context) error { return nil }},
	)

	got := svc.Check(context.Background())
	if !got.Ready {
		t.Fatalf("expected ready, got %+v", got)
	}
	if got.Checks["a"] != "ok" || got.Checks["b"] != "ok" {
		t.Fatalf("unexpected checks: %v", got.Checks)
	}
}

func TestCheckReportsFailingProbe(t *testing.T) {
	svc := NewService(
		Probe{Name: "database", Check: func(ctx context.Context) error { return nil }},
		Probe{Name: "local_backend", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
	)

	got := svc.Check(context.Background())
	if got.Ready {
		t.Fatalf("expected not ready, got %+v", got)
	}
	if got.Checks["database"] != "ok" {
		t.Fatalf("expected database ok, got %q", got.Checks["database"])
	}
	if got.Checks["local_backend"] != "connection refused" {
		t.Fatalf("expected failure message, got %q", got.Checks["local_backend"])
	}
}

func TestDatabaseProbeNilPoolIsReady(t *testing.T) {
	probe := DatabaseProbe(nil)
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected nil pool to pass, got %v", err)
	}
}

func TestLocalBackendProbeNilPingerFails(t *testing.T) {
	probe := LocalBackendProbe(nil)
	if err := probe.Check(context.Background()); err == nil {
		t.Fatalf("expected error for missing local backend")
	}
}
