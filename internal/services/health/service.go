package health

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dealflow-backend/internal/shared/storage/object"
)

const probeTimeout = 2 * time.Second

// Probe checks one dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Service aggregates dependency probes behind the health endpoints.
type Service struct {
	probes []Probe
}

// NewService constructs a health service over the given probes.
func NewService(probes ...Probe) *Service {
	return &Service{probes: probes}
}

// Status returns the liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Readiness reports the aggregate and per-dependency probe results.
type Readiness struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Check runs every probe and collapses the results into a readiness report.
func (s *Service) Check(ctx context.Context) Readiness {
	out := Readiness{Ready: true, Checks: make(map[string]string, len(s.probes))}
	for _, p := range s.probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(probeCtx)
		cancel()
		if err != nil {
			out.Ready = false
			out.Checks[p.Name] = err.Error()
			continue
		}
		out.Checks[p.Name] = "ok"
	}
	return out
}

// DatabaseProbe pings the SQL pool. A nil pool means the service runs on
// in-memory repositories and is considered ready.
func DatabaseProbe(db *sql.DB) Probe {
	return Probe{
		Name: "database",
		Check: func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return db.PingContext(ctx)
		},
	}
}

// ObjectStoreProbe writes and removes a marker object to verify the store
// accepts traffic.
func ObjectStoreProbe(store object.ObjectStore) Probe {
	return Probe{
		Name: "object_store",
		Check: func(ctx context.Context) error {
			if store == nil {
				return errors.New("object store not configured")
			}
			if _, err := store.SaveWithKey(ctx, "health/.probe", "text/plain", strings.NewReader("ok")); err != nil {
				return err
			}
			return store.Remove(ctx, "health/.probe")
		},
	}
}

// Pinger is implemented by backends that expose a cheap reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LocalBackendProbe checks that the local model server answers.
func LocalBackendProbe(p Pinger) Probe {
	return Probe{
		Name: "local_backend",
		Check: func(ctx context.Context) error {
			if p == nil {
				return errors.New("local backend not configured")
			}
			return p.Ping(ctx)
		},
	}
}
