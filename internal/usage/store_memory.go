package usage

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]Record // userID|backend|day -> record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Record)}
}

func (s *memoryStore) Add(ctx context.Context, userID, backend, day string, delta Delta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "|" + backend + "|" + day
	rec, ok := s.data[key]
	if !ok {
		rec = Record{UserID: userID, Backend: backend, Day: day}
	}
	rec.Calls += delta.Calls
	rec.Failures += delta.Failures
	rec.PromptChars += delta.PromptChars
	rec.CompletionChars += delta.CompletionChars
	s.data[key] = rec
	return nil
}

func (s *memoryStore) ListByUser(ctx context.Context, userID string, days int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0)
	for _, rec := range s.data {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Day == records[j].Day {
			return records[i].Backend < records[j].Backend
		}
		return records[i].Day > records[j].Day
	})
	if days > 0 && len(records) > 0 {
		// Keep rows for the `days` most recent distinct days.
		kept := records[:0]
		seen := make(map[string]bool)
		for _, rec := range records {
			if !seen[rec.Day] {
				if len(seen) >= days {
					break
				}
				seen[rec.Day] = true
			}
			kept = append(kept, rec)
		}
		records = kept
	}
	return records, nil
}
