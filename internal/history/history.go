// Package history keeps the bounded list of recent analyses, newest first
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/factlens/internal/model"
)

// Store persists history entries. Implementations keep at most their
// capacity, evicting the oldest entries first.
type Store interface {
	List(ctx context.Context) ([]model.HistoryEntry, error)
	Add(ctx context.Context, entry model.HistoryEntry) error
	Clear(ctx context.Context) error
	Close() error
}

// NewEntry builds the history entry for a completed analysis
func NewEntry(query string, r *model.AnalysisResult, now time.Time) model.HistoryEntry {
	return model.HistoryEntry{
		ID:         uuid.NewString(),
		Query:      model.EllipsizeLabel(strings.Join(strings.Fields(query), " ")),
		Date:       now.UTC(),
		Verdict:    r.OverallVerdict.Normalize(),
		Confidence: r.OverallConfidence,
	}
}

// Open opens the store selected by cfg
func Open(cfg model.HistoryConfig) (Store, error) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = model.HistoryCapacity
	}

	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path, capacity), nil
	case "sqlite":
		s, err := OpenSQLite(cfg.Path, capacity)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q (supported: file, sqlite)", cfg.Backend)
	}
}

func prepend(entries []model.HistoryEntry, e model.HistoryEntry, capacity int) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, min(len(entries)+1, capacity))
	out = append(out, e)
	for _, old := range entries {
		if len(out) >= capacity {
			break
		}
		out = append(out, old)
	}
	return out
}
