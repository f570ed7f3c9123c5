package dispatch

import (
	"sync"
	"time"

	"easel/internal/normalize"
)

// ExecutionRecord is one completed dispatch, kept for accounting.
type ExecutionRecord struct {
	ID             string
	Operation      string
	Success        bool
	Classification normalize.Classification
	Duration       time.Duration
	StartedAt      time.Time
}

// history is a bounded, newest-first record of recent executions. It is the
// only execution state the orchestrator persists, and only in memory.
type history struct {
	mu      sync.Mutex
	records []ExecutionRecord
	limit   int
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) Add(rec ExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]ExecutionRecord{rec}, h.records...)
	if len(h.records) > h.limit {
		h.records = h.records[:h.limit]
	}
}

func (h *history) Recent() []ExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ExecutionRecord, len(h.records))
	copy(out, h.records)
	return out
}
