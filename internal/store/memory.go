package store

import (
	"context"
	"sync"

	"occamy_tracker/internal/models"
)

// MemoryLog keeps the activity log in process memory.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []models.ActivityEntry
	ids     map[string]struct{}
}

var _ ActivityLog = &MemoryLog{}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{ids: make(map[string]struct{})}
}

func (m *MemoryLog) Append(ctx context.Context, entry *models.ActivityEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ids[entry.ID]; exists {
		return ErrDuplicateEntry
	}
	entry.Seq = int64(len(m.entries)) + 1
	m.entries = append(m.entries, *entry)
	m.ids[entry.ID] = struct{}{}
	return nil
}

func (m *MemoryLog) All(ctx context.Context) ([]models.ActivityEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ActivityEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}
