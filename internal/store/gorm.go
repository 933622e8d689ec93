package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"occamy_tracker/internal/models"
)

const uniqueViolation = "23505"

// GormLog persists the activity log in the activity_entries table.
type GormLog struct {
	db *gorm.DB
	mu sync.Mutex
}

var _ ActivityLog = &GormLog{}

func NewGormLog(db *gorm.DB) *GormLog {
	return &GormLog{db: db}
}

// Append allocates the next sequence number and inserts the entry in one transaction.
// Appends from this process are serialized; the unique index on seq guards against
// a second writer.
func (g *GormLog) Append(ctx context.Context, entry *models.ActivityEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.ActivityEntry{}).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error; err != nil {
			return fmt.Errorf("read last sequence: %w", err)
		}
		entry.Seq = last + 1
		return tx.Create(entry).Error
	})
	if err != nil {
		entry.Seq = 0
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			logrus.WithField("entry_id", entry.ID).Warn("Duplicate activity entry rejected by database.")
			return ErrDuplicateEntry
		}
		return err
	}
	return nil
}

func (g *GormLog) All(ctx context.Context) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	if err := g.db.WithContext(ctx).Order("seq asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
