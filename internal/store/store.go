// Package store holds the append-only activity log backends.
package store

import (
	"context"
	"errors"

	"occamy_tracker/internal/models"
)

// ErrDuplicateEntry is returned when an entry with the same id or sequence already exists.
var ErrDuplicateEntry = errors.New("activity entry already exists")

// ActivityLog is an append-only, totally ordered sequence of activity entries.
// Append assigns entry.Seq; All returns entries in append order.
type ActivityLog interface {
	Append(ctx context.Context, entry *models.ActivityEntry) error
	All(ctx context.Context) ([]models.ActivityEntry, error)
}
