package repository

import (
	"context"

	"github.com/digiplanner/backend/domain"
)

// Store is the persistence contract shared by the local bbolt store and the
// Postgres store. Implementations tolerate a completely empty store: reads
// return empty collections (and zero Stats) rather than errors on first run.
//
// LoadTasks returns tasks ordered by creation time, then id, so callers see
// a stable insertion order regardless of the backing engine.
type Store interface {
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	PutTask(ctx context.Context, task *domain.Task) error
	// DeleteTask removes a task; deleting an absent id is a successful no-op.
	DeleteTask(ctx context.Context, id string) error
	// ReplaceTasks makes the stored collection exactly equal to tasks.
	ReplaceTasks(ctx context.Context, tasks []domain.Task) error

	LoadStats(ctx context.Context) (domain.Stats, error)
	SaveStats(ctx context.Context, stats domain.Stats) error

	LoadNotes(ctx context.Context) (map[string]domain.CalendarNote, error)
	GetNote(ctx context.Context, date string) (*domain.CalendarNote, error)
	PutNote(ctx context.Context, note *domain.CalendarNote) error
	DeleteNote(ctx context.Context, date string) error

	Close() error
}
