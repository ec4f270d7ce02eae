package usecase

import (
	"context"

	"github.com/digiplanner/backend/domain"
)

// Mutation kinds handed to the gateway for upstream replication. Toggles are
// a distinct kind so they replay through the upstream's toggle endpoint,
// which applies the XP/streak policy server-side.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationToggle = "toggle"
)

// Gateway abstracts the storage gateway so use cases stay storage-agnostic
// and tests can substitute a fake. Reads fail soft (the gateway absorbs
// transport errors); write errors are terminal persistence failures.
type Gateway interface {
	LoadTasks(ctx context.Context) []domain.Task
	SaveTasks(ctx context.Context, tasks []domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	PutTask(ctx context.Context, task *domain.Task, op string) error
	DeleteTask(ctx context.Context, id string) error

	LoadStats(ctx context.Context) domain.Stats
	SaveStats(ctx context.Context, stats domain.Stats) error

	LoadNotes(ctx context.Context) map[string]domain.CalendarNote
	GetNote(ctx context.Context, date string) (*domain.CalendarNote, error)
	PutNote(ctx context.Context, note *domain.CalendarNote) error
	DeleteNote(ctx context.Context, date string) error

	RemoteCategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, bool)
	RemotePriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, bool)
	RemoteCompletionTrends(ctx context.Context) ([]domain.TrendPoint, bool)
}
