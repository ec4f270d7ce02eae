package storage

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/internal/outbox"
	"github.com/digiplanner/backend/repository"
)

// Remote is the read surface of an upstream planner backend. A nil Remote
// means the deployment is local-only and the decision to skip the network is
// a typed branch, not a runtime existence probe.
type Remote interface {
	Health(ctx context.Context) bool
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetStats(ctx context.Context) (domain.Stats, error)
	ListNotes(ctx context.Context) (map[string]domain.CalendarNote, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, error)
	PriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, error)
	CompletionTrends(ctx context.Context) ([]domain.TrendPoint, error)
}

// Sink receives mutations for upstream replication. Implementations try the
// upstream directly and queue the operation when it is unreachable.
type Sink interface {
	Replicate(ctx context.Context, item outbox.Item) error
}

// Gateway is the single place task, stats and note data is read and written.
// Policy: prefer the upstream for reads when one is configured and alive;
// mirror every write to the local store unconditionally; hand mutations to
// the sink for upstream replication. Transport failures are absorbed here
// and logged, never surfaced. Local write failures are terminal.
type Gateway struct {
	store  repository.Store
	remote Remote
	sink   Sink
	logger *zap.Logger
}

func NewGateway(store repository.Store, remote Remote, sink Sink, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:  store,
		remote: remote,
		sink:   sink,
		logger: logger,
	}
}

// RemoteAvailable probes upstream liveness. Never returns an error; false on
// any transport failure or when no upstream is configured.
func (g *Gateway) RemoteAvailable(ctx context.Context) bool {
	return g.remote != nil && g.remote.Health(ctx)
}

// LoadTasks returns the current collection, upstream first. It fails soft:
// any transport or local read problem degrades to the best available data,
// down to an empty collection.
func (g *Gateway) LoadTasks(ctx context.Context) []domain.Task {
	if g.RemoteAvailable(ctx) {
		tasks, err := g.remote.ListTasks(ctx)
		if err == nil {
			return tasks
		}
		g.logger.Warn("remote task list failed, falling back to local store", zap.Error(err))
	}

	tasks, err := g.store.LoadTasks(ctx)
	if err != nil {
		g.logger.Warn("local task load failed, returning empty collection", zap.Error(err))
		return []domain.Task{}
	}
	return tasks
}

// SaveTasks writes the whole collection to the local store as a backup.
func (g *Gateway) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	return g.store.ReplaceTasks(ctx, tasks)
}

// GetTask reads a single task from the local mirror, backfilling from the
// upstream collection when the mirror has not seen the id yet.
func (g *Gateway) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := g.store.GetTask(ctx, id)
	if err == nil {
		return task, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) || !g.RemoteAvailable(ctx) {
		return nil, err
	}

	tasks, listErr := g.remote.ListTasks(ctx)
	if listErr != nil {
		g.logger.Warn("remote backfill failed", zap.Error(listErr))
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			if putErr := g.store.PutTask(ctx, &tasks[i]); putErr != nil {
				g.logger.Warn("mirroring backfilled task failed", zap.Error(putErr))
			}
			return &tasks[i], nil
		}
	}
	return nil, err
}

// PutTask persists a created or updated task locally and replicates the
// operation upstream. op is an outbox operation constant.
func (g *Gateway) PutTask(ctx context.Context, task *domain.Task, op string) error {
	if err := g.store.PutTask(ctx, task); err != nil {
		return err
	}
	g.replicate(ctx, outbox.EntityTask, op, task.ID, task, taskPriority(task))
	return nil
}

// DeleteTask removes a task locally (no-op when absent) and replicates.
func (g *Gateway) DeleteTask(ctx context.Context, id string) error {
	if err := g.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	g.replicate(ctx, outbox.EntityTask, outbox.OperationDelete, id, nil, 3)
	return nil
}

// LoadStats returns stored progress, upstream first, with the documented
// zero value when nothing is stored anywhere.
func (g *Gateway) LoadStats(ctx context.Context) domain.Stats {
	if g.RemoteAvailable(ctx) {
		stats, err := g.remote.GetStats(ctx)
		if err == nil {
			return stats
		}
		g.logger.Warn("remote stats failed, falling back to local store", zap.Error(err))
	}

	stats, err := g.store.LoadStats(ctx)
	if err != nil {
		g.logger.Warn("local stats load failed, returning defaults", zap.Error(err))
		return domain.DefaultStats()
	}
	return stats
}

// SaveStats persists progress locally. When an upstream owns stats it
// recomputes its own record; this write is the last-resort copy.
func (g *Gateway) SaveStats(ctx context.Context, stats domain.Stats) error {
	return g.store.SaveStats(ctx, stats)
}

func (g *Gateway) LoadNotes(ctx context.Context) map[string]domain.CalendarNote {
	if g.RemoteAvailable(ctx) {
		notes, err := g.remote.ListNotes(ctx)
		if err == nil {
			return notes
		}
		g.logger.Warn("remote notes failed, falling back to local store", zap.Error(err))
	}

	notes, err := g.store.LoadNotes(ctx)
	if err != nil {
		g.logger.Warn("local notes load failed, returning empty set", zap.Error(err))
		return map[string]domain.CalendarNote{}
	}
	return notes
}

func (g *Gateway) GetNote(ctx context.Context, date string) (*domain.CalendarNote, error) {
	return g.store.GetNote(ctx, date)
}

func (g *Gateway) PutNote(ctx context.Context, note *domain.CalendarNote) error {
	if err := g.store.PutNote(ctx, note); err != nil {
		return err
	}
	g.replicate(ctx, outbox.EntityNote, outbox.OperationUpdate, note.Date, note, 4)
	return nil
}

func (g *Gateway) DeleteNote(ctx context.Context, date string) error {
	if err := g.store.DeleteNote(ctx, date); err != nil {
		return err
	}
	g.replicate(ctx, outbox.EntityNote, outbox.OperationDelete, date, nil, 4)
	return nil
}

// RemoteCategoryBreakdown returns server-computed aggregates when the
// upstream can serve them; ok is false otherwise and the caller computes
// locally. Same contract for the priority and trend variants.
func (g *Gateway) RemoteCategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, bool) {
	if !g.RemoteAvailable(ctx) {
		return nil, false
	}
	breakdown, err := g.remote.CategoryBreakdown(ctx)
	if err != nil {
		g.logger.Warn("remote category breakdown failed", zap.Error(err))
		return nil, false
	}
	return breakdown, true
}

func (g *Gateway) RemotePriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, bool) {
	if !g.RemoteAvailable(ctx) {
		return nil, false
	}
	breakdown, err := g.remote.PriorityBreakdown(ctx)
	if err != nil {
		g.logger.Warn("remote priority breakdown failed", zap.Error(err))
		return nil, false
	}
	return breakdown, true
}

func (g *Gateway) RemoteCompletionTrends(ctx context.Context) ([]domain.TrendPoint, bool) {
	if !g.RemoteAvailable(ctx) {
		return nil, false
	}
	trends, err := g.remote.CompletionTrends(ctx)
	if err != nil {
		g.logger.Warn("remote completion trends failed", zap.Error(err))
		return nil, false
	}
	return trends, true
}

// replicate hands a mutation to the sink. Replication failures are logged
// and absorbed: the local write already succeeded and the sink owns retries.
func (g *Gateway) replicate(ctx context.Context, entity, op, targetID string, payload interface{}, priority int) {
	if g.sink == nil {
		return
	}

	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			g.logger.Error("encode replication payload", zap.Error(err))
			return
		}
		data = encoded
	}

	item := outbox.Item{
		Entity:    entity,
		Operation: op,
		TargetID:  targetID,
		Data:      data,
		Priority:  priority,
	}
	if err := g.sink.Replicate(ctx, item); err != nil {
		g.logger.Warn("replication enqueue failed",
			zap.String("entity", entity),
			zap.String("operation", op),
			zap.Error(err))
	}
}

func taskPriority(task *domain.Task) int {
	switch task.Priority {
	case domain.PriorityHigh:
		return 1
	case domain.PriorityMedium:
		return 2
	default:
		return 3
	}
}
