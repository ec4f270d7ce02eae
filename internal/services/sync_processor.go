package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/internal/outbox"
	"github.com/digiplanner/backend/internal/storage"
)

// ConnectionHealth abstracts the connection monitor.
type ConnectionHealth interface {
	RemoteOnline() bool
}

// Upstream is the mutation surface of the remote backend used for replay.
// Toggles replay through the dedicated toggle endpoint so the upstream
// applies its own XP/streak policy instead of receiving a bare state write.
type Upstream interface {
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	ToggleTask(ctx context.Context, id string) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SaveNote(ctx context.Context, note *domain.CalendarNote) (*domain.CalendarNote, error)
	DeleteNote(ctx context.Context, date string) error
}

// ProcessorConfig controls how frequently the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// SyncProcessor replays locally performed mutations against the upstream
// backend once it is reachable again.
type SyncProcessor struct {
	store    *outbox.Store
	monitor  ConnectionHealth
	upstream Upstream
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

func NewSyncProcessor(
	store *outbox.Store,
	monitor ConnectionHealth,
	upstream Upstream,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *SyncProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := &SyncProcessor{
		store:    store,
		monitor:  monitor,
		upstream: upstream,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sp.Drain(ctx); err != nil {
			sp.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return sp
}

// Start launches the cron scheduler.
func (sp *SyncProcessor) Start() {
	if sp == nil || sp.cron == nil {
		return
	}
	sp.cron.Start()
	sp.logger.Info("sync processor started")
}

// Stop gracefully stops the scheduler.
func (sp *SyncProcessor) Stop(ctx context.Context) {
	if sp == nil || sp.cron == nil {
		return
	}
	stopCtx := sp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sp.logger.Info("sync processor stopped")
}

// Drain replays queued items while the upstream is reachable.
func (sp *SyncProcessor) Drain(ctx context.Context) error {
	if sp == nil || sp.store == nil {
		return nil
	}
	if sp.monitor != nil && !sp.monitor.RemoteOnline() {
		sp.logger.Debug("skipping outbox drain (upstream offline)")
		return nil
	}

	if sp.cfg.Retention > 0 {
		if err := sp.store.Cleanup(time.Now().Add(-sp.cfg.Retention)); err != nil {
			sp.logger.Warn("outbox cleanup failed", zap.Error(err))
		}
	}

	items, err := sp.store.GetBatch(sp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := sp.processItem(ctx, item); err != nil {
			sp.logger.Error("failed to replay outbox item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("operation", item.Operation),
				zap.Error(err))

			item.Retries++
			if item.Retries >= sp.cfg.MaxRetries {
				sp.logger.Warn("dropping outbox item (max retries reached)", zap.String("item_id", item.ID))
				_ = sp.store.Remove(item)
				continue
			}

			if err := sp.store.Remove(item); err != nil {
				sp.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := sp.store.Requeue(item); err != nil {
				sp.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := sp.store.Remove(item); err != nil {
			sp.logger.Warn("failed to purge replayed outbox item", zap.Error(err))
		}
	}
	return nil
}

// Replicate attempts the operation against the upstream immediately and
// falls back to queueing it. Used by the storage gateway as its sink.
func (sp *SyncProcessor) Replicate(ctx context.Context, item outbox.Item) error {
	if sp == nil || sp.store == nil {
		return fmt.Errorf("sync processor not configured")
	}

	if sp.monitor == nil || sp.monitor.RemoteOnline() {
		if err := sp.processItem(ctx, item); err == nil {
			return nil
		} else {
			sp.logger.Warn("immediate replication failed, queueing", zap.Error(err))
		}
	}
	return sp.store.Enqueue(item)
}

// Size returns the number of queued items.
func (sp *SyncProcessor) Size() int {
	if sp == nil || sp.store == nil {
		return 0
	}
	size, err := sp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (sp *SyncProcessor) processItem(ctx context.Context, item outbox.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if sp.upstream == nil {
		return fmt.Errorf("no upstream configured")
	}

	switch item.Entity {
	case outbox.EntityTask:
		switch item.Operation {
		case outbox.OperationDelete:
			return sp.upstream.DeleteTask(ctx, item.TargetID)
		case outbox.OperationToggle:
			return sp.replayToggle(ctx, item)
		case outbox.OperationCreate, outbox.OperationUpdate:
			var task domain.Task
			if err := json.Unmarshal(item.Data, &task); err != nil {
				return err
			}
			if item.Operation == outbox.OperationCreate {
				_, err := sp.upstream.CreateTask(ctx, &task)
				return err
			}
			_, err := sp.upstream.UpdateTask(ctx, &task)
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				// The task was born offline; the queued create may have been
				// dropped after retries. Recreate instead of losing the edit.
				_, err = sp.upstream.CreateTask(ctx, &task)
			}
			return err
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}

	case outbox.EntityNote:
		switch item.Operation {
		case outbox.OperationDelete:
			return sp.upstream.DeleteNote(ctx, item.TargetID)
		case outbox.OperationCreate, outbox.OperationUpdate:
			var note domain.CalendarNote
			if err := json.Unmarshal(item.Data, &note); err != nil {
				return err
			}
			_, err := sp.upstream.SaveNote(ctx, &note)
			return err
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

// replayToggle flips the task upstream. When the task is unknown there (born
// offline) it is recreated pending first, then toggled, so a replayed
// completion still earns its XP on the upstream side.
func (sp *SyncProcessor) replayToggle(ctx context.Context, item outbox.Item) error {
	_, err := sp.upstream.ToggleTask(ctx, item.TargetID)
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) || len(item.Data) == 0 {
		return err
	}

	var task domain.Task
	if uerr := json.Unmarshal(item.Data, &task); uerr != nil {
		return uerr
	}
	if task.IsCompleted() {
		pending := task
		pending.Status = domain.StatusPending
		pending.CompletedAt = nil
		if _, cerr := sp.upstream.CreateTask(ctx, &pending); cerr != nil {
			return cerr
		}
		_, err = sp.upstream.ToggleTask(ctx, task.ID)
		return err
	}
	_, err = sp.upstream.CreateTask(ctx, &task)
	return err
}

var _ storage.Sink = (*SyncProcessor)(nil)
