package task

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/usecase"
)

// DefaultDueSoonLimit caps the dashboard's "due soon" list.
const DefaultDueSoonLimit = 5

// Service is the single mutation path for tasks. It owns id and timestamp
// assignment, the completed/completedAt invariant, and the XP/streak policy
// triggered by completions.
type Service struct {
	gw           usecase.Gateway
	logger       *zap.Logger
	now          func() time.Time
	dueSoonLimit int
}

// Option tweaks service construction.
type Option func(*Service)

// WithClock substitutes the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDueSoonLimit overrides the default due-soon cap.
func WithDueSoonLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.dueSoonLimit = limit
		}
	}
}

func New(gw usecase.Gateway, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		gw:           gw,
		logger:       logger,
		now:          time.Now,
		dueSoonLimit: DefaultDueSoonLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput carries the caller-editable fields of a new task.
type CreateInput struct {
	Title    string
	Category string
	Priority string
	DueDate  string
	Notes    string
}

// UpdateInput merges onto an existing task; nil fields are left untouched.
// Status is deliberately absent: Toggle is the only status transition.
type UpdateInput struct {
	Title    *string
	Category *string
	Priority *string
	DueDate  *string
	Notes    *string
}

// ToggleResult reports a toggle outcome. Celebrate is a hint for the caller
// (the UI throws confetti); it is data, not a side effect performed here.
type ToggleResult struct {
	Task      *domain.Task `json:"task"`
	Stats     domain.Stats `json:"stats"`
	Celebrate bool         `json:"celebrate"`
}

// Filter is the read-query criteria for List.
type Filter struct {
	Status   string
	Category string
	Priority string
	Search   string
	Sort     string
}

// Create validates input, assigns identity and creation time, and persists
// the task as pending. Unknown categories and priorities fall back to
// Personal and Medium.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	dueDate, err := normalizeDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	category := domain.Category(in.Category)
	if !category.Valid() {
		category = domain.CategoryPersonal
	}
	priority := domain.Priority(in.Priority)
	if !priority.Valid() {
		priority = domain.PriorityMedium
	}

	task := &domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Category:  category,
		Priority:  priority,
		DueDate:   dueDate,
		Status:    domain.StatusPending,
		Notes:     in.Notes,
		CreatedAt: s.now(),
	}

	if err := s.gw.PutTask(ctx, task, usecase.OperationCreate); err != nil {
		return nil, err
	}
	s.logger.Info("task created", zap.String("task_id", task.ID), zap.String("category", string(category)))
	return task, nil
}

// Update merges the provided fields onto the stored task. Identity, creation
// time and completion timestamps are never altered here.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Task, error) {
	task, err := s.gw.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.ErrEmptyTitle
		}
		task.Title = title
	}
	if in.Category != nil {
		category := domain.Category(*in.Category)
		if !category.Valid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown category")
		}
		task.Category = category
	}
	if in.Priority != nil {
		priority := domain.Priority(*in.Priority)
		if !priority.Valid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown priority")
		}
		task.Priority = priority
	}
	if in.DueDate != nil {
		dueDate, err := normalizeDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}
	if in.Notes != nil {
		task.Notes = *in.Notes
	}

	if err := s.gw.PutTask(ctx, task, usecase.OperationUpdate); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task. Deleting an unknown id is a successful no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.gw.DeleteTask(ctx, id)
}

// Toggle flips a task between pending and completed. Completion stamps
// completedAt and credits XP and streak; reverting clears completedAt and
// leaves the rewards untouched (one-way accounting).
func (s *Service) Toggle(ctx context.Context, id string) (*ToggleResult, error) {
	task, err := s.gw.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	celebrate := false
	if task.Status == domain.StatusPending {
		completedAt := s.now()
		task.Status = domain.StatusCompleted
		task.CompletedAt = &completedAt
		celebrate = true
	} else {
		task.Status = domain.StatusPending
		task.CompletedAt = nil
	}

	// Snapshot stats before the write: PutTask may replicate the toggle to
	// the upstream synchronously, and the upstream applies XP/streak itself.
	// Applying the completion onto the pre-toggle snapshot keeps the result
	// consistent with the upstream without counting the reward twice.
	stats := s.gw.LoadStats(ctx)

	if err := s.gw.PutTask(ctx, task, usecase.OperationToggle); err != nil {
		return nil, err
	}

	if celebrate {
		stats.ApplyCompletion(task.Priority, *task.CompletedAt)
		if err := s.gw.SaveStats(ctx, stats); err != nil {
			return nil, err
		}
		s.logger.Info("task completed",
			zap.String("task_id", task.ID),
			zap.Int("xp", stats.XP),
			zap.Int("streak", stats.Streak))
	}

	stats.Derive(s.gw.LoadTasks(ctx))
	return &ToggleResult{Task: task, Stats: stats, Celebrate: celebrate}, nil
}

// List returns the filtered, optionally sorted collection. With no sort set
// the stored order is preserved.
func (s *Service) List(ctx context.Context, filter Filter) []domain.Task {
	tasks := s.gw.LoadTasks(ctx)

	filtered := tasks[:0:0]
	for i := range tasks {
		t := &tasks[i]
		if filter.Status != "" && filter.Status != "all" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Category != "" && filter.Category != "all" && string(t.Category) != filter.Category {
			continue
		}
		if filter.Priority != "" && filter.Priority != "all" && string(t.Priority) != filter.Priority {
			continue
		}
		if !t.MatchesSearch(filter.Search) {
			continue
		}
		filtered = append(filtered, *t)
	}

	sortTasks(filtered, filter.Sort)
	return filtered
}

// DueSoon returns pending tasks due within [from, from+days), soonest first,
// capped at limit (the service default when limit <= 0). A zero from means
// today.
func (s *Service) DueSoon(ctx context.Context, days int, from time.Time, limit int) []domain.Task {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = s.dueSoonLimit
	}
	if from.IsZero() {
		from = s.now()
	}
	start := truncateToDay(from)
	end := start.AddDate(0, 0, days)

	due := []domain.Task{}
	for _, t := range s.gw.LoadTasks(ctx) {
		if t.Status == domain.StatusCompleted {
			continue
		}
		dueTime, ok := t.DueTime()
		if !ok {
			continue
		}
		if dueTime.Before(start) || !dueTime.Before(end) {
			continue
		}
		due = append(due, t)
	}

	sortTasks(due, "dueDate")
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

// TasksOnDate returns tasks whose due date equals the given calendar date.
func (s *Service) TasksOnDate(ctx context.Context, date string) []domain.Task {
	matches := []domain.Task{}
	for _, t := range s.gw.LoadTasks(ctx) {
		if t.DueDate != "" && t.DueDate == date {
			matches = append(matches, t)
		}
	}
	return matches
}

// CurrentStats merges the stored progress record with counters derived from
// the live collection. The derived fields are recomputed on every call and
// never trusted from storage.
func (s *Service) CurrentStats(ctx context.Context) domain.Stats {
	stats := s.gw.LoadStats(ctx)
	stats.Derive(s.gw.LoadTasks(ctx))
	return stats
}

func sortTasks(tasks []domain.Task, key string) {
	switch key {
	case "dueDate":
		sort.SliceStable(tasks, func(i, j int) bool {
			di, iOK := tasks[i].DueTime()
			dj, jOK := tasks[j].DueTime()
			if iOK != jOK {
				return iOK
			}
			if !iOK {
				return false
			}
			return di.Before(dj)
		})
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		})
	case "createdAt":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case "title":
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	}
}

func normalizeDueDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(domain.DateLayout, raw); err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "due date must be YYYY-MM-DD", err)
	}
	return raw, nil
}

// truncateToDay maps t to UTC midnight of its calendar date. Due dates parse
// as UTC midnights, so the window boundaries must live on the same axis or a
// negative-offset zone would push the from-date out of its own window.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
