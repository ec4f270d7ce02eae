package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/internal/outbox"
	"github.com/digiplanner/backend/internal/storage"
)

type memStore struct {
	tasks map[string]domain.Task
	notes map[string]domain.CalendarNote
	stats *domain.Stats
	fail  bool
}

func newMemStore() *memStore {
	return &memStore{
		tasks: map[string]domain.Task{},
		notes: map[string]domain.CalendarNote{},
	}
}

func (m *memStore) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	if m.fail {
		return nil, errors.New("disk error")
	}
	tasks := make([]domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (m *memStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (m *memStore) PutTask(ctx context.Context, task *domain.Task) error {
	if m.fail {
		return domain.WrapError(domain.ErrCodePersistence, "put task", errors.New("disk error"))
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *memStore) DeleteTask(ctx context.Context, id string) error {
	delete(m.tasks, id)
	return nil
}

func (m *memStore) ReplaceTasks(ctx context.Context, tasks []domain.Task) error {
	m.tasks = map[string]domain.Task{}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return nil
}

func (m *memStore) LoadStats(ctx context.Context) (domain.Stats, error) {
	if m.stats == nil {
		return domain.DefaultStats(), nil
	}
	return *m.stats, nil
}

func (m *memStore) SaveStats(ctx context.Context, stats domain.Stats) error {
	m.stats = &stats
	return nil
}

func (m *memStore) LoadNotes(ctx context.Context) (map[string]domain.CalendarNote, error) {
	return m.notes, nil
}

func (m *memStore) GetNote(ctx context.Context, date string) (*domain.CalendarNote, error) {
	note, ok := m.notes[date]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	return &note, nil
}

func (m *memStore) PutNote(ctx context.Context, note *domain.CalendarNote) error {
	m.notes[note.Date] = *note
	return nil
}

func (m *memStore) DeleteNote(ctx context.Context, date string) error {
	delete(m.notes, date)
	return nil
}

func (m *memStore) Close() error { return nil }

type fakeRemote struct {
	healthy bool
	tasks   []domain.Task
	stats   domain.Stats
	err     error
}

func (r *fakeRemote) Health(ctx context.Context) bool { return r.healthy }

func (r *fakeRemote) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return r.tasks, r.err
}

func (r *fakeRemote) GetStats(ctx context.Context) (domain.Stats, error) {
	return r.stats, r.err
}

func (r *fakeRemote) ListNotes(ctx context.Context) (map[string]domain.CalendarNote, error) {
	return map[string]domain.CalendarNote{}, r.err
}

func (r *fakeRemote) CategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, error) {
	return nil, r.err
}

func (r *fakeRemote) PriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, error) {
	return nil, r.err
}

func (r *fakeRemote) CompletionTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	return nil, r.err
}

type recordingSink struct {
	items []outbox.Item
	err   error
}

func (s *recordingSink) Replicate(ctx context.Context, item outbox.Item) error {
	s.items = append(s.items, item)
	return s.err
}

func TestLoadTasksLocalOnly(t *testing.T) {
	store := newMemStore()
	store.tasks["t1"] = domain.Task{ID: "t1", Title: "local"}
	gw := storage.NewGateway(store, nil, nil, nil)

	tasks := gw.LoadTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, "local", tasks[0].Title)
}

func TestLoadTasksPrefersRemote(t *testing.T) {
	store := newMemStore()
	store.tasks["t1"] = domain.Task{ID: "t1", Title: "stale mirror"}
	remote := &fakeRemote{
		healthy: true,
		tasks:   []domain.Task{{ID: "t1", Title: "fresh upstream"}},
	}
	gw := storage.NewGateway(store, remote, nil, nil)

	tasks := gw.LoadTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, "fresh upstream", tasks[0].Title)
}

func TestLoadTasksFallsBackWhenRemoteDown(t *testing.T) {
	store := newMemStore()
	store.tasks["t1"] = domain.Task{ID: "t1", Title: "local"}
	remote := &fakeRemote{healthy: false}
	gw := storage.NewGateway(store, remote, nil, nil)

	tasks := gw.LoadTasks(context.Background())
	require.Len(t, tasks, 1)
	assert.Equal(t, "local", tasks[0].Title)
}

func TestLoadTasksDegradesToEmpty(t *testing.T) {
	store := newMemStore()
	store.fail = true
	gw := storage.NewGateway(store, nil, nil, nil)

	tasks := gw.LoadTasks(context.Background())
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestPutTaskReplicates(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	gw := storage.NewGateway(store, nil, sink, nil)

	task := &domain.Task{ID: "t1", Title: "x", Priority: domain.PriorityHigh}
	require.NoError(t, gw.PutTask(context.Background(), task, outbox.OperationCreate))

	_, ok := store.tasks["t1"]
	assert.True(t, ok, "write must hit the local mirror")

	require.Len(t, sink.items, 1)
	assert.Equal(t, outbox.EntityTask, sink.items[0].Entity)
	assert.Equal(t, outbox.OperationCreate, sink.items[0].Operation)
	assert.Equal(t, 1, sink.items[0].Priority, "high priority tasks replicate first")
}

func TestPutTaskForwardsToggleOperation(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{}
	gw := storage.NewGateway(store, nil, sink, nil)

	task := &domain.Task{ID: "t1", Title: "x", Status: domain.StatusCompleted}
	require.NoError(t, gw.PutTask(context.Background(), task, outbox.OperationToggle))

	require.Len(t, sink.items, 1)
	assert.Equal(t, outbox.OperationToggle, sink.items[0].Operation,
		"toggles must reach the upstream as toggles, not bare updates")
}

func TestPutTaskLocalFailureIsTerminal(t *testing.T) {
	store := newMemStore()
	store.fail = true
	sink := &recordingSink{}
	gw := storage.NewGateway(store, nil, sink, nil)

	err := gw.PutTask(context.Background(), &domain.Task{ID: "t1"}, outbox.OperationCreate)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePersistence))
	assert.Empty(t, sink.items, "nothing replicates when the local write fails")
}

func TestSinkErrorIsAbsorbed(t *testing.T) {
	store := newMemStore()
	sink := &recordingSink{err: errors.New("queue full")}
	gw := storage.NewGateway(store, nil, sink, nil)

	err := gw.PutTask(context.Background(), &domain.Task{ID: "t1"}, outbox.OperationUpdate)
	assert.NoError(t, err, "replication failures never surface to the caller")
}

func TestGetTaskBackfillsFromRemote(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		healthy: true,
		tasks:   []domain.Task{{ID: "t9", Title: "born upstream"}},
	}
	gw := storage.NewGateway(store, remote, nil, nil)

	task, err := gw.GetTask(context.Background(), "t9")
	require.NoError(t, err)
	assert.Equal(t, "born upstream", task.Title)

	_, ok := store.tasks["t9"]
	assert.True(t, ok, "backfilled task lands in the mirror")
}

func TestLoadStatsDefaults(t *testing.T) {
	gw := storage.NewGateway(newMemStore(), nil, nil, nil)

	stats := gw.LoadStats(context.Background())
	assert.Equal(t, domain.DefaultStats(), stats)
}

func TestLoadStatsPrefersRemote(t *testing.T) {
	store := newMemStore()
	store.stats = &domain.Stats{XP: 10, Level: 1}
	remote := &fakeRemote{healthy: true, stats: domain.Stats{XP: 200, Level: 3}}
	gw := storage.NewGateway(store, remote, nil, nil)

	stats := gw.LoadStats(context.Background())
	assert.Equal(t, 200, stats.XP)
}

func TestDeleteNoteReplicates(t *testing.T) {
	store := newMemStore()
	store.notes["2026-09-01"] = domain.CalendarNote{Date: "2026-09-01"}
	sink := &recordingSink{}
	gw := storage.NewGateway(store, nil, sink, nil)

	require.NoError(t, gw.DeleteNote(context.Background(), "2026-09-01"))
	require.Len(t, sink.items, 1)
	assert.Equal(t, outbox.EntityNote, sink.items[0].Entity)
	assert.Equal(t, outbox.OperationDelete, sink.items[0].Operation)
}

func TestRemoteAggregatesUnavailableWithoutRemote(t *testing.T) {
	gw := storage.NewGateway(newMemStore(), nil, nil, nil)

	_, ok := gw.RemoteCategoryBreakdown(context.Background())
	assert.False(t, ok)
	_, ok = gw.RemotePriorityBreakdown(context.Background())
	assert.False(t, ok)
	_, ok = gw.RemoteCompletionTrends(context.Background())
	assert.False(t, ok)
}
