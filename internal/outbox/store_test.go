package outbox

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndBatch(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{
		Entity:    EntityTask,
		Operation: OperationCreate,
		TargetID:  "t1",
		Data:      json.RawMessage(`{"id":"t1"}`),
	}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, EntityTask, items[0].Entity)
	assert.Equal(t, OperationCreate, items[0].Operation)
	assert.Equal(t, "t1", items[0].TargetID)
	assert.NotEmpty(t, items[0].ID, "enqueue assigns an id")
	assert.False(t, items[0].Timestamp.IsZero())
}

func TestDrainOrderByPriorityThenTime(t *testing.T) {
	store := openTestStore(t)
	base := time.Now()

	require.NoError(t, store.Enqueue(Item{Entity: EntityNote, Operation: OperationUpdate, TargetID: "low", Priority: 4, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "urgent", Priority: 1, Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "earlier-urgent", Priority: 1, Timestamp: base}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "earlier-urgent", items[0].TargetID)
	assert.Equal(t, "urgent", items[1].TargetID)
	assert.Equal(t, "low", items[2].TargetID)
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationDelete, TargetID: "t1"}))
	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(items[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestRequeueMovesToBackOfBand(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().Add(-time.Minute)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "first", Priority: 2, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "second", Priority: 2, Timestamp: base.Add(time.Second)}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	retried := items[0]
	require.NoError(t, store.Remove(retried))
	retried.Retries++
	require.NoError(t, store.Requeue(retried))

	items, err = store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].TargetID)
	assert.Equal(t, "first", items[1].TargetID)
	assert.Equal(t, 1, items[1].Retries)
}

func TestCleanupDropsStaleItems(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "stale", Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Enqueue(Item{Entity: EntityTask, Operation: OperationUpdate, TargetID: "fresh"}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].TargetID)
}
