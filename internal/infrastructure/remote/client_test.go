package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiplanner/backend/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		ProbeTimeout: time.Second,
	})
}

func serveEnvelope(t *testing.T, data interface{}) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload, err := json.Marshal(map[string]interface{}{
			"status": "success",
			"data":   data,
		})
		require.NoError(t, err)
		w.Write(payload)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.True(t, client.Health(context.Background()))
}

func TestHealthFalseOnDownServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	assert.False(t, client.Health(context.Background()))
}

func TestHealthFalseOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.False(t, client.Health(context.Background()))
}

func TestListTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: "t1", Title: "upstream task", Status: domain.StatusPending},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		serveEnvelope(t, tasks)(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	listed, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "upstream task", listed[0].Title)
}

func TestListTasksEmptyDataIsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(serveEnvelope(t, nil))
	defer srv.Close()

	client := newTestClient(srv.URL)
	listed, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestCreateTaskSendsPayloadAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var task domain.Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&task))
		assert.Equal(t, "t1", task.ID)
		serveEnvelope(t, task)(w, r)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Token: "secret-token"})
	created, err := client.CreateTask(context.Background(), &domain.Task{ID: "t1", Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "t1", created.ID)
}

func TestUpdateTaskNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.UpdateTask(context.Background(), &domain.Task{ID: "missing"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestNoteNotFoundIsEntityAgnostic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.DeleteNote(context.Background(), "2026-09-01")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.NotErrorIs(t, err, domain.ErrTaskNotFound, "note misses must not surface as missing tasks")
}

func TestToggleTask(t *testing.T) {
	completed := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks/t1/toggle", r.URL.Path)
		serveEnvelope(t, domain.Task{ID: "t1", Status: domain.StatusCompleted, CompletedAt: &completed})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	toggled, err := client.ToggleTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, toggled.Status)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.ListTasks(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}

func TestGetStats(t *testing.T) {
	srv := httptest.NewServer(serveEnvelope(t, domain.Stats{Streak: 5, XP: 140, Level: 2}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	stats, err := client.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Streak)
	assert.Equal(t, 140, stats.XP)
	assert.Equal(t, 2, stats.Level)
}

func TestListNotes(t *testing.T) {
	notes := map[string]domain.CalendarNote{
		"2026-09-01": {Date: "2026-09-01", Checked: true},
	}
	srv := httptest.NewServer(serveEnvelope(t, notes))
	defer srv.Close()

	client := newTestClient(srv.URL)
	listed, err := client.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed["2026-09-01"].Checked)
}

func TestDeleteTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/tasks/t1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	assert.NoError(t, client.DeleteTask(context.Background(), "t1"))
}
