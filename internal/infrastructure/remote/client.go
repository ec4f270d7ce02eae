package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/digiplanner/backend/domain"
)

// Client talks to an upstream planner backend implementing the same API this
// service exposes. Every failure is reported as an UNAVAILABLE domain error;
// the storage gateway decides whether to absorb it.
type Client struct {
	baseURL      string
	http         *fasthttp.Client
	timeout      time.Duration
	probeTimeout time.Duration
	token        string
}

// Config carries the client settings; zero durations get short defaults so a
// dead upstream never stalls an operation.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Token        string
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		http:         &fasthttp.Client{},
		timeout:      cfg.Timeout,
		probeTimeout: cfg.ProbeTimeout,
		token:        cfg.Token,
	}
}

// envelope mirrors api/transport.Envelope without importing it; the remote
// service is a separate deployment and this is its wire shape.
type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Health probes the upstream liveness endpoint with the short probe timeout.
// It never returns an error; any failure means "not available".
func (c *Client) Health(ctx context.Context) bool {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/api/health")
	req.Header.SetMethod(fasthttp.MethodGet)
	c.authorize(req)

	if err := c.http.DoTimeout(req, resp, c.probeDeadline(ctx)); err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, fasthttp.MethodPost, "/api/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var updated domain.Task
	path := "/api/tasks/" + task.ID
	if err := c.do(ctx, fasthttp.MethodPut, path, task, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) ToggleTask(ctx context.Context, id string) (*domain.Task, error) {
	var toggled domain.Task
	if err := c.do(ctx, fasthttp.MethodPost, "/api/tasks/"+id+"/toggle", nil, &toggled); err != nil {
		return nil, err
	}
	return &toggled, nil
}

func (c *Client) GetStats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	if err := c.do(ctx, fasthttp.MethodGet, "/api/stats", nil, &stats); err != nil {
		return domain.DefaultStats(), err
	}
	return stats, nil
}

func (c *Client) CategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, error) {
	var breakdown []domain.CategoryBreakdown
	err := c.do(ctx, fasthttp.MethodGet, "/api/stats/category-breakdown", nil, &breakdown)
	return breakdown, err
}

func (c *Client) PriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, error) {
	var breakdown []domain.PriorityBreakdown
	err := c.do(ctx, fasthttp.MethodGet, "/api/stats/priority-breakdown", nil, &breakdown)
	return breakdown, err
}

func (c *Client) CompletionTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	var trends []domain.TrendPoint
	err := c.do(ctx, fasthttp.MethodGet, "/api/stats/completion-trends", nil, &trends)
	return trends, err
}

func (c *Client) ListNotes(ctx context.Context) (map[string]domain.CalendarNote, error) {
	var notes map[string]domain.CalendarNote
	if err := c.do(ctx, fasthttp.MethodGet, "/api/calendar/notes", nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = map[string]domain.CalendarNote{}
	}
	return notes, nil
}

func (c *Client) SaveNote(ctx context.Context, note *domain.CalendarNote) (*domain.CalendarNote, error) {
	var saved domain.CalendarNote
	if err := c.do(ctx, fasthttp.MethodPost, "/api/calendar/notes/"+note.Date, note, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteNote(ctx context.Context, date string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/api/calendar/notes/"+date, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	c.authorize(req)

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeUnavailable, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := c.http.DoTimeout(req, resp, c.deadline(ctx)); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "remote request failed", err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		// NOT_FOUND from upstream is a semantic answer, not a transport fault.
		// The client serves task and note endpoints alike, so the error stays
		// entity-agnostic; callers branch on the code.
		if status == http.StatusNotFound {
			return domain.NewError(domain.ErrCodeNotFound, "remote resource not found")
		}
		return domain.WrapError(domain.ErrCodeUnavailable, "remote request failed",
			fmt.Errorf("unexpected status %d", status))
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "decode response", err)
	}
	if env.Status != "success" {
		return domain.WrapError(domain.ErrCodeUnavailable, "remote request failed",
			fmt.Errorf("remote error code %s", env.Code))
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "decode response", err)
	}
	return nil
}

func (c *Client) authorize(req *fasthttp.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) deadline(ctx context.Context) time.Duration {
	return remainingTimeout(ctx, c.timeout)
}

func (c *Client) probeDeadline(ctx context.Context) time.Duration {
	return remainingTimeout(ctx, c.probeTimeout)
}

func remainingTimeout(ctx context.Context, fallback time.Duration) time.Duration {
	if ctx == nil {
		return fallback
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < fallback {
			return remaining
		}
	}
	return fallback
}
