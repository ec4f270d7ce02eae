package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/api/transport"
	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/pkg/httpcontext"
	taskUC "github.com/digiplanner/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	svc         *taskUC.Service
	dueSoonDays int
}

func NewTaskHandler(svc *taskUC.Service, dueSoonDays int, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	if dueSoonDays <= 0 {
		dueSoonDays = 7
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
		dueSoonDays: dueSoonDays,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	filter := taskUC.Filter{
		Status:   string(ctx.QueryArgs().Peek("status")),
		Category: string(ctx.QueryArgs().Peek("category")),
		Priority: string(ctx.QueryArgs().Peek("priority")),
		Search:   string(ctx.QueryArgs().Peek("search")),
		Sort:     string(ctx.QueryArgs().Peek("sort")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks := h.svc.List(stdCtx, filter)
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.svc.Create(stdCtx, taskUC.CreateInput{
		Title:    req.Title,
		Category: req.Category,
		Priority: req.Priority,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.UpdateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.svc.Update(stdCtx, id, taskUC.UpdateInput{
		Title:    req.Title,
		Category: req.Category,
		Priority: req.Priority,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"id": id})
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.svc.Toggle(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Tasks due within the next days
// @Tags tasks
// @Router /api/tasks/due-soon [get]
func (h *TaskHandler) DueSoon(ctx *fasthttp.RequestCtx) {
	days := parseInt(string(ctx.QueryArgs().Peek("days")), h.dueSoonDays)
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks := h.svc.DueSoon(stdCtx, days, time.Time{}, limit)
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Tasks due on a calendar date
// @Tags tasks
// @Router /api/tasks/on-date/{date} [get]
func (h *TaskHandler) TasksOnDate(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD", err))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks := h.svc.TasksOnDate(stdCtx, date)
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
