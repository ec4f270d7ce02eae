package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/pkg/httpcontext"
	analyticsUC "github.com/digiplanner/backend/usecase/analytics"
	taskUC "github.com/digiplanner/backend/usecase/task"
)

type StatsHandler struct {
	baseHandler
	tasks      *taskUC.Service
	analytics  *analyticsUC.Service
	trendDays  int
	trendWeeks int
}

func NewStatsHandler(tasks *taskUC.Service, analytics *analyticsUC.Service, trendDays, trendWeeks int, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	if trendDays <= 0 {
		trendDays = 30
	}
	if trendWeeks <= 0 {
		trendWeeks = 7
	}
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
		analytics:   analytics,
		trendDays:   trendDays,
		trendWeeks:  trendWeeks,
	}
}

// @Summary Progress stats
// @Tags stats
// @Router /api/stats [get]
func (h *StatsHandler) GetStats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.tasks.CurrentStats(stdCtx))
}

// @Summary Completion counts per category
// @Tags stats
// @Router /api/stats/category-breakdown [get]
func (h *StatsHandler) CategoryBreakdown(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.analytics.CategoryBreakdown(stdCtx))
}

// @Summary Completion counts per priority
// @Tags stats
// @Router /api/stats/priority-breakdown [get]
func (h *StatsHandler) PriorityBreakdown(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.analytics.PriorityBreakdown(stdCtx))
}

// @Summary Daily activity over the trailing window
// @Tags stats
// @Router /api/stats/completion-trends [get]
func (h *StatsHandler) CompletionTrends(ctx *fasthttp.RequestCtx) {
	days := parseInt(string(ctx.QueryArgs().Peek("days")), h.trendDays)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.analytics.CompletionTrend(stdCtx, days))
}

// @Summary Trailing weekly completion rates
// @Tags stats
// @Router /api/stats/weekly-rates [get]
func (h *StatsHandler) WeeklyRates(ctx *fasthttp.RequestCtx) {
	weeks := parseInt(string(ctx.QueryArgs().Peek("weeks")), h.trendWeeks)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.analytics.WeeklyCompletionRate(stdCtx, weeks))
}

// @Summary Average days from creation to completion
// @Tags stats
// @Router /api/stats/average-completion [get]
func (h *StatsHandler) AverageCompletion(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, map[string]int{
		"averageDays": h.analytics.AverageCompletionDays(stdCtx),
	})
}
