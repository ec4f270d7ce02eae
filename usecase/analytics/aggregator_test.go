package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiplanner/backend/domain"
)

func ts(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func tsPtr(value string) *time.Time {
	parsed := ts(value)
	return &parsed
}

func TestCategoryBreakdownCoversAllCategories(t *testing.T) {
	tasks := []domain.Task{
		{Category: domain.CategoryHomework, Status: domain.StatusCompleted},
		{Category: domain.CategoryHomework, Status: domain.StatusPending},
		{Category: domain.CategoryExams, Status: domain.StatusCompleted},
	}

	breakdown := CategoryBreakdown(tasks)
	require.Len(t, breakdown, len(domain.Categories))

	byCategory := map[domain.Category]domain.CategoryBreakdown{}
	total := 0
	for _, entry := range breakdown {
		byCategory[entry.Category] = entry
		total += entry.Total
	}
	assert.Equal(t, len(tasks), total, "entries must account for every task")

	homework := byCategory[domain.CategoryHomework]
	assert.Equal(t, 2, homework.Total)
	assert.Equal(t, 1, homework.Completed)
	assert.Equal(t, 1, homework.Pending)
	assert.Equal(t, 50, homework.CompletionRate)

	exams := byCategory[domain.CategoryExams]
	assert.Equal(t, 100, exams.CompletionRate)

	personal := byCategory[domain.CategoryPersonal]
	assert.Equal(t, 0, personal.Total)
	assert.Equal(t, 0, personal.CompletionRate)
}

func TestPriorityBreakdownOrder(t *testing.T) {
	tasks := []domain.Task{
		{Priority: domain.PriorityLow, Status: domain.StatusPending},
		{Priority: domain.PriorityHigh, Status: domain.StatusCompleted},
	}

	breakdown := PriorityBreakdown(tasks)
	require.Len(t, breakdown, 3)
	assert.Equal(t, domain.PriorityHigh, breakdown[0].Priority)
	assert.Equal(t, domain.PriorityMedium, breakdown[1].Priority)
	assert.Equal(t, domain.PriorityLow, breakdown[2].Priority)
	assert.Equal(t, 1, breakdown[0].Completed)
	assert.Equal(t, 1, breakdown[2].Pending)
}

func TestCompletionTrendBuckets(t *testing.T) {
	now := ts("2026-08-27T12:00:00Z")
	tasks := []domain.Task{
		{CreatedAt: ts("2026-08-25T08:00:00Z"), Status: domain.StatusCompleted, CompletedAt: tsPtr("2026-08-26T20:00:00Z")},
		{CreatedAt: ts("2026-08-26T09:00:00Z"), Status: domain.StatusPending},
		{CreatedAt: ts("2026-01-01T09:00:00Z"), Status: domain.StatusPending},
	}

	points := CompletionTrend(tasks, 30, now)
	require.Len(t, points, 30)
	assert.Equal(t, "2026-07-29", points[0].Date, "window is oldest first")
	assert.Equal(t, "2026-08-27", points[29].Date)

	byDate := map[string]domain.TrendPoint{}
	for _, p := range points {
		byDate[p.Date] = p
	}

	assert.Equal(t, 1, byDate["2026-08-25"].Created)
	assert.Equal(t, 1, byDate["2026-08-25"].Total)
	assert.Equal(t, 0, byDate["2026-08-25"].Completed)

	assert.Equal(t, 1, byDate["2026-08-26"].Created)
	assert.Equal(t, 1, byDate["2026-08-26"].Completed)
}

func TestWeeklyCompletionRate(t *testing.T) {
	now := ts("2026-08-27T12:00:00Z")
	tasks := []domain.Task{
		{DueDate: "2026-08-25", Status: domain.StatusCompleted, CompletedAt: tsPtr("2026-08-25T10:00:00Z")},
		{DueDate: "2026-08-26", Status: domain.StatusPending},
	}

	rates := WeeklyCompletionRate(tasks, 4, now)
	require.Len(t, rates, 4)

	latest := rates[3]
	assert.Equal(t, "2026-08-21", latest.Start)
	assert.Equal(t, "2026-08-27", latest.End)
	assert.Equal(t, 50, latest.Rate)

	assert.Equal(t, 0, rates[0].Rate, "window with nothing due rates zero")
}

func TestAverageCompletionDays(t *testing.T) {
	tasks := []domain.Task{
		{CreatedAt: ts("2026-08-20T08:00:00Z"), Status: domain.StatusCompleted, CompletedAt: tsPtr("2026-08-24T18:00:00Z")},
		{CreatedAt: ts("2026-08-25T08:00:00Z"), Status: domain.StatusCompleted, CompletedAt: tsPtr("2026-08-27T07:00:00Z")},
		{CreatedAt: ts("2026-08-25T08:00:00Z"), Status: domain.StatusPending},
	}

	assert.Equal(t, 3, AverageCompletionDays(tasks))
	assert.Equal(t, 0, AverageCompletionDays(nil))
}
