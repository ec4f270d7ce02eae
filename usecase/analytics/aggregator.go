package analytics

import (
	"math"
	"time"

	"github.com/digiplanner/backend/domain"
)

// Pure derivations over a task collection. Nothing here mutates tasks or
// stored stats, and nothing is cached: callers recompute after mutations so
// charts never observe stale aggregates.

// CategoryBreakdown counts tasks per fixed category, including empty ones.
func CategoryBreakdown(tasks []domain.Task) []domain.CategoryBreakdown {
	breakdown := make([]domain.CategoryBreakdown, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		entry := domain.CategoryBreakdown{Category: category}
		for i := range tasks {
			if tasks[i].Category != category {
				continue
			}
			entry.Total++
			if tasks[i].Status == domain.StatusCompleted {
				entry.Completed++
			}
		}
		entry.Pending = entry.Total - entry.Completed
		if entry.Total > 0 {
			entry.CompletionRate = roundPercent(entry.Completed, entry.Total)
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown
}

// PriorityBreakdown counts tasks per priority level, highest first.
func PriorityBreakdown(tasks []domain.Task) []domain.PriorityBreakdown {
	breakdown := make([]domain.PriorityBreakdown, 0, len(domain.Priorities))
	for _, priority := range domain.Priorities {
		entry := domain.PriorityBreakdown{Priority: priority}
		for i := range tasks {
			if tasks[i].Priority != priority {
				continue
			}
			entry.Total++
			if tasks[i].Status == domain.StatusCompleted {
				entry.Completed++
			}
		}
		entry.Pending = entry.Total - entry.Completed
		breakdown = append(breakdown, entry)
	}
	return breakdown
}

// CompletionTrend buckets the last windowDays calendar days ending at now,
// oldest first: completions by completedAt date, creations by createdAt date.
func CompletionTrend(tasks []domain.Task, windowDays int, now time.Time) []domain.TrendPoint {
	if windowDays <= 0 {
		windowDays = 30
	}

	points := make([]domain.TrendPoint, 0, windowDays)
	index := make(map[string]int, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(domain.DateLayout)
		index[date] = len(points)
		points = append(points, domain.TrendPoint{Date: date})
	}

	for i := range tasks {
		t := &tasks[i]
		created := t.CreatedAt.Format(domain.DateLayout)
		if at, ok := index[created]; ok {
			points[at].Created++
			points[at].Total++
		}
		if t.Status == domain.StatusCompleted && t.CompletedAt != nil {
			completed := t.CompletedAt.Format(domain.DateLayout)
			if at, ok := index[completed]; ok {
				points[at].Completed++
			}
		}
	}
	return points
}

// WeeklyCompletionRate computes completions over dues for the last weeks
// trailing 7-day windows, the most recent ending at now, oldest first. A
// window with nothing due rates 0.
func WeeklyCompletionRate(tasks []domain.Task, weeks int, now time.Time) []domain.WeekRate {
	if weeks <= 0 {
		weeks = 7
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rates := make([]domain.WeekRate, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		end := today.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -6)

		completed := 0
		due := 0
		for j := range tasks {
			t := &tasks[j]
			if dueTime, ok := t.DueTime(); ok && inWindow(dueTime, start, end) {
				due++
			}
			if t.Status == domain.StatusCompleted && t.CompletedAt != nil {
				completedDay, err := time.Parse(domain.DateLayout, t.CompletedAt.Format(domain.DateLayout))
				if err == nil && inWindow(completedDay, start, end) {
					completed++
				}
			}
		}

		rate := 0
		if due > 0 {
			rate = roundPercent(completed, due)
		}
		rates = append(rates, domain.WeekRate{
			Start: start.Format(domain.DateLayout),
			End:   end.Format(domain.DateLayout),
			Rate:  rate,
		})
	}
	return rates
}

// AverageCompletionDays is the mean whole-day gap between creation and
// completion over tasks carrying both timestamps; 0 when there are none.
func AverageCompletionDays(tasks []domain.Task) int {
	totalDays := 0
	count := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Status != domain.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		created := dateOnly(t.CreatedAt)
		completed := dateOnly(*t.CompletedAt)
		totalDays += int(completed.Sub(created).Hours() / 24)
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(totalDays) / float64(count)))
}

func inWindow(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
