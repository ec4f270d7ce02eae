package domain

// Reporting views derived from the task collection. These shapes are shared
// by the local aggregator and the remote backend's breakdown endpoints, so a
// client can prefer server-computed aggregates and fall back to local
// computation without the caller noticing.

// CategoryBreakdown summarizes one category.
type CategoryBreakdown struct {
	Category       Category `json:"category"`
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	Pending        int      `json:"pending"`
	CompletionRate int      `json:"completionRate"`
}

// PriorityBreakdown summarizes one priority level.
type PriorityBreakdown struct {
	Priority  Priority `json:"priority"`
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Pending   int      `json:"pending"`
}

// TrendPoint is one day of the completion trend, oldest first in a series.
type TrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
	Total     int    `json:"total"`
}

// WeekRate is one window of the weekly completion-rate series: completions
// inside the window over tasks due inside the window, as a whole percentage.
type WeekRate struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Rate  int    `json:"rate"`
}
