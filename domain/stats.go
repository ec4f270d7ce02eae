package domain

import (
	"math"
	"time"
)

// Stats is the per-installation progress record.
//
// Streak, XP, Level and LastActivityDate are the stored truth and change only
// when a task completes. The remaining counters are derived from the live
// task collection on every read and are never trusted from storage.
type Stats struct {
	Streak           int    `json:"streak"`
	XP               int    `json:"xp"`
	Level            int    `json:"level"`
	LastActivityDate string `json:"lastActivityDate,omitempty"`

	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	PendingTasks   int     `json:"pendingTasks"`
	CompletionRate float64 `json:"completionRate"`
}

// DefaultStats is the value returned when nothing has been stored yet.
func DefaultStats() Stats {
	return Stats{Level: 1}
}

// ApplyCompletion credits a completion that happened at now: XP by priority,
// level recomputed, streak extended when the previous activity was yesterday
// and reset otherwise. A second completion on the same day leaves the streak
// untouched. Reward accounting is one-way; nothing here is ever decremented.
func (s *Stats) ApplyCompletion(p Priority, now time.Time) {
	s.XP += p.XP()
	s.Level = s.XP/100 + 1

	today := now.Format(DateLayout)
	if s.LastActivityDate == today {
		return
	}
	if last, err := time.Parse(DateLayout, s.LastActivityDate); err == nil &&
		last.AddDate(0, 0, 1).Format(DateLayout) == today {
		s.Streak++
	} else {
		s.Streak = 1
	}
	s.LastActivityDate = today
}

// Derive recomputes the collection-dependent counters from tasks.
func (s *Stats) Derive(tasks []Task) {
	total := len(tasks)
	completed := 0
	for i := range tasks {
		if tasks[i].Status == StatusCompleted {
			completed++
		}
	}

	s.TotalTasks = total
	s.CompletedTasks = completed
	s.PendingTasks = total - completed
	if total > 0 {
		s.CompletionRate = math.Round(float64(completed)/float64(total)*100*100) / 100
	} else {
		s.CompletionRate = 0
	}
	if s.Level < 1 {
		s.Level = s.XP/100 + 1
	}
}
