package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/digiplanner/backend/domain"
)

// Stats live in a single-row table; derived counters are intentionally not
// persisted, they are recomputed from the task collection on read.
func (s *Store) LoadStats(ctx context.Context) (domain.Stats, error) {
	const query = `SELECT streak, xp, level, last_activity_date FROM stats WHERE id = 1`

	var stats domain.Stats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.Streak,
		&stats.XP,
		&stats.Level,
		&stats.LastActivityDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultStats(), nil
		}
		return domain.DefaultStats(), err
	}
	return stats, nil
}

func (s *Store) SaveStats(ctx context.Context, stats domain.Stats) error {
	const query = `
	INSERT INTO stats (id, streak, xp, level, last_activity_date)
	VALUES (1, $1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		streak = EXCLUDED.streak,
		xp = EXCLUDED.xp,
		level = EXCLUDED.level,
		last_activity_date = EXCLUDED.last_activity_date
	`
	_, err := s.pool.Exec(ctx, query, stats.Streak, stats.XP, stats.Level, stats.LastActivityDate)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "save stats", err)
	}
	return nil
}
