package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/digiplanner/backend/domain"
)

const noteColumns = "date, checked, notes, tasks, updated_at"

func (s *Store) LoadNotes(ctx context.Context) (map[string]domain.CalendarNote, error) {
	const query = `SELECT ` + noteColumns + ` FROM calendar_notes`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := map[string]domain.CalendarNote{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes[note.Date] = *note
	}
	return notes, rows.Err()
}

func (s *Store) GetNote(ctx context.Context, date string) (*domain.CalendarNote, error) {
	const query = `SELECT ` + noteColumns + ` FROM calendar_notes WHERE date = $1`
	return scanNote(s.pool.QueryRow(ctx, query, date))
}

func (s *Store) PutNote(ctx context.Context, note *domain.CalendarNote) error {
	if note == nil || note.Date == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO calendar_notes (date, checked, notes, tasks, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (date) DO UPDATE SET
		checked = EXCLUDED.checked,
		notes = EXCLUDED.notes,
		tasks = EXCLUDED.tasks,
		updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query, note.Date, note.Checked, note.Notes, note.Tasks, note.UpdatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "put calendar note", err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, date string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM calendar_notes WHERE date = $1`, date)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "delete calendar note", err)
	}
	return nil
}

func scanNote(row interface {
	Scan(dest ...interface{}) error
}) (*domain.CalendarNote, error) {
	var note domain.CalendarNote
	if err := row.Scan(&note.Date, &note.Checked, &note.Notes, &note.Tasks, &note.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}
