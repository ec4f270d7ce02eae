package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/digiplanner/backend/domain"
)

const taskColumns = "id, title, category, priority, due_date, status, notes, created_at, completed_at"

func (s *Store) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	ORDER BY created_at, id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) PutTask(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (id, title, category, priority, due_date, status, notes, created_at, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		category = EXCLUDED.category,
		priority = EXCLUDED.priority,
		due_date = EXCLUDED.due_date,
		status = EXCLUDED.status,
		notes = EXCLUDED.notes,
		completed_at = EXCLUDED.completed_at
	`
	_, err := s.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		string(task.Category),
		string(task.Priority),
		task.DueDate,
		string(task.Status),
		task.Notes,
		task.CreatedAt,
		task.CompletedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "put task", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "delete task", err)
	}
	return nil
}

func (s *Store) ReplaceTasks(ctx context.Context, tasks []domain.Task) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "replace tasks", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "replace tasks", err)
	}

	const query = `
	INSERT INTO tasks (id, title, category, priority, due_date, status, notes, created_at, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range tasks {
		t := &tasks[i]
		if _, err := tx.Exec(ctx, query,
			t.ID, t.Title, string(t.Category), string(t.Priority),
			t.DueDate, string(t.Status), t.Notes, t.CreatedAt, t.CompletedAt,
		); err != nil {
			return domain.WrapError(domain.ErrCodePersistence, "replace tasks", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "replace tasks", err)
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var (
		task        domain.Task
		category    string
		priority    string
		status      string
		completedAt *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&category,
		&priority,
		&task.DueDate,
		&status,
		&task.Notes,
		&task.CreatedAt,
		&completedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Category = domain.Category(category)
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	task.CompletedAt = completedAt
	return &task, nil
}
