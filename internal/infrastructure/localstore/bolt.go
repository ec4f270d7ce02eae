package localstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/repository"
)

var (
	bucketTasks = []byte("tasks")
	bucketNotes = []byte("notes")
	bucketMeta  = []byte("meta")

	keyStats = []byte("stats")
)

// Store is the bbolt-backed local store. It is always written as a backup
// mirror of the task collection, and it is the only store when no remote
// backend or database is configured.
//
// Values that fail to decode are skipped on read; a corrupt store degrades
// to an empty one instead of failing the caller.
type Store struct {
	db *bolt.DB
}

// Open initializes the bolt file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketTasks, bucketNotes, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(k, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return nil
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTasks).Get([]byte(id))
		if raw == nil {
			return nil
		}
		var decoded domain.Task
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil
		}
		task = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *Store) PutTask(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Put([]byte(task.ID), payload)
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "put task", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Delete([]byte(id))
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "delete task", err)
	}
	return nil
}

func (s *Store) ReplaceTasks(ctx context.Context, tasks []domain.Task) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketTasks); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(bucketTasks)
		if err != nil {
			return err
		}
		for i := range tasks {
			payload, err := json.Marshal(&tasks[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(tasks[i].ID), payload); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "replace tasks", err)
	}
	return nil
}

func (s *Store) LoadStats(ctx context.Context) (domain.Stats, error) {
	stats := domain.DefaultStats()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyStats)
		if raw == nil {
			return nil
		}
		var decoded domain.Stats
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil
		}
		if decoded.Level < 1 {
			decoded.Level = 1
		}
		stats = decoded
		return nil
	})
	if err != nil {
		return domain.DefaultStats(), err
	}
	return stats, nil
}

func (s *Store) SaveStats(ctx context.Context, stats domain.Stats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyStats, payload)
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "save stats", err)
	}
	return nil
}

func (s *Store) LoadNotes(ctx context.Context) (map[string]domain.CalendarNote, error) {
	notes := map[string]domain.CalendarNote{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).ForEach(func(k, v []byte) error {
			var note domain.CalendarNote
			if err := json.Unmarshal(v, &note); err != nil {
				return nil
			}
			notes[note.Date] = note
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Store) GetNote(ctx context.Context, date string) (*domain.CalendarNote, error) {
	var note *domain.CalendarNote
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketNotes).Get([]byte(date))
		if raw == nil {
			return nil
		}
		var decoded domain.CalendarNote
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil
		}
		note = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

func (s *Store) PutNote(ctx context.Context, note *domain.CalendarNote) error {
	if note == nil || note.Date == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).Put([]byte(note.Date), payload)
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "put calendar note", err)
	}
	return nil
}

func (s *Store) DeleteNote(ctx context.Context, date string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).Delete([]byte(date))
	}); err != nil {
		return domain.WrapError(domain.ErrCodePersistence, "delete calendar note", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repository.Store = (*Store)(nil)
