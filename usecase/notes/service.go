package notes

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/usecase"
)

// Service manages date-keyed calendar notes. Saving is an upsert; reading a
// date with no note returns an empty note for that date rather than failing,
// so the calendar can render every cell uniformly.
type Service struct {
	gw     usecase.Gateway
	logger *zap.Logger
	now    func() time.Time
}

func New(gw usecase.Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gw:     gw,
		logger: logger,
		now:    time.Now,
	}
}

// SaveInput carries the editable note fields.
type SaveInput struct {
	Checked bool
	Notes   string
	Tasks   []string
}

func (s *Service) All(ctx context.Context) map[string]domain.CalendarNote {
	return s.gw.LoadNotes(ctx)
}

func (s *Service) ForDate(ctx context.Context, date string) (*domain.CalendarNote, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD", err)
	}

	note, err := s.gw.GetNote(ctx, date)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return &domain.CalendarNote{Date: date, Tasks: []string{}}, nil
		}
		return nil, err
	}
	return note, nil
}

func (s *Service) Save(ctx context.Context, date string, in SaveInput) (*domain.CalendarNote, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD", err)
	}

	tasks := in.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	note := &domain.CalendarNote{
		Date:      date,
		Checked:   in.Checked,
		Notes:     in.Notes,
		Tasks:     tasks,
		UpdatedAt: s.now(),
	}
	if err := s.gw.PutNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note; an unknown date reports NOT_FOUND, matching the
// reference backend.
func (s *Service) Delete(ctx context.Context, date string) error {
	if _, err := s.gw.GetNote(ctx, date); err != nil {
		return err
	}
	return s.gw.DeleteNote(ctx, date)
}
