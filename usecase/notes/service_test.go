package notes_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiplanner/backend/domain"
	notesUC "github.com/digiplanner/backend/usecase/notes"
)

type fakeGateway struct {
	notes map[string]domain.CalendarNote
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{notes: map[string]domain.CalendarNote{}}
}

func (f *fakeGateway) LoadTasks(ctx context.Context) []domain.Task { return nil }

func (f *fakeGateway) SaveTasks(ctx context.Context, tasks []domain.Task) error { return nil }

func (f *fakeGateway) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return nil, domain.ErrTaskNotFound
}

func (f *fakeGateway) PutTask(ctx context.Context, task *domain.Task, op string) error { return nil }

func (f *fakeGateway) DeleteTask(ctx context.Context, id string) error { return nil }

func (f *fakeGateway) LoadStats(ctx context.Context) domain.Stats { return domain.DefaultStats() }

func (f *fakeGateway) SaveStats(ctx context.Context, stats domain.Stats) error { return nil }

func (f *fakeGateway) LoadNotes(ctx context.Context) map[string]domain.CalendarNote {
	return f.notes
}

func (f *fakeGateway) GetNote(ctx context.Context, date string) (*domain.CalendarNote, error) {
	note, ok := f.notes[date]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	return &note, nil
}

func (f *fakeGateway) PutNote(ctx context.Context, note *domain.CalendarNote) error {
	f.notes[note.Date] = *note
	return nil
}

func (f *fakeGateway) DeleteNote(ctx context.Context, date string) error {
	delete(f.notes, date)
	return nil
}

func (f *fakeGateway) RemoteCategoryBreakdown(ctx context.Context) ([]domain.CategoryBreakdown, bool) {
	return nil, false
}

func (f *fakeGateway) RemotePriorityBreakdown(ctx context.Context) ([]domain.PriorityBreakdown, bool) {
	return nil, false
}

func (f *fakeGateway) RemoteCompletionTrends(ctx context.Context) ([]domain.TrendPoint, bool) {
	return nil, false
}

func TestSaveIsUpsert(t *testing.T) {
	gw := newFakeGateway()
	svc := notesUC.New(gw, nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, "2026-09-03", notesUC.SaveInput{Notes: "first draft"})
	require.NoError(t, err)
	assert.Equal(t, "first draft", first.Notes)
	assert.NotNil(t, first.Tasks, "tasks default to an empty list")

	second, err := svc.Save(ctx, "2026-09-03", notesUC.SaveInput{Notes: "revised", Checked: true})
	require.NoError(t, err)
	assert.Equal(t, "revised", second.Notes)
	assert.True(t, second.Checked)
	assert.Len(t, gw.notes, 1)
}

func TestSaveRejectsMalformedDate(t *testing.T) {
	svc := notesUC.New(newFakeGateway(), nil)

	_, err := svc.Save(context.Background(), "03-09-2026", notesUC.SaveInput{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestForDateUnknownReturnsEmptyNote(t *testing.T) {
	svc := notesUC.New(newFakeGateway(), nil)

	note, err := svc.ForDate(context.Background(), "2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-10", note.Date)
	assert.False(t, note.Checked)
	assert.Empty(t, note.Notes)
	assert.NotNil(t, note.Tasks)
}

func TestDeleteUnknownDateFails(t *testing.T) {
	svc := notesUC.New(newFakeGateway(), nil)

	err := svc.Delete(context.Background(), "2026-09-10")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestDeleteExistingNote(t *testing.T) {
	gw := newFakeGateway()
	svc := notesUC.New(gw, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, "2026-09-03", notesUC.SaveInput{Notes: "temp"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "2026-09-03"))
	assert.Empty(t, gw.notes)
}
