package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/api/transport"
	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/pkg/httpcontext"
	notesUC "github.com/digiplanner/backend/usecase/notes"
)

type NotesHandler struct {
	baseHandler
	svc *notesUC.Service
}

func NewNotesHandler(svc *notesUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *NotesHandler {
	return &NotesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		svc:         svc,
	}
}

// @Summary All calendar notes keyed by date
// @Tags calendar
// @Router /api/calendar/notes [get]
func (h *NotesHandler) GetNotes(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.svc.All(stdCtx))
}

// @Summary Calendar note for one date
// @Tags calendar
// @Router /api/calendar/notes/{date} [get]
func (h *NotesHandler) GetNote(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	note, err := h.svc.ForDate(stdCtx, date)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, note)
}

// @Summary Create or update a calendar note
// @Tags calendar
// @Router /api/calendar/notes [post]
func (h *NotesHandler) SaveNote(ctx *fasthttp.RequestCtx) {
	var req transport.NoteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	if date, ok := ctx.UserValue("date").(string); ok && date != "" {
		req.Date = date
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	note, err := h.svc.Save(stdCtx, req.Date, notesUC.SaveInput{
		Checked: req.Checked,
		Notes:   req.Notes,
		Tasks:   req.Tasks,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, note)
}

// @Summary Delete a calendar note
// @Tags calendar
// @Router /api/calendar/notes/{date} [delete]
func (h *NotesHandler) DeleteNote(ctx *fasthttp.RequestCtx) {
	date, _ := ctx.UserValue("date").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.svc.Delete(stdCtx, date); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"date": date})
}
