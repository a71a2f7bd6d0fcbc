package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/widget"
	"github.com/gin-gonic/gin"
)

// Sessions hands out the widget owned by a session.
type Sessions interface {
	Widget(sessionID string) *widget.Widget
	End(sessionID string)
}

type WidgetHandler struct {
	sessions Sessions
}

func NewWidgetHandler(sessions Sessions) *WidgetHandler {
	return &WidgetHandler{sessions: sessions}
}

type userURI struct {
	ID int64 `uri:"id" binding:"min=1"`
}

type pageURI struct {
	Page int `uri:"page" binding:"min=1"`
}

type sortURI struct {
	Key user.SortKey `uri:"key" binding:"required,oneof=name email"`
}

type snapshotQuery struct {
	Page *int `form:"page" binding:"omitempty,min=1"`
}

type widgetResponse struct {
	User *user.User `json:"user,omitempty"`
	widget.Snapshot
}

func (h *WidgetHandler) widgetFor(ctx *gin.Context) *widget.Widget {
	return h.sessions.Widget(sessionID(ctx))
}

func (h *WidgetHandler) Get(ctx *gin.Context) {
	var q snapshotQuery
	if !BindQuery(ctx, &q) {
		return
	}

	w := h.widgetFor(ctx)
	if q.Page != nil && *q.Page != w.CurrentPage() {
		w.GoToPage(ctx.Request.Context(), *q.Page)
	}

	RespondJSONWithETag(ctx, http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) Submit(ctx *gin.Context) {
	var req user.SubmitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	w := h.widgetFor(ctx)

	u, created, err := w.Submit(ctx.Request.Context(), req)
	if err != nil {
		respondWidgetError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	ctx.JSON(status, widgetResponse{User: &u, Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) BeginEdit(ctx *gin.Context) {
	var uri userURI
	if !BindURI(ctx, &uri) {
		return
	}

	w := h.widgetFor(ctx)
	if err := w.BeginEdit(ctx.Request.Context(), uri.ID); err != nil {
		respondWidgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) CancelEdit(ctx *gin.Context) {
	w := h.widgetFor(ctx)
	w.CancelEdit(ctx.Request.Context())

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) Delete(ctx *gin.Context) {
	var uri userURI
	if !BindURI(ctx, &uri) {
		return
	}

	w := h.widgetFor(ctx)
	if err := w.Delete(ctx.Request.Context(), uri.ID); err != nil {
		respondWidgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) Sort(ctx *gin.Context) {
	var uri sortURI
	if !BindURI(ctx, &uri) {
		return
	}

	w := h.widgetFor(ctx)
	if _, err := w.SortBy(ctx.Request.Context(), uri.Key); err != nil {
		respondWidgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) GoToPage(ctx *gin.Context) {
	var uri pageURI
	if !BindURI(ctx, &uri) {
		return
	}

	w := h.widgetFor(ctx)
	w.GoToPage(ctx.Request.Context(), uri.Page)

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) Prev(ctx *gin.Context) {
	w := h.widgetFor(ctx)
	w.Prev(ctx.Request.Context())

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

func (h *WidgetHandler) Next(ctx *gin.Context) {
	w := h.widgetFor(ctx)
	w.Next(ctx.Request.Context())

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: w.Snapshot()})
}

// Reset drops the session's widget and answers with a fresh one.
func (h *WidgetHandler) Reset(ctx *gin.Context) {
	id := sessionID(ctx)
	h.sessions.End(id)

	ctx.JSON(http.StatusOK, widgetResponse{Snapshot: h.sessions.Widget(id).Snapshot()})
}

func respondWidgetError(ctx *gin.Context, err error) {
	var verr *user.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondFieldErrors(ctx, "Invalid form input", fieldErrorsFromValidation(verr))
	case errors.Is(err, user.ErrDuplicate):
		RespondConflict(ctx, "duplicate_user", user.DuplicateMessage)
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, user.ErrInvalidSortKey):
		RespondBadRequest(ctx, "Invalid sort key", nil)
	default:
		_ = ctx.Error(err)
		RespondInternal(ctx, "Could not apply widget event")
	}
}
