package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/geocoder89/userdesk/internal/widget"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

const pageHTML = `{{define "page"}}<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>User Management</title>
    <style>
      body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; }
      table { width: 100%; border-collapse: collapse; margin: 1rem 0; }
      th, td { text-align: left; padding: .4rem; border-bottom: 1px solid #ddd; }
      .error { color: #b00020; margin-left: .5rem; }
      .alert { background: #fdecea; border: 1px solid #b00020; padding: .6rem; }
      .inline { display: inline; }
    </style>
  </head>
  <body>
    <div class="user-management">
      {{with .Alert}}<div class="alert" role="alert">{{.}}</div>{{end}}
      <form method="post" action="/ui/submit">
        <div>
          <label for="name">Name:</label>
          <input id="name" name="name" value="{{.Form.Name}}" />
          {{with index .Form.Errors "name"}}<span class="error">{{.}}</span>{{end}}
        </div>
        <div>
          <label for="email">Email:</label>
          <input id="email" name="email" value="{{.Form.Email}}" />
          {{with index .Form.Errors "email"}}<span class="error">{{.}}</span>{{end}}
        </div>
        <button type="submit">{{.Form.SubmitLabel}}</button>
      </form>
      {{if eq .Form.Mode "edit"}}
      <form method="post" action="/ui/cancel" class="inline"><button type="submit">Cancel</button></form>
      {{end}}

      <table>
        <thead>
          <tr>
            <th><form method="post" action="/ui/sort/name" class="inline"><button type="submit">Name {{arrow .Sort "name"}}</button></form></th>
            <th><form method="post" action="/ui/sort/email" class="inline"><button type="submit">Email {{arrow .Sort "email"}}</button></form></th>
            <th>Actions</th>
          </tr>
        </thead>
        <tbody>
          {{range .Page.Items}}
          <tr>
            <td>{{.Name}}</td>
            <td>{{.Email}}</td>
            <td class="actions">
              <form method="post" action="/ui/users/{{.ID}}/edit" class="inline"><button type="submit">Edit</button></form>
              <form method="post" action="/ui/users/{{.ID}}/delete" class="inline"><button type="submit">Delete</button></form>
            </td>
          </tr>
          {{end}}
        </tbody>
      </table>

      <div class="pagination">
        <form method="post" action="/ui/prev" class="inline"><button type="submit"{{if not .Page.HasPrev}} disabled{{end}}>Prev</button></form>
        {{$current := .Page.Page}}
        {{range .Page.Pages}}
        <form method="post" action="/ui/page/{{.}}" class="inline"><button type="submit"{{if eq . $current}} disabled{{end}}>{{.}}</button></form>
        {{end}}
        <form method="post" action="/ui/next" class="inline"><button type="submit"{{if not .Page.HasNext}} disabled{{end}}>Next</button></form>
      </div>
    </div>
  </body>
</html>{{end}}`

var pageTemplate = template.Must(template.New("userdesk").Funcs(template.FuncMap{
	"arrow": sortArrow,
}).Parse(pageHTML))

func sortArrow(s *user.SortState, key string) string {
	if s == nil || string(s.Key) != key {
		return ""
	}
	return s.Direction.Arrow()
}

// PageHandler serves the rendered widget and the plain form posts behind
// its buttons. Every post redirects back to the page.
type PageHandler struct {
	sessions Sessions
}

func NewPageHandler(sessions Sessions) *PageHandler {
	return &PageHandler{sessions: sessions}
}

func (h *PageHandler) Render(ctx *gin.Context) {
	var q snapshotQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.String(http.StatusBadRequest, "invalid page")
		return
	}

	w := h.sessions.Widget(sessionID(ctx))
	// post redirects carry the current page; only a different page is an event
	if q.Page != nil && *q.Page != w.CurrentPage() {
		w.GoToPage(ctx.Request.Context(), *q.Page)
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Render(http.StatusOK, render.HTML{
		Template: pageTemplate,
		Name:     "page",
		Data:     w.Snapshot(),
	})
}

func (h *PageHandler) Submit(ctx *gin.Context) {
	req := user.SubmitRequest{
		Name:  ctx.PostForm("name"),
		Email: ctx.PostForm("email"),
	}

	// validation and duplicate errors are kept on the widget and shown
	// on the next render
	w := h.sessions.Widget(sessionID(ctx))
	_, _, err := w.Submit(ctx.Request.Context(), req)
	var verr *user.ValidationError
	if err != nil && !errors.As(err, &verr) && !errors.Is(err, user.ErrDuplicate) {
		h.fail(ctx, err)
		return
	}

	backToPage(ctx, w)
}

func (h *PageHandler) BeginEdit(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	w := h.sessions.Widget(sessionID(ctx))
	if err := w.BeginEdit(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, err)
		return
	}

	backToPage(ctx, w)
}

func (h *PageHandler) Delete(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	w := h.sessions.Widget(sessionID(ctx))
	if err := w.Delete(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, err)
		return
	}

	backToPage(ctx, w)
}

func (h *PageHandler) CancelEdit(ctx *gin.Context) {
	w := h.sessions.Widget(sessionID(ctx))
	w.CancelEdit(ctx.Request.Context())
	backToPage(ctx, w)
}

func (h *PageHandler) Sort(ctx *gin.Context) {
	key := user.SortKey(ctx.Param("key"))

	w := h.sessions.Widget(sessionID(ctx))
	if _, err := w.SortBy(ctx.Request.Context(), key); err != nil {
		h.fail(ctx, err)
		return
	}

	backToPage(ctx, w)
}

func (h *PageHandler) GoToPage(ctx *gin.Context) {
	n, err := strconv.Atoi(ctx.Param("page"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid page")
		return
	}

	w := h.sessions.Widget(sessionID(ctx))
	w.GoToPage(ctx.Request.Context(), n)
	backToPage(ctx, w)
}

func (h *PageHandler) Prev(ctx *gin.Context) {
	w := h.sessions.Widget(sessionID(ctx))
	w.Prev(ctx.Request.Context())
	backToPage(ctx, w)
}

func (h *PageHandler) Next(ctx *gin.Context) {
	w := h.sessions.Widget(sessionID(ctx))
	w.Next(ctx.Request.Context())
	backToPage(ctx, w)
}

func (h *PageHandler) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		ctx.String(http.StatusNotFound, "user not found")
	case errors.Is(err, user.ErrInvalidSortKey):
		ctx.String(http.StatusBadRequest, "invalid sort key")
	default:
		_ = ctx.Error(err)
		ctx.String(http.StatusInternalServerError, "something went wrong")
	}
}

func parseUserID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		ctx.String(http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func sessionID(ctx *gin.Context) string {
	return middlewares.SessionIDFromContext(ctx)
}

func backToPage(ctx *gin.Context, w *widget.Widget) {
	ctx.Redirect(http.StatusSeeOther, "/?page="+strconv.Itoa(w.CurrentPage()))
}
