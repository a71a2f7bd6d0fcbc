package widget

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/repo/memory"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ListStore is the list the widget manages.
type ListStore interface {
	Store
	Delete(id int64) error
	SortBy(key user.SortKey) (user.SortState, error)
	Get(id int64) (user.User, error)
	List() []user.User
	Len() int
	Sort() *user.SortState
}

// EventRecorder receives one call per handled widget event.
type EventRecorder interface {
	WidgetEvent(event, result string)
}

type nopRecorder struct{}

func (nopRecorder) WidgetEvent(string, string) {}

// Widget owns one user list, its form and its pagination state. Events are
// applied one at a time.
type Widget struct {
	mu     sync.Mutex
	store  ListStore
	form   Form
	page   int
	alert  string
	log    *slog.Logger
	rec    EventRecorder
	tracer trace.Tracer
}

type Option func(*Widget)

func WithStore(s ListStore) Option {
	return func(w *Widget) { w.store = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) { w.log = l }
}

func WithRecorder(r EventRecorder) Option {
	return func(w *Widget) { w.rec = r }
}

func New(opts ...Option) *Widget {
	w := &Widget{
		page:   1,
		log:    slog.Default(),
		rec:    nopRecorder{},
		tracer: otel.Tracer("github.com/geocoder89/userdesk/internal/widget"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.store == nil {
		w.store = memory.NewUsersRepo()
	}
	return w
}

// FormView is the serialisable state of the form.
type FormView struct {
	Mode        Mode              `json:"mode"`
	EditingID   *int64            `json:"editingId,omitempty"`
	SubmitLabel string            `json:"submitLabel"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Snapshot is everything needed to render the widget.
type Snapshot struct {
	Form  FormView        `json:"form"`
	Sort  *user.SortState `json:"sort"`
	Page  Page            `json:"page"`
	Alert string          `json:"alert,omitempty"`
}

func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.snapshot()
}

// Submit routes the form to create or update. It returns the stored record
// and whether it was newly created.
func (w *Widget) Submit(ctx context.Context, req user.SubmitRequest) (user.User, bool, error) {
	_, span := w.tracer.Start(ctx, "widget.Submit")
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = ""

	event := "add"
	if w.form.Mode() == ModeEdit {
		event = "update"
	}
	span.SetAttributes(attribute.String("widget.event", event))

	u, created, err := w.form.Submit(w.store, req)
	if err != nil {
		var verr *user.ValidationError
		switch {
		case errors.As(err, &verr):
			w.rec.WidgetEvent(event, "invalid")
		case errors.Is(err, user.ErrDuplicate):
			w.alert = user.DuplicateMessage
			w.rec.WidgetEvent(event, "duplicate")
			w.log.DebugContext(ctx, "duplicate_rejected", "event", event)
		default:
			w.rec.WidgetEvent(event, "error")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return user.User{}, false, err
	}

	w.clampPage()
	w.rec.WidgetEvent(event, "ok")
	if created {
		w.log.DebugContext(ctx, "user_added", "user_id", u.ID)
	} else {
		w.log.DebugContext(ctx, "user_updated", "user_id", u.ID)
	}
	span.SetAttributes(attribute.Int64("user.id", u.ID))

	return u, created, nil
}

func (w *Widget) BeginEdit(ctx context.Context, id int64) error {
	_, span := w.tracer.Start(ctx, "widget.BeginEdit", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = ""

	u, err := w.store.Get(id)
	if err != nil {
		w.rec.WidgetEvent("edit", "not_found")
		return err
	}

	w.form.BeginEdit(u)
	w.rec.WidgetEvent("edit", "ok")
	return nil
}

func (w *Widget) CancelEdit(ctx context.Context) {
	_, span := w.tracer.Start(ctx, "widget.CancelEdit")
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.alert = ""
	w.form.Reset()
	w.rec.WidgetEvent("cancel", "ok")
}

// Delete removes a record. Deleting the record under edit puts the form
// back into create mode.
func (w *Widget) Delete(ctx context.Context, id int64) error {
	_, span := w.tracer.Start(ctx, "widget.Delete", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = ""

	if err := w.store.Delete(id); err != nil {
		w.rec.WidgetEvent("delete", "not_found")
		return err
	}

	if u, ok := w.form.Editing(); ok && u.ID == id {
		w.form.Reset()
	}

	w.clampPage()
	w.rec.WidgetEvent("delete", "ok")
	w.log.DebugContext(ctx, "user_deleted", "user_id", id)
	return nil
}

func (w *Widget) SortBy(ctx context.Context, key user.SortKey) (user.SortState, error) {
	_, span := w.tracer.Start(ctx, "widget.SortBy", trace.WithAttributes(attribute.String("sort.key", string(key))))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.alert = ""

	state, err := w.store.SortBy(key)
	if err != nil {
		w.rec.WidgetEvent("sort", "invalid")
		return user.SortState{}, err
	}

	w.rec.WidgetEvent("sort", "ok")
	return state, nil
}

// CurrentPage is the page the widget is showing.
func (w *Widget) CurrentPage() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.page
}

// GoToPage moves to page n, clamped into the valid range.
func (w *Widget) GoToPage(ctx context.Context, n int) int {
	_, span := w.tracer.Start(ctx, "widget.GoToPage", trace.WithAttributes(attribute.Int("page", n)))
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.setPage(n)
}

// Prev is a no-op on the first page.
func (w *Widget) Prev(ctx context.Context) int {
	return w.step(ctx, "widget.Prev", -1)
}

// Next is a no-op on the last page.
func (w *Widget) Next(ctx context.Context) int {
	return w.step(ctx, "widget.Next", 1)
}

func (w *Widget) step(ctx context.Context, op string, delta int) int {
	_, span := w.tracer.Start(ctx, op)
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.setPage(w.page + delta)
}

func (w *Widget) setPage(n int) int {
	w.alert = ""
	w.page = ClampPage(n, w.store.Len(), PageSize)
	w.rec.WidgetEvent("paginate", "ok")
	return w.page
}

// clampPage keeps the current page inside the new page count after the
// list grows or shrinks. Callers hold w.mu.
func (w *Widget) clampPage() {
	w.page = ClampPage(w.page, w.store.Len(), PageSize)
}

func (w *Widget) snapshot() Snapshot {
	fv := FormView{
		Mode:        w.form.Mode(),
		SubmitLabel: w.form.SubmitLabel(),
		Name:        w.form.Name,
		Email:       w.form.Email,
	}
	if u, ok := w.form.Editing(); ok {
		id := u.ID
		fv.EditingID = &id
	}
	if len(w.form.Errors) > 0 {
		fv.Errors = maps.Clone(w.form.Errors)
	}

	return Snapshot{
		Form:  fv,
		Sort:  w.store.Sort(),
		Page:  Project(w.store.List(), w.page, PageSize),
		Alert: w.alert,
	}
}
