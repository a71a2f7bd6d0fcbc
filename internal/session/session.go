package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/userdesk/internal/cache"
	"github.com/geocoder89/userdesk/internal/widget"
	"github.com/google/uuid"
)

// Gauge is updated with the number of live sessions.
type Gauge interface {
	Set(float64)
}

// Store maps session ids to the widget each session owns. A widget lives
// until its session has been idle for the configured TTL.
type Store struct {
	widgets   *cache.Cache[*widget.Widget]
	newWidget func() *widget.Widget
	active    Gauge
	log       *slog.Logger
}

func NewStore(ttl time.Duration, newWidget func() *widget.Widget, active Gauge, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		widgets:   cache.New[*widget.Widget](ttl),
		newWidget: newWidget,
		active:    active,
		log:       log,
	}
}

// NewID mints a session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID would return.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Widget returns the session's widget, creating it on first use.
func (s *Store) Widget(id string) *widget.Widget {
	w, created := s.widgets.GetOrCreate(id, s.newWidget)
	if created {
		s.log.Debug("session_started", "session_id", id)
		s.report()
	}
	return w
}

// End forgets the session. The next request with the same id starts over.
func (s *Store) End(id string) {
	s.widgets.Delete(id)
	s.report()
}

func (s *Store) Len() int {
	return s.widgets.Len()
}

// Sweep drops idle sessions now.
func (s *Store) Sweep() int {
	n := s.widgets.Sweep()
	s.report()
	return n
}

// Run sweeps idle sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	s.widgets.RunSweeper(ctx, interval, func(removed, remaining int) {
		if removed > 0 {
			s.log.Info("sessions_swept", "removed", removed, "remaining", remaining)
		}
		s.report()
	})
}

func (s *Store) report() {
	if s.active != nil {
		s.active.Set(float64(s.widgets.Len()))
	}
}
