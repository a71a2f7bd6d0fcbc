package memory

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

// UsersRepo is the ordered in-memory user list behind one widget.
// Order is insertion order until SortBy reorders it.
type UsersRepo struct {
	mu     sync.RWMutex
	items  []user.User
	sort   *user.SortState
	lastID int64
	now    func() time.Time
}

type Option func(*UsersRepo)

// WithClock overrides the time source used to derive ids.
func WithClock(now func() time.Time) Option {
	return func(r *UsersRepo) {
		r.now = now
	}
}

func NewUsersRepo(opts ...Option) *UsersRepo {
	r := &UsersRepo{
		items: make([]user.User, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *UsersRepo) Add(name, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(0, name, email) {
		return user.User{}, user.ErrDuplicate
	}

	u := user.User{
		ID:    r.nextID(),
		Name:  name,
		Email: email,
	}
	r.items = append(r.items, u)

	return u, nil
}

func (r *UsersRepo) Update(id int64, name, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return user.User{}, user.ErrNotFound
	}

	if r.conflicts(id, name, email) {
		return user.User{}, user.ErrDuplicate
	}

	r.items[idx].Name = name
	r.items[idx].Email = email

	return r.items[idx], nil
}

func (r *UsersRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return user.ErrNotFound
	}

	r.items = slices.Delete(r.items, idx, idx+1)
	return nil
}

// SortBy flips to descending when key is already the ascending sort,
// otherwise sorts ascending on key. The stored order itself changes.
func (r *UsersRepo) SortBy(key user.SortKey) (user.SortState, error) {
	if !key.IsValid() {
		return user.SortState{}, user.ErrInvalidSortKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := user.Ascending
	if r.sort != nil && r.sort.Key == key && r.sort.Direction == user.Ascending {
		dir = user.Descending
	}

	state := user.SortState{Key: key, Direction: dir}
	r.sort = &state

	slices.SortStableFunc(r.items, func(a, b user.User) int {
		c := strings.Compare(a.Field(key), b.Field(key))
		if dir == user.Descending {
			return -c
		}
		return c
	})

	return state, nil
}

func (r *UsersRepo) Get(id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return user.User{}, user.ErrNotFound
	}
	return r.items[idx], nil
}

// List returns a copy of the records in stored order.
func (r *UsersRepo) List() []user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.items)
}

func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Sort reports the active sort, nil before the first SortBy.
func (r *UsersRepo) Sort() *user.SortState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.sort == nil {
		return nil
	}
	s := *r.sort
	return &s
}

// conflicts reports a case-insensitive name or email match on any record
// other than exclude. Ids start above zero so 0 excludes nothing.
func (r *UsersRepo) conflicts(exclude int64, name, email string) bool {
	for _, u := range r.items {
		if u.ID == exclude {
			continue
		}
		if strings.EqualFold(u.Name, name) || strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UsersRepo) indexOf(id int64) int {
	return slices.IndexFunc(r.items, func(u user.User) bool { return u.ID == id })
}

func (r *UsersRepo) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}
