package widget

import (
	"errors"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

const (
	LabelAdd    = "Add User"
	LabelUpdate = "Update User"
)

// Store is the part of the list store the form writes to.
type Store interface {
	Add(name, email string) (user.User, error)
	Update(id int64, name, email string) (user.User, error)
}

// Form holds the input fields, their errors and the edit cursor.
type Form struct {
	Name    string
	Email   string
	Errors  map[string]string
	editing *user.User
}

func (f *Form) Mode() Mode {
	if f.editing != nil {
		return ModeEdit
	}
	return ModeCreate
}

func (f *Form) SubmitLabel() string {
	if f.editing != nil {
		return LabelUpdate
	}
	return LabelAdd
}

// Editing returns the record under edit, if any.
func (f *Form) Editing() (user.User, bool) {
	if f.editing == nil {
		return user.User{}, false
	}
	return *f.editing, true
}

// BeginEdit moves the form to edit mode pre-filled with u.
func (f *Form) BeginEdit(u user.User) {
	f.editing = &u
	f.Name = u.Name
	f.Email = u.Email
	f.Errors = nil
}

// Reset clears fields, errors and the edit cursor.
func (f *Form) Reset() {
	f.Name = ""
	f.Email = ""
	f.Errors = nil
	f.editing = nil
}

// Submit validates req and hands it to the store: Add in create mode,
// Update of the edited record in edit mode. On any error the entered values
// stay in the form and the cursor is kept. On success the form is reset.
func (f *Form) Submit(s Store, req user.SubmitRequest) (u user.User, created bool, err error) {
	f.Name = req.Name
	f.Email = req.Email
	f.Errors = nil

	if err := req.Validate(); err != nil {
		var verr *user.ValidationError
		if errors.As(err, &verr) {
			f.Errors = verr.Messages()
		}
		return user.User{}, false, err
	}

	if f.editing != nil {
		u, err = s.Update(f.editing.ID, req.Name, req.Email)
	} else {
		u, err = s.Add(req.Name, req.Email)
		created = true
	}
	if err != nil {
		return user.User{}, false, err
	}

	f.Reset()
	return u, created, nil
}
