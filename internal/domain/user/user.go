package user

// User is one row of the widget's list.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmitRequest is what the form posts, in both create and edit mode.
type SubmitRequest struct {
	Name  string `json:"name" form:"name" validate:"required"`
	Email string `json:"email" form:"email" validate:"required,useremail"`
}

type SortKey string

const (
	SortByName  SortKey = "name"
	SortByEmail SortKey = "email"
)

func (k SortKey) IsValid() bool {
	switch k {
	case SortByName, SortByEmail:
		return true
	default:
		return false
	}
}

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Arrow is the header marker shown next to the active sort column.
func (d Direction) Arrow() string {
	if d == Descending {
		return "↓"
	}
	return "↑"
}

type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Field returns the value the given key sorts on.
func (u User) Field(k SortKey) string {
	if k == SortByEmail {
		return u.Email
	}
	return u.Name
}
