package widget

import "github.com/geocoder89/userdesk/internal/domain/user"

// PageSize is the fixed number of rows per page.
const PageSize = 5

// Page is the visible slice of the list plus what the pagination
// controls need to render.
type Page struct {
	Items      []user.User `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
	TotalItems int         `json:"totalItems"`
	HasPrev    bool        `json:"hasPrev"`
	HasNext    bool        `json:"hasNext"`
	Pages      []int       `json:"pages"`
}

// TotalPages is ceil(total/size), never less than one.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func ClampPage(page, total, size int) int {
	last := TotalPages(total, size)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Project returns records[(page-1)*size : page*size] with page clamped
// into range. It does not modify records.
func Project(records []user.User, page, size int) Page {
	if size <= 0 {
		size = PageSize
	}

	total := len(records)
	last := TotalPages(total, size)
	page = ClampPage(page, total, size)

	start := (page - 1) * size
	end := min(start+size, total)

	items := make([]user.User, end-start)
	copy(items, records[start:end])

	pages := make([]int, last)
	for i := range pages {
		pages[i] = i + 1
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalPages: last,
		TotalItems: total,
		HasPrev:    page > 1,
		HasNext:    page < last,
		Pages:      pages,
	}
}
