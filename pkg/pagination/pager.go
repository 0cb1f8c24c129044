package pagination

import "math"

// Pager summarizes the position of one page within a named result set.
type Pager struct {
	For         string `json:"for"`
	Count       int    `json:"count"`
	TotalPages  int    `json:"totalpages"`
	Current     int    `json:"current"`
	ShowingFrom int    `json:"showing_from"`
	ShowingTo   int    `json:"showing_to"`
}

// NewPager builds the pager of page (1-based) of size limit, where shown is the
// number of records actually on the page.
func NewPager(name string, count, page, limit, shown int) Pager {
	if page < 1 {
		page = 1
	}
	return NewPagerAt(name, count, (page-1)*limit, limit, shown)
}

// NewPagerAt builds the pager of the page starting at offset (0-based).
func NewPagerAt(name string, count, offset, limit, shown int) Pager {
	if offset < 0 {
		offset = 0
	}
	totalPages, current := 0, 1
	if limit > 0 {
		totalPages = int(math.Ceil(float64(count) / float64(limit)))
		current = offset/limit + 1
	}

	return Pager{
		For:         name,
		Count:       count,
		TotalPages:  totalPages,
		Current:     current,
		ShowingFrom: offset + 1,
		ShowingTo:   offset + shown,
	}
}

// Slice returns the [offset, offset+limit) window of items, clamped to its bounds.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit >= 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}
