package models

import "math"

// Page is one slice of a paginated listing together with its navigation metadata.
type Page[T any] struct {
	Data        []T  `json:"data"`
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// MaxPage is the highest page number whose offset still fits in an int.
func MaxPage(perPage int) int {
	if perPage < 1 {
		return math.MaxInt
	}
	return math.MaxInt / perPage
}

// ClampPage limits page to 1..MaxPage(perPage).
func ClampPage(page, perPage int) int {
	return min(max(page, 1), MaxPage(perPage))
}

// Offset returns the number of rows to skip for page.
func Offset(page, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (ClampPage(page, perPage) - 1) * perPage
}

// NewPage builds the metadata for data found at page out of total rows.
// From and To are 1-based and stay nil when the page is empty.
func NewPage[T any](data []T, page, perPage, total int) Page[T] {
	if data == nil {
		data = []T{}
	}
	page = ClampPage(page, perPage)

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	p := Page[T]{
		Data:        data,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if len(data) > 0 {
		from := Offset(page, perPage) + 1
		to := from + len(data) - 1
		p.From, p.To = &from, &to
	}
	return p
}
