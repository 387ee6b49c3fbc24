package domain

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps Skip well inside int64 for any allowed limit.
	MaxPage = math.MaxInt32
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

func NewPage(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func (p Page) Result(total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
