package pagination

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Params is a parsed page/limit query pair.
type Params struct {
	Page  int
	Limit int
}

// Parse reads page and limit query values, falling back to defaults on
// anything missing or malformed. Limit is capped at maxLimit.
func Parse(pageStr, limitStr string) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Skip is the number of documents to skip for the current page.
func (p Params) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Result is the envelope every paginated endpoint returns.
type Result struct {
	Results    interface{} `json:"results"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Total      int64       `json:"total"`
}

// NewResult wraps one page of results with its paging metadata.
func NewResult(results interface{}, p Params, total int64) Result {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Result{
		Results:    results,
		Page:       p.Page,
		TotalPages: totalPages,
		Total:      total,
	}
}
