package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int for every accepted limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the pagination defaults.
func DefaultParams() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// Offset returns the zero-based index of the first item on the page. It
// saturates at math.MaxInt instead of overflowing.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// FromRequest extracts page and limit from the query string. Absent values
// take the defaults; malformed or out-of-range values are reported per field.
func FromRequest(r *http.Request) (Params, map[string]string) {
	p := DefaultParams()
	fields := map[string]string{}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fields["page"] = "must be an integer"
		case v < 1:
			fields["page"] = "must be greater than or equal to 1"
		case v > MaxPage:
			fields["page"] = fmt.Sprintf("must be less than or equal to %d", MaxPage)
		default:
			p.Page = v
		}
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			fields["limit"] = "must be an integer"
		case v < 1:
			fields["limit"] = "must be greater than or equal to 1"
		case v > MaxLimit:
			fields["limit"] = fmt.Sprintf("must be less than or equal to %d", MaxLimit)
		default:
			p.Limit = v
		}
	}

	if len(fields) == 0 {
		return p, nil
	}
	return p, fields
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, total int, params Params) Result[T] {
	totalPages := total / params.Limit
	if total%params.Limit > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Empty is the result for a page past the end of the collection. It reports
// no totals and no neighbours regardless of the requested page.
func Empty[T any](params Params) Result[T] {
	return Result[T]{
		Data:  []T{},
		Page:  params.Page,
		Limit: params.Limit,
	}
}
