package domain

import "fmt"

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// Page is the envelope returned by every paginated listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	PageNumber  int64 `json:"pageNumber"`
	PageSize    int64 `json:"pageSize"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPage derives the envelope fields from the slice, the total match count
// and the normalized page request.
func NewPage[T any](items []T, totalItems, pageNumber, pageSize int64) Page[T] {
	totalPages := (totalItems + pageSize - 1) / pageSize
	return Page[T]{
		Items:       items,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		HasPrevPage: pageNumber > 1,
		HasNextPage: pageNumber < totalPages,
	}
}

// MapPage converts the item type of a page, keeping the envelope intact.
func MapPage[A, B any](p Page[A], f func(A) B) Page[B] {
	items := make([]B, len(p.Items))
	for i, a := range p.Items {
		items[i] = f(a)
	}
	return Page[B]{
		Items:       items,
		TotalItems:  p.TotalItems,
		TotalPages:  p.TotalPages,
		PageNumber:  p.PageNumber,
		PageSize:    p.PageSize,
		HasPrevPage: p.HasPrevPage,
		HasNextPage: p.HasNextPage,
	}
}

// PageRequest carries paging and sorting parameters into repositories.
type PageRequest struct {
	Page  int64
	Limit int64
	Sort  SortSpec
}

// Normalized returns a copy with absent or falsy page/limit replaced by the
// defaults (1 and 10).
func (r PageRequest) Normalized() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPageNumber
	}
	if r.Limit < 1 {
		r.Limit = DefaultPageSize
	}
	return r
}

// Skip is the number of documents to drop before the page slice.
func (r PageRequest) Skip() int64 {
	return (r.Page - 1) * r.Limit
}

// SortField is one ordering criterion; earlier entries take precedence.
type SortField struct {
	Field string
	Desc  bool
}

// SortSpec is an ordered list of sort criteria.
type SortSpec []SortField

// ParseSort converts a sort specification into a SortSpec. Accepted inputs
// are a single string of space-separated field names or a slice of strings,
// each optionally prefixed with '-' for descending order. Anything else is
// invalid input.
func ParseSort(v any) (SortSpec, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return parseSortTerms(splitTerms(s))
	case []string:
		var terms []string
		for _, e := range s {
			terms = append(terms, splitTerms(e)...)
		}
		return parseSortTerms(terms)
	default:
		return nil, fmt.Errorf("%w: sort must be a string or a list of strings", ErrInvalidInput)
	}
}

func splitTerms(s string) []string {
	var terms []string
	start := -1
	for i, c := range s {
		if c == ' ' {
			if start >= 0 {
				terms = append(terms, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		terms = append(terms, s[start:])
	}
	return terms
}

func parseSortTerms(terms []string) (SortSpec, error) {
	var spec SortSpec
	for _, t := range terms {
		if t == "" || t == "-" {
			return nil, fmt.Errorf("%w: empty sort field", ErrInvalidInput)
		}
		if t[0] == '-' {
			spec = append(spec, SortField{Field: t[1:], Desc: true})
		} else {
			spec = append(spec, SortField{Field: t})
		}
	}
	return spec, nil
}
