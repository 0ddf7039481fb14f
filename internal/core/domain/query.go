package domain

import "maps"

// Query is the search, filter and pagination state owned by a list controller.
// It is a value type; every With method returns a modified copy.
type Query struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

// NewQuery returns an empty query on page 1.
func NewQuery(pageSize int) Query {
	if pageSize < 1 {
		pageSize = 1
	}
	return Query{Page: 1, PageSize: pageSize}
}

// WithSearch sets the free-text term. A changed term resets the page to 1.
func (q Query) WithSearch(term string) Query {
	if term == q.Search {
		return q
	}
	q.Search = term
	q.Page = 1
	return q
}

// WithFilter sets a structured filter. An empty value removes the filter.
// A changed filter resets the page to 1.
func (q Query) WithFilter(name, value string) Query {
	if q.Filters[name] == value {
		return q
	}
	filters := maps.Clone(q.Filters)
	if filters == nil {
		filters = make(map[string]string, 1)
	}
	if value == "" {
		delete(filters, name)
	} else {
		filters[name] = value
	}
	q.Filters = filters
	q.Page = 1
	return q
}

// WithPage moves to page n. Pages below 1 become 1; the upper bound is applied
// when the view is derived.
func (q Query) WithPage(n int) Query {
	q.Page = max(1, n)
	return q
}

// Filter returns the active value of a filter, or "".
func (q Query) Filter(name string) string {
	return q.Filters[name]
}

// Clamp bounds the page to [1, max(1, totalPages)].
func (q Query) Clamp(totalPages int) Query {
	q.Page = min(max(1, q.Page), max(1, totalPages))
	return q
}
