package derive

import (
	"net/url"
	"slices"
	"strings"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/lookup"
)

// FieldRef names a value reachable from a row, either directly or through a
// lookup table joined on a foreign key.
type FieldRef struct {
	// Table is the lookup table to join; empty for direct fields.
	Table string
	// Via is the foreign-key field on the row.
	Via string
	// Fields are joined with a space to form the value.
	Fields []string
	// Placeholder is the value of a join whose key has no match.
	Placeholder string
	// SearchPlaceholder lets free-text search match the placeholder of a
	// missed join. By default a missed join matches no search term.
	SearchPlaceholder bool
}

// Direct references fields of the row itself.
func Direct(fields ...string) FieldRef {
	return FieldRef{Fields: fields}
}

// Joined references fields of the entity that row.via points to in table.
func Joined(table, via string, fields ...string) FieldRef {
	return FieldRef{Table: table, Via: via, Fields: fields}
}

// Or sets the placeholder rendered when the join misses.
func (f FieldRef) Or(placeholder string) FieldRef {
	f.Placeholder = placeholder
	return f
}

// Searchable makes the placeholder visible to free-text search.
func (f FieldRef) Searchable() FieldRef {
	f.SearchPlaceholder = true
	return f
}

// SearchValue resolves the reference for free-text search. A missed join
// yields "" unless the placeholder was made searchable.
func (f FieldRef) SearchValue(row domain.Entity, tables lookup.Tables) string {
	if f.Table != "" && !f.SearchPlaceholder {
		return tables.Table(f.Table).Label(row.Key(f.Via), "", f.Fields...)
	}
	return f.Value(row, tables)
}

// Value resolves the reference against row. A missing join yields the
// placeholder, never an error.
func (f FieldRef) Value(row domain.Entity, tables lookup.Tables) string {
	if f.Table != "" {
		return tables.Table(f.Table).Label(row.Key(f.Via), f.Placeholder, f.Fields...)
	}
	parts := make([]string, 0, len(f.Fields))
	for _, name := range f.Fields {
		if v := strings.TrimSpace(row.String(name)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Match selects how a structured filter compares values.
type Match int

const (
	// MatchExact requires the row value to equal the filter value.
	MatchExact Match = iota
	// MatchContains requires a case-insensitive substring match.
	MatchContains
)

// Filter declares a structured filter of a view.
type Filter struct {
	Name  string
	Label string
	Ref   FieldRef
	Match Match
	// Remote filters are sent to the backend as Param and are not applied in memory.
	Remote bool
	Param  string
	// Options lists the accepted values, when the set is closed.
	Options []string
}

// SortKind selects the comparison used for a sort key.
type SortKind int

const (
	// ByText compares case-insensitively.
	ByText SortKind = iota
	// ByNumber compares numerically.
	ByNumber
	// ByTime compares parsed timestamps.
	ByTime
)

// Sort is one key of a view's sort order. Rows missing the value sort last.
type Sort struct {
	Field      string
	Kind       SortKind
	Descending bool
}

// Condition holds when a referenced value is (or, with Not, is not) one of In.
type Condition struct {
	Ref FieldRef
	In  []string
	Not bool
}

// Holds evaluates the condition against row.
func (c Condition) Holds(row domain.Entity, tables lookup.Tables) bool {
	return slices.Contains(c.In, c.Ref.Value(row, tables)) != c.Not
}

// Stat declares an aggregate computed over the unfiltered collection.
type Stat struct {
	Name string
	// Where restricts the rows counted or summed; all conditions must hold.
	Where []Condition
	// Sum names a numeric field to add up. Empty counts rows instead.
	Sum string
}

// Rules are the per-view declarations the engine derives from.
type Rules struct {
	Search  []FieldRef
	Filters []Filter
	Sort    []Sort
	Stats   []Stat
}

// Filter returns the declared filter called name.
func (r Rules) Filter(name string) (Filter, bool) {
	for _, f := range r.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

// RemoteParams returns the query parameters of the remote filters active in q.
// An empty result means the fetch is cacheable.
func (r Rules) RemoteParams(q domain.Query) url.Values {
	params := url.Values{}
	for _, f := range r.Filters {
		if !f.Remote {
			continue
		}
		if v := q.Filter(f.Name); v != "" {
			params.Set(f.Param, v)
		}
	}
	return params
}
