// Package lookup builds primary-key indexes over auxiliary collections so that
// foreign keys on primary records can be joined at display time without
// further round-trips.
package lookup

import (
	"strings"

	"go.trai.ch/estatedesk/internal/core/domain"
)

// KeyFunc extracts the primary key of an entity.
type KeyFunc func(domain.Entity) domain.Key

// ByField returns a KeyFunc reading the named field.
func ByField(field string) KeyFunc {
	return func(e domain.Entity) domain.Key {
		return e.Key(field)
	}
}

// Table is a read-only primary-key index. It is rebuilt wholesale on every
// fetch cycle and never mutated after construction.
type Table struct {
	rows       map[domain.Key]domain.Entity
	collisions int
}

// Resolve indexes rows by key. On duplicate keys the last row wins.
// Rows with an empty key are skipped.
func Resolve(rows []domain.Entity, keyFn KeyFunc) Table {
	t := Table{rows: make(map[domain.Key]domain.Entity, len(rows))}
	for _, row := range rows {
		k := keyFn(row)
		if k == "" {
			continue
		}
		if _, dup := t.rows[k]; dup {
			t.collisions++
		}
		t.rows[k] = row
	}
	return t
}

// Get returns the entity stored under k.
func (t Table) Get(k domain.Key) (domain.Entity, bool) {
	e, ok := t.rows[k]
	return e, ok
}

// Len returns the number of distinct keys.
func (t Table) Len() int {
	return len(t.rows)
}

// Collisions returns how many rows were shadowed by a later row with the same key.
func (t Table) Collisions() int {
	return t.collisions
}

// Field returns a field of the entity stored under k, or "" when k is absent.
func (t Table) Field(k domain.Key, field string) string {
	e, ok := t.rows[k]
	if !ok {
		return ""
	}
	return e.String(field)
}

// Label joins the non-empty fields of the entity stored under k with a space.
// It returns placeholder when k is absent or every field is empty.
func (t Table) Label(k domain.Key, placeholder string, fields ...string) string {
	e, ok := t.rows[k]
	if !ok {
		return placeholder
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := strings.TrimSpace(e.String(f)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return placeholder
	}
	return strings.Join(parts, " ")
}

// Source declares one auxiliary collection and how its rows are keyed.
type Source struct {
	// Name identifies the resulting table.
	Name     string
	Resource domain.Resource
}

// Tables holds the lookup tables of one fetch cycle, keyed by source name.
type Tables map[string]Table

// Table returns the named table. A missing table behaves as an empty one.
func (ts Tables) Table(name string) Table {
	return ts[name]
}

// ResolveAll builds one table per source from the fetched collections, which
// are matched to sources by position.
func ResolveAll(sources []Source, collections [][]domain.Entity) Tables {
	tables := make(Tables, len(sources))
	for i, src := range sources {
		var rows []domain.Entity
		if i < len(collections) {
			rows = collections[i]
		}
		tables[src.Name] = Resolve(rows, ByField(src.Resource.PrimaryKey))
	}
	return tables
}
