// Package derive is the pure filter, sort and paginate engine.
//
// Derive is a function of its inputs only: it never mutates rows, never
// performs I/O and returns the same view for the same arguments.
package derive

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/lookup"
)

// TotalPages returns ceil(count/pageSize), and at least 1.
func TotalPages(count, pageSize int) int {
	pageSize = max(1, pageSize)
	return max(1, (count+pageSize-1)/pageSize)
}

// Derive filters, sorts and paginates rows for q. The page is clamped to the
// available range.
func Derive(rows []domain.Entity, tables lookup.Tables, rules Rules, q domain.Query) domain.DerivedView {
	pageSize := max(1, q.PageSize)
	term := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]domain.Entity, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		if matchesSearch(row, tables, rules.Search, term) && matchesFilters(row, tables, rules, q.Filters) {
			filtered = append(filtered, row)
		}
	}

	if len(rules.Sort) > 0 {
		slices.SortStableFunc(filtered, comparator(rules.Sort))
	}

	total := len(filtered)
	pages := TotalPages(total, pageSize)
	page := q.Clamp(pages).Page
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return domain.DerivedView{
		Filtered:   filtered,
		Paged:      filtered[start:end:end],
		TotalCount: total,
		TotalPages: pages,
		Page:       page,
		PageSize:   pageSize,
	}
}

func matchesSearch(row domain.Entity, tables lookup.Tables, fields []FieldRef, term string) bool {
	if term == "" || len(fields) == 0 {
		return true
	}
	for _, ref := range fields {
		if strings.Contains(strings.ToLower(ref.SearchValue(row, tables)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(row domain.Entity, tables lookup.Tables, rules Rules, active map[string]string) bool {
	for name, want := range active {
		if want == "" {
			continue
		}
		f, ok := rules.Filter(name)
		if !ok || f.Remote {
			continue
		}
		got := f.Ref.Value(row, tables)
		switch f.Match {
		case MatchContains:
			if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

func comparator(keys []Sort) func(a, b domain.Entity) int {
	return func(a, b domain.Entity) int {
		for _, k := range keys {
			c := compareField(a, b, k)
			if c != 0 {
				return c
			}
		}
		return 0
	}
}

// compareField orders two rows on one key. Missing values always sort last.
func compareField(a, b domain.Entity, k Sort) int {
	var (
		c        int
		aOK, bOK bool
	)
	switch k.Kind {
	case ByNumber:
		var av, bv float64
		av, aOK = a.Number(k.Field)
		bv, bOK = b.Number(k.Field)
		c = cmp.Compare(av, bv)
	case ByTime:
		var av, bv time.Time
		av, aOK = a.Time(k.Field)
		bv, bOK = b.Time(k.Field)
		c = av.Compare(bv)
	default:
		av, bv := a.String(k.Field), b.String(k.Field)
		aOK, bOK = av != "", bv != ""
		c = strings.Compare(strings.ToLower(av), strings.ToLower(bv))
	}

	switch {
	case aOK && !bOK:
		return -1
	case !aOK && bOK:
		return 1
	case !aOK && !bOK:
		return 0
	}
	if k.Descending {
		return -c
	}
	return c
}

// Aggregate computes stats over rows, which should be the unfiltered
// collection so the figures do not depend on the current search.
func Aggregate(rows []domain.Entity, tables lookup.Tables, stats []Stat) domain.Stats {
	out := make(domain.Stats, 0, len(stats))
	for _, st := range stats {
		var value float64
		for _, row := range rows {
			if row == nil || !holdsAll(row, tables, st.Where) {
				continue
			}
			if st.Sum == "" {
				value++
				continue
			}
			if n, ok := row.Number(st.Sum); ok {
				value += n
			}
		}
		out = append(out, domain.Stat{Name: st.Name, Value: value, Amount: st.Sum != ""})
	}
	return out
}

func holdsAll(row domain.Entity, tables lookup.Tables, conds []Condition) bool {
	for _, c := range conds {
		if !c.Holds(row, tables) {
			return false
		}
	}
	return true
}
