package domain

// DerivedView is the filtered, sorted and paginated projection of a collection.
// It is recomputed on every query or data change and never stored.
type DerivedView struct {
	Filtered   []Entity
	Paged      []Entity
	TotalCount int
	TotalPages int
	Page       int
	PageSize   int
}

// HasNext reports whether a later page exists.
func (v DerivedView) HasNext() bool {
	return v.Page < v.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (v DerivedView) HasPrev() bool {
	return v.Page > 1
}

// First returns the 1-based position of the first row on the page, or 0 when empty.
func (v DerivedView) First() int {
	if len(v.Paged) == 0 {
		return 0
	}
	return (v.Page-1)*v.PageSize + 1
}

// Last returns the 1-based position of the last row on the page, or 0 when empty.
func (v DerivedView) Last() int {
	if len(v.Paged) == 0 {
		return 0
	}
	return v.First() + len(v.Paged) - 1
}

// Stat is one aggregate shown alongside a list.
type Stat struct {
	Name  string
	Value float64
	// Amount marks sums of monetary fields, rendered with two decimals.
	Amount bool
}

// Stats is an ordered set of aggregates.
type Stats []Stat

// Get returns the value of the named stat.
func (s Stats) Get(name string) (float64, bool) {
	for _, st := range s {
		if st.Name == name {
			return st.Value, true
		}
	}
	return 0, false
}

// Status is the fetch state of a list controller.
type Status int

const (
	// StatusIdle means no fetch was issued yet.
	StatusIdle Status = iota
	// StatusLoading means the current generation has not settled.
	StatusLoading
	// StatusLoaded means the current generation was applied.
	StatusLoaded
	// StatusFailed means the current generation failed with no prior data to show.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ViewState is the snapshot a list controller exposes to presentation.
type ViewState struct {
	Status Status
	// Err is the last load failure of the current generation.
	Err error
	// Retryable is set when an initial load failed and Refresh may be retried.
	Retryable bool
	// Stale is set when a background refresh failed and View still shows the last good data.
	Stale      bool
	View       DerivedView
	Stats      Stats
	Query      Query
	Generation uint64
}

// Loading reports whether a fetch for the current generation is in flight.
func (s ViewState) Loading() bool {
	return s.Status == StatusLoading
}
