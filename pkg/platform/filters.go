package platform

import "time"

// FilterKind is the semantic kind of a declared filter.
type FilterKind string

const (
	FilterText      FilterKind = "text"
	FilterDateRange FilterKind = "dateRange"
	FilterSelect    FilterKind = "select"
	FilterToggles   FilterKind = "toggles"
)

// FilterOption is one choice of a select filter.
type FilterOption struct {
	Label string
	Value string // empty means "no restriction"
}

// FilterToggle is one named boolean of a toggles filter.
type FilterToggle struct {
	Key     string
	Title   string
	Default bool
}

// FilterSpec declares one filter a platform understands. The queue
// never interprets filter values; it only forwards them into the
// adapter's query method.
type FilterSpec struct {
	Key     string
	Title   string
	Kind    FilterKind
	Options []FilterOption // select only
	Toggles []FilterToggle // toggles only
	Default any
}

// DateRange is an inclusive bound; either side may be zero for open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Filters is an open mapping from filter keys to values. Adapters
// alone know how to encode them into query parameters.
type Filters map[string]any

// Text returns the string value under key, if any.
func (f Filters) Text(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// Toggle returns the boolean value under key.
func (f Filters) Toggle(key string) bool {
	v, _ := f[key].(bool)
	return v
}

// Range returns the date range under key, if any.
func (f Filters) Range(key string) (DateRange, bool) {
	v, ok := f[key].(DateRange)
	return v, ok
}

// DefaultValues builds the initial filter values declared by specs.
func DefaultValues(specs []FilterSpec) Filters {
	out := Filters{}
	for _, spec := range specs {
		if spec.Default != nil {
			out[spec.Key] = spec.Default
		}
		if spec.Kind == FilterToggles {
			for _, t := range spec.Toggles {
				out[t.Key] = t.Default
			}
		}
	}
	return out
}
