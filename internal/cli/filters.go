package cli

import (
	"fmt"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

// filterFlags are the filter values shared by purge and dump.
type filterFlags struct {
	content string
	after   string
	before  string
	has     string
	oldest  bool
}

// build turns the flag values into platform filters, starting from the
// platform's declared defaults. Flags for filters the platform does not
// declare are rejected instead of silently ignored.
func (f *filterFlags) build(p platform.Platform) (platform.Filters, error) {
	specs := p.FilterSpecs()
	known := make(map[string]bool)
	for _, spec := range specs {
		known[spec.Key] = true
		for _, t := range spec.Toggles {
			known[t.Key] = true
		}
	}

	filters := platform.DefaultValues(specs)

	if f.content != "" {
		if !known["content"] {
			return nil, fmt.Errorf("%s does not support a text filter", p.Name())
		}
		filters["content"] = f.content
	}

	if f.after != "" || f.before != "" {
		if !known["range"] {
			return nil, fmt.Errorf("%s does not support a date range filter", p.Name())
		}
		var rng platform.DateRange
		var err error
		if f.after != "" {
			if rng.From, err = parseDay(f.after); err != nil {
				return nil, err
			}
		}
		if f.before != "" {
			if rng.To, err = parseDay(f.before); err != nil {
				return nil, err
			}
		}
		if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
			return nil, fmt.Errorf("--before %s is earlier than --after %s", f.before, f.after)
		}
		filters["range"] = rng
	}

	if f.has != "" {
		if !known["has"] {
			return nil, fmt.Errorf("%s does not support a content-kind filter", p.Name())
		}
		filters["has"] = f.has
	}

	if known["oldest"] {
		filters["oldest"] = f.oldest
	}

	return filters, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}
