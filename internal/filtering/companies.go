package filtering

import (
	"context"
	"strings"

	"github.com/spigell/job-scout/internal/jobs"
)

type companiesFilter struct {
	companies map[string]struct{}
	names     []string
}

// NewExcludedCompanies creates a filter that removes candidates posted by the given companies.
// Names are compared case-insensitively after trimming.
func NewExcludedCompanies(companies []string) Filter {
	f := &companiesFilter{companies: make(map[string]struct{}, len(companies))}
	for _, c := range companies {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		f.companies[key] = struct{}{}
		f.names = append(f.names, strings.TrimSpace(c))
	}
	return f
}

func (f *companiesFilter) Name() string { return "excluded_companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, b *jobs.Batch) (*jobs.Batch, Step, error) {
	initial := b.Len()
	if len(f.companies) == 0 {
		return b, Step{Initial: initial, Left: b.Len()}, nil
	}

	removed := b.Exclude(func(r *jobs.JobRecord) bool {
		_, ok := f.companies[strings.ToLower(strings.TrimSpace(r.Company))]
		return ok
	})

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Removed: removed}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
