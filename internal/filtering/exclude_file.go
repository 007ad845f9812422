package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/job-scout/internal/jobs"
)

// ExcludedSource loads the list of jobs the user excluded by hand.
type ExcludedSource interface {
	LoadExcluded(ctx context.Context) (*jobs.ExcludedJobs, bool, error)
}

type excludeFileFilter struct {
	source   ExcludedSource
	disabled bool
	reason   string
}

// NewExcludeFile creates a filter that removes candidates listed in the exclude file.
func NewExcludeFile(source ExcludedSource) Filter {
	return &excludeFileFilter{source: source}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

func (f *excludeFileFilter) Validate() error {
	if f.source == nil {
		return fmt.Errorf("exclude source is required")
	}
	return nil
}

func (f *excludeFileFilter) Apply(ctx context.Context, b *jobs.Batch) (*jobs.Batch, Step, error) {
	initial := b.Len()

	excluded, found, err := f.source.LoadExcluded(ctx)
	if err != nil {
		return b, Step{}, fmt.Errorf("getting excluded jobs: %w", err)
	}
	if !found || len(excluded.Items) == 0 {
		return b, Step{Initial: initial, Left: b.Len()}, nil
	}

	ids := excluded.IDs()
	removed := b.Exclude(func(r *jobs.JobRecord) bool {
		_, ok := ids[r.ID]
		return ok
	})

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Removed: removed}, nil
}

func (f *excludeFileFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
