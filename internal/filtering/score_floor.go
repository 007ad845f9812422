package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/job-scout/internal/jobs"
)

type scoreFloorFilter struct {
	floor int
}

// NewScoreFloor creates the acceptance gate: candidates scoring below floor never reach the store.
// The gate cannot be disabled.
func NewScoreFloor(floor int) Filter {
	return &scoreFloorFilter{floor: floor}
}

func (f *scoreFloorFilter) Name() string { return "score_floor" }

func (f *scoreFloorFilter) Disable(string) {}

func (f *scoreFloorFilter) IsEnabled() bool { return true }

func (f *scoreFloorFilter) Validate() error {
	if f.floor < 0 || f.floor > 100 {
		return fmt.Errorf("minimum score must be within 0..100, got %d", f.floor)
	}
	return nil
}

func (f *scoreFloorFilter) Apply(_ context.Context, b *jobs.Batch) (*jobs.Batch, Step, error) {
	initial := b.Len()
	removed := b.Exclude(func(r *jobs.JobRecord) bool {
		return r.RelevanceScore < f.floor
	})

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len(), Removed: removed}, nil
}

func (f *scoreFloorFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"min_score": strconv.Itoa(f.floor)},
	}
}
