package jobs

import "time"

// ExcludedJobs is the user-maintained list of jobs that must never be ingested again.
type ExcludedJobs struct {
	Items []*ExcludedJob `json:"items"`
}

type ExcludedJob struct {
	ID         string    `json:"id"`
	JobURL     string    `json:"job_url,omitempty"`
	Company    string    `json:"company,omitempty"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// ToExcluded converts records into exclude entries stamped with now.
func ToExcluded(now time.Time, records ...*JobRecord) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, r := range records {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         r.ID,
			JobURL:     r.JobURL,
			Company:    r.Company,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// Append adds entries whose ids are not present yet.
func (e *ExcludedJobs) Append(s *ExcludedJobs) {
	if s == nil {
		return
	}
	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

// IDs returns the excluded ids as a set.
func (e *ExcludedJobs) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		ids[item.ID] = struct{}{}
	}
	return ids
}
