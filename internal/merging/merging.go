// Package merging folds freshly scored candidates into the stored job collection.
package merging

import "github.com/spigell/job-scout/internal/jobs"

// Options controls how identity collisions are resolved.
type Options struct {
	// PreservePipelineState keeps status, tailoring and outreach flags of a stored record
	// when a candidate with the same id replaces it. Without it the candidate overwrites
	// them with its fresh defaults.
	PreservePipelineState bool
}

// Result summarises one merge.
type Result struct {
	InsertedIDs []string
	ReplacedIDs []string
}

func (r Result) Inserted() int { return len(r.InsertedIDs) }

func (r Result) Replaced() int { return len(r.ReplacedIDs) }

// Dedup collapses candidates sharing an id. The last candidate wins and takes the
// position of the first occurrence.
func Dedup(candidates []*jobs.JobRecord) []*jobs.JobRecord {
	index := make(map[string]int, len(candidates))
	out := make([]*jobs.JobRecord, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if i, ok := index[c.ID]; ok {
			out[i] = c
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	return out
}

// Merge returns a new collection holding base plus the candidates. A candidate replaces
// the stored record with the same id as a whole. Neither base nor the candidates are modified.
func Merge(base jobs.Collection, candidates []*jobs.JobRecord, opts Options) (jobs.Collection, Result) {
	merged := make(jobs.Collection, len(base)+len(candidates))
	for id, r := range base {
		merged[id] = r
	}

	var res Result
	for _, c := range Dedup(candidates) {
		next := c.Clone()

		existing, ok := base[c.ID]
		if !ok {
			merged[c.ID] = next
			res.InsertedIDs = append(res.InsertedIDs, c.ID)
			continue
		}

		if opts.PreservePipelineState {
			next.PipelineState(existing)
		}
		merged[c.ID] = next
		res.ReplacedIDs = append(res.ReplacedIDs, c.ID)
	}

	return merged, res
}
