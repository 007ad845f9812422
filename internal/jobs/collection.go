package jobs

import (
	"sort"
	"time"
)

// Collection is the persisted set of records addressed by id.
type Collection map[string]*JobRecord

// NewCollection indexes records by id. Later records win on duplicate ids.
func NewCollection(records []*JobRecord) Collection {
	c := make(Collection, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		c[r.ID] = r
	}
	return c
}

func (c Collection) Len() int {
	return len(c)
}

// Sorted returns the records by relevance score descending, ties broken by id.
func (c Collection) Sorted() []*JobRecord {
	out := make([]*JobRecord, 0, len(c))
	for _, r := range c {
		out = append(out, r)
	}
	SortByRelevance(out)
	return out
}

// SortByRelevance orders records by score descending, then by id.
func SortByRelevance(records []*JobRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RelevanceScore != records[j].RelevanceScore {
			return records[i].RelevanceScore > records[j].RelevanceScore
		}
		return records[i].ID < records[j].ID
	})
}

// Document is the on-disk shape of the job collection.
type Document struct {
	LastUpdated string       `json:"last_updated"`
	TotalJobs   int          `json:"total_jobs"`
	NewToday    int          `json:"new_today"`
	Jobs        []*JobRecord `json:"jobs"`
}

// NewDocument builds a document with records in relevance order.
func NewDocument(c Collection, newToday int, now time.Time) *Document {
	sorted := c.Sorted()
	return &Document{
		LastUpdated: now.UTC().Format(TimestampLayout),
		TotalJobs:   len(sorted),
		NewToday:    newToday,
		Jobs:        sorted,
	}
}

// Collection indexes the document's records.
func (d *Document) Collection() Collection {
	if d == nil {
		return Collection{}
	}
	return NewCollection(d.Jobs)
}

// FindByID returns the record with the given id or nil.
func (d *Document) FindByID(id string) *JobRecord {
	if d == nil {
		return nil
	}
	for _, r := range d.Jobs {
		if r.ID == id {
			return r
		}
	}
	return nil
}
