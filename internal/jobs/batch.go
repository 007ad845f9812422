package jobs

// Batch holds the candidates of one ingestion pass in arrival order.
type Batch struct {
	Items []*JobRecord
}

func (b *Batch) Len() int {
	return len(b.Items)
}

// IDs returns candidate ids in order.
func (b *Batch) IDs() []string {
	ids := make([]string, 0, len(b.Items))
	for _, r := range b.Items {
		ids = append(ids, r.ID)
	}
	return ids
}

// Exclude removes every candidate matching drop and returns the removed ones.
// The order of the remaining candidates is preserved.
func (b *Batch) Exclude(drop func(*JobRecord) bool) []*JobRecord {
	var removed []*JobRecord
	kept := b.Items[:0]
	for _, r := range b.Items {
		if drop(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(b.Items); i++ {
		b.Items[i] = nil
	}
	b.Items = kept
	return removed
}
