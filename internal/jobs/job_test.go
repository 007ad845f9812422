package jobs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRecordKeepsUnknownFields(t *testing.T) {
	input := `{
		"_id": "abc123abc123",
		"title": "Director of Growth",
		"company": "Swiggy",
		"_relevance_score": 64,
		"_status": "applied",
		"_notes": "called the recruiter",
		"custom": {"nested": [1, 2, 3]}
	}`

	var record JobRecord
	require.NoError(t, json.Unmarshal([]byte(input), &record))

	assert.Equal(t, "abc123abc123", record.ID)
	assert.Equal(t, 64, record.RelevanceScore)
	assert.Equal(t, StatusApplied, record.Status)
	require.Len(t, record.Extra, 2)
	assert.JSONEq(t, `"called the recruiter"`, string(record.Extra["_notes"]))

	out, err := json.Marshal(&record)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	assert.Equal(t, "called the recruiter", generic["_notes"])
	assert.Equal(t, map[string]any{"nested": []any{1.0, 2.0, 3.0}}, generic["custom"])
	assert.Equal(t, "Swiggy", generic["company"])
}

func TestJobRecordWithoutExtraHasNoSurprises(t *testing.T) {
	record := JobRecord{ID: "x", Title: "Business Head", Emails: []string{}}

	out, err := json.Marshal(record)
	require.NoError(t, err)

	var back JobRecord
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Nil(t, back.Extra)
	assert.Equal(t, record.Title, back.Title)
	assert.NotContains(t, string(out), "_tailored_file")
}

func TestSalary(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		min, max   *float64
		salary     float64
		reported   float64
		reportedOK bool
	}{
		{name: "missing", salary: 0, reported: 0},
		{name: "only min", min: f(2_000_000), salary: 2_000_000, reported: 2_000_000, reportedOK: true},
		{name: "max preferred", min: f(4_000_000), max: f(3_000_000), salary: 4_000_000, reported: 3_000_000, reportedOK: true},
		{name: "negative ignored", min: f(-5), max: f(0), salary: 0, reported: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &JobRecord{MinAmount: tt.min, MaxAmount: tt.max}
			assert.Equal(t, tt.salary, r.Salary())
			got, ok := r.ReportedSalary()
			assert.Equal(t, tt.reported, got)
			assert.Equal(t, tt.reportedOK, ok)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	v := 10.0
	r := &JobRecord{ID: "a", Emails: []string{"hr@example.com"}, MinAmount: &v,
		Extra: map[string]json.RawMessage{"k": json.RawMessage(`1`)}}

	c := r.Clone()
	c.Emails[0] = "changed"
	*c.MinAmount = 20
	c.Extra["k"][0] = '2'

	assert.Equal(t, "hr@example.com", r.Emails[0])
	assert.Equal(t, 10.0, *r.MinAmount)
	assert.Equal(t, "1", string(r.Extra["k"]))
}

func TestCollectionSorted(t *testing.T) {
	c := NewCollection([]*JobRecord{
		{ID: "b", RelevanceScore: 50},
		{ID: "a", RelevanceScore: 50},
		{ID: "c", RelevanceScore: 90},
		{ID: "d", RelevanceScore: 10},
	})

	sorted := c.Sorted()
	ids := make([]string, 0, len(sorted))
	for _, r := range sorted {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}

func TestNewDocument(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	doc := NewDocument(NewCollection([]*JobRecord{{ID: "a", RelevanceScore: 1}, {ID: "b", RelevanceScore: 2}}), 1, now)

	assert.Equal(t, "2026-10-16T09:00:00Z", doc.LastUpdated)
	assert.Equal(t, 2, doc.TotalJobs)
	assert.Equal(t, 1, doc.NewToday)
	assert.Equal(t, "b", doc.Jobs[0].ID)
	assert.Equal(t, "a", doc.FindByID("a").ID)
	assert.Nil(t, doc.FindByID("zzz"))
}

func TestBatchExcludeKeepsOrder(t *testing.T) {
	b := &Batch{Items: []*JobRecord{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}}

	removed := b.Exclude(func(r *JobRecord) bool { return r.ID == "2" || r.ID == "4" })

	assert.Equal(t, []string{"1", "3"}, b.IDs())
	require.Len(t, removed, 2)
	assert.Equal(t, "2", removed[0].ID)
	assert.Equal(t, "4", removed[1].ID)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Interview ")
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, s)

	_, err = ParseStatus("ghosted")
	assert.Error(t, err)

	assert.Equal(t, StatusNew, Status("").OrDefault())
}

func TestExcludedJobsAppendSkipsDuplicates(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	excluded := ToExcluded(now, &JobRecord{ID: "a"})
	excluded.Append(ToExcluded(now, &JobRecord{ID: "a"}, &JobRecord{ID: "b", Company: "Acme"}))

	require.Len(t, excluded.Items, 2)
	assert.Contains(t, excluded.IDs(), "b")
	assert.Equal(t, "Acme", excluded.Items[1].Company)
}
