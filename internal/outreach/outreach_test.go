package outreach

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "last_updated": "2026-10-15T10:00:00+00:00",
  "total_drafts": 2,
  "drafts": [
    {
      "job_id": "aaa",
      "job_title": "Director of Growth",
      "company": "Swiggy",
      "drafted_at": "2026-10-15T09:59:00.123+00:00",
      "status": "pending_approval",
      "messages": [
        {"type": "email", "to": "hr@swiggy.in", "subject": "Hi", "body": "...", "status": "pending_approval", "has_real_email": true},
        {"type": "linkedin_note", "body": "...", "status": "draft"},
        {"type": "linkedin_inmail", "subject": "Hi", "body": "...", "status": "draft"}
      ]
    },
    {
      "job_id": "bbb",
      "drafted_at": "2026-10-14T08:00:00+00:00",
      "status": "approved",
      "messages": [
        {"type": "email", "to": "hr@zepto.com", "body": "...", "status": "sent", "sent_at": "2026-10-14T09:00:00+00:00"},
        {"type": "linkedin_note", "body": "...", "status": "draft"}
      ]
    }
  ]
}`

func load(t *testing.T) *Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(fixture), &doc))
	return &doc
}

func TestCounters(t *testing.T) {
	doc := load(t)

	assert.Equal(t, 1, doc.CountMessages(StatusSent))
	assert.Equal(t, 1, doc.CountMessages(StatusPendingApproval))
	assert.Equal(t, 3, doc.CountMessages(StatusDraft))
	assert.Equal(t, 1, doc.DraftedOn("2026-10-15"))
	assert.Equal(t, 0, doc.DraftedOn("2026-10-13"))

	var empty *Document
	assert.Zero(t, empty.CountMessages(StatusSent))
	assert.Nil(t, empty.Pending())
}

func TestNullEntriesSkipped(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{
  "drafts": [
    null,
    {
      "job_id": "ccc",
      "drafted_at": "2026-10-16T07:00:00+00:00",
      "messages": [null, {"status": "sent"}, {"status": "pending_approval"}]
    }
  ]
}`), &doc))

	assert.Equal(t, 1, doc.CountMessages(StatusSent))
	assert.Equal(t, 1, doc.DraftedOn("2026-10-16"))
	require.Len(t, doc.Pending(), 1)
	assert.Nil(t, doc.FindByJobID("zzz"))
	assert.Equal(t, 1, doc.Approve("ccc"))
	assert.Zero(t, doc.CountMessages(StatusPendingApproval))
}

func TestApprove(t *testing.T) {
	doc := load(t)

	require.Len(t, doc.Pending(), 1)
	assert.Equal(t, 1, doc.Approve("aaa"))
	assert.Empty(t, doc.Pending())
	assert.Equal(t, StatusApproved, doc.FindByJobID("aaa").Status)
	assert.Equal(t, StatusApproved, doc.Drafts[0].Messages[0].Status)
	assert.Equal(t, StatusDraft, doc.Drafts[0].Messages[1].Status)

	assert.Zero(t, doc.Approve("aaa"))
	assert.Zero(t, doc.Approve("missing"))
}

func TestTouch(t *testing.T) {
	doc := load(t)
	doc.Drafts = doc.Drafts[:1]
	doc.Touch(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-10-16T00:00:00Z", doc.LastUpdated)
	assert.Equal(t, 1, doc.TotalDrafts)
}
