// Package outreach models the drafts written by the outreach collaborator.
package outreach

import (
	"strings"
	"time"

	"github.com/spigell/job-scout/internal/jobs"
)

// Message statuses.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusSent            = "sent"
	StatusSendFailed      = "send_failed"
)

// Document is the on-disk shape of the outreach collection.
type Document struct {
	LastUpdated string   `json:"last_updated"`
	TotalDrafts int      `json:"total_drafts"`
	Drafts      []*Draft `json:"drafts"`
}

// Draft holds every message prepared for one job.
type Draft struct {
	JobID     string     `json:"job_id"`
	JobTitle  string     `json:"job_title"`
	Company   string     `json:"company"`
	JobURL    string     `json:"job_url"`
	DraftedAt string     `json:"drafted_at"`
	Status    string     `json:"status"`
	Messages  []*Message `json:"messages"`
}

// Message is one outreach attempt.
type Message struct {
	Type         string `json:"type"`
	To           string `json:"to,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Body         string `json:"body"`
	Status       string `json:"status"`
	HasRealEmail *bool  `json:"has_real_email,omitempty"`
	SentAt       string `json:"sent_at,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CountMessages counts messages in the given status across all drafts.
func (d *Document) CountMessages(status string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, draft := range d.Drafts {
		if draft == nil {
			continue
		}
		for _, m := range draft.Messages {
			if m != nil && m.Status == status {
				n++
			}
		}
	}
	return n
}

// DraftedOn counts drafts whose drafting timestamp starts with the given day.
func (d *Document) DraftedOn(day string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, draft := range d.Drafts {
		if draft != nil && strings.HasPrefix(draft.DraftedAt, day) {
			n++
		}
	}
	return n
}

// Pending returns drafts having at least one message awaiting approval.
func (d *Document) Pending() []*Draft {
	if d == nil {
		return nil
	}
	var out []*Draft
	for _, draft := range d.Drafts {
		if draft == nil {
			continue
		}
		for _, m := range draft.Messages {
			if m != nil && m.Status == StatusPendingApproval {
				out = append(out, draft)
				break
			}
		}
	}
	return out
}

// FindByJobID returns the draft for the job or nil.
func (d *Document) FindByJobID(id string) *Draft {
	if d == nil {
		return nil
	}
	for _, draft := range d.Drafts {
		if draft != nil && draft.JobID == id {
			return draft
		}
	}
	return nil
}

// Approve moves every pending message of the job's draft to approved and
// returns how many were changed.
func (d *Document) Approve(jobID string) int {
	draft := d.FindByJobID(jobID)
	if draft == nil {
		return 0
	}
	n := 0
	for _, m := range draft.Messages {
		if m != nil && m.Status == StatusPendingApproval {
			m.Status = StatusApproved
			n++
		}
	}
	if n > 0 && draft.Status == StatusPendingApproval {
		draft.Status = StatusApproved
	}
	return n
}

// Touch refreshes the bookkeeping fields before saving.
func (d *Document) Touch(now time.Time) {
	d.LastUpdated = now.UTC().Format(jobs.TimestampLayout)
	d.TotalDrafts = len(d.Drafts)
}
