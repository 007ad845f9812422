package jobs

import (
	"fmt"
	"strings"
)

// Status is the application stage of a job.
type Status string

const (
	StatusNew       Status = "new"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusRejected  Status = "rejected"
	StatusOffer     Status = "offer"
)

// Statuses lists every known status in pipeline order.
var Statuses = []Status{StatusNew, StatusApplied, StatusInterview, StatusRejected, StatusOffer}

// ParseStatus converts user input to a Status.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range Statuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// OrDefault returns StatusNew for an empty status.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusNew
	}
	return s
}
