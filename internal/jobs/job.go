package jobs

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar day format used for scraped dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the format of every stored timestamp.
	TimestampLayout = time.RFC3339
)

// JobRecord is one discovered listing together with its pipeline state.
type JobRecord struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	CompanyURL   string   `json:"company_url"`
	JobURL       string   `json:"job_url"`
	Location     string   `json:"location"`
	IsRemote     bool     `json:"is_remote"`
	Description  string   `json:"description"`
	JobType      string   `json:"job_type"`
	Source       string   `json:"source"`
	DatePosted   string   `json:"date_posted"`
	Emails       []string `json:"emails"`
	MinAmount    *float64 `json:"min_amount"`
	MaxAmount    *float64 `json:"max_amount"`
	Currency     string   `json:"currency"`
	SalarySource string   `json:"salary_source"`

	RelevanceScore  int    `json:"_relevance_score"`
	ScrapedAt       string `json:"_scraped_at"`
	ScrapedDate     string `json:"_scraped_date"`
	SearchQuery     string `json:"_search_query"`
	Status          Status `json:"_status"`
	Tailored        bool   `json:"_tailored"`
	OutreachDrafted bool   `json:"_outreach_drafted"`
	OutreachSent    bool   `json:"_outreach_sent"`
	TailoredFile    string `json:"_tailored_file,omitempty"`

	// Extra holds keys this version does not know about. They are written back untouched.
	Extra map[string]json.RawMessage `json:"-"`
}

type jobAlias JobRecord

var knownKeys = jsonKeys(reflect.TypeOf(JobRecord{}))

func jsonKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for _, field := range reflect.VisibleFields(t) {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (j *JobRecord) UnmarshalJSON(data []byte) error {
	var alias jobAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownKeys {
		delete(raw, key)
	}

	*j = JobRecord(alias)
	j.Extra = nil
	if len(raw) > 0 {
		j.Extra = raw
	}

	return nil
}

// MarshalJSON encodes the known fields and merges Extra back in.
func (j JobRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(jobAlias(j))
	if err != nil || len(j.Extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range j.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}

	return json.Marshal(merged)
}

// Salary returns the compensation figure used for scoring: the greater of min and max.
// Missing and non-positive amounts count as zero.
func (j *JobRecord) Salary() float64 {
	return max(positive(j.MinAmount), positive(j.MaxAmount))
}

// ReportedSalary prefers the max amount and falls back to the min amount.
// It returns false when neither is positive.
func (j *JobRecord) ReportedSalary() (float64, bool) {
	if v := positive(j.MaxAmount); v > 0 {
		return v, true
	}
	if v := positive(j.MinAmount); v > 0 {
		return v, true
	}
	return 0, false
}

// PipelineState copies the flags owned by later pipeline stages from src.
func (j *JobRecord) PipelineState(src *JobRecord) {
	if src == nil {
		return
	}
	j.Status = src.Status
	j.Tailored = src.Tailored
	j.TailoredFile = src.TailoredFile
	j.OutreachDrafted = src.OutreachDrafted
	j.OutreachSent = src.OutreachSent
}

// Clone returns a deep copy of the record.
func (j *JobRecord) Clone() *JobRecord {
	if j == nil {
		return nil
	}
	c := *j
	if j.Emails != nil {
		c.Emails = append([]string(nil), j.Emails...)
	}
	if j.MinAmount != nil {
		v := *j.MinAmount
		c.MinAmount = &v
	}
	if j.MaxAmount != nil {
		v := *j.MaxAmount
		c.MaxAmount = &v
	}
	if j.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(j.Extra))
		for k, v := range j.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

func positive(v *float64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}
