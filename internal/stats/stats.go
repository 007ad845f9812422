// Package stats derives the dashboard snapshot from the job and outreach collections.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/outreach"
)

const (
	unknownLocation = "Unknown"
	unknownCompany  = "Unknown"
	unknownSource   = "unknown"
)

// Options tunes the size of the derived tables.
type Options struct {
	TopCompanies  int `mapstructure:"top-companies"`
	TopLocations  int `mapstructure:"top-locations"`
	TrailingDays  int `mapstructure:"trailing-days"`
	RelevantScore int `mapstructure:"relevant-score"`
}

// DefaultOptions matches the dashboard layout.
func DefaultOptions() Options {
	return Options{
		TopCompanies:  15,
		TopLocations:  10,
		TrailingDays:  14,
		RelevantScore: 50,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopCompanies <= 0 {
		o.TopCompanies = d.TopCompanies
	}
	if o.TopLocations <= 0 {
		o.TopLocations = d.TopLocations
	}
	if o.TrailingDays <= 0 {
		o.TrailingDays = d.TrailingDays
	}
	if o.RelevantScore <= 0 {
		o.RelevantScore = d.RelevantScore
	}
	return o
}

// Input is the state the snapshot is computed from.
type Input struct {
	Jobs     []*jobs.JobRecord
	Outreach *outreach.Document
	// TailoredFiles is the number of tailored resume artifacts in the store.
	TailoredFiles int
	Now           time.Time
	Options       Options
}

// Snapshot is recomputed from scratch on every run.
type Snapshot struct {
	LastUpdated       string         `json:"last_updated"`
	Hero              Hero           `json:"hero"`
	Funnel            Funnel         `json:"funnel"`
	ScoreDistribution Distribution   `json:"score_distribution"`
	SourceBreakdown   map[string]int `json:"source_breakdown"`
	LocationBreakdown map[string]int `json:"location_breakdown"`
	StatusPipeline    map[string]int `json:"status_pipeline"`
	DailyActivity     []Day          `json:"daily_activity"`
	TopCompanies      []CompanyCount `json:"top_companies"`
	Salary            Salary         `json:"salary"`
}

type Hero struct {
	TotalJobs       int `json:"total_jobs"`
	NewToday        int `json:"new_today"`
	ResumesTailored int `json:"resumes_tailored"`
	OutreachSent    int `json:"outreach_sent"`
	OutreachPending int `json:"outreach_pending"`
	TailoredFiles   int `json:"tailored_files"`
}

type Funnel struct {
	Discovered      int `json:"discovered"`
	Relevant        int `json:"relevant_50plus"`
	Tailored        int `json:"tailored"`
	OutreachDrafted int `json:"outreach_drafted"`
	OutreachSent    int `json:"outreach_sent"`
	Applied         int `json:"applied"`
	Interview       int `json:"interview"`
}

// Distribution is the relevance histogram. Every score lands in exactly one bucket.
type Distribution struct {
	Top    int `json:"90-100"`
	High   int `json:"70-89"`
	Mid    int `json:"50-69"`
	Low    int `json:"30-49"`
	Bottom int `json:"0-29"`
}

func (d *Distribution) add(score int) {
	switch {
	case score >= 90:
		d.Top++
	case score >= 70:
		d.High++
	case score >= 50:
		d.Mid++
	case score >= 30:
		d.Low++
	default:
		d.Bottom++
	}
}

func (d Distribution) Total() int {
	return d.Top + d.High + d.Mid + d.Low + d.Bottom
}

type Day struct {
	Date            string `json:"date"`
	JobsFound       int    `json:"jobs_found"`
	ResumesTailored int    `json:"resumes_tailored"`
	OutreachDrafted int    `json:"outreach_drafted"`
}

type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

type Salary struct {
	Average        int `json:"average"`
	Max            int `json:"max"`
	Min            int `json:"min"`
	JobsWithSalary int `json:"jobs_with_salary"`
}

// Aggregate computes the snapshot as of in.Now. It does not modify its input.
func Aggregate(in Input) *Snapshot {
	opts := in.Options.withDefaults()
	now := in.Now.UTC()
	today := now.Format(jobs.DateLayout)

	drafts := 0
	if in.Outreach != nil {
		drafts = len(in.Outreach.Drafts)
	}
	sent := in.Outreach.CountMessages(outreach.StatusSent)

	s := &Snapshot{
		LastUpdated:       now.Format(jobs.TimestampLayout),
		SourceBreakdown:   map[string]int{},
		LocationBreakdown: map[string]int{},
		StatusPipeline:    map[string]int{},
	}

	locations := map[string]int{}
	companies := map[string]int{}
	tailored := 0
	relevant := 0
	for _, j := range in.Jobs {
		if j == nil {
			continue
		}

		s.ScoreDistribution.add(j.RelevanceScore)
		s.SourceBreakdown[orDefault(j.Source, unknownSource)]++
		s.StatusPipeline[string(j.Status.OrDefault())]++
		locations[LocationToken(j.Location)]++
		companies[orDefault(j.Company, unknownCompany)]++

		if j.Tailored {
			tailored++
		}
		if j.RelevanceScore >= opts.RelevantScore {
			relevant++
		}
		if j.ScrapedDate == today {
			s.Hero.NewToday++
		}
	}
	total := s.ScoreDistribution.Total()

	s.Hero.TotalJobs = total
	s.Hero.ResumesTailored = tailored
	s.Hero.OutreachSent = sent
	s.Hero.OutreachPending = in.Outreach.CountMessages(outreach.StatusPendingApproval)
	s.Hero.TailoredFiles = in.TailoredFiles

	s.Funnel = Funnel{
		Discovered:      total,
		Relevant:        relevant,
		Tailored:        tailored,
		OutreachDrafted: drafts,
		OutreachSent:    sent,
		Applied:         s.StatusPipeline[string(jobs.StatusApplied)],
		Interview:       s.StatusPipeline[string(jobs.StatusInterview)],
	}

	for _, c := range topN(locations, opts.TopLocations) {
		s.LocationBreakdown[c.Company] = c.Count
	}
	s.TopCompanies = topN(companies, opts.TopCompanies)
	s.DailyActivity = dailyActivity(in.Jobs, in.Outreach, now, opts.TrailingDays)
	s.Salary = salary(in.Jobs)

	return s
}

// LocationToken reduces a location to the part before the first comma.
func LocationToken(location string) string {
	head, _, _ := strings.Cut(location, ",")
	return orDefault(strings.TrimSpace(head), unknownLocation)
}

func dailyActivity(records []*jobs.JobRecord, drafts *outreach.Document, now time.Time, days int) []Day {
	out := make([]Day, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(jobs.DateLayout)
		day := Day{Date: date, OutreachDrafted: drafts.DraftedOn(date)}
		for _, j := range records {
			if j == nil || j.ScrapedDate != date {
				continue
			}
			day.JobsFound++
			if j.Tailored {
				day.ResumesTailored++
			}
		}
		out = append(out, day)
	}
	return out
}

func salary(records []*jobs.JobRecord) Salary {
	var (
		sum      float64
		n        int
		low, top float64
	)
	for _, j := range records {
		if j == nil {
			continue
		}
		v, ok := j.ReportedSalary()
		if !ok {
			continue
		}
		if n == 0 || v < low {
			low = v
		}
		if n == 0 || v > top {
			top = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return Salary{}
	}
	return Salary{
		Average:        int(sum / float64(n)),
		Max:            int(top),
		Min:            int(low),
		JobsWithSalary: n,
	}
}

// topN orders counts descending with ties broken by name and keeps the first n.
func topN(counts map[string]int, n int) []CompanyCount {
	out := make([]CompanyCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CompanyCount{Company: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Company < out[j].Company
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
