// Package scoring rates listings 0-100 against a keyword and salary profile.
package scoring

import (
	"strings"

	"github.com/spigell/job-scout/internal/jobs"
)

const (
	minScore = 0
	maxScore = 100
)

// Breakdown explains how a score was reached.
type Breakdown struct {
	Title  int
	Must   int
	Nice   int
	Salary int
	// ExcludedBy is the exclusion keyword found in the title, if any.
	ExcludedBy string
	Total      int
}

// Excluded reports whether the score was forced to zero by the exclusion list.
func (b Breakdown) Excluded() bool {
	return b.ExcludedBy != ""
}

// Scorer is safe for concurrent use; it never mutates its profile after construction.
type Scorer struct {
	titleKeywords []string
	mustKeywords  []string
	niceKeywords  []string
	excludeTitle  []string
	salary        Thresholds
	points        Points
}

// New builds a scorer from the profile. Keywords are matched case-insensitively.
func New(p Profile) *Scorer {
	return &Scorer{
		titleKeywords: lowerAll(p.TitleKeywords),
		mustKeywords:  lowerAll(p.DescriptionMust),
		niceKeywords:  lowerAll(p.DescriptionNice),
		excludeTitle:  lowerAll(p.ExcludeTitle),
		salary:        p.Salary,
		points:        p.Points.withDefaults(),
	}
}

// Score rates the record. It reads only the title, description and salary fields.
func (s *Scorer) Score(r *jobs.JobRecord) Breakdown {
	if r == nil {
		return Breakdown{}
	}

	title := strings.ToLower(r.Title)
	text := title + " " + strings.ToLower(r.Description)

	b := Breakdown{
		Title:  min(s.points.TitleCap, hits(title, s.titleKeywords)*s.points.TitleHit),
		Must:   min(s.points.MustCap, hits(text, s.mustKeywords)*s.points.MustHit),
		Nice:   min(s.points.NiceCap, hits(text, s.niceKeywords)*s.points.NiceHit),
		Salary: s.salaryPoints(r.Salary()),
	}
	total := b.Title + b.Must + b.Nice + b.Salary

	// Exclusion is checked after summation and discards everything accumulated.
	if kw := firstHit(title, s.excludeTitle); kw != "" {
		b.ExcludedBy = kw
		total = 0
	}

	b.Total = clamp(total)
	return b
}

func (s *Scorer) salaryPoints(salary float64) int {
	switch {
	case salary <= 0:
		return 0
	case s.salary.Boost > 0 && salary >= s.salary.Boost:
		return s.points.SalaryBoost
	case s.salary.Preferred > 0 && salary >= s.salary.Preferred:
		return s.points.SalaryPreferred
	default:
		return 0
	}
}

func hits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func firstHit(text string, keywords []string) string {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(v int) int {
	return max(minScore, min(maxScore, v))
}
