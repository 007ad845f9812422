// Package listing turns raw attribute sets produced by the scraper into job records.
package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/job-scout/internal/jobs"
)

// ErrInvalid marks a raw listing that cannot be turned into a record.
var ErrInvalid = errors.New("invalid listing")

var validate = validator.New()

// Listing is one raw listing as emitted by the scraper. Column names follow the scraper output.
type Listing struct {
	Title        string   `mapstructure:"title"`
	Company      string   `mapstructure:"company"`
	CompanyName  string   `mapstructure:"company_name"`
	CompanyURL   string   `mapstructure:"company_url"`
	JobURL       string   `mapstructure:"job_url"`
	Location     string   `mapstructure:"location"`
	IsRemote     bool     `mapstructure:"is_remote"`
	Description  string   `mapstructure:"description"`
	JobType      string   `mapstructure:"job_type"`
	Site         string   `mapstructure:"site"`
	Source       string   `mapstructure:"source"`
	DatePosted   string   `mapstructure:"date_posted"`
	Emails       []string `mapstructure:"emails"`
	MinAmount    *float64 `mapstructure:"min_amount" validate:"omitempty,gte=0"`
	MaxAmount    *float64 `mapstructure:"max_amount" validate:"omitempty,gte=0"`
	Currency     string   `mapstructure:"currency"`
	SalarySource string   `mapstructure:"salary_source"`
	SearchQuery  string   `mapstructure:"search_query"`
}

// Decode converts a raw attribute set into a validated Listing.
// Every failure wraps ErrInvalid.
func Decode(raw map[string]any) (*Listing, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty attribute set", ErrInvalid)
	}

	var l Listing
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &l,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			optionalAmountHook,
			emailsHook,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("building decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.normalize()

	if err := validate.Struct(&l); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, describe(err))
	}

	return &l, nil
}

// Record builds a fresh job record. query is used when the listing carries no search query.
func (l *Listing) Record(now time.Time, query string) *jobs.JobRecord {
	now = now.UTC()
	if l.SearchQuery != "" {
		query = l.SearchQuery
	}

	emails := l.Emails
	if emails == nil {
		emails = []string{}
	}

	return &jobs.JobRecord{
		ID:           jobs.ID(l.Title, l.Company, l.Location),
		Title:        l.Title,
		Company:      l.Company,
		CompanyURL:   l.CompanyURL,
		JobURL:       l.JobURL,
		Location:     l.Location,
		IsRemote:     l.IsRemote,
		Description:  l.Description,
		JobType:      l.JobType,
		Source:       l.Source,
		DatePosted:   l.DatePosted,
		Emails:       emails,
		MinAmount:    l.MinAmount,
		MaxAmount:    l.MaxAmount,
		Currency:     l.Currency,
		SalarySource: l.SalarySource,

		ScrapedAt:   now.Format(jobs.TimestampLayout),
		ScrapedDate: now.Format(jobs.DateLayout),
		SearchQuery: query,
		Status:      jobs.StatusNew,
	}
}

func (l *Listing) normalize() {
	for _, s := range []*string{
		&l.Title, &l.Company, &l.CompanyName, &l.CompanyURL, &l.JobURL, &l.Location,
		&l.JobType, &l.Site, &l.Source, &l.DatePosted, &l.Currency, &l.SalarySource, &l.SearchQuery,
	} {
		*s = strings.TrimSpace(*s)
	}

	if l.CompanyName != "" {
		l.Company = l.CompanyName
	}
	if l.Site != "" {
		l.Source = l.Site
	}

	l.Emails = normalizeEmails(l.Emails)
}

func normalizeEmails(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
