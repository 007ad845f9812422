// Package ingest runs one ingestion pass: validate, score, filter, dedup, merge, persist.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/filtering"
	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/listing"
	"github.com/spigell/job-scout/internal/merging"
	"github.com/spigell/job-scout/internal/notify"
	"github.com/spigell/job-scout/internal/scoring"
	"github.com/spigell/job-scout/internal/utils"
)

// Store is the persistence the engine needs.
type Store interface {
	filtering.ExcludedSource

	Lock(ctx context.Context) (func() error, error)
	LoadJobs(ctx context.Context) (*jobs.Document, bool, error)
	SaveJobs(ctx context.Context, doc *jobs.Document) error
}

// Options configures an Engine.
type Options struct {
	Profile scoring.Profile
	// ExcludeCompanies drops listings from these employers.
	ExcludeCompanies []string
	// ExcludeFile drops listings the user excluded during review.
	ExcludeFile bool
	Merge       merging.Options
	// Query is recorded on listings that do not carry their own search query.
	Query string
}

// Engine is safe to reuse across runs; runs are serialised by the store lock.
type Engine struct {
	store     Store
	scorer    *scoring.Scorer
	filtering *filtering.Filtering
	notifier  notify.Notifier
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// New builds an engine. A nil notifier disables notifications.
func New(store Store, opts Options, notifier notify.Notifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	steps := []filtering.Filter{
		filtering.NewScoreFloor(opts.Profile.MinScore),
		filtering.NewExcludedCompanies(opts.ExcludeCompanies),
		filtering.NewExcludeFile(store),
	}
	f := filtering.New(steps, logger)
	if !opts.ExcludeFile {
		f.DisableByName("exclude_file", "disabled by configuration")
	}

	return &Engine{
		store:     store,
		scorer:    scoring.New(opts.Profile),
		filtering: f,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Filters describes the configured filter steps.
func (e *Engine) Filters() []filtering.Status {
	return e.filtering.Describe()
}

// Run ingests one batch of raw attribute sets. Invalid or rejected listings are
// reported per record; only store and filter failures abort the run.
func (e *Engine) Run(ctx context.Context, raws []map[string]any) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: e.now().UTC(),
		Received:  len(raws),
		Results:   make([]Result, len(raws)),
	}
	log := e.logger.With(zap.String("run_id", report.RunID))

	unlock, err := e.store.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring store lock: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("releasing store lock", zap.Error(err))
		}
	}()

	index := make(map[*jobs.JobRecord]int, len(raws))
	batch := &jobs.Batch{}
	for i, raw := range raws {
		res := &report.Results[i]
		res.Index = i

		l, err := listing.Decode(raw)
		if err != nil {
			res.Outcome = OutcomeSkipped
			res.Reason = err.Error()
			log.Warn("skipping listing", zap.Int("index", i), zap.String("reason", res.Reason))
			continue
		}

		r := l.Record(report.StartedAt, e.opts.Query)
		score := e.scorer.Score(r)
		r.RelevanceScore = score.Total

		res.ID = r.ID
		res.Title = r.Title
		res.Company = r.Company
		res.Score = score.Total
		res.Breakdown = score

		log.Debug("scored listing",
			zap.String("job_id", r.ID),
			zap.String("title", utils.TruncateForLog(r.Title, 80)),
			zap.Int("score", score.Total),
			zap.String("excluded_by", score.ExcludedBy),
		)

		index[r] = i
		batch.Items = append(batch.Items, r)
	}

	decoded := batch.Len()
	accepted, rejections, err := e.filtering.RunFilters(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	for _, rej := range rejections {
		res := &report.Results[index[rej.Record]]
		res.Outcome = OutcomeRejected
		res.Reason = rejectionReason(rej, res.Breakdown, e.opts.Profile.MinScore)
	}

	candidates := merging.Dedup(accepted.Items)
	winners := make(map[*jobs.JobRecord]struct{}, len(candidates))
	for _, c := range candidates {
		winners[c] = struct{}{}
	}
	for _, r := range accepted.Items {
		if _, ok := winners[r]; !ok {
			res := &report.Results[index[r]]
			res.Outcome = OutcomeSuperseded
			res.Reason = "a later listing in the batch has the same id"
		}
	}

	stored, found, err := e.store.LoadJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored jobs: %w", err)
	}
	if !found {
		log.Info("no stored jobs, starting a new collection")
	}

	merged, mres := merging.Merge(stored.Collection(), candidates, e.opts.Merge)
	doc := jobs.NewDocument(merged, len(candidates), e.now())
	if err := e.store.SaveJobs(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving jobs: %w", err)
	}

	replaced := make(map[string]struct{}, mres.Replaced())
	for _, id := range mres.ReplacedIDs {
		replaced[id] = struct{}{}
	}
	for _, c := range candidates {
		res := &report.Results[index[c]]
		res.Outcome = OutcomeInserted
		if _, ok := replaced[c.ID]; ok {
			res.Outcome = OutcomeReplaced
		}
	}

	report.Accepted = accepted.Len()
	report.Rejected = len(rejections)
	report.Skipped = report.Received - decoded
	report.Inserted = mres.Inserted()
	report.Replaced = mres.Replaced()
	report.Total = merged.Len()

	e.publish(ctx, log, merged, mres)

	log.Info("ingestion finished",
		zap.Int("received", report.Received),
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected),
		zap.Int("skipped", report.Skipped),
		zap.Int("inserted", report.Inserted),
		zap.Int("replaced", report.Replaced),
		zap.Int("total", report.Total),
	)

	return report, nil
}

func (e *Engine) publish(ctx context.Context, log *zap.Logger, merged jobs.Collection, mres merging.Result) {
	ids := append(append([]string(nil), mres.InsertedIDs...), mres.ReplacedIDs...)
	if len(ids) == 0 {
		return
	}
	records := make([]*jobs.JobRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, merged[id])
	}
	if err := e.notifier.Publish(ctx, records); err != nil {
		log.Error("publishing new jobs", zap.Error(err))
	}
}

func rejectionReason(rej filtering.Rejection, score scoring.Breakdown, floor int) string {
	switch rej.Filter {
	case "score_floor":
		if score.Excluded() {
			return fmt.Sprintf("title contains excluded keyword %q", score.ExcludedBy)
		}
		return fmt.Sprintf("score %d below %d", score.Total, floor)
	case "excluded_companies":
		return fmt.Sprintf("company %q is excluded", rej.Record.Company)
	case "exclude_file":
		return "excluded during review"
	}
	return "rejected by " + rej.Filter
}
