package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/store"
	"github.com/spigell/job-scout/internal/utils"
)

const (
	PromptSetStatus       = "Set job status"
	PromptApproveOutreach = "Approve outreach"
	PromptExcludeJob      = "Exclude job"
	PromptExit            = "Exit"
	PromptBack            = "back"

	reviewListSize = 15
)

var errExit = errors.New("exit requested")

var reviewPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSetStatus, PromptApproveOutreach, PromptExcludeJob, PromptExit},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively update job statuses, approve outreach and exclude jobs",
	Run: func(_ *cobra.Command, _ []string) {
		runReview()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview() {
	ctx := context.Background()

	rt := newRuntime(ctx, "review")
	defer rt.close()

	for {
		_, action, err := reviewPrompt.Run()
		if err != nil {
			rt.logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleReviewAction(ctx, rt, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			rt.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleReviewAction(ctx context.Context, rt *runtime, action string) error {
	switch action {
	case PromptSetStatus:
		id, err := selectJob(ctx, rt.store)
		if err != nil || id == "" {
			return err
		}
		statusPrompt := promptui.Select{Label: "New status", Items: jobs.Statuses}
		_, picked, err := statusPrompt.Run()
		if err != nil {
			return err
		}
		status, err := jobs.ParseStatus(picked)
		if err != nil {
			return err
		}
		if err := setJobStatus(ctx, rt.store, id, status); err != nil {
			return err
		}
		logger.ForJob(rt.logger, id).Info("job status changed", zap.String("status", string(status)))
		return nil
	case PromptApproveOutreach:
		id, err := selectPendingDraft(ctx, rt.store)
		if err != nil || id == "" {
			return err
		}
		n, err := approveOutreach(ctx, rt.store, id, time.Now())
		if err != nil {
			return err
		}
		logger.ForJob(rt.logger, id).Info("outreach approved", zap.Int("messages", n))
		return nil
	case PromptExcludeJob:
		id, err := selectJob(ctx, rt.store)
		if err != nil || id == "" {
			return err
		}
		if err := excludeJob(ctx, rt.store, id, time.Now()); err != nil {
			return err
		}
		logger.ForJob(rt.logger, id).Info("job excluded")
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// selectJob lets the user pick a job. An empty id means the user went back.
func selectJob(ctx context.Context, st *store.Store) (string, error) {
	doc, _, err := st.LoadJobs(ctx)
	if err != nil {
		return "", err
	}
	records := doc.Collection().Sorted()
	if len(records) == 0 {
		fmt.Println("no jobs stored yet")
		return "", nil
	}

	items := make([]string, 0, len(records)+1)
	for _, r := range records {
		items = append(items, jobLabel(r))
	}
	return pick("Choose a job and press ENTER", items)
}

func selectPendingDraft(ctx context.Context, st *store.Store) (string, error) {
	drafts, _, err := st.LoadOutreach(ctx)
	if err != nil {
		return "", err
	}
	pending := drafts.Pending()
	if len(pending) == 0 {
		fmt.Println("no outreach awaiting approval")
		return "", nil
	}

	items := make([]string, 0, len(pending)+1)
	for _, d := range pending {
		items = append(items, fmt.Sprintf("%s %s / %s", d.JobID, utils.TruncateForLog(d.JobTitle, 60), d.Company))
	}
	return pick(fmt.Sprintf("%d %s awaiting approval", len(pending), utils.Pluralize(len(pending), "draft")), items)
}

func pick(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: append(items, PromptBack),
		Size:  reviewListSize,
		Searcher: func(input string, index int) bool {
			if index >= len(items) {
				return true
			}
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}
	_, selected, err := p.Run()
	if err != nil {
		return "", err
	}
	if selected == PromptBack {
		return "", nil
	}
	id, _, _ := strings.Cut(selected, " ")
	return id, nil
}

func jobLabel(r *jobs.JobRecord) string {
	return fmt.Sprintf("%s [%3d] %s / %s / %s (%s)",
		r.ID, r.RelevanceScore, utils.TruncateForLog(r.Title, 60), r.Company, r.Location, r.Status.OrDefault(),
	)
}

// setJobStatus updates one record under the store lock.
func setJobStatus(ctx context.Context, st *store.Store, id string, status jobs.Status) error {
	return updateJobs(ctx, st, func(doc *jobs.Document) error {
		r := doc.FindByID(id)
		if r == nil {
			return fmt.Errorf("there is no such job id %s", id)
		}
		r.Status = status
		return nil
	})
}

// approveOutreach moves the job's pending messages to approved.
func approveOutreach(ctx context.Context, st *store.Store, jobID string, now time.Time) (int, error) {
	unlock, err := st.Lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	drafts, found, err := st.LoadOutreach(ctx)
	if err != nil {
		return 0, err
	}
	if !found || drafts.FindByJobID(jobID) == nil {
		return 0, fmt.Errorf("there is no outreach draft for job %s", jobID)
	}

	n := drafts.Approve(jobID)
	if n == 0 {
		return 0, nil
	}
	drafts.Touch(now)
	return n, st.SaveOutreach(ctx, drafts)
}

// excludeJob records the job in the exclude list. The record itself stays in
// the collection so its pipeline state survives.
func excludeJob(ctx context.Context, st *store.Store, id string, now time.Time) error {
	return updateJobs(ctx, st, func(doc *jobs.Document) error {
		r := doc.FindByID(id)
		if r == nil {
			return fmt.Errorf("there is no such job id %s", id)
		}

		excluded, _, err := st.LoadExcluded(ctx)
		if err != nil {
			return err
		}
		if excluded == nil {
			excluded = &jobs.ExcludedJobs{}
		}
		excluded.Append(jobs.ToExcluded(now, r))
		return st.SaveExcluded(ctx, excluded)
	})
}

func updateJobs(ctx context.Context, st *store.Store, change func(doc *jobs.Document) error) error {
	unlock, err := st.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	doc, found, err := st.LoadJobs(ctx)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("no jobs stored yet")
	}
	if err := change(doc); err != nil {
		return err
	}
	return st.SaveJobs(ctx, doc)
}
