package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Recompute stats.json from the job and outreach collections",
	Run: func(cmd *cobra.Command, _ []string) {
		runStats(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolP("print", "p", false, "print the snapshot to stdout")
}

func runStats(cmd *cobra.Command) {
	ctx := context.Background()

	rt := newRuntime(ctx, "stats")
	defer rt.close()

	snapshot, err := refreshStats(ctx, rt)
	if err != nil {
		rt.logger.Fatal("refreshing stats", zap.Error(err))
	}

	if printOut, _ := cmd.Flags().GetBool("print"); printOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			rt.logger.Fatal("printing stats", zap.Error(err))
		}
	}
}

// refreshStats recomputes the snapshot from the stored documents and saves it.
func refreshStats(ctx context.Context, rt *runtime) (*stats.Snapshot, error) {
	doc, _, err := rt.store.LoadJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}
	drafts, _, err := rt.store.LoadOutreach(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading outreach: %w", err)
	}
	tailored, err := rt.store.CountTailored(ctx)
	if err != nil {
		return nil, err
	}

	records := doc.Collection().Sorted()
	snapshot := stats.Aggregate(stats.Input{
		Jobs:          records,
		Outreach:      drafts,
		TailoredFiles: tailored,
		Now:           time.Now(),
		Options:       rt.config.Stats,
	})
	if err := rt.store.SaveStats(ctx, snapshot); err != nil {
		return nil, err
	}

	h := snapshot.Hero
	rt.logger.Info("stats updated",
		zap.Int("total_jobs", h.TotalJobs),
		zap.Int("new_today", h.NewToday),
		zap.Int("resumes_tailored", h.ResumesTailored),
		zap.Int("outreach_sent", h.OutreachSent),
		zap.Int("outreach_pending", h.OutreachPending),
	)
	return snapshot, nil
}
