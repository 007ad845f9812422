package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Score a batch of scraped listings and merge them into the job collection",
	Run: func(cmd *cobra.Command, _ []string) {
		runIngest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("input", "i", "", "file with scraped listings, - for stdin")
	ingestCmd.Flags().StringP("query", "q", "", "search query recorded on listings without their own")
	ingestCmd.Flags().Bool("skip-stats", false, "do not refresh stats.json after ingestion")
	ingestCmd.MarkFlagRequired("input")
}

func runIngest(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := newRuntime(ctx, "ingest")
	defer rt.close()

	input, _ := cmd.Flags().GetString("input")
	query, _ := cmd.Flags().GetString("query")

	raws, err := readListings(input)
	if err != nil {
		rt.logger.Fatal("reading input", zap.Error(err), zap.String("input", input))
	}
	rt.logger.Info("read listings", zap.Int("count", len(raws)), zap.String("input", input))

	notifier := newNotifier(rt.config, rt.logger)
	defer notifier.Close()

	report, err := newEngine(rt, query, notifier).Run(ctx, raws)
	if err != nil {
		rt.logger.Fatal("ingestion failed", zap.Error(err))
	}
	logReport(rt.logger, report)

	if skip, _ := cmd.Flags().GetBool("skip-stats"); skip {
		return
	}
	if _, err := refreshStats(ctx, rt); err != nil {
		rt.logger.Fatal("refreshing stats", zap.Error(err))
	}
}

func logReport(log *zap.Logger, report *ingest.Report) {
	log = log.With(zap.String("run_id", report.RunID))
	for _, res := range report.Results {
		switch res.Outcome {
		case ingest.OutcomeRejected, ingest.OutcomeSkipped, ingest.OutcomeSuperseded:
			log.Debug("listing not stored",
				zap.Int("index", res.Index),
				zap.String("job_id", res.ID),
				zap.String("outcome", string(res.Outcome)),
				zap.String("reason", res.Reason),
			)
		}
	}
}
