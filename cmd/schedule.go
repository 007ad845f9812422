package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Ingest the scraper output periodically until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		runSchedule()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := newRuntime(ctx, "schedule")
	defer rt.close()

	sc := rt.config.Schedule
	if sc.Input == "" {
		rt.logger.Fatal("schedule.input is required", zap.String("hint", "point it at the file the scraper writes"))
	}

	notifier := newNotifier(rt.config, rt.logger)
	defer notifier.Close()
	engine := newEngine(rt, sc.Query, notifier)

	task := func(ctx context.Context) error {
		// entries collected during the run reach log.json once it is over
		defer rt.logger.Sync()

		raws, err := readListings(sc.Input)
		if err != nil {
			return err
		}
		report, err := engine.Run(ctx, raws)
		if err != nil {
			return fmt.Errorf("ingestion: %w", err)
		}
		logReport(rt.logger, report)

		_, err = refreshStats(ctx, rt)
		return err
	}

	s := scheduler.New(sc.Spec, sc.RunOnStart, task, rt.logger)
	if err := s.Start(ctx); err != nil {
		rt.logger.Fatal("starting the scheduler", zap.Error(err))
	}

	<-ctx.Done()
	rt.logger.Info("shutting down", zap.String("reason", context.Cause(ctx).Error()))
	s.Stop()
}
