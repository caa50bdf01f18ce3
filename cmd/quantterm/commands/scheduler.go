package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantterm/backend/internal/scheduler"
	"github.com/quantterm/backend/internal/scheduler/jobs"
)

// schedulerCmd groups the scheduler subcommands.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run and inspect scheduled maintenance jobs",
	Long: `Run the scheduler daemon or trigger individual jobs.

Registered jobs:
  cache_warm     - weekdays 16:30, recompute all portfolio return tables
  stale_sweep    - hourly, drop cached tables older than the last close
  price_cleanup  - every 5 minutes, evict stale live prices

Example:
  go run ./cmd/quantterm scheduler start
  go run ./cmd/quantterm scheduler run cache_warm`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)
	for _, job := range []scheduler.Job{
		jobs.NewCacheWarmJob(a.ledger, a.cache, a.log),
		jobs.NewStaleSweepJob(a.cache, a.log),
		jobs.NewPriceCleanupJob(a.priceMem, a.log),
	} {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.Start()
	fmt.Println("Scheduler running. Press Ctrl+C to stop.")
	<-ctx.Done()
	s.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := buildScheduler(a)
	if err != nil {
		return err
	}
	name := args[0]
	if err := s.RunNow(name); err != nil {
		return err
	}

	// RunNow is asynchronous; for one-shot use, wait for the result to
	// land in history.
	fmt.Printf("Running %s...\n", name)
	for {
		h, err := s.History(name)
		if err != nil {
			return err
		}
		if last, ok := h.Last(); ok {
			if !last.Success {
				return fmt.Errorf("job %s failed: %s", name, last.Error)
			}
			fmt.Printf("Job %s completed in %s\n", name, last.Duration)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}
