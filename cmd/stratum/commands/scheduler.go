package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stratum-quant/stratum/internal/scheduler"
	"github.com/stratum-quant/stratum/internal/scheduler/jobs"
	"github.com/stratum-quant/stratum/internal/scoring"
	"github.com/stratum-quant/stratum/pkg/redis"
)

// schedulerCmd runs the cron loop with the scoring job registered.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scoring scheduler",
	Long: `Runs the cron scheduler with the universe scoring job.

On each tick the job loads pillar scores from the input file, scores
the universe and publishes the snapshot (and caches it when Redis is
enabled).

Example:
  go run ./cmd/stratum scheduler --input scores.json
  go run ./cmd/stratum scheduler --input scores.json --schedule "0 30 17 * * MON-FRI"
  go run ./cmd/stratum scheduler --input scores.json --once`,
	RunE: runScheduler,
}

var (
	schedulerInput    string
	schedulerSchedule string
	schedulerOnce     bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerInput, "input", "", "pillar scores JSON file (required)")
	schedulerCmd.Flags().StringVar(&schedulerSchedule, "schedule", "@daily", "cron expression for the scoring job")
	schedulerCmd.Flags().BoolVar(&schedulerOnce, "once", false, "run the scoring job once and exit")
	schedulerCmd.MarkFlagRequired("input")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, log, p, err := bootstrap()
	if err != nil {
		return err
	}

	var cache *redis.Cache
	if rc, err := redis.New(cfg); err != nil {
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
	} else if rc.Enabled() {
		defer rc.Close()
		cache = redis.NewCache(rc, "stratum")
	}

	snapshots := scoring.NewSnapshotStore(cache, log)
	job := jobs.NewScoringJob(
		scoring.NewFileProvider(schedulerInput),
		scoring.NewEngine(*p, log),
		snapshots,
		nil,
		schedulerSchedule,
		log,
	)

	s := scheduler.New(log)
	if err := s.AddJob(job); err != nil {
		return err
	}

	if schedulerOnce {
		return s.RunJobAndWait(job.Name())
	}

	s.Start()
	defer s.Stop()

	fmt.Printf("Scheduler running, job %q on %q\n", job.Name(), job.Schedule())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
