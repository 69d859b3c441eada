package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/housedash/internal/scheduler"
	"github.com/wonny/housedash/internal/scheduler/jobs"
)

// jobsCmd lists background jobs or runs one immediately
var jobsCmd = &cobra.Command{
	Use:   "jobs [name]",
	Short: "List background jobs or run one now",
	Long: `Without a name, lists the jobs "serve" would schedule.
With a name, runs that job once in the foreground and prints the result.

Example:
  go run ./cmd/housedash jobs dataset_quality`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		sched, err := buildScheduler(d)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(args) == 0 {
			printJobs(w, sched)
			return nil
		}

		result, err := sched.RunNow(args[0])
		if err != nil {
			return err
		}
		return printJobResult(w, result)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

// buildScheduler registers every job that has a schedule configured.
// The scheduler is returned unstarted.
func buildScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)
	if d.cfg.Schedule.Quality != "" {
		if err := sched.AddJob(jobs.NewQualityJob(d.store, d.cfg.Schedule.Quality, d.metrics, d.log)); err != nil {
			return nil, fmt.Errorf("schedule quality job: %w", err)
		}
	}
	if d.cfg.Schedule.Reload != "" {
		if err := sched.AddJob(jobs.NewReloadJob(d.store, d.cfg.Schedule.Reload, d.metrics, d.log)); err != nil {
			return nil, fmt.Errorf("schedule reload job: %w", err)
		}
	}
	return sched, nil
}

func printJobs(w io.Writer, sched *scheduler.Scheduler) {
	PrintHeader(w, "Background jobs")

	names := sched.Jobs()
	if len(names) == 0 {
		PrintWarning(w, "No jobs scheduled")
		return
	}

	stats := sched.Stats()
	widths := []int{20, 20}
	PrintTableHeader(w, []string{"Job", "Schedule"}, widths)
	for _, name := range names {
		PrintTableRow(w, []string{name, stats[name].Schedule}, widths)
	}
}

func printJobResult(w io.Writer, r scheduler.JobResult) error {
	PrintHeader(w, "Job "+r.JobName)

	const kw = 10
	PrintKeyValue(w, "Started", r.StartTime.Format("2006-01-02 15:04:05"), kw)
	PrintKeyValue(w, "Duration", r.Duration.String(), kw)
	PrintKeyValue(w, "Attempts", fmt.Sprintf("%d", r.Attempts), kw)
	PrintSeparator(w)

	if !r.Success {
		PrintError(w, r.Error)
		return fmt.Errorf("job %s failed: %s", r.JobName, r.Error)
	}
	PrintSuccess(w, "Job succeeded")
	return nil
}
