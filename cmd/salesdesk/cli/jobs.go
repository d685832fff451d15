package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/salesdesk/salesdesk/internal/platform/cache"
	"github.com/salesdesk/salesdesk/jobs"
)

// jobAliases maps the names accepted on the command line to task types.
var jobAliases = map[string]string{
	"stats-warmup":      jobs.TaskStatsWarmup,
	jobs.TaskStatsWarmup: jobs.TaskStatsWarmup,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage background jobs",
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger <job>",
	Short: "Enqueue a job now",
	Example: `  salesdesk jobs trigger stats-warmup
  salesdesk jobs trigger stats-warmup --year 2024`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsTrigger,
}

var jobsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show queue counters and scheduled tasks",
	RunE:  runJobsInspect,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsTriggerCmd, jobsInspectCmd)

	jobsTriggerCmd.Flags().Int("year", 0, "Year to warm (default: current year)")
	jobsInspectCmd.Flags().Int("scheduled", 10, "Number of scheduled tasks to list")
}

// JobsCLI wraps manual management helpers for the job queue.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the helpers against the Redis at redisAddr.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opt, err := cache.AsynqOpt(redisAddr)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{client: jobs.NewClient(opt), inspector: asynq.NewInspector(opt)}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, year int) (*asynq.TaskInfo, error) {
	taskType, err := resolveJob(name)
	if err != nil {
		return nil, err
	}
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	switch taskType {
	case jobs.TaskStatsWarmup:
		return c.client.EnqueueStatsWarmup(ctx, jobs.StatsWarmupPayload{Year: year, Reason: "manual"})
	}
	return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
}

// InspectQueue reports the counters of the default queue.
func (c *JobsCLI) InspectQueue() (jobs.QueueHealth, error) {
	if c == nil || c.inspector == nil {
		return jobs.QueueHealth{}, errors.New("jobs cli: inspector not configured")
	}
	return jobs.Health(c.inspector)
}

// ListScheduled returns up to size scheduled tasks of the default queue.
func (c *JobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

func resolveJob(name string) (string, error) {
	taskType, ok := jobAliases[name]
	if !ok {
		return "", fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	return taskType, nil
}

func openJobsCLI() (*JobsCLI, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	return NewJobsCLI(env.cfg.RedisAddr)
}

func runJobsTrigger(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	if _, err := resolveJob(args[0]); err != nil {
		return err
	}
	jc, err := openJobsCLI()
	if err != nil {
		return err
	}
	defer jc.Close()

	info, err := jc.Trigger(cmd.Context(), args[0], year)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on queue %s\n", info.Type, info.ID, info.Queue)
	return err
}

func runJobsInspect(cmd *cobra.Command, _ []string) error {
	size, _ := cmd.Flags().GetInt("scheduled")
	jc, err := openJobsCLI()
	if err != nil {
		return err
	}
	defer jc.Close()

	health, err := jc.InspectQueue()
	if err != nil {
		return err
	}
	scheduled, err := jc.ListScheduled(size)
	if err != nil {
		return err
	}
	return writeQueueReport(cmd.OutOrStdout(), health, scheduled)
}

func writeQueueReport(out io.Writer, health jobs.QueueHealth, scheduled []*asynq.TaskInfo) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "queue\t%s\n", health.Queue)
	fmt.Fprintf(tw, "pending\t%d\n", health.Pending)
	fmt.Fprintf(tw, "active\t%d\n", health.Active)
	fmt.Fprintf(tw, "retry\t%d\n", health.Retry)
	fmt.Fprintf(tw, "archived\t%d\n", health.Archived)
	fmt.Fprintf(tw, "processed\t%d\n", health.Processed)
	fmt.Fprintf(tw, "failed\t%d\n", health.Failed)
	if len(scheduled) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "scheduled\ttype\tnext")
		for _, t := range scheduled {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
		}
	}
	return tw.Flush()
}
