package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup recomputes cached statistics.
	TaskStatsWarmup = "stats:warmup"
)

// StatsWarmupPayload selects what a warm-up run recomputes. A zero Year
// means the current year.
type StatsWarmupPayload struct {
	Year   int    `json:"year,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NewStatsWarmupTask constructs an Asynq task.
func NewStatsWarmupTask(payload StatsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data, asynq.MaxRetry(3), asynq.Queue(QueueDefault)), nil
}
