package domain

import "time"

// Built-in task IDs.
const (
	TaskIDExportBatch = "export-batch"
	TaskIDRemotePull  = "remote-pull"
)

// ScheduledTask is a recurring background task and its last outcome.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	Enabled     bool
	NextRun     time.Time
	LastRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Apply takes over cfg. Changing the interval restarts the countdown from now.
func (t *ScheduledTask) Apply(cfg TaskConfig, now time.Time) {
	if t.Interval != cfg.Interval || t.NextRun.IsZero() {
		t.Interval = cfg.Interval
		t.NextRun = now.Add(cfg.Interval)
	}
	t.Enabled = cfg.Enabled
}

// Record stores the outcome of a run and schedules the next one an interval
// after it ended.
func (t *ScheduledTask) Record(r *TaskResult) {
	t.LastRun = r.StartedAt
	t.NextRun = r.EndedAt.Add(t.Interval)
	t.LastError = r.Error
	if r.Success {
		t.LastSuccess = r.EndedAt
	}
}

// TaskResult is one run of a task.
type TaskResult struct {
	TaskID         string
	StartedAt      time.Time
	EndedAt        time.Time
	Success        bool
	Error          string
	ItemsProcessed int
}

// Finish closes the result at now with err as its outcome.
func (r *TaskResult) Finish(items int, err error, now time.Time) {
	r.EndedAt = now
	r.ItemsProcessed = items
	r.Success = err == nil
	r.Error = ""
	if err != nil {
		r.Error = err.Error()
	}
}

// TaskConfig is the configured schedule of one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

type SchedulerConfig struct {
	Enabled bool
	// Tick is how often due tasks are checked for.
	Tick  time.Duration
	Tasks map[string]TaskConfig
}

// Task returns the schedule for id, or the zero TaskConfig.
func (c *SchedulerConfig) Task(id string) TaskConfig {
	return c.Tasks[id]
}

// SchedulerConfigFor derives the schedule from settings. Export batches run
// every tick; remote pulls only when a remote is configured.
func SchedulerConfigFor(s Settings) SchedulerConfig {
	tick := s.Export.BatchInterval
	if tick <= 0 {
		tick = 10 * time.Second
	}
	return SchedulerConfig{
		Enabled: true,
		Tick:    tick,
		Tasks: map[string]TaskConfig{
			TaskIDExportBatch: {Enabled: true, Interval: tick},
			TaskIDRemotePull: {
				Enabled:  s.Remote.Configured() && s.Remote.PullInterval > 0,
				Interval: s.Remote.PullInterval,
			},
		},
	}
}
