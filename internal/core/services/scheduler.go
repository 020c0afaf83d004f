package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

var schedLog = logger.Named("scheduler")

// historyKeep is the number of results retained per task.
const historyKeep = 100

// taskFunc runs one pass of a task and reports how many items it handled.
type taskFunc func(ctx context.Context) (int, error)

type builtinTask struct {
	name string
	run  taskFunc
}

// Scheduler runs the built-in tasks whenever they fall due: one export batch
// per active job, and pulls from the configured remote.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	exports driving.ExportService
	syncer  driving.SyncService
	tasks   map[string]builtinTask

	mu      sync.Mutex
	stop    chan struct{}
	running map[string]struct{}
	wg      sync.WaitGroup
}

// NewScheduler wires the tasks to their services. A nil exports or syncer
// turns the matching task into a no-op.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	exports driving.ExportService,
	syncer driving.SyncService,
) *Scheduler {
	s := &Scheduler{
		config:  config,
		store:   store,
		exports: exports,
		syncer:  syncer,
		running: make(map[string]struct{}),
	}
	s.tasks = map[string]builtinTask{
		domain.TaskIDExportBatch: {name: "Export Batch", run: s.runExportBatches},
		domain.TaskIDRemotePull:  {name: "Remote Pull", run: s.runRemotePull},
	}
	return s
}

// Start blocks until Stop is called or ctx ends. Calling it while already
// started returns nil at once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		schedLog.Warn("initialise tasks: %v", err)
	}
	return s.run(ctx, stop)
}

// Stop ends the loop and waits for running tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	s.stop = nil
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks saves every built-in task with its configured schedule.
// Disabled tasks are stored as well, so removing a remote from the config
// stops the pulls.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	var errs []error
	for _, id := range []string{domain.TaskIDExportBatch, domain.TaskIDRemotePull} {
		if err := s.ensureTask(ctx, id, s.tasks[id].name, s.config.Task(id)); err != nil {
			errs = append(errs, fmt.Errorf("task %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.ScheduledTask{ID: id, Name: name}
	}
	task.Apply(cfg, time.Now())
	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}) error {
	tick := s.config.Tick
	if tick <= 0 {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		s.checkAndRunDueTasks(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		schedLog.Error("list tasks: %v", err)
		return
	}
	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// claim marks id as running. It fails while an earlier run of the same task
// is still going, so a job never has two batches in flight.
func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[id]; busy {
		return false
	}
	s.running[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)
}

func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	builtin, ok := s.tasks[task.ID]
	if !ok {
		schedLog.Warn("unknown task %q", task.ID)
		return
	}
	if !s.claim(task.ID) {
		schedLog.Debug("%s still running, skipped", task.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(task.ID)

		result := &domain.TaskResult{TaskID: task.ID, StartedAt: time.Now()}
		n, err := builtin.run(ctx)
		result.Finish(n, err, time.Now())
		task.Record(result)
		if err != nil {
			schedLog.Warn("%s failed: %v", task.ID, err)
		}
		s.persist(ctx, task, result)
	}()
}

func (s *Scheduler) persist(ctx context.Context, task *domain.ScheduledTask, result *domain.TaskResult) {
	if err := s.store.SaveTask(ctx, task); err != nil {
		schedLog.Error("save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		schedLog.Error("record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		schedLog.Error("prune history: %v", err)
	}
}

// runExportBatches advances each active job by one batch and returns the
// number of posts written.
func (s *Scheduler) runExportBatches(ctx context.Context) (int, error) {
	if s.exports == nil {
		return 0, nil
	}
	jobs, err := s.exports.ActiveJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active jobs: %w", err)
	}

	written := 0
	var errs []error
	for _, active := range jobs {
		job, err := s.exports.RunBatch(ctx, active.ID)
		if errors.Is(err, domain.ErrJobNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", active.ID, err))
			continue
		}
		written += job.Successful - active.Successful
		if job.Status == domain.JobCompleted {
			schedLog.Info("export %s finished: %d written, %d failed", job.ID, job.Successful, job.Failed)
		}
	}
	return written, errors.Join(errs...)
}

func (s *Scheduler) runRemotePull(ctx context.Context) (int, error) {
	if s.syncer == nil {
		return 0, nil
	}
	res := s.syncer.Pull(ctx)
	if !res.Success {
		return 0, errors.New(res.Message)
	}
	return res.Changes, nil
}
