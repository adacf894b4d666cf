// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic background task. Run is called once at Start and then
// every Interval until the runner stops.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the run lasts until shutdown.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner owns one goroutine per registered job.
type Runner struct {
	logger *zap.Logger
	jobs   []Job

	mu       sync.Mutex
	cancel   context.CancelFunc
	inFlight map[string]time.Time // job name -> start of the current run
	wg       sync.WaitGroup
}

// New creates a task runner. Jobs are added with Register before Start.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		inFlight: make(map[string]time.Time),
	}
}

// Register adds a job. It has no effect on a runner that already started.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches every registered job. A second call is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}

	r.logger.Info("background task runner started", zap.Int("job_count", len(r.jobs)))
}

// Stop cancels every job and waits for in-flight runs to return. If ctx
// ends first, Stop returns ctx.Err() and logs the jobs still running.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.running()))
		return ctx.Err()
	}
}

// running lists the jobs with a run in progress, sorted by name.
func (r *Runner) running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.inFlight))
	for name := range r.inFlight {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

// execute performs one logged run of job.
func (r *Runner) execute(ctx context.Context, job Job) {
	start := time.Now()
	r.mu.Lock()
	r.inFlight[job.Name] = start
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, job.Name)
		r.mu.Unlock()
	}()

	err := r.invoke(ctx, job)
	elapsed := zap.Duration("duration", time.Since(start))
	switch {
	case err == nil:
		r.logger.Debug("job completed", zap.String("job", job.Name), elapsed)
	case ctx.Err() != nil:
		// Cancelled by Stop; not a failure.
		r.logger.Debug("job cancelled during shutdown", zap.String("job", job.Name), elapsed)
	default:
		r.logger.Error("job failed", zap.String("job", job.Name), elapsed, zap.Error(err))
	}
}

// invoke runs job once under its timeout. A panic becomes an error so the
// job's ticker goroutine survives it.
func (r *Runner) invoke(ctx context.Context, job Job) (err error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, p)
		}
	}()
	return job.Run(ctx)
}

