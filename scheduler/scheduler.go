// Package scheduler runs the engine's periodic maintenance jobs: the streak
// grace sweep and the leaderboard refresh.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// job is one registered periodic task.
type job struct {
	name     string
	interval time.Duration
	run      func()
}

// Scheduler drives registered jobs on fixed intervals. Register every job
// before Start; the set is immutable once running.
type Scheduler struct {
	jobs    []job
	logger  *zap.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New creates an empty Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger, stopCh: make(chan struct{})}
}

// Register adds a periodic job. Intervals must be positive; a zero or
// negative interval is a programming error and the job is dropped with an
// error log rather than spinning.
func (s *Scheduler) Register(name string, interval time.Duration, run func()) {
	if interval <= 0 {
		s.logger.Error("scheduler job rejected, non-positive interval",
			zap.String("job", name), zap.Duration("interval", interval))
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Start launches one goroutine per registered job. Each waits a full
// interval before its first run; a job panic is logged and the schedule
// keeps ticking.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.started = true
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
		s.logger.Info("scheduler job started",
			zap.String("job", j.name), zap.Duration("interval", j.interval))
	}
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOne(j)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) runOne(j job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler job panicked",
				zap.String("job", j.name), zap.Any("panic", r))
		}
	}()
	j.run()
}

// Stop halts every job and waits for in-flight runs to finish. Safe to
// call more than once and before Start.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}
