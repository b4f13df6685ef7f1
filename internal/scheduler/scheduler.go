package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the recurring jobs. Registration is a reconciliation:
// Ensure only adds jobs not yet present, so repeated setup calls (for
// example from every enrollment) never double-register a trigger.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	running bool
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make(map[string]cron.EntryID),
	}
}

// Ensure registers the named job unless a job with that name already
// exists. It reports whether a registration happened.
func (s *Scheduler) Ensure(name, spec string, fn func()) (bool, error) {
	if name == "" {
		return false, errors.New("job name must not be empty")
	}
	if fn == nil {
		return false, errors.New("job fn must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return false, nil
	}

	id, err := s.cron.AddFunc(spec, s.safeJob(name, fn))
	if err != nil {
		return false, fmt.Errorf("register job %s: %w", name, err)
	}
	s.jobs[name] = id

	slog.Info("job registered", "job", name, "spec", spec)
	return true, nil
}

// Names returns the registered job names, sorted.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.cron.Start()
	s.running = true

	slog.Info("scheduler started", "jobs", len(s.jobs))
	return true
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	<-s.cron.Stop().Done()
	s.running = false

	slog.Info("scheduler stopped")
	return true
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) safeJob(name string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("job panic recovered", "job", name, "panic", r)
			}
		}()

		start := time.Now()
		fn()
		slog.Info("job completed", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}
}
