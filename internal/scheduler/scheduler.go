// SPDX-License-Identifier: MIT
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TaskFunc is one scheduled job. It receives a bounded context and
// returns the error (if any) the scheduler records against its name.
type TaskFunc func(ctx context.Context) error

// taskState tracks the last outcome of one registered job, exposed
// through Status.
type taskState struct {
	name      string
	lastRun   time.Time
	lastError string
	runCount  int64
	failCount int64
}

// Status is a point-in-time snapshot of a task's run history.
type Status struct {
	Name      string
	LastRun   time.Time
	LastError string
	RunCount  int64
	FailCount int64
}

// Scheduler runs the ban-expiry sweep and the GeoIP database refresh
// on cron schedules read from general.scheduler, recording each run's
// outcome for Status. The /stats endpoint does not include this data.
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
	jobs map[string]*taskState
}

// New builds a Scheduler. Call Register for each job, then Start.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make(map[string]*taskState),
	}
}

// Register adds fn under name on the given cron spec (standard 5-field
// cron, or one of cron.v3's "@every 1m" / "@weekly" shorthands). A
// malformed spec is a startup-time configuration error.
func (s *Scheduler) Register(name, spec string, fn TaskFunc, timeout time.Duration) error {
	s.mu.Lock()
	s.jobs[name] = &taskState{name: name}
	s.mu.Unlock()

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := fn(ctx)

		s.mu.Lock()
		st := s.jobs[name]
		st.lastRun = time.Now()
		st.runCount++
		if err != nil {
			st.failCount++
			st.lastError = err.Error()
		} else {
			st.lastError = ""
		}
		s.mu.Unlock()
	})
	return err
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Status returns a snapshot of every registered job's run history.
func (s *Scheduler) Status() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, Status{
			Name:      st.name,
			LastRun:   st.lastRun,
			LastError: st.lastError,
			RunCount:  st.runCount,
			FailCount: st.failCount,
		})
	}
	return out
}
