// Package reminder schedules one-shot appointment reminders. Timers
// live only in process memory: a restart silently drops them, which is
// a documented limitation of the service.
package reminder

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLead is how long before the appointment the reminder fires.
const DefaultLead = time.Hour

// Scheduler registers cancellable one-shot callbacks keyed by
// reservation id. A trigger instant already in the past fires the
// callback immediately rather than dropping it.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates an empty scheduler.
func New(logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
		logger: logger,
		now:    time.Now,
	}
}

// Schedule registers callback to run once at the trigger instant.
// Scheduling again under the same key replaces the previous timer.
func (s *Scheduler) Schedule(key int64, at time.Time, callback func()) {
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		callback()
	})
	s.mu.Unlock()

	s.logger.Debug().Int64("key", key).Time("at", at).Msg("reminder scheduled")
}

// Cancel stops the timer for key, reporting whether one was pending.
// Cancelling a cancelled reservation's reminder keeps a stale timer
// from pinging the customer about an appointment that no longer exists.
func (s *Scheduler) Cancel(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return false
	}
	delete(s.timers, key)
	return t.Stop()
}

// Stop cancels every pending timer, for shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending returns the number of timers not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
