// Package notify schedules recurring per-project reminders. Scheduling
// is best-effort: failures are logged and never reach the mutation
// path that triggered them.
package notify

import (
	"sync"
	"time"

	"github.com/garrow/portfolio/internal/logger"
	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
)

// Notifier delivers a reminder. The default implementation only logs;
// platform delivery (desktop notifications etc.) plugs in here.
type Notifier interface {
	Notify(projectID, title, detail string) error
}

// LogNotifier writes reminders to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(projectID, title, detail string) error {
	logger.Info("reminder",
		logger.F("project", projectID),
		logger.F("title", title))
	return nil
}

type schedule struct {
	stop chan struct{}
}

// Scheduler keeps one recurring daily reminder per project, keyed by
// the project id. Rescheduling replaces the previous schedule for that
// id; canceling an unknown id is a no-op.
type Scheduler struct {
	notifier Notifier

	mu        sync.Mutex
	schedules map[string]*schedule
	closed    bool
}

// NewScheduler creates a scheduler delivering through n. A nil n uses
// LogNotifier.
func NewScheduler(n Notifier) *Scheduler {
	if n == nil {
		n = LogNotifier{}
	}
	return &Scheduler{
		notifier:  n,
		schedules: make(map[string]*schedule),
	}
}

// Schedule arms a daily reminder at the project's reminder time. A
// project without an enabled reminder has any existing schedule
// canceled instead.
func (s *Scheduler) Schedule(p model.Project) {
	if !p.ReminderEnabled || p.ReminderTime == nil {
		s.Cancel(p.ID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.schedules[p.ID]; ok {
		close(prev.stop)
	}
	sc := &schedule{stop: make(chan struct{})}
	s.schedules[p.ID] = sc

	hour, minute := p.ReminderTime.Hour(), p.ReminderTime.Minute()
	go s.run(sc, p.ID, p.DisplayTitle(), p.Detail, hour, minute)
}

// run fires the reminder once per day at the configured clock time
// until stopped.
func (s *Scheduler) run(sc *schedule, projectID, title, detail string, hour, minute int) {
	for {
		timer := time.NewTimer(time.Until(nextOccurrence(time.Now(), hour, minute)))
		select {
		case <-timer.C:
			if err := s.notifier.Notify(projectID, title, detail); err != nil {
				logger.Warn("reminder delivery failed",
					logger.F("project", projectID),
					logger.F("error", err))
			}
		case <-sc.stop:
			timer.Stop()
			return
		}
	}
}

// nextOccurrence returns the next time the given clock comes around
// after now, today or tomorrow.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Cancel removes the schedule keyed by projectID. Canceling a
// non-existent schedule is a no-op.
func (s *Scheduler) Cancel(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.schedules[projectID]; ok {
		close(sc.stop)
		delete(s.schedules, projectID)
	}
}

// Scheduled reports whether a reminder is currently armed for the
// given project.
func (s *Scheduler) Scheduled(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.schedules[projectID]
	return ok
}

// HandleCommit reconciles schedules with a committed batch. Wire it to
// the store with OnCommit.
func (s *Scheduler) HandleCommit(c store.Commit) {
	if !c.Touches(store.KindProject) {
		return
	}
	if c.Wiped {
		s.CancelAll()
	}
	for _, id := range c.DeletedProjects {
		s.Cancel(id)
	}
	for _, p := range c.SavedProjects {
		s.Schedule(p)
	}
}

// CancelAll removes every schedule.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sc := range s.schedules {
		close(sc.stop)
		delete(s.schedules, id)
	}
}

// Close cancels everything and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sc := range s.schedules {
		close(sc.stop)
		delete(s.schedules, id)
	}
}
