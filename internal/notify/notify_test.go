package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
)

type recordingNotifier struct {
	mu    sync.Mutex
	fired []string
}

func (r *recordingNotifier) Notify(projectID, title, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, projectID)
	return nil
}

func clockTime(hour, minute int) *time.Time {
	t := time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func enabledProject(id string) model.Project {
	return model.Project{
		ID:              id,
		Title:           "p",
		ReminderEnabled: true,
		ReminderTime:    clockTime(9, 0),
	}
}

func TestScheduleAndCancel(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	defer s.Close()

	p := enabledProject("p1")
	s.Schedule(p)
	assert.True(t, s.Scheduled("p1"))

	s.Cancel("p1")
	assert.False(t, s.Scheduled("p1"))

	// Canceling again, or an id never scheduled, is a no-op.
	s.Cancel("p1")
	s.Cancel("never scheduled")
}

func TestSchedule_DisabledReminderCancels(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	defer s.Close()

	p := enabledProject("p1")
	s.Schedule(p)
	require.True(t, s.Scheduled("p1"))

	// Turning the reminder off through a reschedule removes the
	// existing schedule.
	p.ReminderEnabled = false
	p.ReminderTime = nil
	s.Schedule(p)
	assert.False(t, s.Scheduled("p1"))
}

func TestSchedule_ReplacesExisting(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})
	defer s.Close()

	p := enabledProject("p1")
	s.Schedule(p)
	p.ReminderTime = clockTime(18, 30)
	s.Schedule(p)

	assert.True(t, s.Scheduled("p1"))
	s.mu.Lock()
	assert.Len(t, s.schedules, 1)
	s.mu.Unlock()
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	// Later today.
	next := nextOccurrence(now, 18, 30)
	assert.Equal(t, time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC), next)

	// Already past today, so tomorrow.
	next = nextOccurrence(now, 9, 0)
	assert.Equal(t, time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC), next)

	// Exactly now rolls to tomorrow.
	next = nextOccurrence(now, 10, 0)
	assert.Equal(t, time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC), next)
}

func TestClose_RejectsFurtherScheduling(t *testing.T) {
	s := NewScheduler(&recordingNotifier{})

	s.Schedule(enabledProject("p1"))
	s.Close()
	assert.False(t, s.Scheduled("p1"))

	s.Schedule(enabledProject("p2"))
	assert.False(t, s.Scheduled("p2"))

	s.Close() // idempotent
}

func TestHandleCommit_DeletedProjectDropsSchedule(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	defer st.Close()

	s := NewScheduler(&recordingNotifier{})
	defer s.Close()
	cancel := st.OnCommit(s.HandleCommit)
	defer cancel()

	p, err := st.CreateProject("with reminder", "", "")
	require.NoError(t, err)
	require.NoError(t, st.SetReminder(p.ID, true, *clockTime(8, 15)))
	require.NoError(t, st.Commit())

	require.Eventually(t, func() bool {
		return s.Scheduled(p.ID)
	}, 2*time.Second, 10*time.Millisecond)

	// Deleting the project must remove the pending reminder.
	require.NoError(t, st.DeleteProject(p.ID))
	require.NoError(t, st.Commit())

	require.Eventually(t, func() bool {
		return !s.Scheduled(p.ID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleCommit_WipeCancelsEverything(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	defer st.Close()

	s := NewScheduler(&recordingNotifier{})
	defer s.Close()
	cancel := st.OnCommit(s.HandleCommit)
	defer cancel()

	for _, title := range []string{"a", "b"} {
		p, err := st.CreateProject(title, "", "")
		require.NoError(t, err)
		require.NoError(t, st.SetReminder(p.ID, true, *clockTime(7, 0)))
	}
	require.NoError(t, st.Commit())

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.schedules) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, st.DeleteAll())
	require.NoError(t, st.Commit())

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.schedules) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
