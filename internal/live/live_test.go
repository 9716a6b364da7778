package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
)

func newTestEngine(t *testing.T) (*store.Store, *Engine) {
	t.Helper()
	s, err := store.OpenMemory()
	require.NoError(t, err)
	e := NewEngine(s)
	t.Cleanup(func() {
		e.Close()
		s.Close()
	})
	return s, e
}

// commitAndWait commits and blocks until the engine has seen the event.
// The engine subscribes before the sentinel, so subscribers run in that
// order for each commit.
func commitAndWait(t *testing.T, s *store.Store) {
	t.Helper()
	done := make(chan struct{}, 1)
	cancel := s.OnCommit(func(store.Commit) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer cancel()
	require.NoError(t, s.Commit())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for commit dispatch")
	}
}

func readProjects(t *testing.T, ch <-chan []model.Project) []model.Project {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for project update")
		return nil
	}
}

func readWindows(t *testing.T, ch <-chan ItemWindows) ItemWindows {
	t.Helper()
	select {
	case w, ok := <-ch:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for item windows")
		return ItemWindows{}
	}
}

func TestSubscribeProjects_InitialResult(t *testing.T) {
	s, e := newTestEngine(t)

	_, err := s.CreateProject("existing", "", "")
	require.NoError(t, err)
	commitAndWait(t, s)

	sub := e.SubscribeProjects(store.OpenProjects())
	defer sub.Close()

	initial := readProjects(t, sub.Updates())
	require.Len(t, initial, 1)
	assert.Equal(t, "existing", initial[0].Title)
}

func TestSubscribeProjects_ClosingProjectRemovesIt(t *testing.T) {
	s, e := newTestEngine(t)

	keep, err := s.CreateProject("keep", "", "")
	require.NoError(t, err)
	drop, err := s.CreateProject("drop", "", "")
	require.NoError(t, err)
	commitAndWait(t, s)

	sub := e.SubscribeProjects(store.OpenProjects())
	defer sub.Close()
	require.Len(t, readProjects(t, sub.Updates()), 2)

	require.NoError(t, s.ToggleProjectClosed(drop.ID))
	commitAndWait(t, s)

	// The closed project disappears on the next notification without a
	// fresh subscription.
	result := readProjects(t, sub.Updates())
	require.Len(t, result, 1)
	assert.Equal(t, keep.ID, result[0].ID)
}

func TestSubscribeProjects_UnrelatedKindDoesNotNotify(t *testing.T) {
	s, e := newTestEngine(t)

	p, err := s.CreateProject("p", "", "")
	require.NoError(t, err)
	commitAndWait(t, s)

	sub := e.SubscribeProjects(store.OpenProjects())
	defer sub.Close()
	readProjects(t, sub.Updates())

	// An item-only commit must not re-evaluate a project query.
	_, err = s.CreateItem(p.ID, "a", "", model.PriorityLow)
	require.NoError(t, err)
	commitAndWait(t, s)

	select {
	case r := <-sub.Updates():
		t.Fatalf("project subscription notified by item-only commit: %v", r)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeItems_ProjectCommitReevaluates(t *testing.T) {
	s, e := newTestEngine(t)

	p, err := s.CreateProject("p", "", "")
	require.NoError(t, err)
	_, err = s.CreateItem(p.ID, "a", "", model.PriorityLow)
	require.NoError(t, err)
	commitAndWait(t, s)

	sub := e.SubscribeItems(store.TopItems(10))
	defer sub.Close()
	require.Len(t, <-sub.Updates(), 1)

	// Closing the owning project empties the top-items view even though
	// no item row changed.
	require.NoError(t, s.ToggleProjectClosed(p.ID))
	commitAndWait(t, s)

	select {
	case items, ok := <-sub.Updates():
		require.True(t, ok)
		assert.Empty(t, items)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for item update")
	}
}

func TestSubscribeTopItems_Windows(t *testing.T) {
	s, e := newTestEngine(t)

	p, err := s.CreateProject("p", "", "")
	require.NoError(t, err)
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		it, err := s.CreateItem(p.ID, "item", "", model.PriorityLow)
		require.NoError(t, err)
		ids = append(ids, it.ID)
	}
	commitAndWait(t, s)

	sub := e.SubscribeTopItems(10, 3)
	defer sub.Close()

	w := readWindows(t, sub.Updates())
	assert.Len(t, w.UpNext, 3)
	assert.Len(t, w.MoreToExplore, 2)

	// Both windows come from one ordered evaluation: no overlap, no gaps.
	seen := map[string]bool{}
	for _, it := range append(append([]model.Item{}, w.UpNext...), w.MoreToExplore...) {
		assert.False(t, seen[it.ID], "windows must not overlap")
		seen[it.ID] = true
	}
	assert.Len(t, seen, 5)

	// Completing items shrinks the windows on the next notification.
	for _, id := range ids[:3] {
		require.NoError(t, s.ToggleItemCompleted(id))
	}
	commitAndWait(t, s)

	next := readWindows(t, sub.Updates())
	assert.Len(t, next.UpNext, 2)
	assert.Empty(t, next.MoreToExplore)
}

func TestSubscriptionClose_Idempotent(t *testing.T) {
	s, e := newTestEngine(t)

	sub := e.SubscribeProjects(store.OpenProjects())
	readProjects(t, sub.Updates())

	sub.Close()
	sub.Close()

	_, err := s.CreateProject("after close", "", "")
	require.NoError(t, err)
	commitAndWait(t, s)

	// The channel is closed and drained; no more results arrive.
	_, ok := <-sub.Updates()
	assert.False(t, ok)
}

func TestEngineClose_TearsDownSubscriptions(t *testing.T) {
	s, err := store.OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	e := NewEngine(s)
	sub := e.SubscribeProjects(store.OpenProjects())
	readProjects(t, sub.Updates())

	e.Close()
	e.Close() // idempotent

	_, ok := <-sub.Updates()
	assert.False(t, ok, "channel must close with the engine")
}
