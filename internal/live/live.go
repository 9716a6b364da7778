// Package live maintains sorted, auto-updating result sets over the
// entity store. A subscription yields its current result immediately
// and again after every commit that touched its entity kind; commits
// to unrelated kinds never trigger re-evaluation.
package live

import (
	"sync"

	"github.com/garrow/portfolio/internal/model"
	"github.com/garrow/portfolio/internal/store"
)

// Engine fans store commits out to its subscriptions.
type Engine struct {
	store  *store.Store
	cancel func()

	mu          sync.Mutex
	projectSubs map[*ProjectSubscription]struct{}
	itemSubs    map[*ItemSubscription]struct{}
	windowSubs  map[*WindowSubscription]struct{}
	closed      bool
}

// NewEngine creates an engine over s and starts listening for commits.
func NewEngine(s *store.Store) *Engine {
	e := &Engine{
		store:       s,
		projectSubs: make(map[*ProjectSubscription]struct{}),
		itemSubs:    make(map[*ItemSubscription]struct{}),
		windowSubs:  make(map[*WindowSubscription]struct{}),
	}
	e.cancel = s.OnCommit(e.onCommit)
	return e
}

// Close tears down every subscription and stops listening. Idempotent.
func (e *Engine) Close() {
	e.cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for sub := range e.projectSubs {
		close(sub.ch)
	}
	for sub := range e.itemSubs {
		close(sub.ch)
	}
	for sub := range e.windowSubs {
		close(sub.ch)
	}
	e.projectSubs = nil
	e.itemSubs = nil
	e.windowSubs = nil
}

func (e *Engine) onCommit(c store.Commit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if c.Touches(store.KindProject) {
		for sub := range e.projectSubs {
			sub.push(e.store.FetchProjects(sub.query))
		}
	}
	if c.Touches(store.KindItem) || c.Touches(store.KindProject) {
		// Item queries may filter on the owning project, so project
		// commits re-evaluate them too.
		for sub := range e.itemSubs {
			sub.push(e.store.FetchItems(sub.query))
		}
		for sub := range e.windowSubs {
			sub.push(e.store.FetchItems(sub.query))
		}
	}
}

// ProjectSubscription is a live, ordered view over projects.
type ProjectSubscription struct {
	engine *Engine
	query  store.ProjectQuery
	ch     chan []model.Project
	once   sync.Once
}

// SubscribeProjects subscribes to q. The current result set is already
// buffered on the returned subscription's channel.
func (e *Engine) SubscribeProjects(q store.ProjectQuery) *ProjectSubscription {
	sub := &ProjectSubscription{
		engine: e,
		query:  q,
		ch:     make(chan []model.Project, 1),
	}
	e.mu.Lock()
	if !e.closed {
		e.projectSubs[sub] = struct{}{}
		sub.push(e.store.FetchProjects(q))
	}
	e.mu.Unlock()
	return sub
}

// Updates yields full result sets, newest wins. The channel is closed
// when the subscription or engine is closed.
func (s *ProjectSubscription) Updates() <-chan []model.Project {
	return s.ch
}

// Close deregisters the subscription. Idempotent.
func (s *ProjectSubscription) Close() {
	s.once.Do(func() {
		s.engine.mu.Lock()
		if !s.engine.closed {
			delete(s.engine.projectSubs, s)
			close(s.ch)
		}
		s.engine.mu.Unlock()
	})
}

// push delivers a result without blocking: a slow consumer sees the
// latest result, not a backlog of stale ones. Caller holds engine.mu.
func (s *ProjectSubscription) push(result []model.Project) {
	for {
		select {
		case s.ch <- result:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// ItemSubscription is a live, ordered view over items.
type ItemSubscription struct {
	engine *Engine
	query  store.ItemQuery
	ch     chan []model.Item
	once   sync.Once
}

// SubscribeItems subscribes to q. The current result set is already
// buffered on the returned subscription's channel.
func (e *Engine) SubscribeItems(q store.ItemQuery) *ItemSubscription {
	sub := &ItemSubscription{
		engine: e,
		query:  q,
		ch:     make(chan []model.Item, 1),
	}
	e.mu.Lock()
	if !e.closed {
		e.itemSubs[sub] = struct{}{}
		sub.push(e.store.FetchItems(q))
	}
	e.mu.Unlock()
	return sub
}

// Updates yields full result sets, newest wins.
func (s *ItemSubscription) Updates() <-chan []model.Item {
	return s.ch
}

// Close deregisters the subscription. Idempotent.
func (s *ItemSubscription) Close() {
	s.once.Do(func() {
		s.engine.mu.Lock()
		if !s.engine.closed {
			delete(s.engine.itemSubs, s)
			close(s.ch)
		}
		s.engine.mu.Unlock()
	})
}

func (s *ItemSubscription) push(result []model.Item) {
	for {
		select {
		case s.ch <- result:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// ItemWindows splits one ordered result into two non-overlapping
// slices, always computed from the same evaluation so they stay
// consistent with each other.
type ItemWindows struct {
	UpNext        []model.Item
	MoreToExplore []model.Item
}

// WindowSubscription is a live top-N item view exposed as an UpNext /
// MoreToExplore pair.
type WindowSubscription struct {
	engine *Engine
	query  store.ItemQuery
	split  int
	ch     chan ItemWindows
	once   sync.Once
}

// SubscribeTopItems subscribes to the top n incomplete items in open
// projects, windowed as the first k plus the remainder.
func (e *Engine) SubscribeTopItems(n, k int) *WindowSubscription {
	sub := &WindowSubscription{
		engine: e,
		query:  store.TopItems(n),
		split:  k,
		ch:     make(chan ItemWindows, 1),
	}
	e.mu.Lock()
	if !e.closed {
		e.windowSubs[sub] = struct{}{}
		sub.push(e.store.FetchItems(sub.query))
	}
	e.mu.Unlock()
	return sub
}

// Updates yields window pairs, newest wins.
func (s *WindowSubscription) Updates() <-chan ItemWindows {
	return s.ch
}

// Close deregisters the subscription. Idempotent.
func (s *WindowSubscription) Close() {
	s.once.Do(func() {
		s.engine.mu.Lock()
		if !s.engine.closed {
			delete(s.engine.windowSubs, s)
			close(s.ch)
		}
		s.engine.mu.Unlock()
	})
}

func (s *WindowSubscription) push(items []model.Item) {
	split := s.split
	if split > len(items) {
		split = len(items)
	}
	w := ItemWindows{UpNext: items[:split], MoreToExplore: items[split:]}
	for {
		select {
		case s.ch <- w:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
