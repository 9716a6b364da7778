package store

import (
	"sort"
	"sync"
)

// subscriberList is a registry of commit subscribers. Registration and
// removal are safe from any goroutine; delivery iterates a snapshot in
// registration order, and a subscriber may deregister from inside its
// own callback.
type subscriberList struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]Subscriber
}

func newSubscriberList() *subscriberList {
	return &subscriberList{subs: make(map[int]Subscriber)}
}

func (l *subscriberList) add(fn Subscriber) (cancel func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

func (l *subscriberList) snapshot() []Subscriber {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.subs[id])
	}
	return out
}
