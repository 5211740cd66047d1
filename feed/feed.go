// Package feed is an in-process "something changed, re-fetch" signal.
//
// Subscribers receive no payload. They are expected to re-read whatever view
// of the data they render from the source of truth.
package feed

import "sync"

type subscriber struct {
	id     uint64
	fn     func()
	active bool // guarded by Feed.mu
}

// Feed fans a change signal out to its subscribers
type Feed struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*subscriber
}

// New returns a feed with no subscribers
func New() *Feed {
	return &Feed{}
}

// Subscribe registers fn and returns the function that removes it.
// The returned function may be called more than once.
func (f *Feed) Subscribe(fn func()) (unsubscribe func()) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs = append(f.subs, &subscriber{id: id, fn: fn, active: true})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(id) })
	}
}

func (f *Feed) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.subs {
		if s.id == id {
			s.active = false
			// build a new slice so snapshots held by Publish stay intact
			subs := make([]*subscriber, 0, len(f.subs)-1)
			subs = append(subs, f.subs[:i]...)
			f.subs = append(subs, f.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every current subscriber once, in subscription order.
// Subscribers may subscribe or unsubscribe from inside their callback. A
// subscriber removed before its turn is skipped; one added during Publish is
// first called on the next Publish.
func (f *Feed) Publish() {
	f.mu.Lock()
	snapshot := make([]*subscriber, len(f.subs))
	copy(snapshot, f.subs)
	f.mu.Unlock()

	for _, s := range snapshot {
		if !f.isActive(s) {
			continue
		}
		s.fn()
	}
}

func (f *Feed) isActive(s *subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return s.active
}

// Len returns the number of subscribers
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
