package store

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// IDSource returns a new unique identifier carrying prefix.
type IDSource func(prefix string) string

// UUIDSource generates "<prefix>-<uuid v7>" identifiers. Version 7 UUIDs
// are time ordered, so later ids sort after earlier ones.
func UUIDSource(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

// Store is the mutable handle over a Document. All entity mutations go
// through it so invariants (stage history, derived metrics, log cap)
// hold after every call.
type Store struct {
	doc   *Document
	now   Clock
	newID IDSource

	subscribers []subscriber
	nextSub     int
}

type subscriber struct {
	id int
	fn func(Event)
}

type Option func(*Store)

func WithClock(c Clock) Option {
	return func(s *Store) { s.now = c }
}

func WithIDs(ids IDSource) Option {
	return func(s *Store) { s.newID = ids }
}

func New(doc *Document, opts ...Option) *Store {
	s := &Store{
		doc:   doc,
		now:   time.Now,
		newID: UUIDSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Document() *Document { return s.doc }
func (s *Store) Profile() *Profile   { return &s.doc.Profile }
func (s *Store) Now() time.Time      { return s.now() }

// LogEvent stamps ev with an id and timestamp, appends it to the bounded
// log and notifies subscribers.
func (s *Store) LogEvent(ev Event) Event {
	ev.ID = s.newID("ev")
	ev.Timestamp = s.now()
	if ev.Source == "" {
		ev.Source = "unknown"
	}
	appendEvent(s.doc, ev)
	for _, sub := range s.subscribers {
		sub.fn(ev)
	}
	return ev
}

// Subscribe registers fn for every subsequently logged event. The returned
// func removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.nextSub++
	id := s.nextSub
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// RecentEvents returns up to n of the newest events, newest first.
func (s *Store) RecentEvents(n int) []Event {
	log := s.doc.EventLog
	if n <= 0 || n > len(log) {
		n = len(log)
	}
	out := make([]Event, 0, n)
	for i := len(log) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, log[i])
	}
	return out
}
