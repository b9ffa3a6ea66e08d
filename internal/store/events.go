package store

import "budgetplanner/internal/core"

// EventKind tells subscribers what kind of change happened.
type EventKind int

const (
	Added EventKind = iota + 1
	Updated
	Deleted
	Reloaded
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case Reloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event describes one applied mutation. Transaction is the record after
// the change (the removed record for Deleted, zero for Reloaded).
type Event struct {
	Kind        EventKind
	Transaction core.Transaction
	Revision    uint64
}

// Subscribe registers fn to run after every applied mutation, in
// subscription order, on the goroutine that made the change. The returned
// function removes the subscription; calling it twice is harmless.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ev Event) {
	s.obsMu.Lock()
	obs := make([]observer, len(s.observers))
	copy(obs, s.observers)
	s.obsMu.Unlock()

	for _, o := range obs {
		o.fn(ev)
	}
}
