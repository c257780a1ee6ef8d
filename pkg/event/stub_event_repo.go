package event

import (
	"context"
	"sync"
	"time"
)

// StubEventRepository keeps events in memory. Participants are not resolved.
type StubEventRepository struct {
	mu     sync.RWMutex
	events []Event
	nextId int
	// FailStore makes StoreEvent return this error once the store count reaches FailAfter.
	FailStore error
	FailAfter int
}

func NewStubEventRepository() *StubEventRepository {
	return &StubEventRepository{}
}

func (s *StubEventRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	s.mu.Lock()
	snapshot := append([]Event(nil), s.events...)
	nextId := s.nextId
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.events = snapshot
		s.nextId = nextId
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *StubEventRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailStore != nil && len(s.events) >= s.FailAfter {
		return Event{}, s.FailStore
	}
	s.nextId++
	event.Id = s.nextId
	s.events = append(s.events, event)
	return event, nil
}

func (s *StubEventRepository) GetEventsWithUser(ctx context.Context, userId int) ([]Event, error) {
	return s.filter(func(e Event) bool { return e.OwnerId == userId }), nil
}

func (s *StubEventRepository) GetEventsForPeriod(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	return s.filter(func(e Event) bool {
		if e.OwnerId != userId || e.StartTime.After(to) {
			return false
		}
		return e.Recurrence == Weekly || !e.EndTime().Before(from)
	}), nil
}

func (s *StubEventRepository) filter(keep func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Event, 0)
	for _, e := range s.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func (s *StubEventRepository) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.nextId = 0
	s.FailStore = nil
	s.FailAfter = 0
}
