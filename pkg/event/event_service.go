package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/user"
)

var ErrInvalidEvent = errors.New("invalid event")

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, reason)
}

// GroupReader resolves the group an event is shared with.
type GroupReader interface {
	GetGroup(ctx context.Context, groupId int) (group.Group, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	// ImportEvents stores all events for the current user or none of them.
	ImportEvents(ctx context.Context, events []Event) ([]Event, error)
	GetEvents(ctx context.Context) ([]Event, error)
	GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]Event, error)
}

type EventServiceImpl struct {
	repo   Repository
	groups GroupReader
}

func NewEventService(repo Repository, groups GroupReader) *EventServiceImpl {
	return &EventServiceImpl{repo: repo, groups: groups}
}

// CreateEvent stores a new event owned by the current user. Events shared with a group may only be
// created by the group owner.
func (s *EventServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, err
	}
	event.OwnerId = userId
	if event.Visibility == "" {
		event.Visibility = Private
	}
	if err := event.validate(); err != nil {
		return Event{}, err
	}

	if event.GroupId != 0 {
		g, err := s.groups.GetGroup(ctx, event.GroupId)
		if err != nil {
			return Event{}, err
		}
		if g.OwnerId != userId {
			log.Debugf("user %d tried to create an event in group %d owned by %d", userId, g.Id, g.OwnerId)
			return Event{}, group.ErrNotGroupOwner
		}
	}

	stored, err := s.repo.StoreEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}
	log.Debugf("created event %d for user %d", stored.Id, userId)
	return stored, nil
}

func (s *EventServiceImpl) ImportEvents(ctx context.Context, events []Event) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}

	toStore := make([]Event, 0, len(events))
	for _, e := range events {
		e.OwnerId = userId
		e.GroupId = 0
		if err := e.validate(); err != nil {
			log.Warnf("skipping imported event %q: %v", e.Title, err)
			continue
		}
		toStore = append(toStore, e)
	}

	stored := make([]Event, 0, len(toStore))
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, e := range toStore {
			created, err := repo.StoreEvent(ctx, e)
			if err != nil {
				return err
			}
			stored = append(stored, created)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import events: %w", err)
	}
	log.Infof("imported %d of %d events for user %d", len(stored), len(events), userId)
	return stored, nil
}

func (s *EventServiceImpl) GetEvents(ctx context.Context) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetEventsWithUser(ctx, userId)
}

func (s *EventServiceImpl) GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, invalid("period end is before its start")
	}
	return s.repo.GetEventsForPeriod(ctx, userId, from, to)
}
