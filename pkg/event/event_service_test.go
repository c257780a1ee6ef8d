package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/socialcal/socialcal/internal/test_utils"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGroupReader map[int]group.Group

func (s stubGroupReader) GetGroup(ctx context.Context, groupId int) (group.Group, error) {
	g, ok := s[groupId]
	if !ok {
		return group.Group{}, group.ErrGroupNotFound
	}
	return g, nil
}

var monday = time.Date(2025, time.January, 13, 9, 0, 0, 0, time.UTC)

func setupService() (*EventServiceImpl, *StubEventRepository, context.Context) {
	repo := NewStubEventRepository()
	groups := stubGroupReader{
		1: {Id: 1, Name: "Mine", OwnerId: test_utils.TestUser.Id},
		2: {Id: 2, Name: "Theirs", OwnerId: 999},
	}
	return NewEventService(repo, groups), repo, test_utils.WithTestUser(context.Background())
}

func validEvent() Event {
	return Event{Title: "Gym", StartTime: monday, Duration: time.Hour, Recurrence: Weekly, Visibility: Public}
}

func TestEventServiceImpl_CreateEvent(t *testing.T) {
	t.Run("stores the event for the current user", func(t *testing.T) {
		service, repo, ctx := setupService()

		created, err := service.CreateEvent(ctx, validEvent())

		require.NoError(t, err)
		assert.Equal(t, 1, created.Id)
		assert.Equal(t, test_utils.TestUser.Id, created.OwnerId)
		stored, _ := repo.GetEventsWithUser(ctx, test_utils.TestUser.Id)
		assert.Equal(t, []Event{created}, stored)
	})

	t.Run("defaults visibility to private", func(t *testing.T) {
		service, _, ctx := setupService()
		e := validEvent()
		e.Visibility = ""

		created, err := service.CreateEvent(ctx, e)

		require.NoError(t, err)
		assert.Equal(t, Private, created.Visibility)
	})

	invalidCases := []struct {
		name   string
		modify func(e *Event)
	}{
		{"empty title", func(e *Event) { e.Title = "" }},
		{"title over the limit", func(e *Event) { e.Title = strings.Repeat("a", MaxTitleLength+1) }},
		{"missing start", func(e *Event) { e.StartTime = time.Time{} }},
		{"zero duration", func(e *Event) { e.Duration = 0 }},
		{"negative duration", func(e *Event) { e.Duration = -time.Minute }},
		{"unknown recurrence", func(e *Event) { e.Recurrence = "Daily" }},
		{"unknown visibility", func(e *Event) { e.Visibility = "Friends" }},
	}
	for _, tc := range invalidCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			service, repo, ctx := setupService()
			e := validEvent()
			tc.modify(&e)

			_, err := service.CreateEvent(ctx, e)

			assert.ErrorIs(t, err, ErrInvalidEvent)
			stored, _ := repo.GetEventsWithUser(ctx, test_utils.TestUser.Id)
			assert.Empty(t, stored)
		})
	}

	t.Run("title of exactly the limit is accepted", func(t *testing.T) {
		service, _, ctx := setupService()
		e := validEvent()
		e.Title = strings.Repeat("ż", MaxTitleLength)

		_, err := service.CreateEvent(ctx, e)

		assert.NoError(t, err)
	})

	t.Run("group events", func(t *testing.T) {
		service, _, ctx := setupService()

		own := validEvent()
		own.GroupId = 1
		created, err := service.CreateEvent(ctx, own)
		require.NoError(t, err)
		assert.Equal(t, 1, created.GroupId)

		foreign := validEvent()
		foreign.GroupId = 2
		_, err = service.CreateEvent(ctx, foreign)
		assert.ErrorIs(t, err, group.ErrNotGroupOwner)

		missing := validEvent()
		missing.GroupId = 3
		_, err = service.CreateEvent(ctx, missing)
		assert.ErrorIs(t, err, group.ErrGroupNotFound)
	})

	t.Run("requires a user", func(t *testing.T) {
		service, _, _ := setupService()

		_, err := service.CreateEvent(context.Background(), validEvent())

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestEventServiceImpl_ImportEvents(t *testing.T) {
	t.Run("skips invalid events and stores the rest", func(t *testing.T) {
		service, _, ctx := setupService()
		broken := validEvent()
		broken.Duration = 0
		shared := validEvent()
		shared.GroupId = 2

		stored, err := service.ImportEvents(ctx, []Event{validEvent(), broken, shared})

		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Zero(t, stored[1].GroupId, "imported events are never shared")
	})

	t.Run("a storage failure rolls back the whole import", func(t *testing.T) {
		service, repo, ctx := setupService()
		_, err := service.CreateEvent(ctx, validEvent())
		require.NoError(t, err)
		failure := errors.New("disk full")
		repo.FailStore = failure
		repo.FailAfter = 2

		_, err = service.ImportEvents(ctx, []Event{validEvent(), validEvent(), validEvent()})

		assert.ErrorIs(t, err, failure)
		stored, _ := repo.GetEventsWithUser(ctx, test_utils.TestUser.Id)
		assert.Len(t, stored, 1)
	})
}

func TestEventServiceImpl_GetEventsForPeriod(t *testing.T) {
	service, _, ctx := setupService()
	once := validEvent()
	once.Recurrence = Once
	lastWeek := once
	lastWeek.StartTime = monday.AddDate(0, 0, -7)
	series := validEvent()
	series.StartTime = monday.AddDate(0, 0, -14)
	for _, e := range []Event{once, lastWeek, series} {
		_, err := service.CreateEvent(ctx, e)
		require.NoError(t, err)
	}

	events, err := service.GetEventsForPeriod(ctx, monday.Add(-9*time.Hour), monday.AddDate(0, 0, 7))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Id)
	assert.Equal(t, 3, events[1].Id)

	_, err = service.GetEventsForPeriod(ctx, monday, monday.Add(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}
