package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/event_bus"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/friend"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/notification"
	"github.com/socialcal/socialcal/pkg/user"
)

// State is everything the application chrome shows: who is logged in, their friends and groups and
// the pending notifications.
type State struct {
	User          user.User
	Friends       []friend.Friend
	Groups        []group.GroupWithParticipants
	Notifications []notification.Notification
	FetchedAt     time.Time
}

type StateSource interface {
	CurrentUser(ctx context.Context) (user.User, error)
	GetFriends(ctx context.Context) ([]friend.Friend, error)
	GetOwnedGroups(ctx context.Context) ([]group.GroupWithParticipants, error)
	GetNotifications(ctx context.Context) ([]notification.Notification, error)
}

// mutations is the set of bus events after which the state is fetched again.
var mutations = []event_bus.EventType{
	event_bus.EventCreated,
	event_bus.EventsImported,
	event_bus.FriendAdded,
	event_bus.GroupChanged,
	event_bus.InvitationAnswered,
}

// AppState owns the application state. It is fetched once by Refresh and fetched again as a whole
// after every mutation published on the bus.
type AppState struct {
	source StateSource
	now    func() time.Time

	mu         sync.RWMutex
	state      State
	loaded     bool
	generation uint64

	unsubscribe []func()
}

func NewAppState(source StateSource, bus *event_bus.EventBus) *AppState {
	a := &AppState{source: source, now: time.Now}
	for _, kind := range mutations {
		a.unsubscribe = append(a.unsubscribe, event_bus.SubscribeTyped(bus, kind,
			func(e event_bus.EventT[event_bus.MutationCompleted]) error {
				log.Debugf("refreshing application state after %s of %d", e.Data.Kind, e.Data.EntityId)
				if err := a.Refresh(e.Context()); err != nil && !errors.Is(err, ErrStaleResponse) {
					return err
				}
				return nil
			}))
	}
	return a
}

// Refresh fetches the whole state. On failure the previous state is kept. When a newer Refresh started
// while this one was in flight, the fetched state is discarded and ErrStaleResponse returned.
func (a *AppState) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.generation++
	generation := a.generation
	a.mu.Unlock()

	current, err := a.source.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}
	friends, err := a.source.GetFriends(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch friends: %w", err)
	}
	groups, err := a.source.GetOwnedGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch groups: %w", err)
	}
	notifications, err := a.source.GetNotifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	next := State{
		User:          current,
		Friends:       friends,
		Groups:        groups,
		Notifications: notifications,
		FetchedAt:     a.now(),
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if generation != a.generation {
		log.Debugf("discarding application state of generation %d, current is %d", generation, a.generation)
		return ErrStaleResponse
	}
	a.state = next
	a.loaded = true
	return nil
}

// Snapshot returns the current state and whether it was ever fetched.
func (a *AppState) Snapshot() (State, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state, a.loaded
}

func (a *AppState) Close() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil
}

// Session binds the client, the week loader and the application state of one user. Every mutation is
// published on the bus once the server confirms it.
type Session struct {
	Client *Client
	Week   *WeekLoader
	State  *AppState
	bus    *event_bus.EventBus
}

func NewSession(c *Client) *Session {
	bus := event_bus.NewEventBus()
	s := &Session{Client: c, Week: NewWeekLoader(c), State: NewAppState(c, bus), bus: bus}
	reloadWeek := func(e event_bus.EventT[event_bus.MutationCompleted]) error {
		if _, err := s.Week.Reload(e.Context()); err != nil && !errors.Is(err, ErrStaleResponse) {
			return err
		}
		return nil
	}
	event_bus.SubscribeTyped(bus, event_bus.EventCreated, reloadWeek)
	event_bus.SubscribeTyped(bus, event_bus.EventsImported, reloadWeek)
	return s
}

func (s *Session) published(ctx context.Context, kind event_bus.EventType, entityId int) error {
	return s.bus.Publish(event_bus.NewEvent(ctx, kind, event_bus.MutationCompleted{Kind: kind, EntityId: entityId}))
}

func (s *Session) CreateEvent(ctx context.Context, e NewEvent) (event.Event, error) {
	created, err := s.Client.CreateEvent(ctx, e)
	if err != nil {
		return event.Event{}, err
	}
	return created, s.published(ctx, event_bus.EventCreated, created.Id)
}

func (s *Session) ImportICS(ctx context.Context, document io.Reader) (int, int, error) {
	imported, skipped, err := s.Client.ImportICS(ctx, document)
	if err != nil {
		return 0, 0, err
	}
	return imported, skipped, s.published(ctx, event_bus.EventsImported, imported)
}

func (s *Session) AddFriend(ctx context.Context, username string) (friend.Friend, error) {
	added, err := s.Client.AddFriend(ctx, username)
	if err != nil {
		return friend.Friend{}, err
	}
	return added, s.published(ctx, event_bus.FriendAdded, added.Id)
}

func (s *Session) CreateGroup(ctx context.Context, name string, participantIds []int) (group.Group, error) {
	created, err := s.Client.CreateGroup(ctx, name, participantIds)
	if err != nil {
		return group.Group{}, err
	}
	return created, s.published(ctx, event_bus.GroupChanged, created.Id)
}

func (s *Session) InviteToGroup(ctx context.Context, groupId, userId int) error {
	if err := s.Client.InviteToGroup(ctx, groupId, userId); err != nil {
		return err
	}
	return s.published(ctx, event_bus.GroupChanged, groupId)
}

func (s *Session) RenameGroup(ctx context.Context, groupId int, name string) error {
	if err := s.Client.RenameGroup(ctx, groupId, name); err != nil {
		return err
	}
	return s.published(ctx, event_bus.GroupChanged, groupId)
}

func (s *Session) RemoveUserFromGroup(ctx context.Context, groupId, userId int) error {
	if err := s.Client.RemoveUserFromGroup(ctx, groupId, userId); err != nil {
		return err
	}
	return s.published(ctx, event_bus.GroupChanged, groupId)
}

func (s *Session) ReplyToInvitation(ctx context.Context, groupId int, accepted bool) error {
	if err := s.Client.ReplyToInvitation(ctx, groupId, accepted); err != nil {
		return err
	}
	return s.published(ctx, event_bus.InvitationAnswered, groupId)
}
