package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/friend"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/notification"
	"github.com/socialcal/socialcal/pkg/user"
)

var ErrInvalidResponseShape = errors.New("invalid response shape")

// ResponseShapeError reports a payload that does not match the contract of its endpoint.
type ResponseShapeError struct {
	Endpoint string
	Field    string
	Reason   string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("%s: field %q %s", e.Endpoint, e.Field, e.Reason)
}

func (e *ResponseShapeError) Unwrap() error {
	return ErrInvalidResponseShape
}

// shape collects the first contract violation while a payload is converted.
type shape struct {
	endpoint string
	err      error
}

func (s *shape) require(field string, present bool) {
	if s.err == nil && !present {
		s.err = &ResponseShapeError{Endpoint: s.endpoint, Field: field, Reason: "is missing"}
	}
}

func (s *shape) check(field string, ok bool, reason string) {
	if s.err == nil && !ok {
		s.err = &ResponseShapeError{Endpoint: s.endpoint, Field: field, Reason: reason}
	}
}

// Wire payloads use pointers so that absent fields can be told apart from zero values.

type eventPayload struct {
	Id             *int      `json:"id"`
	Title          *string   `json:"title"`
	StartTime      *int64    `json:"start_time"`
	Duration       *int64    `json:"duration"`
	RecurrenceType *string   `json:"recurrence_type"`
	Visibility     *string   `json:"visibility"`
	OwnerId        *int      `json:"owner_id"`
	GroupId        *int      `json:"group_id"`
	Participants   *[]string `json:"participants"`
}

type eventsPayload struct {
	Events *[]eventPayload `json:"events"`
}

func (p eventPayload) toEvent(s *shape, field string) event.Event {
	s.require(field+".id", p.Id != nil)
	s.require(field+".title", p.Title != nil)
	s.require(field+".start_time", p.StartTime != nil)
	s.require(field+".duration", p.Duration != nil)
	s.require(field+".recurrence_type", p.RecurrenceType != nil)
	s.require(field+".visibility", p.Visibility != nil)
	s.require(field+".owner_id", p.OwnerId != nil)
	if s.err != nil {
		return event.Event{}
	}
	s.check(field+".duration", *p.Duration >= 0, "is negative")
	s.check(field+".recurrence_type", event.RecurrenceType(*p.RecurrenceType).Valid(), "has unknown value "+*p.RecurrenceType)

	e := event.Event{
		Id:           *p.Id,
		OwnerId:      *p.OwnerId,
		Title:        *p.Title,
		Visibility:   event.Visibility(*p.Visibility),
		StartTime:    time.UnixMilli(*p.StartTime),
		Duration:     time.Duration(*p.Duration) * time.Millisecond,
		Recurrence:   event.RecurrenceType(*p.RecurrenceType),
		Participants: []string{},
	}
	if p.GroupId != nil {
		e.GroupId = *p.GroupId
	}
	if p.Participants != nil {
		e.Participants = *p.Participants
	}
	return e
}

func (p eventsPayload) toEvents(endpoint string) ([]event.Event, error) {
	s := &shape{endpoint: endpoint}
	s.require("events", p.Events != nil)
	if s.err != nil {
		return nil, s.err
	}
	events := make([]event.Event, 0, len(*p.Events))
	for i, raw := range *p.Events {
		events = append(events, raw.toEvent(s, fmt.Sprintf("events[%d]", i)))
	}
	return events, s.err
}

type userPayload struct {
	Id          *int    `json:"id"`
	Uid         *string `json:"uid"`
	Username    *string `json:"username"`
	DisplayName *string `json:"displayName"`
	Settings    *struct {
		Timezone *string `json:"timezone"`
	} `json:"settings"`
}

func (p userPayload) toUser(endpoint string) (user.User, error) {
	s := &shape{endpoint: endpoint}
	s.require("id", p.Id != nil)
	s.require("username", p.Username != nil)
	s.require("settings", p.Settings != nil)
	if s.err != nil {
		return user.User{}, s.err
	}
	s.require("settings.timezone", p.Settings.Timezone != nil)
	if s.err != nil {
		return user.User{}, s.err
	}
	u := user.User{Id: *p.Id, Username: *p.Username, Settings: user.Settings{Timezone: *p.Settings.Timezone}}
	if p.Uid != nil {
		u.Uid = *p.Uid
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	return u, nil
}

type friendPayload struct {
	Id          *int    `json:"id"`
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
}

type friendsPayload struct {
	Friends *[]friendPayload `json:"friends"`
}

func (p friendPayload) toFriend(s *shape, field string) friend.Friend {
	s.require(field+".id", p.Id != nil)
	s.require(field+".username", p.Username != nil)
	if s.err != nil {
		return friend.Friend{}
	}
	f := friend.Friend{Id: *p.Id, Username: *p.Username}
	if p.DisplayName != nil {
		f.DisplayName = *p.DisplayName
	}
	return f
}

func (p friendsPayload) toFriends(endpoint string) ([]friend.Friend, error) {
	s := &shape{endpoint: endpoint}
	s.require("friends", p.Friends != nil)
	if s.err != nil {
		return nil, s.err
	}
	friends := make([]friend.Friend, 0, len(*p.Friends))
	for i, raw := range *p.Friends {
		friends = append(friends, raw.toFriend(s, fmt.Sprintf("friends[%d]", i)))
	}
	return friends, s.err
}

type groupPayload struct {
	Id            *int    `json:"id"`
	Name          *string `json:"name"`
	OwnerId       *int    `json:"owner_id"`
	OwnerUsername *string `json:"owner_username"`
}

func (p groupPayload) toGroup(s *shape, field string) group.Group {
	s.require(field+".id", p.Id != nil)
	s.require(field+".name", p.Name != nil)
	s.require(field+".owner_id", p.OwnerId != nil)
	if s.err != nil {
		return group.Group{}
	}
	g := group.Group{Id: *p.Id, Name: *p.Name, OwnerId: *p.OwnerId}
	if p.OwnerUsername != nil {
		g.OwnerUsername = *p.OwnerUsername
	}
	return g
}

type participantPayload struct {
	UserId            *int    `json:"user_id"`
	Username          *string `json:"username"`
	ParticipationType *string `json:"participation_type"`
}

type groupWithParticipantsPayload struct {
	groupPayload
	Participants *[]participantPayload `json:"participants"`
}

type ownedGroupsPayload struct {
	Groups *[]groupWithParticipantsPayload `json:"groups"`
}

func (p ownedGroupsPayload) toGroups(endpoint string) ([]group.GroupWithParticipants, error) {
	s := &shape{endpoint: endpoint}
	s.require("groups", p.Groups != nil)
	if s.err != nil {
		return nil, s.err
	}
	groups := make([]group.GroupWithParticipants, 0, len(*p.Groups))
	for i, raw := range *p.Groups {
		field := fmt.Sprintf("groups[%d]", i)
		g := group.GroupWithParticipants{Group: raw.toGroup(s, field), Participants: []group.Participant{}}
		s.require(field+".participants", raw.Participants != nil)
		if s.err != nil {
			return nil, s.err
		}
		for j, participant := range *raw.Participants {
			pField := fmt.Sprintf("%s.participants[%d]", field, j)
			s.require(pField+".user_id", participant.UserId != nil)
			s.require(pField+".username", participant.Username != nil)
			s.require(pField+".participation_type", participant.ParticipationType != nil)
			if s.err != nil {
				return nil, s.err
			}
			g.Participants = append(g.Participants, group.Participant{
				UserId:        *participant.UserId,
				Username:      *participant.Username,
				Participation: group.ParticipationType(*participant.ParticipationType),
			})
		}
		groups = append(groups, g)
	}
	return groups, s.err
}

type notificationPayload struct {
	Kind  *string       `json:"kind"`
	Group *groupPayload `json:"group"`
}

type notificationsPayload struct {
	Notifications *[]notificationPayload `json:"notifications"`
}

func (p notificationsPayload) toNotifications(endpoint string) ([]notification.Notification, error) {
	s := &shape{endpoint: endpoint}
	s.require("notifications", p.Notifications != nil)
	if s.err != nil {
		return nil, s.err
	}
	notifications := make([]notification.Notification, 0, len(*p.Notifications))
	for i, raw := range *p.Notifications {
		field := fmt.Sprintf("notifications[%d]", i)
		s.require(field+".kind", raw.Kind != nil)
		s.require(field+".group", raw.Group != nil)
		if s.err != nil {
			return nil, s.err
		}
		notifications = append(notifications, notification.Notification{
			Kind:  notification.Kind(*raw.Kind),
			Group: raw.Group.toGroup(s, field+".group"),
		})
	}
	return notifications, s.err
}
