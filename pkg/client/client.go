package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/friend"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/notification"
	"github.com/socialcal/socialcal/pkg/timetable"
	"github.com/socialcal/socialcal/pkg/user"
)

// UserHeader carries the uid of the acting user. The server trusts it as set by the upstream proxy.
const UserHeader = "X-User-Id"

// APIError is a non-2xx reply of the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("server returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the socialcal HTTP API on behalf of one user. Every response is checked against
// the contract of its endpoint before it is returned.
type Client struct {
	baseURL string
	userUid string
	http    *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses a client with a 15 second timeout.
func NewClient(baseURL string, userUid string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), userUid: userUid, http: httpClient}
}

type NewEvent struct {
	Title      string
	StartTime  time.Time
	Duration   time.Duration
	Recurrence event.RecurrenceType
	Visibility event.Visibility
	GroupId    int
}

func (c *Client) CurrentUser(ctx context.Context) (user.User, error) {
	const endpoint = "/api/user/current"
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return user.User{}, err
	}
	return payload.toUser(endpoint)
}

func (c *Client) GetEvents(ctx context.Context) ([]event.Event, error) {
	const endpoint = "/api/get_events"
	var payload eventsPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toEvents(endpoint)
}

func (c *Client) GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	const endpoint = "/api/events_for_period"
	query := url.Values{}
	query.Set("from", from.Format(time.RFC3339Nano))
	query.Set("to", to.Format(time.RFC3339Nano))
	var payload eventsPayload
	if err := c.do(ctx, http.MethodGet, endpoint, query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toEvents(endpoint)
}

func (c *Client) CreateEvent(ctx context.Context, e NewEvent) (event.Event, error) {
	const endpoint = "/api/create_event"
	body := event.CreateEventRequest{
		Title:          e.Title,
		StartTime:      ptr(e.StartTime.UnixMilli()),
		Duration:       ptr(e.Duration.Milliseconds()),
		RecurrenceType: e.Recurrence,
		Visibility:     e.Visibility,
		GroupId:        e.GroupId,
	}
	var payload eventPayload
	if err := c.do(ctx, http.MethodPost, endpoint, nil, body, &payload); err != nil {
		return event.Event{}, err
	}
	s := &shape{endpoint: endpoint}
	created := payload.toEvent(s, "event")
	return created, s.err
}

// GetTimetable fetches the week laid out by the server for a column of the given size.
func (c *Client) GetTimetable(ctx context.Context, date time.Time, column timetable.ColumnMeasurement) (timetable.WeekLayoutDTO, error) {
	query := url.Values{}
	if !date.IsZero() {
		query.Set("date", date.Format(time.RFC3339))
	}
	query.Set("height", fmt.Sprint(column.HeightPx))
	query.Set("width", fmt.Sprint(column.WidthPx))
	var layout timetable.WeekLayoutDTO
	if err := c.do(ctx, http.MethodGet, "/api/timetable", query, nil, &layout); err != nil {
		return timetable.WeekLayoutDTO{}, err
	}
	if len(layout.Days) != timetable.DaysInWeek {
		return timetable.WeekLayoutDTO{}, &ResponseShapeError{Endpoint: "/api/timetable", Field: "days", Reason: fmt.Sprintf("has %d entries", len(layout.Days))}
	}
	return layout, nil
}

func (c *Client) GetFriends(ctx context.Context) ([]friend.Friend, error) {
	const endpoint = "/api/get_friends"
	var payload friendsPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toFriends(endpoint)
}

func (c *Client) AddFriend(ctx context.Context, username string) (friend.Friend, error) {
	const endpoint = "/api/add_friend"
	var payload friendPayload
	if err := c.do(ctx, http.MethodPost, endpoint, nil, friend.AddFriendRequest{Username: username}, &payload); err != nil {
		return friend.Friend{}, err
	}
	s := &shape{endpoint: endpoint}
	added := payload.toFriend(s, "friend")
	return added, s.err
}

func (c *Client) GetOwnedGroups(ctx context.Context) ([]group.GroupWithParticipants, error) {
	const endpoint = "/api/get_owned_groups_with_participants"
	var payload ownedGroupsPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toGroups(endpoint)
}

func (c *Client) CreateGroup(ctx context.Context, name string, participantIds []int) (group.Group, error) {
	const endpoint = "/api/create_group"
	var payload groupPayload
	body := group.CreateGroupRequest{Name: name, ParticipantIds: participantIds}
	if err := c.do(ctx, http.MethodPost, endpoint, nil, body, &payload); err != nil {
		return group.Group{}, err
	}
	s := &shape{endpoint: endpoint}
	created := payload.toGroup(s, "group")
	return created, s.err
}

func (c *Client) InviteToGroup(ctx context.Context, groupId, userId int) error {
	return c.do(ctx, http.MethodPost, "/api/invite_to_group", nil, group.MembershipRequest{GroupId: groupId, UserId: userId}, nil)
}

func (c *Client) RenameGroup(ctx context.Context, groupId int, name string) error {
	return c.do(ctx, http.MethodPost, "/api/rename_group", nil, group.RenameGroupRequest{GroupId: groupId, Name: name}, nil)
}

func (c *Client) RemoveUserFromGroup(ctx context.Context, groupId, userId int) error {
	return c.do(ctx, http.MethodPost, "/api/remove_user_from_group", nil, group.MembershipRequest{GroupId: groupId, UserId: userId}, nil)
}

func (c *Client) ReplyToInvitation(ctx context.Context, groupId int, accepted bool) error {
	return c.do(ctx, http.MethodPost, "/api/reply_to_group_invitation", nil, group.ReplyRequest{GroupId: groupId, Accepted: accepted}, nil)
}

func (c *Client) GetNotifications(ctx context.Context) ([]notification.Notification, error) {
	const endpoint = "/api/get_notifications"
	var payload notificationsPayload
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toNotifications(endpoint)
}

type calendarDocument struct {
	io.Reader
}

type importResultPayload struct {
	Imported *int `json:"imported"`
	Skipped  *int `json:"skipped"`
}

// ImportICS uploads an iCalendar document and reports how many events were stored and skipped.
func (c *Client) ImportICS(ctx context.Context, document io.Reader) (int, int, error) {
	const endpoint = "/api/events.ics"
	var payload importResultPayload
	if err := c.do(ctx, http.MethodPost, endpoint, nil, calendarDocument{document}, &payload); err != nil {
		return 0, 0, err
	}
	s := &shape{endpoint: endpoint}
	s.require("imported", payload.Imported != nil)
	s.require("skipped", payload.Skipped != nil)
	if s.err != nil {
		return 0, 0, s.err
	}
	return *payload.Imported, *payload.Skipped, nil
}

// do sends one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case calendarDocument:
		reader = b.Reader
		contentType = "text/calendar"
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to encode request to %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", path, err)
	}
	req.Header.Set(UserHeader, c.userUid)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debugf("request %s %s failed: %v", method, path, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ResponseShapeError{Endpoint: path, Field: "body", Reason: "is not valid JSON: " + err.Error()}
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body rest.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func ptr[T any](v T) *T {
	return &v
}
