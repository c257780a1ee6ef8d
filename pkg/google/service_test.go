package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/socialcal/socialcal/internal/test_utils"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
)

const eventsPage = `{
  "items": [
    {"id": "a", "summary": "Standup", "visibility": "public", "recurrence": ["RRULE:FREQ=WEEKLY;BYDAY=MO"],
     "start": {"dateTime": "2025-01-13T09:00:00+01:00"}, "end": {"dateTime": "2025-01-13T09:15:00+01:00"}},
    {"id": "b", "summary": "Holiday", "start": {"date": "2025-01-14"}, "end": {"date": "2025-01-15"}},
    {"id": "c", "summary": "Lunch", "start": {"dateTime": "2025-01-15T12:00:00Z"}, "end": {"dateTime": "2025-01-15T13:00:00Z"}}
  ]
}`

func fakeGoogleApi(t *testing.T) *ServiceImpl {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
			_, _ = w.Write([]byte(`{"items": [{"id": "primary", "summary": "Me"}, {"id": "work", "summary": "Work"}]}`))
		case strings.HasSuffix(r.URL.Path, "/calendars/primary/events"):
			assert.Equal(t, "false", r.URL.Query().Get("singleEvents"))
			_, _ = w.Write([]byte(eventsPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	tokens := NewTokenRepositoryStub()
	require.NoError(t, tokens.StartAuthorization(context.Background(), test_utils.TestUser.Id, "nonce"))
	require.NoError(t, tokens.CompleteAuthorization(context.Background(), "nonce", &oauth2.Token{AccessToken: "access"}))
	auth := &GoogleAuth{tokens: tokens, oauthConfig: &fakeExchanger{client: server.Client()}}
	return &ServiceImpl{auth: auth, endpoint: server.URL + "/calendar/v3/"}
}

func TestServiceImpl_ListCalendars(t *testing.T) {
	service := fakeGoogleApi(t)

	calendars, err := service.ListCalendars(test_utils.WithTestUser(context.Background()))

	require.NoError(t, err)
	assert.Equal(t, []CalendarItem{{ID: "primary", Summary: "Me"}, {ID: "work", Summary: "Work"}}, calendars)
}

func TestServiceImpl_FetchEvents(t *testing.T) {
	service := fakeGoogleApi(t)
	from := time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)

	events, skipped, err := service.FetchEvents(test_utils.WithTestUser(context.Background()), "primary", from, from.AddDate(0, 0, 7))

	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, event.Weekly, events[0].Recurrence)
	assert.Equal(t, event.Public, events[0].Visibility)
	assert.Equal(t, 15*time.Minute, events[0].Duration)
	assert.True(t, time.Date(2025, time.January, 13, 8, 0, 0, 0, time.UTC).Equal(events[0].StartTime))
	assert.Equal(t, event.Once, events[1].Recurrence)
	assert.Equal(t, event.Private, events[1].Visibility)
}

func TestServiceImpl_RequiresAuthorization(t *testing.T) {
	auth := &GoogleAuth{tokens: NewTokenRepositoryStub(), oauthConfig: &fakeExchanger{}}
	service := NewService(auth)

	_, err := service.ListCalendars(test_utils.WithTestUser(context.Background()))

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGoogleEventToEvent(t *testing.T) {
	timed := func(start, end string) *gcal.Event {
		return &gcal.Event{Id: "x", Summary: "Meeting", Start: &gcal.EventDateTime{DateTime: start}, End: &gcal.EventDateTime{DateTime: end}}
	}
	tests := []struct {
		name  string
		item  *gcal.Event
		valid bool
	}{
		{"timed event", timed("2025-01-13T09:00:00Z", "2025-01-13T10:00:00Z"), true},
		{"all day event", &gcal.Event{Start: &gcal.EventDateTime{Date: "2025-01-13"}, End: &gcal.EventDateTime{Date: "2025-01-14"}}, false},
		{"end before start", timed("2025-01-13T09:00:00Z", "2025-01-13T08:00:00Z"), false},
		{"unparseable start", timed("yesterday", "2025-01-13T08:00:00Z"), false},
		{"missing end", &gcal.Event{Start: &gcal.EventDateTime{DateTime: "2025-01-13T09:00:00Z"}}, false},
		{"cancelled", func() *gcal.Event {
			e := timed("2025-01-13T09:00:00Z", "2025-01-13T10:00:00Z")
			e.Status = "cancelled"
			return e
		}(), false},
		{"daily series", func() *gcal.Event {
			e := timed("2025-01-13T09:00:00Z", "2025-01-13T10:00:00Z")
			e.Recurrence = []string{"RRULE:FREQ=DAILY"}
			return e
		}(), false},
		{"weekly series repeating on another weekday", func() *gcal.Event {
			e := timed("2025-01-13T09:00:00Z", "2025-01-13T10:00:00Z")
			e.Recurrence = []string{"RRULE:FREQ=WEEKLY;BYDAY=WE"}
			return e
		}(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := googleEventToEvent(tt.item)

			assert.Equal(t, tt.valid, ok)
		})
	}

	t.Run("long titles are truncated", func(t *testing.T) {
		item := timed("2025-01-13T09:00:00Z", "2025-01-13T10:00:00Z")
		item.Summary = strings.Repeat("ą", event.MaxTitleLength+5)

		e, ok := googleEventToEvent(item)

		require.True(t, ok)
		assert.Equal(t, event.MaxTitleLength, len([]rune(e.Title)))
	})
}
