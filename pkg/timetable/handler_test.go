package timetable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/socialcal/socialcal/internal/utils"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_GetTimetable(t *testing.T) {
	loc := warsaw(t)
	reader := &stubEventReader{events: []event.Event{
		{Id: 9, Title: "Standup", StartTime: time.Date(2025, time.January, 6, 9, 0, 0, 0, loc), Duration: 15 * time.Minute, Recurrence: event.Weekly, Visibility: event.Public, OwnerId: 1},
	}}
	handler := NewHandler(NewService(reader, &utils.MockClock{}))

	request := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/timetable?"+query, nil)
		req = req.WithContext(user.WithUser(context.Background(), warsawUser()))
		rr := httptest.NewRecorder()
		handler.GetTimetable(rr, req)
		return rr
	}

	t.Run("returns the laid out week", func(t *testing.T) {
		rr := request("date=2025-01-15T12:00:00%2B01:00&height=960&width=104")

		require.Equal(t, http.StatusOK, rr.Code)
		var body WeekLayoutDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "2025-W03", body.Week)
		assert.Equal(t, "13/01/2025 - 19/01/2025", body.Label)
		assert.Equal(t, "2025-01-06T00:00:00+01:00", body.PreviousWeek)
		assert.Equal(t, "2025-01-20T00:00:00+01:00", body.NextWeek)
		require.Len(t, body.Days, 7)
		assert.Equal(t, "Mon 13th", body.Days[0].Title)
		assert.Equal(t, "2025-01-13", body.Days[0].Date)
		require.Len(t, body.Days[0].Events, 1)
		visual := body.Days[0].Events[0]
		assert.Equal(t, 9, visual.EventId)
		assert.Equal(t, "Standup", visual.Title)
		assert.Equal(t, "09:00-09:15", visual.Label)
		assert.InDelta(t, 360, visual.TopPx, 1e-9)
		assert.InDelta(t, 10, visual.HeightPx, 1e-9)
		assert.Equal(t, 100.0, visual.WidthPx)
		assert.Equal(t, []string{}, visual.Participants)
		for _, day := range body.Days[1:] {
			assert.Empty(t, day.Events)
		}
	})

	t.Run("rejects malformed parameters", func(t *testing.T) {
		for _, query := range []string{"date=yesterday", "height=tall", "width=-3"} {
			rr := request(query)
			assert.Equal(t, http.StatusBadRequest, rr.Code, query)
		}
	})

	t.Run("no user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.GetTimetable(rr, httptest.NewRequest(http.MethodGet, "/api/timetable", nil))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
