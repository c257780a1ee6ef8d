package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/user"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrUnauthenticated = errors.New("user is unauthenticated, authentication is required")

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// FetchEvents reads the events of a calendar overlapping [from, to]. Events that cannot be
	// represented are skipped and counted.
	FetchEvents(ctx context.Context, calendarId string, from, to time.Time) ([]event.Event, int, error)
}

type ServiceImpl struct {
	auth *GoogleAuth
	// endpoint overrides the Google API base URL.
	endpoint string
}

func NewService(auth *GoogleAuth) *ServiceImpl {
	return &ServiceImpl{auth: auth}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) FetchEvents(ctx context.Context, calendarId string, from, to time.Time) ([]event.Event, int, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, 0, err
	}

	var items []*gcal.Event
	err = googleService.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(false).
		ShowDeleted(false).
		Pages(ctx, func(page *gcal.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		log.Error(err)
		return nil, 0, err
	}

	events, skipped := googleEventsToEvents(items)
	log.Debugf("fetched %d events from Google calendar %s, skipped %d", len(events), calendarId, skipped)
	return events, skipped, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*gcal.Service, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}

	options := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		options = append(options, option.WithEndpoint(s.endpoint))
	}
	service, err := gcal.NewService(ctx, options...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}

// googleEventsToEvents keeps timed events with a supported recurrence. All-day and cancelled events
// are skipped.
func googleEventsToEvents(items []*gcal.Event) ([]event.Event, int) {
	events := make([]event.Event, 0, len(items))
	skipped := 0
	for _, item := range items {
		e, ok := googleEventToEvent(item)
		if !ok {
			skipped++
			continue
		}
		events = append(events, e)
	}
	return events, skipped
}

func googleEventToEvent(item *gcal.Event) (event.Event, bool) {
	if item.Status == "cancelled" || item.Start == nil || item.End == nil || item.Start.DateTime == "" {
		log.Tracef("skipping Google event %s without a start time", item.Id)
		return event.Event{}, false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		log.Debugf("skipping Google event %s: %v", item.Id, err)
		return event.Event{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil || !end.After(start) {
		log.Debugf("skipping Google event %s with invalid end %q", item.Id, item.End.DateTime)
		return event.Event{}, false
	}
	recurrence, ok := event.ClassifyRecurrence(item.Recurrence, start)
	if !ok {
		log.Debugf("skipping Google event %s with unsupported recurrence %v", item.Id, item.Recurrence)
		return event.Event{}, false
	}

	title := item.Summary
	if title == "" {
		title = "(No title)"
	}
	if runes := []rune(title); len(runes) > event.MaxTitleLength {
		title = string(runes[:event.MaxTitleLength])
	}
	visibility := event.Private
	if item.Visibility == "public" {
		visibility = event.Public
	}

	return event.Event{
		Title:      title,
		Visibility: visibility,
		StartTime:  start,
		Duration:   end.Sub(start),
		Recurrence: recurrence,
	}, true
}
