package timetable

import (
	"context"
	"fmt"
	"time"

	"github.com/socialcal/socialcal/internal/utils"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/user"
)

type EventReader interface {
	GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

type Service interface {
	// GetWeek lays out the current user's week containing date. A zero date means the current week.
	GetWeek(ctx context.Context, date time.Time, column ColumnMeasurement) (WeekLayout, error)
}

type ServiceImpl struct {
	events EventReader
	clock  utils.Clock
}

func NewService(events EventReader, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{events: events, clock: clock}
}

func (s *ServiceImpl) GetWeek(ctx context.Context, date time.Time, column ColumnMeasurement) (WeekLayout, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return WeekLayout{}, err
	}
	loc := currentUser.Location()
	if date.IsZero() {
		date = utils.NowIn(s.clock, loc)
	}
	week := WeekContaining(date.In(loc))

	events, err := s.events.GetEventsForPeriod(ctx, week.Start, week.End())
	if err != nil {
		return WeekLayout{}, fmt.Errorf("failed to load events for week %s: %w", week, err)
	}
	return Layout(events, week, UniformColumns(column)), nil
}
