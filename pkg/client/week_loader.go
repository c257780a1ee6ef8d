package client

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/timetable"
)

// ErrStaleResponse is returned by Load when a newer Load started before the response arrived.
var ErrStaleResponse = errors.New("stale response discarded")

type EventSource interface {
	GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

// WeekLoader fetches the raw events of the displayed week and keeps the laid-out result. Each Load
// takes a new generation and cancels the request of the previous one, so only the latest response is
// ever applied.
type WeekLoader struct {
	source EventSource

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	columns    [timetable.DaysInWeek]timetable.ColumnMeasurement
	week       timetable.Week
	events     []event.Event
	layout     timetable.WeekLayout
	loaded     bool
}

func NewWeekLoader(source EventSource) *WeekLoader {
	return &WeekLoader{source: source}
}

func (l *WeekLoader) Load(ctx context.Context, week timetable.Week) (timetable.WeekLayout, error) {
	l.mu.Lock()
	l.generation++
	generation := l.generation
	if l.cancel != nil {
		l.cancel()
	}
	requestCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	events, err := l.source.GetEventsForPeriod(requestCtx, week.Start, week.End())

	l.mu.Lock()
	defer l.mu.Unlock()
	if generation != l.generation {
		log.Debugf("discarding response of generation %d for week %s, current is %d", generation, week, l.generation)
		return timetable.WeekLayout{}, ErrStaleResponse
	}
	cancel()
	l.cancel = nil
	if err != nil {
		return timetable.WeekLayout{}, err
	}

	l.week = week
	l.events = events
	l.layout = timetable.Layout(events, week, l.columns)
	l.loaded = true
	return l.layout, nil
}

// Remeasure lays the loaded week out again for new column sizes without fetching.
func (l *WeekLoader) Remeasure(columns [timetable.DaysInWeek]timetable.ColumnMeasurement) (timetable.WeekLayout, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.columns = columns
	if !l.loaded {
		return timetable.WeekLayout{}, false
	}
	l.layout = timetable.Layout(l.events, l.week, columns)
	return l.layout, true
}

// Current returns the layout of the last applied response.
func (l *WeekLoader) Current() (timetable.WeekLayout, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.layout, l.loaded
}

// Reload fetches the currently displayed week again.
func (l *WeekLoader) Reload(ctx context.Context) (timetable.WeekLayout, error) {
	l.mu.Lock()
	week, loaded := l.week, l.loaded
	l.mu.Unlock()
	if !loaded {
		return timetable.WeekLayout{}, nil
	}
	return l.Load(ctx, week)
}
