package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSource answers a request only after its gate for the requested week start is released.
type gatedSource struct {
	mu     sync.Mutex
	gates  map[time.Time]chan struct{}
	events map[time.Time][]event.Event
}

func newGatedSource() *gatedSource {
	return &gatedSource{gates: make(map[time.Time]chan struct{}), events: make(map[time.Time][]event.Event)}
}

func (s *gatedSource) gate(from time.Time) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := from.UTC()
	if _, ok := s.gates[key]; !ok {
		s.gates[key] = make(chan struct{})
	}
	return s.gates[key]
}

func (s *gatedSource) GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	select {
	case <-s.gate(from):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[from.UTC()], nil
}

type staticSource struct {
	events []event.Event
	err    error
	calls  int
}

func (s *staticSource) GetEventsForPeriod(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	s.calls++
	return s.events, s.err
}

func TestWeekLoader_Load(t *testing.T) {
	week := timetable.WeekContaining(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	source := &staticSource{events: []event.Event{
		{Id: 1, Title: "Gym", StartTime: time.Date(2025, time.January, 14, 6, 0, 0, 0, time.UTC), Duration: time.Hour, Recurrence: event.Once},
	}}
	loader := NewWeekLoader(source)

	_, loaded := loader.Current()
	assert.False(t, loaded)

	layout, err := loader.Load(context.Background(), week)

	require.NoError(t, err)
	require.Len(t, layout.Days[1].Visuals, 1)
	assert.Zero(t, layout.Days[1].Visuals[0].HeightPx, "columns are unmeasured until Remeasure")

	remeasured, ok := loader.Remeasure(timetable.UniformColumns(timetable.ColumnMeasurement{HeightPx: 240, WidthPx: 50}))
	require.True(t, ok)
	assert.InDelta(t, 60, remeasured.Days[1].Visuals[0].TopPx, 1e-9)
	assert.InDelta(t, 10, remeasured.Days[1].Visuals[0].HeightPx, 1e-9)
	assert.Equal(t, 1, source.calls, "remeasuring does not fetch")

	current, _ := loader.Current()
	assert.Equal(t, remeasured, current)
}

func TestWeekLoader_DiscardsStaleResponses(t *testing.T) {
	first := timetable.WeekContaining(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	second := first.Next()
	source := newGatedSource()
	source.events[second.Start.UTC()] = []event.Event{
		{Id: 2, Title: "Later", StartTime: second.Start.Add(10 * time.Hour), Duration: time.Hour, Recurrence: event.Once},
	}
	loader := NewWeekLoader(source)

	firstResult := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), first)
		firstResult <- err
	}()
	// wait until the first request is in flight
	require.Eventually(t, func() bool {
		loader.mu.Lock()
		defer loader.mu.Unlock()
		return loader.generation == 1
	}, time.Second, time.Millisecond)

	close(source.gate(second.Start))
	layout, err := loader.Load(context.Background(), second)
	require.NoError(t, err)

	assert.ErrorIs(t, <-firstResult, ErrStaleResponse)
	assert.True(t, layout.Week.Equal(second))
	current, _ := loader.Current()
	assert.True(t, current.Week.Equal(second))
	require.Len(t, current.Days[0].Visuals, 1)
	assert.Equal(t, 2, current.Days[0].Visuals[0].Event.Id)
}

func TestWeekLoader_FailureKeepsPreviousLayout(t *testing.T) {
	week := timetable.WeekContaining(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC))
	source := &staticSource{}
	loader := NewWeekLoader(source)
	_, err := loader.Load(context.Background(), week)
	require.NoError(t, err)

	source.err = errors.New("offline")
	_, err = loader.Load(context.Background(), week.Next())

	assert.ErrorIs(t, err, source.err)
	current, _ := loader.Current()
	assert.True(t, current.Week.Equal(week))
}
