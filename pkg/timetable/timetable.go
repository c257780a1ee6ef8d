package timetable

import (
	"time"

	"github.com/socialcal/socialcal/pkg/event"
)

// MinVisibleDuration is the shortest piece of an occurrence that is still laid out.
const MinVisibleDuration = time.Minute

// HorizontalGapPx is the total horizontal space left free around a visual in its column.
const HorizontalGapPx = 4.0

// Occurrence is one concrete instance of an event within the displayed week.
type Occurrence struct {
	Event     event.Event
	StartTime time.Time
	EndTime   time.Time
	DayBucket int
}

func (o Occurrence) Duration() time.Duration {
	return o.EndTime.Sub(o.StartTime)
}

// ColumnMeasurement is the rendered size of a day column. Both sides are zero until measured.
type ColumnMeasurement struct {
	HeightPx float64
	WidthPx  float64
}

func (c ColumnMeasurement) Measured() bool {
	return c.HeightPx > 0
}

// DayBounds delimits one calendar day: End is the start of the next day.
type DayBounds struct {
	Start time.Time
	End   time.Time
}

func DayBoundsOf(day time.Time) DayBounds {
	return DayBounds{Start: StartOfDay(day), End: StartOfNextDay(day)}
}

// Span is 24h except on days with a DST transition.
func (b DayBounds) Span() time.Duration {
	return b.End.Sub(b.Start)
}

type PositionedVisual struct {
	Event     event.Event
	StartTime time.Time
	EndTime   time.Time
	DayBucket int
	TopPx     float64
	HeightPx  float64
	LeftPx    float64
	WidthPx   float64
	Label     string
}

type DayColumn struct {
	Index   int
	Date    time.Time
	Title   string
	Visuals []PositionedVisual
}

type WeekLayout struct {
	Week  Week
	Label string
	Days  [DaysInWeek]DayColumn
	// Dropped counts raw events that could not be resolved at all.
	Dropped int
}
