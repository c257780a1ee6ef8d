package timetable

import (
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/event"
)

// Bucket assigns every occurrence to the day of week its start falls on. Occurrences outside the
// week are discarded.
func Bucket(occurrences []Occurrence, week Week) [DaysInWeek][]Occurrence {
	var buckets [DaysInWeek][]Occurrence
	for _, o := range occurrences {
		index, ok := week.DayIndex(o.StartTime)
		if !ok {
			continue
		}
		o.DayBucket = index
		buckets[index] = append(buckets[index], o)
	}
	return buckets
}

// Layout runs the whole pipeline for one week. The result always has seven day columns.
func Layout(rawEvents []event.Event, week Week, columns [DaysInWeek]ColumnMeasurement) WeekLayout {
	dropped := countUnresolvable(rawEvents)
	if dropped > 0 {
		log.Warnf("timetable: dropped %d unresolvable events for week %s", dropped, week)
	}

	buckets := Bucket(Split(clipToWeek(Resolve(rawEvents, week), week)), week)

	layout := WeekLayout{Week: week, Label: week.Label(), Dropped: dropped}
	for i := range DaysInWeek {
		day := week.Day(i)
		layout.Days[i] = DayColumn{
			Index:   i,
			Date:    day,
			Title:   week.DayTitle(i),
			Visuals: Position(buckets[i], DayBoundsOf(day), columns[i]),
		}
	}
	return layout
}

// UniformColumns is the measurement set used when every column has the same size.
func UniformColumns(column ColumnMeasurement) [DaysInWeek]ColumnMeasurement {
	var columns [DaysInWeek]ColumnMeasurement
	for i := range columns {
		columns[i] = column
	}
	return columns
}

// clipToWeek trims occurrences running past Sunday. The trimmed tail would be discarded by Bucket anyway.
func clipToWeek(occurrences []Occurrence, week Week) []Occurrence {
	end := week.End()
	for i := range occurrences {
		if occurrences[i].EndTime.After(end) {
			occurrences[i].EndTime = end
		}
	}
	return occurrences
}

func countUnresolvable(rawEvents []event.Event) int {
	count := 0
	for _, raw := range rawEvents {
		if err := checkResolvable(raw); err != nil {
			log.Debugf("timetable: skipping event %d: %v", raw.Id, err)
			count++
		}
	}
	return count
}
