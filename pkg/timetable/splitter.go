package timetable

import "time"

// Split cuts every occurrence at midnight so that each piece starts and ends on the same calendar day,
// then drops pieces shorter than MinVisibleDuration. Split(Split(x)) equals Split(x).
func Split(occurrences []Occurrence) []Occurrence {
	result := make([]Occurrence, 0, len(occurrences))
	for _, occurrence := range occurrences {
		if occurrence.Duration() < MinVisibleDuration {
			continue
		}
		for _, piece := range splitAtMidnight(occurrence) {
			if piece.Duration() >= MinVisibleDuration {
				result = append(result, piece)
			}
		}
	}
	return result
}

func splitAtMidnight(o Occurrence) []Occurrence {
	o.EndTime = o.EndTime.In(o.StartTime.Location())
	if !crossesDateBoundary(o.StartTime, o.EndTime) {
		return []Occurrence{o}
	}

	pieces := make([]Occurrence, 0, 2)
	for crossesDateBoundary(o.StartTime, o.EndTime) {
		head := o
		head.EndTime = EndOfDay(o.StartTime)
		pieces = append(pieces, head)
		o.StartTime = StartOfNextDay(o.StartTime)
	}
	return append(pieces, o)
}

func crossesDateBoundary(start, end time.Time) bool {
	return !StartOfDay(start).Equal(StartOfDay(end))
}
