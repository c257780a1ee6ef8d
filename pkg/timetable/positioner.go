package timetable

import "sort"

// Interpolate maps n from [minN, maxN] linearly onto [minOut, maxOut]. A zero width input range maps to minOut.
func Interpolate(n, minN, maxN, minOut, maxOut float64) float64 {
	if maxN == minN {
		return minOut
	}
	return minOut + (n-minN)/(maxN-minN)*(maxOut-minOut)
}

// Position places the occurrences of one day in a column of the given size. An unmeasured column
// yields visuals with zero extent. The output is ordered by start time.
func Position(occurrences []Occurrence, bounds DayBounds, column ColumnMeasurement) []PositionedVisual {
	ordered := append([]Occurrence(nil), occurrences...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	span := bounds.Span().Seconds()
	visuals := make([]PositionedVisual, 0, len(ordered))
	for _, o := range ordered {
		visual := PositionedVisual{
			Event:     o.Event,
			StartTime: o.StartTime,
			EndTime:   o.EndTime,
			DayBucket: o.DayBucket,
			Label:     FormatClock(o.StartTime) + "-" + FormatClock(o.EndTime),
		}
		if column.Measured() {
			visual.TopPx = Interpolate(o.StartTime.Sub(bounds.Start).Seconds(), 0, span, 0, column.HeightPx)
			visual.HeightPx = Interpolate(o.Duration().Seconds(), 0, span, 0, column.HeightPx)
			if column.WidthPx > HorizontalGapPx {
				visual.LeftPx = HorizontalGapPx / 2
				visual.WidthPx = column.WidthPx - HorizontalGapPx
			}
		}
		visuals = append(visuals, visual)
	}
	return visuals
}
