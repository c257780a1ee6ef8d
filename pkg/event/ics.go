package event

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// RenderICS serializes events into an iCalendar document. Weekly events carry an open ended
// FREQ=WEEKLY rule.
func RenderICS(events []Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//socialcal//timetable//EN")

	weekly := (&rrule.ROption{Freq: rrule.WEEKLY}).RRuleString()
	for _, e := range events {
		vevent := cal.AddEvent(fmt.Sprintf("event-%d@socialcal", e.Id))
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(e.StartTime)
		vevent.SetEndAt(e.EndTime())
		vevent.SetSummary(e.Title)
		if e.Visibility == Public {
			vevent.SetClass(ics.ClassificationPublic)
		} else {
			vevent.SetClass(ics.ClassificationPrivate)
		}
		if e.Recurrence == Weekly {
			vevent.AddRrule(weekly)
		}
	}
	return cal.Serialize()
}

// ParseICS reads the VEVENTs of an iCalendar document. Events whose recurrence cannot be represented,
// or that lack a start, are skipped and counted.
func ParseICS(r io.Reader) ([]Event, int, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	events := make([]Event, 0)
	skipped := 0
	for _, vevent := range cal.Events() {
		start, err := vevent.GetStartAt()
		if err != nil {
			skipped++
			continue
		}
		end, err := vevent.GetEndAt()
		if err != nil {
			end = start.Add(time.Hour)
		}

		var recurrenceLines []string
		for _, prop := range vevent.Properties {
			if strings.EqualFold(prop.IANAToken, "RRULE") {
				recurrenceLines = append(recurrenceLines, prop.Value)
			}
		}
		recurrence, ok := ClassifyRecurrence(recurrenceLines, start)
		if !ok {
			log.Debugf("skipping event with unsupported recurrence %v", recurrenceLines)
			skipped++
			continue
		}

		title := ""
		if summary := vevent.GetProperty(ics.ComponentPropertySummary); summary != nil {
			title = summary.Value
		}
		if title == "" {
			title = "(No title)"
		}
		visibility := Private
		if class := vevent.GetProperty(ics.ComponentPropertyClass); class != nil && strings.EqualFold(class.Value, string(ics.ClassificationPublic)) {
			visibility = Public
		}

		events = append(events, Event{
			Title:      truncateTitle(title),
			Visibility: visibility,
			StartTime:  start,
			Duration:   end.Sub(start),
			Recurrence: recurrence,
		})
	}
	return events, skipped, nil
}

func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > MaxTitleLength {
		return string(runes[:MaxTitleLength])
	}
	return title
}
