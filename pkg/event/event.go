package event

import (
	"time"
	"unicode/utf8"
)

type RecurrenceType string

const (
	Once   RecurrenceType = "Once"
	Weekly RecurrenceType = "Weekly"
)

func (r RecurrenceType) Valid() bool {
	return r == Once || r == Weekly
}

type Visibility string

const (
	Public  Visibility = "Public"
	Private Visibility = "Private"
)

func (v Visibility) Valid() bool {
	return v == Public || v == Private
}

const MaxTitleLength = 100

// Event is a calendar entry as stored. A Weekly event repeats every 7 days from StartTime with no end.
type Event struct {
	Id           int
	OwnerId      int
	GroupId      int // 0 when the event is not shared with a group
	Title        string
	Visibility   Visibility
	StartTime    time.Time
	Duration     time.Duration
	Recurrence   RecurrenceType
	Participants []string
}

func (e Event) EndTime() time.Time {
	return e.StartTime.Add(e.Duration)
}

func (e Event) validate() error {
	switch {
	case e.Title == "":
		return invalid("title is required")
	case utf8.RuneCountInString(e.Title) > MaxTitleLength:
		return invalid("title is longer than 100 characters")
	case e.StartTime.IsZero():
		return invalid("start time is required")
	case e.Duration <= 0:
		return invalid("end time must be after start time")
	case !e.Recurrence.Valid():
		return invalid("unknown recurrence type " + string(e.Recurrence))
	case !e.Visibility.Valid():
		return invalid("unknown visibility " + string(e.Visibility))
	}
	return nil
}
