package event

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// ClassifyRecurrence maps iCalendar recurrence lines onto the recurrence types the timetable supports.
// It reports false for rules that cannot be represented: anything other than an unbounded
// FREQ=WEEKLY with interval 1 on the weekday of start. start is the first instance in the zone the
// rule is written for.
func ClassifyRecurrence(lines []string, start time.Time) (RecurrenceType, bool) {
	var rules []string
	for _, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(upper, "RRULE:"):
			rules = append(rules, strings.TrimSpace(line)[len("RRULE:"):])
		case strings.HasPrefix(upper, "FREQ="):
			rules = append(rules, strings.TrimSpace(line))
		case upper == "":
		default:
			log.Debugf("ignoring recurrence line %q", line)
		}
	}

	if len(rules) == 0 {
		return Once, true
	}
	if len(rules) > 1 {
		return "", false
	}

	option, err := rrule.StrToROption(rules[0])
	if err != nil {
		log.Debugf("unparseable recurrence rule %q: %v", rules[0], err)
		return "", false
	}
	if option.Freq != rrule.WEEKLY || option.Interval > 1 || option.Count > 0 || !option.Until.IsZero() || len(option.Byweekday) > 1 {
		return "", false
	}
	if len(option.Byweekday) == 1 && option.Byweekday[0].Day() != mondayFirst(start.Weekday()) {
		log.Debugf("weekly rule %q does not repeat on the start weekday %s", rules[0], start.Weekday())
		return "", false
	}
	return Weekly, true
}

// mondayFirst numbers weekdays the way rrule does, Monday = 0.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
