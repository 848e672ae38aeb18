package recurrence

import (
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays parses a comma separated list of weekday names. Matching is
// case insensitive and surrounding whitespace is ignored. Tokens that do not
// name a weekday are returned in dropped for the caller to report; they are
// never an error. Duplicate selections collapse to one.
func ParseWeekdays(input string) (days []time.Weekday, dropped []string) {
	seen := make(map[time.Weekday]struct{}, 7)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		day, ok := weekdayNames[strings.ToLower(token)]
		if !ok {
			dropped = append(dropped, token)
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, dropped
}
