package recurrence

import "time"

// Rule is the closed set of recurrence variants. Each variant carries only
// the fields its expansion needs, so states like a weekly rule without
// weekday selections cannot be constructed at this layer.
type Rule interface {
	isRule()
}

// Daily repeats every Interval days.
type Daily struct {
	Interval int
}

// Weekly repeats on the selected weekdays every Interval weeks.
type Weekly struct {
	Interval int
	Weekdays []time.Weekday
}

// Monthly repeats on DayOfMonth every Interval months. When a month is
// shorter than DayOfMonth the occurrence clamps to the month's last day.
type Monthly struct {
	Interval   int
	DayOfMonth int
}

func (Daily) isRule()   {}
func (Weekly) isRule()  {}
func (Monthly) isRule() {}

// Pattern combines a recurrence rule with the bounds that terminate its
// expansion. Count caps the number of emitted dates; zero means uncapped.
// EndsOn is an inclusive date bound; nil means the pattern itself is open
// ended and the engine's horizon applies.
type Pattern struct {
	Rule   Rule
	Count  int
	EndsOn *time.Time
}
