package recurrence

import (
	"errors"
	"time"
)

// DefaultHorizonYears bounds open-ended patterns when neither the pattern
// nor the caller supplies an end date.
const DefaultHorizonYears = 1

// ErrNilRule indicates the pattern carries no recurrence rule.
var ErrNilRule = errors.New("recurrence: rule is required")

// Engine expands recurrence patterns into calendar dates.
type Engine struct {
	location     *time.Location
	horizonYears int
}

// NewEngine constructs an Engine that emits dates at midnight in the
// provided location. If loc is nil, UTC is used; a horizon below one year
// falls back to DefaultHorizonYears.
func NewEngine(loc *time.Location, horizonYears int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if horizonYears < 1 {
		horizonYears = DefaultHorizonYears
	}
	return &Engine{location: loc, horizonYears: horizonYears}
}

// OccurrenceDates produces the ordered sequence of dates on which the
// pattern occurs within [windowStart, windowEnd].
//
// The effective end of generation is the earlier of the pattern's own end
// date and windowEnd; whichever is present governs when only one is set,
// and windowStart plus the engine horizon applies when neither is. A zero
// windowEnd means the caller supplied no bound. The sequence is therefore
// always finite: one of the occurrence cap, the effective end date, or the
// horizon terminates it.
func (e *Engine) OccurrenceDates(p Pattern, windowStart, windowEnd time.Time) ([]time.Time, error) {
	if p.Rule == nil {
		return nil, ErrNilRule
	}

	start := e.dateOf(windowStart)
	end := e.effectiveEnd(p, start, windowEnd)
	if start.After(end) {
		return nil, nil
	}

	switch rule := p.Rule.(type) {
	case Daily:
		return e.expandDaily(rule, p.Count, start, end), nil
	case Weekly:
		return e.expandWeekly(rule, p.Count, start, end), nil
	case Monthly:
		return e.expandMonthly(rule, p.Count, start, end), nil
	default:
		return nil, ErrNilRule
	}
}

func (e *Engine) effectiveEnd(p Pattern, start, windowEnd time.Time) time.Time {
	end := start.AddDate(e.horizonYears, 0, 0)
	bounded := false
	if p.EndsOn != nil {
		end = e.dateOf(*p.EndsOn)
		bounded = true
	}
	if !windowEnd.IsZero() {
		windowBound := e.dateOf(windowEnd)
		if !bounded || windowBound.Before(end) {
			end = windowBound
		}
	}
	return end
}

func (e *Engine) expandDaily(rule Daily, count int, start, end time.Time) []time.Time {
	step := stepOf(rule.Interval)
	dates := make([]time.Time, 0)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, step) {
		if capped(count, len(dates)) {
			break
		}
		dates = append(dates, cur)
	}
	return dates
}

// expandWeekly walks candidate weeks anchored on the Monday of the window
// start's week. Days inside a week are visited in calendar order, and the
// occurrence cap is checked per day, so a week may be cut short mid-way.
func (e *Engine) expandWeekly(rule Weekly, count int, start, end time.Time) []time.Time {
	step := stepOf(rule.Interval)
	selected := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		selected[day] = struct{}{}
	}

	dates := make([]time.Time, 0)
	if len(selected) == 0 {
		return dates
	}

	for week := startOfWeek(start); !week.After(end); week = week.AddDate(0, 0, 7*step) {
		for offset := 0; offset < 7; offset++ {
			day := week.AddDate(0, 0, offset)
			if day.Before(start) || day.After(end) {
				continue
			}
			if _, ok := selected[day.Weekday()]; !ok {
				continue
			}
			if capped(count, len(dates)) {
				return dates
			}
			dates = append(dates, day)
		}
	}
	return dates
}

// expandMonthly steps month by month from the first of the window start's
// month. The target day clamps down to the month's last day and never rolls
// over; months whose target falls outside the window still consume a step
// but do not count toward the occurrence cap.
func (e *Engine) expandMonthly(rule Monthly, count int, start, end time.Time) []time.Time {
	step := stepOf(rule.Interval)
	dates := make([]time.Time, 0)

	for month := startOfMonth(start); !month.After(end); month = month.AddDate(0, step, 0) {
		day := rule.DayOfMonth
		if last := daysInMonth(month); day > last {
			day = last
		}
		target := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, month.Location())
		if target.Before(start) || target.After(end) {
			continue
		}
		if capped(count, len(dates)) {
			break
		}
		dates = append(dates, target)
	}
	return dates
}

func (e *Engine) dateOf(t time.Time) time.Time {
	local := t.In(e.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.location)
}

func stepOf(interval int) int {
	if interval < 1 {
		return 1
	}
	return interval
}

func capped(count, emitted int) bool {
	return count > 0 && emitted >= count
}

func startOfWeek(t time.Time) time.Time {
	// Monday anchors the week; Go numbers Monday as 1 and Sunday as 0.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
