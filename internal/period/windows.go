// Package period turns calendar rules (today, this week, a month) into the
// inclusive date windows the analytics functions filter on.
package period

import (
	"fmt"
	"strings"
	"time"

	"fabricstore/internal/domain"
)

type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

func ParseKind(raw string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case "":
		return KindMonthly, nil
	case KindDaily, KindWeekly, KindMonthly:
		return kind, nil
	default:
		return "", fmt.Errorf("period must be daily, weekly or monthly")
	}
}

// Reference anchors a window. Month and Year are optional (zero means unset)
// and select a target month instead of the one containing Now. Year alone is
// rejected.
type Reference struct {
	Now   time.Time
	Year  int
	Month domain.Month
}

func (r Reference) targetMonth() (int, domain.Month, bool) {
	if r.Month == 0 {
		return r.Now.Year(), domain.MonthOf(r.Now), false
	}
	year := r.Year
	if year == 0 {
		year = r.Now.Year()
	}
	return year, r.Month, true
}

// Resolve applies the calendar rule for kind:
//   - daily: the day containing Now
//   - weekly: the first seven days of the target month when one is given,
//     otherwise the seven days ending today
//   - monthly: the whole target month, or the month containing Now
func Resolve(kind Kind, ref Reference) (domain.DateWindow, error) {
	if ref.Month != 0 && !ref.Month.Valid() {
		return domain.DateWindow{}, fmt.Errorf("month must be between 1 and 12")
	}
	if ref.Year != 0 && ref.Month == 0 {
		return domain.DateWindow{}, fmt.Errorf("year requires month")
	}
	loc := ref.Now.Location()
	year, month, explicit := ref.targetMonth()

	switch kind {
	case KindDaily:
		return Daily(ref.Now), nil
	case KindWeekly:
		if explicit {
			return FirstWeekOf(year, month, loc), nil
		}
		return TrailingWeek(ref.Now), nil
	case KindMonthly:
		return Monthly(year, month, loc), nil
	default:
		return domain.DateWindow{}, fmt.Errorf("unknown period %q", kind)
	}
}

func Daily(day time.Time) domain.DateWindow {
	start := startOfDay(day)
	return domain.DateWindow{Start: start, End: endOfDay(start)}
}

func TrailingWeek(now time.Time) domain.DateWindow {
	today := startOfDay(now)
	return domain.DateWindow{Start: today.AddDate(0, 0, -6), End: endOfDay(today)}
}

func FirstWeekOf(year int, month domain.Month, loc *time.Location) domain.DateWindow {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return domain.DateWindow{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
}

func Monthly(year int, month domain.Month, loc *time.Location) domain.DateWindow {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return domain.DateWindow{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

func Yearly(year int, loc *time.Location) domain.DateWindow {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return domain.DateWindow{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// ElapsedMonthWindows returns one monthly window for every month of now's
// year up to and including the current one.
func ElapsedMonthWindows(now time.Time) []domain.DateWindow {
	current := domain.MonthOf(now)
	windows := make([]domain.DateWindow, 0, int(current))
	for m := domain.Month(1); m <= current; m++ {
		windows = append(windows, Monthly(now.Year(), m, now.Location()))
	}
	return windows
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(start time.Time) time.Time {
	return start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
