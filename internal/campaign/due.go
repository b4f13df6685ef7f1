package campaign

import (
	"fmt"
	"time"

	"github.com/kfarkas-hq/dripfeed/internal/model"
)

// MaxWeeks is the length of the weekly sequence after the Day-0 welcome.
const MaxWeeks = 21

type Action int

const (
	Skip Action = iota
	SendDay0
	SendWeek
	Exhausted
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case SendDay0:
		return "send_day0"
	case SendWeek:
		return "send_week"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the outcome of evaluating one subscriber at one instant.
// Week is the 1-based week index and is only set for SendWeek.
type Decision struct {
	Action Action
	Week   int
}

// Evaluate decides what, if anything, a subscriber is owed at now.
//
// Weekly periods are Monday-aligned: week 1 starts on the first Monday on
// or after the enrollment date, so every subscriber gets weekly content on
// the same weekday. The last-sent comparison in the final step is what
// makes a repeated run within the same period a no-op.
func Evaluate(sub model.Subscriber, now time.Time) Decision {
	if !sub.Enrolled || sub.Unsubscribed {
		return Decision{Action: Skip}
	}

	today := DateOf(now)
	if DateOf(sub.SubscribedOn).Equal(today) {
		return Decision{Action: SendDay0}
	}

	monday := FirstMonday(sub.SubscribedOn)
	if today.Before(monday) {
		return Decision{Action: Skip}
	}

	week := weekIndexAt(today, monday)
	if week > MaxWeeks {
		return Decision{Action: Exhausted}
	}

	if sub.LastSentOn != nil && weekIndexAt(DateOf(*sub.LastSentOn), monday) >= week {
		return Decision{Action: Skip}
	}

	return Decision{Action: SendWeek, Week: week}
}

// FirstMonday returns the first calendar date on or after t that is a Monday.
func FirstMonday(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// DateOf reduces t to its calendar date, represented as UTC midnight.
// All due-ness math works on these dates, so timestamps read back from the
// store and the run clock compare consistently regardless of location.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// weekIndexAt is the 1-based Monday-aligned week ordinal of date d, or 0
// when d falls before the first Monday. Both arguments must be DateOf values.
func weekIndexAt(d, firstMonday time.Time) int {
	if d.Before(firstMonday) {
		return 0
	}
	return daysBetween(firstMonday, d)/7 + 1
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
