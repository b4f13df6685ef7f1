package campaign

import (
	"testing"
	"time"

	"github.com/kfarkas-hq/dripfeed/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

// Enrolled Wednesday 2024-01-03; the first Monday is 2024-01-08.
func wednesdaySubscriber() model.Subscriber {
	return model.Subscriber{
		Email:        "w@example.com",
		Enrolled:     true,
		SubscribedOn: date(2024, time.January, 3),
	}
}

func TestEvaluate_DecisionLadder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		sub  model.Subscriber
		now  time.Time
		want Decision
	}{
		{
			name: "not enrolled",
			sub: model.Subscriber{
				Email:        "x@example.com",
				Enrolled:     false,
				SubscribedOn: date(2024, time.January, 3),
			},
			now:  date(2024, time.January, 3),
			want: Decision{Action: Skip},
		},
		{
			name: "unsubscribed wins over everything",
			sub: model.Subscriber{
				Email:        "x@example.com",
				Enrolled:     true,
				Unsubscribed: true,
				SubscribedOn: date(2024, time.January, 3),
			},
			now:  date(2024, time.February, 12),
			want: Decision{Action: Skip},
		},
		{
			name: "enrollment day sends the welcome",
			sub:  wednesdaySubscriber(),
			now:  date(2024, time.January, 3),
			want: Decision{Action: SendDay0},
		},
		{
			name: "enrollment day wins even on a Monday",
			sub: model.Subscriber{
				Email:        "m@example.com",
				Enrolled:     true,
				SubscribedOn: date(2024, time.January, 1), // a Monday
			},
			now:  date(2024, time.January, 1),
			want: Decision{Action: SendDay0},
		},
		{
			name: "before the first Monday",
			sub:  wednesdaySubscriber(),
			now:  date(2024, time.January, 6), // Saturday
			want: Decision{Action: Skip},
		},
		{
			name: "first Monday starts week 1",
			sub:  wednesdaySubscriber(),
			now:  date(2024, time.January, 8),
			want: Decision{Action: SendWeek, Week: 1},
		},
		{
			name: "last day of week 1",
			sub:  wednesdaySubscriber(),
			now:  date(2024, time.January, 14), // Sunday
			want: Decision{Action: SendWeek, Week: 1},
		},
		{
			name: "second Monday starts week 2",
			sub:  wednesdaySubscriber(),
			now:  date(2024, time.January, 15),
			want: Decision{Action: SendWeek, Week: 2},
		},
		{
			name: "already sent this week",
			sub: func() model.Subscriber {
				s := wednesdaySubscriber()
				s.LastSentOn = tp(date(2024, time.January, 8))
				return s
			}(),
			now:  date(2024, time.January, 8),
			want: Decision{Action: Skip},
		},
		{
			name: "sent last week, due again this week",
			sub: func() model.Subscriber {
				s := wednesdaySubscriber()
				s.LastSentOn = tp(date(2024, time.January, 8))
				return s
			}(),
			now:  date(2024, time.January, 15),
			want: Decision{Action: SendWeek, Week: 2},
		},
		{
			name: "welcome send before the first Monday does not satisfy week 1",
			sub: func() model.Subscriber {
				s := wednesdaySubscriber()
				s.LastSentOn = tp(date(2024, time.January, 3))
				return s
			}(),
			now:  date(2024, time.January, 8),
			want: Decision{Action: SendWeek, Week: 1},
		},
		{
			name: "past week 21 the sequence is exhausted",
			sub: func() model.Subscriber {
				s := wednesdaySubscriber()
				s.LastSentOn = tp(date(2024, time.May, 27)) // week 21 Monday
				return s
			}(),
			now:  date(2024, time.June, 3),
			want: Decision{Action: Exhausted},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Evaluate(tc.sub, tc.now)
			if got != tc.want {
				t.Fatalf("Evaluate() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFirstMonday(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{date(2024, time.January, 1), date(2024, time.January, 1)}, // Monday maps to itself
		{date(2024, time.January, 2), date(2024, time.January, 8)},
		{date(2024, time.January, 3), date(2024, time.January, 8)},
		{date(2024, time.January, 7), date(2024, time.January, 8)}, // Sunday
		{time.Date(2024, time.January, 3, 17, 45, 0, 0, time.UTC), date(2024, time.January, 8)},
	}

	for _, tc := range cases {
		if got := FirstMonday(tc.in); !got.Equal(tc.want) {
			t.Fatalf("FirstMonday(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if got := FirstMonday(tc.in); got.Weekday() != time.Monday {
			t.Fatalf("FirstMonday(%v) = %v, not a Monday", tc.in, got)
		}
	}
}

func TestEvaluate_WeekIndexNeverDecreases(t *testing.T) {
	t.Parallel()

	sub := wednesdaySubscriber()

	prev := 0
	for now := date(2024, time.January, 8); ; now = now.AddDate(0, 0, 7) {
		d := Evaluate(sub, now)
		if d.Action == Exhausted {
			if prev != MaxWeeks {
				t.Fatalf("exhausted after week %d, want %d", prev, MaxWeeks)
			}
			break
		}
		if d.Action != SendWeek {
			t.Fatalf("unexpected decision %+v at %v", d, now)
		}
		if d.Week != prev+1 {
			t.Fatalf("week index %d at %v, want %d", d.Week, now, prev+1)
		}
		prev = d.Week
	}
}

func TestEvaluate_ExhaustionIsPermanent(t *testing.T) {
	t.Parallel()

	sub := wednesdaySubscriber()
	sub.LastSentOn = tp(date(2024, time.May, 27))

	for now := date(2024, time.June, 3); now.Year() < 2026; now = now.AddDate(0, 0, 7) {
		if d := Evaluate(sub, now); d.Action != Exhausted {
			t.Fatalf("expected Exhausted at %v, got %+v", now, d)
		}
	}
}

func TestEvaluate_SecondRunSameDaySkips(t *testing.T) {
	t.Parallel()

	// First run on the first Monday decides to send.
	sub := wednesdaySubscriber()
	now := date(2024, time.January, 8)

	first := Evaluate(sub, now)
	if first.Action != SendWeek || first.Week != 1 {
		t.Fatalf("first run: got %+v", first)
	}

	// The send advanced last_sent_on; the rerun with the same now skips.
	sub.LastSentOn = tp(DateOf(now))
	if second := Evaluate(sub, now); second.Action != Skip {
		t.Fatalf("second run: got %+v, want Skip", second)
	}
}

func TestEvaluate_MixedLocations(t *testing.T) {
	t.Parallel()

	// Store timestamps come back as UTC midnights; the run clock may sit
	// in another location. Date math must not care.
	loc := time.FixedZone("plus2", 2*60*60)

	sub := wednesdaySubscriber()
	now := time.Date(2024, time.January, 8, 9, 0, 0, 0, loc)

	if d := Evaluate(sub, now); d.Action != SendWeek || d.Week != 1 {
		t.Fatalf("Evaluate() = %+v, want SendWeek week 1", d)
	}
}
