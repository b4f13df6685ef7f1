package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kfarkas-hq/dripfeed/internal/dispatch"
	"github.com/kfarkas-hq/dripfeed/internal/model"
	"github.com/kfarkas-hq/dripfeed/internal/repo"
)

// Runner drives one batch pass over all subscribers: every subscriber is
// evaluated against the same clock reading and due ones are dispatched.
type Runner struct {
	subs       repo.SubscriberStore
	templates  repo.TemplateStore
	dispatcher dispatch.Dispatcher

	loc            *time.Location
	workers        int
	defaultSubject string

	nowFn func() time.Time

	onSent   func(ctx context.Context, email string, day int, at time.Time) error
	onFailed func(ctx context.Context, email string, day int, reason string) error
}

type Options struct {
	Location       *time.Location
	Workers        int
	DefaultSubject string
}

func NewRunner(subs repo.SubscriberStore, templates repo.TemplateStore, d dispatch.Dispatcher, opts Options) *Runner {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Runner{
		subs:           subs,
		templates:      templates,
		dispatcher:     d,
		loc:            loc,
		workers:        workers,
		defaultSubject: opts.DefaultSubject,
		nowFn:          time.Now,
	}
}

// WithHooks installs optional observers for dispatch outcomes. Hook errors
// are swallowed; they must not affect the run.
func (r *Runner) WithHooks(
	onSent func(ctx context.Context, email string, day int, at time.Time) error,
	onFailed func(ctx context.Context, email string, day int, reason string) error,
) *Runner {
	r.onSent = onSent
	r.onFailed = onFailed
	return r
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID     string `json:"runId"`
	Total     int    `json:"total"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
	Exhausted int    `json:"exhausted"`
	Failed    int    `json:"failed"`
}

// Run processes every subscriber once. Store or catalog unavailability
// aborts the run before any state is written; per-subscriber dispatch
// failures are isolated and only counted.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	now := r.nowFn().In(r.loc)

	subs, err := r.subs.All(ctx)
	if err != nil {
		return Summary{RunID: runID}, fmt.Errorf("load subscribers: %w", err)
	}

	rows, err := r.templates.All(ctx)
	if err != nil {
		return Summary{RunID: runID}, fmt.Errorf("load templates: %w", err)
	}
	cat := NewCatalog(rows)

	slog.Info("drip run started",
		"run", runID,
		"subscribers", len(subs),
		"templates", cat.Len(),
		"now", DateOf(now).Format("2006-01-02"),
	)

	var sent, skipped, exhausted, failed atomic.Int64

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub model.Subscriber) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if rec := recover(); rec != nil {
					failed.Add(1)
					slog.Error("subscriber evaluation panic recovered", "run", runID, "email", sub.Email, "panic", rec)
				}
			}()

			d, err := r.ProcessOne(ctx, cat, sub, now)
			switch {
			case err != nil:
				failed.Add(1)
			case d.Action == Exhausted:
				exhausted.Add(1)
			case d.Action == Skip:
				skipped.Add(1)
			default:
				sent.Add(1)
			}
		}(sub)
	}
	wg.Wait()

	sum := Summary{
		RunID:     runID,
		Total:     len(subs),
		Sent:      int(sent.Load()),
		Skipped:   int(skipped.Load()),
		Exhausted: int(exhausted.Load()),
		Failed:    int(failed.Load()),
	}

	slog.Info("drip run completed",
		"run", runID,
		"sent", sum.Sent,
		"skipped", sum.Skipped,
		"exhausted", sum.Exhausted,
		"failed", sum.Failed,
	)
	return sum, nil
}

// ProcessOne evaluates a single subscriber at now and performs the side
// effects for a due decision: template lookup, dispatch, and the
// conditional last-sent advance. The enrollment path uses it for the
// immediate Day-0 check.
//
// last_sent_on only advances after the dispatcher reports the attempt, so
// a failed dispatch leaves the period eligible for a later run.
func (r *Runner) ProcessOne(ctx context.Context, cat *Catalog, sub model.Subscriber, now time.Time) (Decision, error) {
	d := Evaluate(sub, now)

	var day int
	switch d.Action {
	case SendDay0:
		day = 0
	case SendWeek:
		day = d.Week
	default:
		return d, nil
	}

	tpl, ok := cat.Lookup(day)
	if !ok {
		slog.Warn("no template for day", "email", sub.Email, "day", day)
		return Decision{Action: Skip}, nil
	}

	subject := tpl.Subject
	if subject == "" {
		subject = r.defaultSubject
	}

	out := dispatch.Outgoing{
		Email:    sub.Email,
		Phone:    sub.Phone,
		Subject:  subject,
		SMSText:  tpl.SMSText,
		HTMLBody: tpl.HTMLBody,
	}

	if err := r.dispatcher.Send(ctx, out); err != nil {
		slog.Error("dispatch failed", "email", sub.Email, "day", day, "at", now, "err", err)
		if r.onFailed != nil {
			_ = r.onFailed(ctx, sub.Email, day, err.Error())
		}
		return d, fmt.Errorf("dispatch day %d to %s: %w", day, sub.Email, err)
	}

	if err := r.subs.UpdateLastSent(ctx, sub.Email, DateOf(now)); err != nil {
		return d, fmt.Errorf("update last sent for %s: %w", sub.Email, err)
	}

	if r.onSent != nil {
		_ = r.onSent(ctx, sub.Email, day, now)
	}
	return d, nil
}
