// Package enroll turns signup events into subscriber records and fires the
// immediate welcome message.
package enroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kfarkas-hq/dripfeed/internal/campaign"
	"github.com/kfarkas-hq/dripfeed/internal/model"
	"github.com/kfarkas-hq/dripfeed/internal/repo"
)

type Service struct {
	subs      repo.SubscriberStore
	templates repo.TemplateStore
	runner    *campaign.Runner
	loc       *time.Location

	// ensureJobs reconciles the recurring cron jobs; optional.
	ensureJobs func() error

	nowFn func() time.Time
}

func New(subs repo.SubscriberStore, templates repo.TemplateStore, runner *campaign.Runner, loc *time.Location, ensureJobs func() error) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		subs:       subs,
		templates:  templates,
		runner:     runner,
		loc:        loc,
		ensureJobs: ensureJobs,
		nowFn:      time.Now,
	}
}

// HandleSignup upserts the subscriber and, when the enrollment date is
// today, dispatches the Day-0 welcome. It returns false when the event had
// no email and was ignored.
//
// Only the upsert can fail the call. The welcome dispatch and the job
// reconciliation are best-effort: their errors are logged so a transport
// hiccup never loses the enrollment itself.
func (s *Service) HandleSignup(ctx context.Context, sig model.Signup) (bool, error) {
	email := strings.TrimSpace(sig.Email)
	if email == "" {
		return false, nil
	}

	now := s.nowFn().In(s.loc)
	sub := model.Subscriber{
		Email:        email,
		Name:         strings.TrimSpace(sig.Name),
		Phone:        strings.TrimSpace(sig.Phone),
		Track:        strings.TrimSpace(sig.Track),
		Enrolled:     strings.EqualFold(strings.TrimSpace(sig.Enrolled), "yes"),
		SubscribedOn: campaign.DateOf(now),
	}

	if err := s.subs.Upsert(ctx, sub); err != nil {
		return false, fmt.Errorf("upsert subscriber %s: %w", email, err)
	}

	// Re-read so an existing subscriber keeps its original subscribed_on
	// and last_sent_on in the due evaluation.
	stored, err := s.subs.GetByEmail(ctx, email)
	if err != nil {
		slog.Error("signup: reload after upsert failed", "email", email, "err", err)
	} else {
		s.sendWelcomeIfDue(ctx, stored, now)
	}

	if s.ensureJobs != nil {
		if err := s.ensureJobs(); err != nil {
			slog.Error("signup: job reconciliation failed", "err", err)
		}
	}

	return true, nil
}

func (s *Service) sendWelcomeIfDue(ctx context.Context, sub model.Subscriber, now time.Time) {
	// Only the Day-0 welcome fires here. A weekly message that happens to
	// be due stays with the batch run.
	if campaign.Evaluate(sub, now).Action != campaign.SendDay0 {
		return
	}

	rows, err := s.templates.All(ctx)
	if err != nil {
		slog.Error("signup: template load failed", "email", sub.Email, "err", err)
		return
	}

	if _, err := s.runner.ProcessOne(ctx, campaign.NewCatalog(rows), sub, now); err != nil {
		slog.Error("signup: welcome dispatch failed", "email", sub.Email, "err", err)
		return
	}
	slog.Info("signup: welcome sent", "email", sub.Email)
}
