package scheduler

import (
	"testing"
)

func TestEnsure_InvalidArgs(t *testing.T) {
	t.Parallel()

	s := New()

	if _, err := s.Ensure("", "* * * * *", func() {}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := s.Ensure("job", "* * * * *", nil); err == nil {
		t.Fatalf("expected error for nil fn")
	}
	if _, err := s.Ensure("job", "not a cron spec", func() {}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestEnsure_RegistersOnlyMissingJobs(t *testing.T) {
	t.Parallel()

	s := New()

	added, err := s.Ensure("drip", "0 9 * * *", func() {})
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if !added {
		t.Fatalf("expected first Ensure to register")
	}

	// Reconciliation: the second call finds the job and does nothing.
	added, err = s.Ensure("drip", "0 9 * * *", func() {})
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if added {
		t.Fatalf("expected second Ensure to be a no-op")
	}

	added, err = s.Ensure("replies", "*/5 * * * *", func() {})
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if !added {
		t.Fatalf("expected new name to register")
	}

	names := s.Names()
	if len(names) != 2 || names[0] != "drip" || names[1] != "replies" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestScheduler_StartStopBasics(t *testing.T) {
	t.Parallel()

	s := New()
	if _, err := s.Ensure("drip", "0 9 * * *", func() {}); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler not running initially")
	}

	if ok := s.Start(); !ok {
		t.Fatalf("expected Start() true on first call")
	}
	if !s.IsRunning() {
		t.Fatalf("expected scheduler running after Start()")
	}
	if ok := s.Start(); ok {
		t.Fatalf("expected Start() false when already running")
	}

	if ok := s.Stop(); !ok {
		t.Fatalf("expected Stop() true on first call")
	}
	if s.IsRunning() {
		t.Fatalf("expected scheduler not running after Stop()")
	}
	if ok := s.Stop(); ok {
		t.Fatalf("expected Stop() false when already stopped")
	}
}
