package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestJitteredDuration_WithinBounds(t *testing.T) {
	interval := 10 * time.Second
	jitter := 0.2
	for i := 0; i < 100; i++ {
		d := jitteredDuration(interval, jitter)
		if d < 8*time.Second || d > 12*time.Second {
			t.Fatalf("jittered duration %v out of bounds", d)
		}
	}
}

func TestJitteredDuration_ZeroJitterIsExact(t *testing.T) {
	if d := jitteredDuration(5*time.Second, 0); d != 5*time.Second {
		t.Fatalf("expected exact interval, got %v", d)
	}
}

func TestIsActive_NoRestrictionAlwaysActive(t *testing.T) {
	s := New(Config{Interval: time.Second}, nil)
	if !s.isActive(time.Date(2026, 7, 29, 3, 0, 0, 0, time.UTC)) {
		t.Fatal("expected always active with no restrictions")
	}
}

func TestIsActive_HourWindow(t *testing.T) {
	s := New(Config{
		Interval:        time.Second,
		ActiveHourStart: 9,
		ActiveHourEnd:   17,
	}, nil)
	if !s.isActive(time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("expected active at noon within 9-17 window")
	}
	if s.isActive(time.Date(2026, 7, 29, 20, 0, 0, 0, time.UTC)) {
		t.Fatal("expected inactive at 20:00 outside 9-17 window")
	}
}

func TestIsActive_WrappingWindow(t *testing.T) {
	s := New(Config{
		Interval:        time.Second,
		ActiveHourStart: 22,
		ActiveHourEnd:   6,
	}, nil)
	if !s.isActive(time.Date(2026, 7, 29, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("expected active at 23:00 in wrapping 22-6 window")
	}
	if !s.isActive(time.Date(2026, 7, 29, 2, 0, 0, 0, time.UTC)) {
		t.Fatal("expected active at 02:00 in wrapping 22-6 window")
	}
	if s.isActive(time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("expected inactive at noon in wrapping 22-6 window")
	}
}

func TestIsActive_ActiveDays(t *testing.T) {
	s := New(Config{
		Interval:   time.Second,
		ActiveDays: []time.Weekday{time.Monday, time.Tuesday},
	}, nil)
	monday := time.Date(2026, 7, 27, 12, 0, 0, 0, time.UTC) // a Monday
	saturday := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !s.isActive(monday) {
		t.Fatal("expected active on configured weekday")
	}
	if s.isActive(saturday) {
		t.Fatal("expected inactive on unconfigured weekday")
	}
}

func TestRun_DeliversTicksUntilCancelled(t *testing.T) {
	s := New(Config{Interval: 5 * time.Millisecond, Jitter: 0}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-s.Chan():
	case <-time.After(time.Second):
		t.Fatal("expected a tick within 1s")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancellation")
	}
}

func TestISOWeek_MondayStart(t *testing.T) {
	year, week := ISOWeek(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if year != 2026 || week != 1 {
		t.Fatalf("expected 2026 week 1, got %d week %d", year, week)
	}
}
