// Package scheduler drives each automation loop's cadence: a jittered
// interval tick generator gated by an active-hours window.
package scheduler

import (
	"context"
	"math/rand"
	"time"
)

// Config configures a Scheduler's cadence and active-hours gate.
type Config struct {
	Interval time.Duration
	Jitter   float64 // in [0,1]; each sleep is drawn from Interval*(1-Jitter) .. Interval*(1+Jitter)

	Location      *time.Location
	ActiveDays    []time.Weekday // nil/empty means every day
	ActiveHourStart int          // inclusive, 0-23
	ActiveHourEnd   int          // exclusive, 0-23; equal start/end means "always active"
}

// Scheduler emits a tick on Chan() at a jittered cadence, honoring the
// active-hours gate: a tick that lands outside the active window is
// suppressed and the scheduler instead sleeps until the window reopens (or
// one hour, whichever is sooner).
type Scheduler struct {
	config Config
	ticks  chan time.Time
	now    func() time.Time
}

// New creates a Scheduler. now defaults to time.Now when nil; tests supply
// a fake clock.
func New(config Config, now func() time.Time) *Scheduler {
	if config.Jitter < 0 {
		config.Jitter = 0
	}
	if config.Jitter > 1 {
		config.Jitter = 1
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{config: config, ticks: make(chan time.Time, 1), now: now}
}

// Chan returns the channel ticks are delivered on.
func (s *Scheduler) Chan() <-chan time.Time {
	return s.ticks
}

// Run blocks, delivering ticks to Chan() until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := s.nextSleep()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		now := s.now()
		if !s.isActive(now) {
			continue
		}

		select {
		case s.ticks <- now:
		case <-ctx.Done():
			return
		}
	}
}

// nextSleep returns the jittered interval, unless the scheduler is
// currently outside the active-hours window, in which case it returns the
// smaller of "time until the window reopens" and one hour.
func (s *Scheduler) nextSleep() time.Duration {
	if !s.isActive(s.now()) {
		untilActive := s.durationUntilActive(s.now())
		if untilActive < time.Hour {
			return untilActive
		}
		return time.Hour
	}
	return jitteredDuration(s.config.Interval, s.config.Jitter)
}

func jitteredDuration(interval time.Duration, jitter float64) time.Duration {
	if jitter == 0 {
		return interval
	}
	lo := float64(interval) * (1 - jitter)
	hi := float64(interval) * (1 + jitter)
	return time.Duration(lo + rand.Float64()*(hi-lo))
}

// isActive reports whether t falls within the configured active-days and
// active-hours window.
func (s *Scheduler) isActive(t time.Time) bool {
	local := t.In(s.config.Location)

	if len(s.config.ActiveDays) > 0 && !containsWeekday(s.config.ActiveDays, local.Weekday()) {
		return false
	}

	if s.config.ActiveHourStart == s.config.ActiveHourEnd {
		return true
	}
	hour := local.Hour()
	if s.config.ActiveHourStart < s.config.ActiveHourEnd {
		return hour >= s.config.ActiveHourStart && hour < s.config.ActiveHourEnd
	}
	// Window wraps past midnight, e.g. 22-6.
	return hour >= s.config.ActiveHourStart || hour < s.config.ActiveHourEnd
}

// durationUntilActive returns how long until t's window next opens,
// checking up to 8 days ahead.
func (s *Scheduler) durationUntilActive(t time.Time) time.Duration {
	local := t.In(s.config.Location)
	for days := 0; days <= 8; days++ {
		day := local.AddDate(0, 0, days)
		if len(s.config.ActiveDays) > 0 && !containsWeekday(s.config.ActiveDays, day.Weekday()) {
			continue
		}
		startOfWindow := time.Date(day.Year(), day.Month(), day.Day(), s.config.ActiveHourStart, 0, 0, 0, s.config.Location)
		if days == 0 && startOfWindow.Before(local) {
			continue
		}
		return startOfWindow.Sub(local)
	}
	return time.Hour
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, w := range days {
		if w == d {
			return true
		}
	}
	return false
}

// ISOWeek returns the ISO-8601 (Monday-start) year and week number for t,
// used by the thread loop's weekly budget accounting.
func ISOWeek(t time.Time) (year, week int) {
	return t.ISOWeek()
}
