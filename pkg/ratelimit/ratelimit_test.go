package ratelimit

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.RateLimit{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return New(db), db
}

func seedLimit(t *testing.T, db *gorm.DB, action string, max, periodSeconds int, periodStart time.Time) {
	t.Helper()
	row := models.RateLimit{
		ActionType:    action,
		RequestCount:  0,
		PeriodStart:   periodStart,
		MaxRequests:   max,
		PeriodSeconds: periodSeconds,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestCheckAndIncrement_UnconfiguredActionAllows(t *testing.T) {
	e, _ := newTestEngine(t)
	allowed, err := e.CheckAndIncrement(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("expected unconfigured action to allow")
	}
}

// Boundary scenario 6: max_requests=3, period_seconds=60 -> true,true,true,false;
// backdate period_start by 61s -> true and counter resets to 1.
func TestCheckAndIncrement_RolloverBoundary(t *testing.T) {
	e, db := newTestEngine(t)
	seedLimit(t, db, "reply", 3, 60, time.Now().UTC())

	for i, want := range []bool{true, true, true, false} {
		got, err := e.CheckAndIncrement(context.Background(), "reply")
		if err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
		if got != want {
			t.Fatalf("call %d: got %v want %v", i+1, got, want)
		}
	}

	if err := db.Model(&models.RateLimit{}).Where("action_type = ?", "reply").
		Update("period_start", time.Now().UTC().Add(-61*time.Second)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	got, err := e.CheckAndIncrement(context.Background(), "reply")
	if err != nil {
		t.Fatalf("fifth call: %v", err)
	}
	if !got {
		t.Fatal("expected fifth call to allow after rollover")
	}

	var row models.RateLimit
	if err := db.Where("action_type = ?", "reply").Take(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.RequestCount != 1 {
		t.Fatalf("expected counter reset to 1, got %d", row.RequestCount)
	}
}

func TestCheck_DoesNotMutate(t *testing.T) {
	e, db := newTestEngine(t)
	seedLimit(t, db, "tweet", 2, 86400, time.Now().UTC())

	allowed, err := e.Check(context.Background(), "tweet")
	if err != nil || !allowed {
		t.Fatalf("expected allow, got %v err %v", allowed, err)
	}

	var row models.RateLimit
	if err := db.Where("action_type = ?", "tweet").Take(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.RequestCount != 0 {
		t.Fatalf("Check must not mutate, got request_count=%d", row.RequestCount)
	}
}

func TestInitBuiltins_PreservesExistingCounters(t *testing.T) {
	e, db := newTestEngine(t)
	limits := Limits{MaxRepliesPerDay: 3, MaxTweetsPerDay: 2, MaxThreadsPerWeek: 1, MaxMutationsPerHr: 10}

	if err := e.InitBuiltins(context.Background(), limits); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := e.Increment(context.Background(), models.ActionReply); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := e.InitBuiltins(context.Background(), limits); err != nil {
		t.Fatalf("second init: %v", err)
	}

	var row models.RateLimit
	if err := db.Where("action_type = ?", models.ActionReply).Take(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.RequestCount != 1 {
		t.Fatalf("expected counter preserved at 1, got %d", row.RequestCount)
	}
}

func TestInitBuiltins_CreatesSixRows(t *testing.T) {
	e, _ := newTestEngine(t)
	limits := Limits{MaxRepliesPerDay: 3, MaxTweetsPerDay: 2, MaxThreadsPerWeek: 1, MaxMutationsPerHr: 10}
	if err := e.InitBuiltins(context.Background(), limits); err != nil {
		t.Fatalf("init: %v", err)
	}
	rows, err := e.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rate-limit rows, got %d", len(rows))
	}
}
