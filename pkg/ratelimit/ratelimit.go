// Package ratelimit tracks per-action usage counters in Postgres so they
// persist across restarts. All checks and rollovers happen inside a single
// transaction for atomicity.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
)

// Engine is the transactional rate-limit checker. It holds no state of its
// own beyond the database connection.
type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// BuiltinDefaults describes the fixed (non-config-driven) rate-limit rows.
var BuiltinDefaults = []struct {
	ActionType    string
	MaxRequests   int
	PeriodSeconds int
}{
	{models.ActionSearch, 300, 900},
	{models.ActionMentionCheck, 180, 900},
}

// Limits is the subset of config needed to seed the config-driven rows.
type Limits struct {
	MaxRepliesPerDay   int
	MaxTweetsPerDay    int
	MaxThreadsPerWeek  int
	MaxMutationsPerHr  int
}

// InitBuiltins upserts every built-in rate-limit row with its configured
// maximum, preserving any existing counter: a missing row is inserted, an
// existing row only has max_requests refreshed, so a restart never resets
// usage.
func (e *Engine) InitBuiltins(ctx context.Context, limits Limits) error {
	rows := []models.RateLimit{
		{ActionType: models.ActionReply, MaxRequests: limits.MaxRepliesPerDay, PeriodSeconds: 86400},
		{ActionType: models.ActionTweet, MaxRequests: limits.MaxTweetsPerDay, PeriodSeconds: 86400},
		{ActionType: models.ActionThread, MaxRequests: limits.MaxThreadsPerWeek, PeriodSeconds: 604800},
		{ActionType: models.ActionMcpMutation, MaxRequests: limits.MaxMutationsPerHr, PeriodSeconds: 3600},
	}
	for _, d := range BuiltinDefaults {
		rows = append(rows, models.RateLimit{ActionType: d.ActionType, MaxRequests: d.MaxRequests, PeriodSeconds: d.PeriodSeconds})
	}

	now := time.Now().UTC()
	for _, row := range rows {
		row.RequestCount = 0
		row.PeriodStart = now
		if err := e.db.WithContext(ctx).
			Where(models.RateLimit{ActionType: row.ActionType}).
			Attrs(row).
			FirstOrCreate(&models.RateLimit{}).Error; err != nil {
			return err
		}
		if err := e.db.WithContext(ctx).Model(&models.RateLimit{}).
			Where("action_type = ?", row.ActionType).
			Update("max_requests", row.MaxRequests).Error; err != nil {
			return err
		}
	}
	return nil
}

// Check reports whether action is currently under its limit without
// mutating any counter. An unconfigured action always allows.
func (e *Engine) Check(ctx context.Context, action string) (bool, error) {
	allowed := true
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		limit, ok, err := lockRow(tx, action)
		if err != nil {
			return err
		}
		if !ok {
			allowed = true
			return nil
		}

		now := time.Now().UTC()
		if now.Sub(limit.PeriodStart) >= time.Duration(limit.PeriodSeconds)*time.Second {
			allowed = true
			return nil
		}
		allowed = limit.RequestCount < limit.MaxRequests
		return nil
	})
	return allowed, err
}

// CheckAndIncrement atomically checks and, if permitted, increments the
// counter in the same transaction. Rolls over the period first if expired.
func (e *Engine) CheckAndIncrement(ctx context.Context, action string) (bool, error) {
	allowed := false
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		limit, ok, err := lockRow(tx, action)
		if err != nil {
			return err
		}
		if !ok {
			allowed = true
			return nil
		}

		now := time.Now().UTC()
		currentCount := limit.RequestCount
		if now.Sub(limit.PeriodStart) >= time.Duration(limit.PeriodSeconds)*time.Second {
			if err := tx.Model(&models.RateLimit{}).
				Where("action_type = ?", action).
				Updates(map[string]interface{}{"request_count": 0, "period_start": now}).Error; err != nil {
				return err
			}
			currentCount = 0
		}

		if currentCount < limit.MaxRequests {
			if err := tx.Model(&models.RateLimit{}).
				Where("action_type = ?", action).
				UpdateColumn("request_count", gorm.Expr("request_count + 1")).Error; err != nil {
				return err
			}
			allowed = true
			return nil
		}
		allowed = false
		return nil
	})
	return allowed, err
}

// Increment bumps the counter with no rollover check or limit enforcement;
// used for post-hoc per-dimension accounting after a mutation succeeds.
func (e *Engine) Increment(ctx context.Context, action string) error {
	return e.db.WithContext(ctx).Model(&models.RateLimit{}).
		Where("action_type = ?", action).
		UpdateColumn("request_count", gorm.Expr("request_count + 1")).Error
}

// GetAll returns every rate-limit row ordered by action type, for status
// reporting.
func (e *Engine) GetAll(ctx context.Context) ([]models.RateLimit, error) {
	var rows []models.RateLimit
	err := e.db.WithContext(ctx).Order("action_type").Find(&rows).Error
	return rows, err
}

func lockRow(tx *gorm.DB, action string) (models.RateLimit, bool, error) {
	var limit models.RateLimit
	err := tx.Where("action_type = ?", action).Take(&limit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RateLimit{}, false, nil
	}
	if err != nil {
		return models.RateLimit{}, false, err
	}
	return limit, true, nil
}
