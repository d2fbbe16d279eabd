package models

import "time"

// RateLimit is one row per action kind. Counters are durable across restarts;
// the rate-limit engine is the only writer.
type RateLimit struct {
	ActionType   string    `gorm:"column:action_type;primaryKey"`
	RequestCount int       `gorm:"column:request_count;not null;default:0"`
	PeriodStart  time.Time `gorm:"column:period_start;not null"`
	MaxRequests  int       `gorm:"column:max_requests;not null"`
	PeriodSeconds int      `gorm:"column:period_seconds;not null"`
}

func (RateLimit) TableName() string {
	return "rate_limits"
}

// Built-in rate-limit action keys.
const (
	ActionReply        = "reply"
	ActionTweet        = "tweet"
	ActionThread       = "thread"
	ActionSearch       = "search"
	ActionMentionCheck = "mention_check"
	ActionMcpMutation  = "mcp_mutation"
)
