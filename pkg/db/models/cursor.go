package models

import "time"

// Cursor holds an opaque key-value pair used for resumption (last seen
// mention id, detected API tier, etc). Written by its owning loop with a
// single upsert, outside any transaction.
type Cursor struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Cursor) TableName() string { return "cursors" }

// ActionLog is one row per completed loop action, independent of the
// gateway-scoped audit trail. Serves as human-readable activity history;
// never read by the gateway.
type ActionLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	LoopName  string    `gorm:"column:loop_name;not null;index"`
	Action    string    `gorm:"column:action_kind;not null"`
	TargetID  string    `gorm:"column:target_id"`
	Outcome   string    `gorm:"column:outcome;not null"`
	Detail    string    `gorm:"column:detail"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (ActionLog) TableName() string { return "action_log" }

// McpTelemetry is one row per gateway-adjacent operation, purely
// observational and never consulted by policy.
type McpTelemetry struct {
	ID            uint      `gorm:"primaryKey;autoIncrement;column:id"`
	ToolName      string    `gorm:"column:tool_name;not null;index"`
	OperationKind string    `gorm:"column:operation_kind;not null"`
	ElapsedMs     int64     `gorm:"column:elapsed_ms"`
	Success       bool      `gorm:"column:success"`
	ErrorCode     string    `gorm:"column:error_code"`
	OutcomeTag    string    `gorm:"column:outcome_tag"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (McpTelemetry) TableName() string { return "mcp_telemetry" }
