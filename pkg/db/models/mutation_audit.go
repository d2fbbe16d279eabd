package models

import "time"

// MutationAuditStatus is the terminal-state enum for a MutationAudit row.
type MutationAuditStatus string

const (
	AuditPending   MutationAuditStatus = "pending"
	AuditSuccess   MutationAuditStatus = "success"
	AuditFailure   MutationAuditStatus = "failure"
	AuditDuplicate MutationAuditStatus = "duplicate"
)

// MutationAudit is the append-only record of every mutation attempt made
// through the gateway. Indexes: (tool_name, params_hash, created_at) for
// duplicate lookup, (status, created_at) for recency queries.
type MutationAudit struct {
	ID               uint                `gorm:"primaryKey;autoIncrement;column:id"`
	CorrelationID    string              `gorm:"column:correlation_id;uniqueIndex;not null"`
	IdempotencyKey   string              `gorm:"column:idempotency_key"`
	ToolName         string              `gorm:"column:tool_name;not null;index:idx_audit_dedup,priority:1"`
	ParamsHash       string              `gorm:"column:params_hash;not null;index:idx_audit_dedup,priority:2"`
	ParamsSummary    string              `gorm:"column:params_summary"`
	Status           MutationAuditStatus `gorm:"column:status;type:mutation_audit_status;not null;default:pending;index:idx_audit_status,priority:1"`
	ResultSummary    string              `gorm:"column:result_summary"`
	RollbackAction   string              `gorm:"column:rollback_action"`
	ErrorMessage     string              `gorm:"column:error_message"`
	ElapsedMs        int64               `gorm:"column:elapsed_ms"`
	AccountID        string              `gorm:"column:account_id"`
	DuplicateOfID    *uint               `gorm:"column:duplicate_of_id"`
	CreatedAt        time.Time           `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP;index:idx_audit_dedup,priority:3;index:idx_audit_status,priority:2"`
	CompletedAt      *time.Time          `gorm:"column:completed_at"`
}

func (MutationAudit) TableName() string {
	return "mutation_audit"
}
