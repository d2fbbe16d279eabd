package models

import "time"

// ApprovalStatus is the lifecycle state of an ApprovalQueue row.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalPosted   ApprovalStatus = "posted"
	ApprovalExpired  ApprovalStatus = "expired"
)

// ApprovalQueue is the durable FIFO for actions deferred to human review.
// Status graph: pending -> {approved, rejected, expired}; approved -> posted.
type ApprovalQueue struct {
	ID               uint           `gorm:"primaryKey;autoIncrement;column:id"`
	ActionType       string         `gorm:"column:action_type;not null"`
	TargetTweetID    string         `gorm:"column:target_tweet_id"`
	TargetAuthor     string         `gorm:"column:target_author"`
	GeneratedContent string         `gorm:"column:generated_content"`
	Topic            string         `gorm:"column:topic"`
	Archetype        string         `gorm:"column:archetype"`
	Score            float64        `gorm:"column:score"`
	Status           ApprovalStatus `gorm:"column:status;not null;default:pending;index:idx_approval_status,priority:1"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP;index:idx_approval_status,priority:2"`
	ReviewedAt       *time.Time     `gorm:"column:reviewed_at"`
	ReviewedBy       string         `gorm:"column:reviewed_by"`
	ReviewNotes      string         `gorm:"column:review_notes"`
	PostedTweetID    string         `gorm:"column:posted_tweet_id"`
	MediaURLs        []string       `gorm:"column:media_urls;type:text[]"`
}

func (ApprovalQueue) TableName() string {
	return "approval_queue"
}
