package models

import "time"

// PostStatus is shared by ReplySent, OriginalTweet, and Thread rows.
type PostStatus string

const (
	PostSent    PostStatus = "sent"
	PostFailed  PostStatus = "failed"
	PostPartial PostStatus = "partial"
)

// ReplySent is a posted-reply record.
type ReplySent struct {
	ID               uint       `gorm:"primaryKey;autoIncrement;column:id"`
	PostedTweetID    string     `gorm:"column:posted_tweet_id"`
	InReplyToTweetID string     `gorm:"column:in_reply_to_tweet_id;index"`
	Content          string     `gorm:"column:content;not null"`
	Archetype        string     `gorm:"column:archetype"`
	Status           PostStatus `gorm:"column:status;not null"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (ReplySent) TableName() string { return "replies_sent" }

// OriginalTweet is a posted-standalone-tweet record (content loop output).
type OriginalTweet struct {
	ID            uint       `gorm:"primaryKey;autoIncrement;column:id"`
	PostedTweetID string     `gorm:"column:posted_tweet_id"`
	Content       string     `gorm:"column:content;not null"`
	Topic         string     `gorm:"column:topic"`
	Status        PostStatus `gorm:"column:status;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (OriginalTweet) TableName() string { return "original_tweets" }

// Thread groups an ordered set of ThreadTweet rows (thread loop output).
type Thread struct {
	ID        uint          `gorm:"primaryKey;autoIncrement;column:id"`
	Topic     string        `gorm:"column:topic"`
	Status    PostStatus    `gorm:"column:status;not null"`
	CreatedAt time.Time     `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	Tweets    []ThreadTweet `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

func (Thread) TableName() string { return "threads" }

// ThreadTweet is one posted block of a Thread; (thread_id, position) is a
// unique composite key and rows cascade-delete with their parent thread.
type ThreadTweet struct {
	ThreadID      uint   `gorm:"column:thread_id;primaryKey;index:idx_thread_position,unique,priority:1"`
	Position      int    `gorm:"column:position;primaryKey;index:idx_thread_position,unique,priority:2"`
	PostedTweetID string `gorm:"column:posted_tweet_id"`
	Content       string `gorm:"column:content;not null"`
}

func (ThreadTweet) TableName() string { return "thread_tweets" }
