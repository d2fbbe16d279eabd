package models

import "time"

// DiscoveredTweet is a candidate observed by the mentions or discovery loop.
// A single tweet id is never duplicated; RepliedTo transitions at most once
// false -> true.
type DiscoveredTweet struct {
	ID             string    `gorm:"primaryKey;column:id"`
	AuthorID       string    `gorm:"column:author_id;not null"`
	AuthorUsername string    `gorm:"column:author_username"`
	Content        string    `gorm:"column:content"`
	Score          float64   `gorm:"column:score"`
	MatchedKeyword string    `gorm:"column:matched_keyword"`
	DiscoveredAt   time.Time `gorm:"column:discovered_at;not null;default:CURRENT_TIMESTAMP"`
	RepliedTo      bool      `gorm:"column:replied_to;not null;default:false"`
}

func (DiscoveredTweet) TableName() string {
	return "discovered_tweets"
}
