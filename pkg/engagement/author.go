// Package engagement aggregates an author's interaction history into a
// context profile and combines it with keyword relevance and campaign
// overlap into an explainable engagement recommendation. It supplements
// -- but never substitutes for -- the gateway and rate limiter: a "reply"
// recommendation still passes through both.
package engagement

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
)

// InteractionSummary summarizes reply history with an author.
type InteractionSummary struct {
	TotalRepliesSent   int64
	RepliesToday       int64
	FirstInteraction   *time.Time
	LastInteraction    *time.Time
	DistinctDaysActive int64
}

// ConversationRecord is one prior reply exchanged with the author.
type ConversationRecord struct {
	TweetID       string
	TweetContent  string
	ReplyContent  string
	ReplyStatus   models.PostStatus
	CreatedAt     time.Time
}

// TopicAffinity is a keyword that recurs in the author's discovered tweets.
type TopicAffinity struct {
	Keyword      string
	MentionCount int64
}

// RiskSignal flags a condition worth weighing before engaging.
type RiskSignal struct {
	SignalType  string
	Severity    string
	Description string
}

// ResponseMetrics aggregates how well past replies to this author performed.
// Without a performance-tracking table, this degrades to a response rate
// of zero and zero measured replies -- callers treat that as "no signal",
// not "bad signal" (see evaluateRelationship's neutral branch).
type ResponseMetrics struct {
	RepliesWithEngagement int64
	RepliesMeasured       int64
	ResponseRate          float64
}

// AuthorContext is the full profile built for one author.
type AuthorContext struct {
	AuthorUsername      string
	AuthorID            string
	InteractionSummary  InteractionSummary
	ConversationHistory []ConversationRecord
	TopicAffinity       []TopicAffinity
	RiskSignals         []RiskSignal
	ResponseMetrics     ResponseMetrics
}

// GetAuthorContext builds a context profile for identifier, which may be a
// username (with or without a leading @) or a known author id.
func GetAuthorContext(ctx context.Context, db *gorm.DB, identifier string, maxRepliesPerAuthorPerDay int) (AuthorContext, error) {
	username := strings.TrimPrefix(identifier, "@")

	authorID, authorUsername, err := resolveAuthor(ctx, db, username, identifier)
	if err != nil {
		return AuthorContext{}, err
	}

	summary, err := queryInteractionSummary(ctx, db, authorID, authorUsername)
	if err != nil {
		return AuthorContext{}, err
	}

	history, err := queryConversationHistory(ctx, db, authorUsername)
	if err != nil {
		return AuthorContext{}, err
	}

	metrics := computeResponseMetrics(history)

	affinity, err := queryTopicAffinity(ctx, db, authorUsername)
	if err != nil {
		return AuthorContext{}, err
	}

	risks := generateRiskSignals(summary, metrics, maxRepliesPerAuthorPerDay)

	return AuthorContext{
		AuthorUsername:      authorUsername,
		AuthorID:            authorID,
		InteractionSummary:  summary,
		ConversationHistory: history,
		TopicAffinity:       affinity,
		RiskSignals:         risks,
		ResponseMetrics:     metrics,
	}, nil
}

func resolveAuthor(ctx context.Context, db *gorm.DB, username, rawIdentifier string) (authorID, authorUsername string, err error) {
	var byUsername models.DiscoveredTweet
	err = db.WithContext(ctx).Where("author_username = ?", username).Take(&byUsername).Error
	if err == nil {
		return byUsername.AuthorID, username, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", "", err
	}

	var byID models.DiscoveredTweet
	err = db.WithContext(ctx).Where("author_id = ?", rawIdentifier).Take(&byID).Error
	if err == nil {
		return rawIdentifier, byID.AuthorUsername, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", "", err
	}
	return "", username, nil
}

func queryInteractionSummary(ctx context.Context, db *gorm.DB, authorID, authorUsername string) (InteractionSummary, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&models.ReplySent{}).
		Joins("JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id").
		Where("discovered_tweets.author_username = ? OR discovered_tweets.author_id = ?", authorUsername, authorID).
		Count(&total).Error; err != nil {
		return InteractionSummary{}, err
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	var today int64
	if err := db.WithContext(ctx).Model(&models.ReplySent{}).
		Joins("JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id").
		Where("(discovered_tweets.author_username = ? OR discovered_tweets.author_id = ?) AND replies_sent.created_at >= ?", authorUsername, authorID, startOfDay).
		Count(&today).Error; err != nil {
		return InteractionSummary{}, err
	}

	var first, last models.ReplySent
	var firstPtr, lastPtr *time.Time
	if err := db.WithContext(ctx).Model(&models.ReplySent{}).
		Joins("JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id").
		Where("discovered_tweets.author_username = ? OR discovered_tweets.author_id = ?", authorUsername, authorID).
		Order("replies_sent.created_at ASC").Take(&first).Error; err == nil {
		firstPtr = &first.CreatedAt
	}
	if err := db.WithContext(ctx).Model(&models.ReplySent{}).
		Joins("JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id").
		Where("discovered_tweets.author_username = ? OR discovered_tweets.author_id = ?", authorUsername, authorID).
		Order("replies_sent.created_at DESC").Take(&last).Error; err == nil {
		lastPtr = &last.CreatedAt
	}

	var distinctDays int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT DATE(replies_sent.created_at)) FROM replies_sent
		 JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id
		 WHERE discovered_tweets.author_username = ? OR discovered_tweets.author_id = ?`,
		authorUsername, authorID,
	).Scan(&distinctDays).Error; err != nil {
		return InteractionSummary{}, err
	}

	return InteractionSummary{
		TotalRepliesSent:   total,
		RepliesToday:       today,
		FirstInteraction:   firstPtr,
		LastInteraction:    lastPtr,
		DistinctDaysActive: distinctDays,
	}, nil
}

func queryConversationHistory(ctx context.Context, db *gorm.DB, authorUsername string) ([]ConversationRecord, error) {
	type row struct {
		TweetID      string
		TweetContent string
		ReplyContent string
		ReplyStatus  models.PostStatus
		CreatedAt    time.Time
	}
	var rows []row
	err := db.WithContext(ctx).Table("replies_sent").
		Select("discovered_tweets.id as tweet_id, SUBSTR(discovered_tweets.content, 1, 200) as tweet_content, replies_sent.content as reply_content, replies_sent.status as reply_status, replies_sent.created_at as created_at").
		Joins("JOIN discovered_tweets ON discovered_tweets.id = replies_sent.in_reply_to_tweet_id").
		Where("discovered_tweets.author_username = ?", authorUsername).
		Order("replies_sent.created_at DESC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]ConversationRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, ConversationRecord{
			TweetID:      r.TweetID,
			TweetContent: r.TweetContent,
			ReplyContent: r.ReplyContent,
			ReplyStatus:  r.ReplyStatus,
			CreatedAt:    r.CreatedAt,
		})
	}
	return records, nil
}

func computeResponseMetrics(history []ConversationRecord) ResponseMetrics {
	// Without per-reply performance tracking, every prior reply is
	// "unmeasured" -- RecommendEngagement treats this as neutral, not
	// negative.
	return ResponseMetrics{RepliesWithEngagement: 0, RepliesMeasured: 0, ResponseRate: 0}
}

func queryTopicAffinity(ctx context.Context, db *gorm.DB, authorUsername string) ([]TopicAffinity, error) {
	type row struct {
		Keyword string
		Cnt     int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&models.DiscoveredTweet{}).
		Select("matched_keyword as keyword, COUNT(*) as cnt").
		Where("author_username = ? AND matched_keyword IS NOT NULL AND matched_keyword != ''", authorUsername).
		Group("matched_keyword").
		Order("cnt DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	affinity := make([]TopicAffinity, 0, len(rows))
	for _, r := range rows {
		affinity = append(affinity, TopicAffinity{Keyword: r.Keyword, MentionCount: r.Cnt})
	}
	return affinity, nil
}

func generateRiskSignals(summary InteractionSummary, metrics ResponseMetrics, maxPerAuthorPerDay int) []RiskSignal {
	var signals []RiskSignal

	if summary.RepliesToday >= int64(maxPerAuthorPerDay) {
		signals = append(signals, RiskSignal{
			SignalType:  "high_frequency_today",
			Severity:    "high",
			Description: "already at the per-author daily reply limit",
		})
	}

	if metrics.RepliesMeasured >= 3 && metrics.ResponseRate < 0.1 {
		signals = append(signals, RiskSignal{
			SignalType:  "low_response_rate",
			Severity:    "medium",
			Description: "little engagement on replies sent to this author",
		})
	}

	if summary.TotalRepliesSent == 0 {
		signals = append(signals, RiskSignal{
			SignalType:  "no_prior_interaction",
			Severity:    "low",
			Description: "no prior interaction history with this author",
		})
	}

	return signals
}
