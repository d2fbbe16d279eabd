// Package scoring computes reply-worthiness scores for tweets from four
// independent heuristic signals. All scoring is pure and deterministic
// given an injected reference time -- no LLM calls, no I/O.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TweetData decouples the scoring engine from any specific API type.
type TweetData struct {
	Text            string
	CreatedAt       string // ISO-8601
	Likes           uint64
	Retweets        uint64
	Replies         uint64
	AuthorUsername  string
	AuthorFollowers uint64
}

// Config holds the per-signal maxima and the pass/fail threshold.
type Config struct {
	Threshold           int
	KeywordRelevanceMax float64
	FollowerCountMax    float64
	RecencyMax          float64
	EngagementRateMax   float64
}

// TweetScore is the per-signal breakdown and the clamped total.
type TweetScore struct {
	Total            float64
	KeywordRelevance float64
	Follower         float64
	Recency          float64
	Engagement       float64
	MeetsThreshold   bool
}

// Engine combines the four signals into a unified score.
type Engine struct {
	config   Config
	keywords []string
}

// New builds a scoring engine. keywords should be the combined
// product_keywords + competitor_keywords list from the business profile.
func New(config Config, keywords []string) *Engine {
	return &Engine{config: config, keywords: keywords}
}

func (e *Engine) Keywords() []string { return e.keywords }
func (e *Engine) Config() Config     { return e.config }

// ScoreTweet scores using the current time.
func (e *Engine) ScoreTweet(tweet TweetData) TweetScore {
	return e.ScoreTweetAt(tweet, time.Now().UTC())
}

// ScoreTweetAt scores with an injected reference time for determinism.
func (e *Engine) ScoreTweetAt(tweet TweetData, now time.Time) TweetScore {
	keywordRelevance := keywordRelevanceScore(tweet.Text, e.keywords, e.config.KeywordRelevanceMax)
	follower := followerScore(tweet.AuthorFollowers, e.config.FollowerCountMax)
	recency := recencyScoreAt(tweet.CreatedAt, e.config.RecencyMax, now)
	engagement := engagementRateScore(tweet.Likes, tweet.Retweets, tweet.Replies, tweet.AuthorFollowers, e.config.EngagementRateMax)

	total := clamp(keywordRelevance+follower+recency+engagement, 0, 100)

	return TweetScore{
		Total:            total,
		KeywordRelevance: keywordRelevance,
		Follower:         follower,
		Recency:          recency,
		Engagement:       engagement,
		MeetsThreshold:   total >= float64(e.config.Threshold),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const recencyWindow = 24 * time.Hour
const engagementBaseline = 0.015

// keywordSaturation is the match count at which the keyword-relevance
// signal reaches keyword_relevance_max.
const keywordSaturation = 2

func keywordRelevanceScore(text string, keywords []string, max float64) float64 {
	matched := FindMatchedKeywords(text, keywords)
	if len(matched) > keywordSaturation {
		matched = matched[:keywordSaturation]
	}
	return (float64(len(matched)) / float64(keywordSaturation)) * max
}

func followerScore(followers uint64, max float64) float64 {
	ratio := math.Log10(float64(followers)+1) / math.Log10(1_000_000)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio * max
}

func recencyScoreAt(createdAt string, max float64, now time.Time) float64 {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return 0
	}
	age := now.Sub(created)
	ratio := 1 - float64(age)/float64(recencyWindow)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * max
}

func engagementRateScore(likes, retweets, replies, followers uint64, max float64) float64 {
	denom := followers
	if denom < 1 {
		denom = 1
	}
	rate := float64(likes+retweets+replies) / float64(denom)
	ratio := rate / (engagementBaseline * 2)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio * max
}

// FindMatchedKeywords returns the subset of keywords present in tweetText
// (case-insensitive), preserving input order and deduplicating. Used for
// display and by keywordRelevanceScore, which counts the matches it returns.
func FindMatchedKeywords(tweetText string, keywords []string) []string {
	textLower := strings.ToLower(tweetText)
	seen := make(map[string]bool, len(keywords))
	matched := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if seen[lower] {
			continue
		}
		if strings.Contains(textLower, lower) {
			matched = append(matched, kw)
			seen[lower] = true
		}
	}
	return matched
}

// FormatFollowerCount renders a follower count for display, e.g.
// 500 -> "500", 1200 -> "1.2K", 1200000 -> "1.2M".
func FormatFollowerCount(count uint64) string {
	switch {
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

// FormatTweetAge renders a human-readable age using the current time.
func FormatTweetAge(createdAt string) string {
	return FormatTweetAgeAt(createdAt, time.Now().UTC())
}

// FormatTweetAgeAt renders age relative to now, for testability.
func FormatTweetAgeAt(createdAt string, now time.Time) string {
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "unknown"
	}

	age := now.Sub(created)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

// TruncateText truncates s to n bytes, appending "..." when truncated.
func TruncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FormatBreakdown renders a human-readable per-signal line, used by loop
// logging.
func (s TweetScore) FormatBreakdown(config Config, tweet TweetData, matchedKeywords []string) string {
	truncated := TruncateText(tweet.Text, 50)
	followers := FormatFollowerCount(tweet.AuthorFollowers)
	age := FormatTweetAge(tweet.CreatedAt)

	matchedList := "none"
	if len(matchedKeywords) > 0 {
		matchedList = strings.Join(matchedKeywords, ", ")
	}

	totalEngagement := tweet.Likes + tweet.Retweets + tweet.Replies
	followersForRate := tweet.AuthorFollowers
	if followersForRate < 1 {
		followersForRate = 1
	}
	ratePct := float64(totalEngagement) / float64(followersForRate) * 100

	verdict := "SKIP"
	if s.MeetsThreshold {
		verdict = "REPLY"
	}

	return fmt.Sprintf(
		"Tweet: %q by @%s (%s followers)\n"+
			"Score: %.0f/100\n"+
			"  Keyword relevance:  %.0f/%d  (matched: %s)\n"+
			"  Author reach:       %.0f/%d  (%s followers, log scale)\n"+
			"  Recency:            %.0f/%d  (posted %s)\n"+
			"  Engagement rate:    %.0f/%d  (%.1f%% engagement vs 1.5%% baseline)\n"+
			"Verdict: %s (threshold: %d)",
		truncated, tweet.AuthorUsername, followers,
		s.Total,
		s.KeywordRelevance, int(config.KeywordRelevanceMax), matchedList,
		s.Follower, int(config.FollowerCountMax), followers,
		s.Recency, int(config.RecencyMax), age,
		s.Engagement, int(config.EngagementRateMax), ratePct,
		verdict, config.Threshold,
	)
}

// String implements fmt.Stringer for compact logging.
func (s TweetScore) String() string {
	verdict := "SKIP"
	if s.MeetsThreshold {
		verdict = "REPLY"
	}
	return fmt.Sprintf("Score: %.0f/100 [kw:%.0f fol:%.0f rec:%.0f eng:%.0f] %s",
		s.Total, s.KeywordRelevance, s.Follower, s.Recency, s.Engagement, verdict)
}
