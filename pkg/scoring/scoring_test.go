package scoring

import (
	"testing"
	"time"
)

func defaultConfig() Config {
	return Config{
		Threshold:           70,
		KeywordRelevanceMax: 40,
		FollowerCountMax:    20,
		RecencyMax:          15,
		EngagementRateMax:   25,
	}
}

func testTweet(now time.Time) TweetData {
	return TweetData{
		Text:            "Building amazing Rust CLI tools for developers",
		CreatedAt:       now.Add(-10 * time.Minute).Format(time.RFC3339),
		Likes:           20,
		Retweets:        5,
		Replies:         3,
		AuthorUsername:  "devuser",
		AuthorFollowers: 5000,
	}
}

// Boundary scenario 1: scoring above threshold.
func TestScoreTweetAt_AboveThreshold(t *testing.T) {
	engine := New(defaultConfig(), []string{"rust", "cli"})
	now := time.Now().UTC()
	score := engine.ScoreTweetAt(testTweet(now), now)

	if !score.MeetsThreshold {
		t.Fatalf("expected threshold met, got score %+v", score)
	}
	if score.KeywordRelevance <= 0 || score.Follower <= 0 || score.Recency <= 0 || score.Engagement <= 0 {
		t.Fatalf("expected all signals non-zero, got %+v", score)
	}
	if score.Total > 100 {
		t.Fatalf("total must be clamped to 100, got %f", score.Total)
	}
}

// Boundary scenario 2: scoring below threshold.
func TestScoreTweetAt_BelowThreshold(t *testing.T) {
	config := defaultConfig()
	config.Threshold = 99
	engine := New(config, []string{"nonexistent"})
	now := time.Now().UTC()
	tweet := testTweet(now)
	tweet.CreatedAt = now.Add(-12 * time.Hour).Format(time.RFC3339)
	tweet.Likes, tweet.Retweets, tweet.Replies = 0, 0, 0

	score := engine.ScoreTweetAt(tweet, now)
	if score.MeetsThreshold {
		t.Fatalf("expected threshold not met, got %+v", score)
	}
}

func TestScoreTweetAt_TotalIsSumOfSignals(t *testing.T) {
	engine := New(defaultConfig(), []string{"rust", "cli"})
	now := time.Now().UTC()
	score := engine.ScoreTweetAt(testTweet(now), now)

	expected := score.KeywordRelevance + score.Follower + score.Recency + score.Engagement
	if diff := score.Total - expected; diff > 0.01 || diff < -0.01 {
		t.Fatalf("total %f does not match sum of signals %f", score.Total, expected)
	}
}

func TestScoreTweetAt_TotalClampedTo100(t *testing.T) {
	config := Config{Threshold: 70, KeywordRelevanceMax: 80, FollowerCountMax: 80, RecencyMax: 80, EngagementRateMax: 80}
	engine := New(config, []string{"rust"})
	now := time.Now().UTC()
	score := engine.ScoreTweetAt(testTweet(now), now)
	if score.Total > 100 {
		t.Fatalf("expected clamp to 100, got %f", score.Total)
	}
}

func TestScoreTweetAt_NoKeywordsYieldsZeroRelevance(t *testing.T) {
	engine := New(defaultConfig(), nil)
	now := time.Now().UTC()
	score := engine.ScoreTweetAt(testTweet(now), now)
	if score.KeywordRelevance != 0 {
		t.Fatalf("expected zero keyword relevance, got %f", score.KeywordRelevance)
	}
}

func TestScoreTweetAt_Purity(t *testing.T) {
	engine := New(defaultConfig(), []string{"rust", "cli"})
	now := time.Now().UTC()
	tweet := testTweet(now)
	first := engine.ScoreTweetAt(tweet, now)
	second := engine.ScoreTweetAt(tweet, now)
	if first != second {
		t.Fatalf("expected pure function, got %+v vs %+v", first, second)
	}
}

func TestFindMatchedKeywords(t *testing.T) {
	keywords := []string{"rust", "python", "cli"}
	matched := FindMatchedKeywords("Building a Rust CLI tool", keywords)
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %v", matched)
	}
}

func TestFindMatchedKeywords_None(t *testing.T) {
	matched := FindMatchedKeywords("Building a Rust CLI tool", []string{"java"})
	if len(matched) != 0 {
		t.Fatalf("expected no matches, got %v", matched)
	}
}

func TestFormatFollowerCount(t *testing.T) {
	cases := map[uint64]string{
		500:       "500",
		1200:      "1.2K",
		45300:     "45.3K",
		1_200_000: "1.2M",
	}
	for in, want := range cases {
		if got := FormatFollowerCount(in); got != want {
			t.Errorf("FormatFollowerCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTweetAgeAt(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{12 * time.Minute, "12m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, c := range cases {
		created := now.Add(-c.age).Format(time.RFC3339)
		if got := FormatTweetAgeAt(created, now); got != c.want {
			t.Errorf("FormatTweetAgeAt(-%s) = %q, want %q", c.age, got, c.want)
		}
	}
}

func TestFormatTweetAgeAt_Invalid(t *testing.T) {
	if got := FormatTweetAgeAt("bad", time.Now()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 50); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	long := "This is a very long tweet that needs to be truncated for display"
	got := TruncateText(long, 20)
	want := "This is a very long ..."
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormatBreakdown_Verdicts(t *testing.T) {
	config := defaultConfig()
	now := time.Now().UTC()
	tweet := testTweet(now)

	replyScore := TweetScore{Total: 75, KeywordRelevance: 30, Follower: 15, Recency: 12, Engagement: 18, MeetsThreshold: true}
	out := replyScore.FormatBreakdown(config, tweet, []string{"rust"})
	if !contains(out, "REPLY") || !contains(out, "75/100") || !contains(out, "@devuser") {
		t.Fatalf("unexpected breakdown: %s", out)
	}

	skipScore := TweetScore{Total: 40, KeywordRelevance: 10, Follower: 10, Recency: 10, Engagement: 10, MeetsThreshold: false}
	out = skipScore.FormatBreakdown(config, tweet, nil)
	if !contains(out, "SKIP") || !contains(out, "40/100") {
		t.Fatalf("unexpected breakdown: %s", out)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}
