package automation

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/internal/config"
	"github.com/aramirez087/tuitbot/pkg/approval"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/gateway"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/llm"
	"github.com/aramirez087/tuitbot/pkg/policy"
	"github.com/aramirez087/tuitbot/pkg/postqueue"
	"github.com/aramirez087/tuitbot/pkg/ratelimit"
	"github.com/aramirez087/tuitbot/pkg/scoring"
)

type fakeMentionsFetcher struct {
	resp *twitter.TweetResponse
}

func (f fakeMentionsFetcher) GetUserMentions(ctx context.Context, params twitter.GetUserMentionsParams) (chan *twitter.TweetResponse, chan error) {
	data := make(chan *twitter.TweetResponse, 1)
	errs := make(chan error, 1)
	data <- f.resp
	close(data)
	close(errs)
	return data, errs
}

type fakeReplyPoster struct {
	postedID string
	err      error
}

func (f fakeReplyPoster) PostReply(ctx context.Context, text, replyToID string) (*twitter.Tweet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &twitter.Tweet{ID: f.postedID, Text: text}, nil
}

type stubLLM struct{ out string }

func (s stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.out, nil
}

func newTestDeps(t *testing.T) (Deps, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MutationAudit{}, &models.RateLimit{}, &models.ApprovalQueue{},
		&models.DiscoveredTweet{}, &models.ReplySent{}, &models.OriginalTweet{},
		&models.Thread{}, &models.ThreadTweet{}, &models.Cursor{}, &models.McpTelemetry{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	rl := ratelimit.New(db)
	if err := rl.InitBuiltins(context.Background(), ratelimit.Limits{
		MaxRepliesPerDay: 100, MaxTweetsPerDay: 100, MaxThreadsPerWeek: 100, MaxMutationsPerHr: 1000,
	}); err != nil {
		t.Fatalf("init rate limits: %v", err)
	}

	evaluator := policy.New(policy.Config{EnforceForMutations: true})
	approvals := approval.New(db)
	gw := gateway.New(db, evaluator, rl, approvals, "live")

	queue := postqueue.New(postqueue.Config{RateLimits: rl})
	go queue.Run(context.Background())

	scoringEngine := scoring.New(scoring.Config{
		Threshold: 10, KeywordRelevanceMax: 25, FollowerCountMax: 15, RecencyMax: 10, EngagementRateMax: 15,
	}, []string{"widgets"})

	return Deps{
		DB:      db,
		Gateway: gw,
		Queue:   queue,
		Scoring: scoringEngine,
		LLM:     stubLLM{out: "A sharp, specific reply about widgets."},
		Business: config.BusinessProfile{
			ProductKeywords: []string{"widgets"},
		},
		Limits: config.LimitsConfig{
			MaxRepliesPerDay:          10,
			MaxRepliesPerAuthorPerDay: 10,
		},
	}, db
}

func TestMentionsLoop_ProcessesNewMentionAndPostsReply(t *testing.T) {
	deps, db := newTestDeps(t)

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{
			{ID: "t1", Text: "loving these widgets", AuthorID: "u1", CreatedAt: time.Now().UTC().Format(time.RFC3339)},
		},
		Includes: &twitter.TweetIncludes{
			Users: []twitter.User{{ID: "u1", Username: "alice"}},
		},
	}

	loop := NewMentionsLoop(deps, fakeMentionsFetcher{resp: resp}, fakeReplyPoster{postedID: "posted-1"}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var discovered models.DiscoveredTweet
	if err := db.First(&discovered, "id = ?", "t1").Error; err != nil {
		t.Fatalf("expected discovered tweet row: %v", err)
	}
	if !discovered.RepliedTo {
		t.Fatal("expected discovered tweet to be marked replied_to")
	}

	var sent models.ReplySent
	if err := db.First(&sent).Error; err != nil {
		t.Fatalf("expected reply_sent row: %v", err)
	}
	if sent.PostedTweetID != "posted-1" {
		t.Fatalf("expected posted tweet id posted-1, got %q", sent.PostedTweetID)
	}

	var cursor models.Cursor
	if err := db.First(&cursor, "key = ?", mentionsCursorKey).Error; err != nil {
		t.Fatalf("expected mentions cursor row: %v", err)
	}
	if cursor.Value != "t1" {
		t.Fatalf("expected cursor value t1, got %q", cursor.Value)
	}
}

func TestMentionsLoop_CursorAdvancesAcrossTicks(t *testing.T) {
	deps, db := newTestDeps(t)
	if err := db.Create(&models.Cursor{Key: mentionsCursorKey, Value: "t5"}).Error; err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{
			{ID: "t9", Text: "widgets again", AuthorID: "u1", CreatedAt: time.Now().UTC().Format(time.RFC3339)},
		},
		Includes: &twitter.TweetIncludes{Users: []twitter.User{{ID: "u1", Username: "alice"}}},
	}
	loop := NewMentionsLoop(deps, fakeMentionsFetcher{resp: resp}, fakeReplyPoster{postedID: "posted-2"}, nil)
	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var cursor models.Cursor
	if err := db.First(&cursor, "key = ?", mentionsCursorKey).Error; err != nil {
		t.Fatalf("expected cursor row: %v", err)
	}
	if cursor.Value != "t9" {
		t.Fatalf("expected cursor to advance to t9, got %q", cursor.Value)
	}
}

func TestMentionsLoop_SkipsAlreadySeenTweet(t *testing.T) {
	deps, db := newTestDeps(t)
	if err := db.Create(&models.DiscoveredTweet{ID: "t1", AuthorID: "u1"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{{ID: "t1", Text: "loving these widgets", AuthorID: "u1"}},
	}
	loop := NewMentionsLoop(deps, fakeMentionsFetcher{resp: resp}, fakeReplyPoster{postedID: "posted-1"}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var count int64
	db.Model(&models.ReplySent{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no reply for an already-seen tweet, got %d", count)
	}
}

func TestMentionsLoop_SkipsTweetBelowScoreThreshold(t *testing.T) {
	deps, db := newTestDeps(t)
	deps.Scoring = scoring.New(scoring.Config{Threshold: 99}, []string{"widgets"})

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{{ID: "t2", Text: "unrelated chatter", AuthorID: "u2"}},
	}
	loop := NewMentionsLoop(deps, fakeMentionsFetcher{resp: resp}, fakeReplyPoster{postedID: "posted-2"}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var discovered models.DiscoveredTweet
	if err := db.First(&discovered, "id = ?", "t2").Error; err != nil {
		t.Fatalf("expected discovered tweet row even when skipped: %v", err)
	}
	if discovered.RepliedTo {
		t.Fatal("expected tweet below threshold not to be replied to")
	}
}
