package engagement

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.DiscoveredTweet{}, &models.ReplySent{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestGetAuthorContext_NoPriorInteractionSignalsRisk(t *testing.T) {
	db := newTestDB(t)
	ctx, err := GetAuthorContext(context.Background(), db, "newauthor", 5)
	if err != nil {
		t.Fatalf("get author context: %v", err)
	}
	if ctx.InteractionSummary.TotalRepliesSent != 0 {
		t.Fatalf("expected zero prior replies, got %d", ctx.InteractionSummary.TotalRepliesSent)
	}
	found := false
	for _, r := range ctx.RiskSignals {
		if r.SignalType == "no_prior_interaction" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected no_prior_interaction risk signal")
	}
}

func TestGetAuthorContext_StripsLeadingAt(t *testing.T) {
	db := newTestDB(t)
	ctx, err := GetAuthorContext(context.Background(), db, "@someone", 5)
	if err != nil {
		t.Fatalf("get author context: %v", err)
	}
	if ctx.AuthorUsername != "someone" {
		t.Fatalf("expected stripped username, got %q", ctx.AuthorUsername)
	}
}

func TestRecommendEngagement_NoKeywordMatchObserves(t *testing.T) {
	db := newTestDB(t)
	rec, err := RecommendEngagement(context.Background(), db, "someone", "just a totally unrelated tweet", Params{
		Keywords:                  []string{"widgets", "gadgets"},
		MaxRepliesPerDay:          100,
		MaxRepliesPerAuthorPerDay: 5,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.RecommendedAction != "observe" {
		t.Fatalf("expected observe without keyword match, got %q (score factors: %+v)", rec.RecommendedAction, rec.ContributingFactors)
	}
}

func TestRecommendEngagement_StrongKeywordMatchReplies(t *testing.T) {
	db := newTestDB(t)
	rec, err := RecommendEngagement(context.Background(), db, "someone", "I love widgets and gadgets so much, best widgets ever", Params{
		Keywords:                  []string{"widgets", "gadgets"},
		MaxRepliesPerDay:          100,
		MaxRepliesPerAuthorPerDay: 5,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.RecommendedAction != "reply" {
		t.Fatalf("expected reply for strong match, got %q (factors: %+v)", rec.RecommendedAction, rec.ContributingFactors)
	}
}

func TestRecommendEngagement_AuthorFrequencyLimitBlocks(t *testing.T) {
	db := newTestDB(t)

	dt := models.DiscoveredTweet{ID: "t1", AuthorID: "a1", AuthorUsername: "heavyuser", Content: "hi"}
	if err := db.Create(&dt).Error; err != nil {
		t.Fatalf("seed discovered tweet: %v", err)
	}
	for i := 0; i < 5; i++ {
		reply := models.ReplySent{InReplyToTweetID: "t1", Content: "reply", Status: models.PostSent}
		if err := db.Create(&reply).Error; err != nil {
			t.Fatalf("seed reply %d: %v", i, err)
		}
	}

	rec, err := RecommendEngagement(context.Background(), db, "heavyuser", "great widgets", Params{
		Keywords:                  []string{"widgets"},
		MaxRepliesPerDay:          100,
		MaxRepliesPerAuthorPerDay: 5,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.RecommendedAction != "skip" {
		t.Fatalf("expected skip once per-author limit reached, got %q", rec.RecommendedAction)
	}
	if rec.Confidence != 0.95 {
		t.Fatalf("expected high confidence skip (blocked), got %f", rec.Confidence)
	}
}

func TestRecommendEngagement_ApprovalModeSurfacesPolicyWarning(t *testing.T) {
	db := newTestDB(t)
	rec, err := RecommendEngagement(context.Background(), db, "someone", "widgets galore", Params{
		Keywords:                  []string{"widgets"},
		ApprovalModeActive:        true,
		MaxRepliesPerDay:          100,
		MaxRepliesPerAuthorPerDay: 5,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	found := false
	for _, p := range rec.PolicyConsiderations {
		if p.Policy == "approval_mode" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected approval_mode policy consideration")
	}
}

func TestDecideAction_Boundaries(t *testing.T) {
	if action, _ := decideAction(70, false); action != "reply" {
		t.Fatalf("expected reply at 70, got %s", action)
	}
	if action, _ := decideAction(50, false); action != "observe" {
		t.Fatalf("expected observe at 50, got %s", action)
	}
	if action, _ := decideAction(10, false); action != "skip" {
		t.Fatalf("expected skip at 10, got %s", action)
	}
	if action, conf := decideAction(99, true); action != "skip" || conf != 0.95 {
		t.Fatalf("expected blocked skip regardless of score, got %s %f", action, conf)
	}
}
