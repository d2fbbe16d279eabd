package automation

import (
	"context"
	"strings"
	"testing"

	"github.com/aramirez087/tuitbot/internal/config"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/scoring"
)

type fakeTweetSearcher struct {
	resp  *twitter.TweetResponse
	query string
}

func (f *fakeTweetSearcher) Search(ctx context.Context, params twitter.SearchParams) (chan *twitter.TweetResponse, chan error) {
	f.query = params.Query
	data := make(chan *twitter.TweetResponse, 1)
	errs := make(chan error, 1)
	data <- f.resp
	close(data)
	close(errs)
	return data, errs
}

func TestDiscoveryLoop_SearchQueryCombinesKeywords(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Business = config.BusinessProfile{
		ProductKeywords:    []string{"widgets"},
		CompetitorKeywords: []string{"acme"},
	}
	loop := NewDiscoveryLoop(deps, &fakeTweetSearcher{}, fakeReplyPoster{}, nil)

	query := loop.searchQuery()
	if query == "" {
		t.Fatal("expected non-empty search query")
	}
	if !containsAll(query, `"widgets"`, `"acme"`, "-is:retweet") {
		t.Fatalf("query missing expected terms: %s", query)
	}
}

func TestDiscoveryLoop_SkipsSearchWhenNoKeywordsConfigured(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Business = config.BusinessProfile{}
	searcher := &fakeTweetSearcher{}
	loop := NewDiscoveryLoop(deps, searcher, fakeReplyPoster{}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if searcher.query != "" {
		t.Fatal("expected search not to be called without keywords")
	}
}

func TestDiscoveryLoop_ProcessesNewCandidateAndPostsReply(t *testing.T) {
	deps, db := newTestDeps(t)

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{
			{ID: "d1", Text: "these widgets are great", AuthorID: "u9"},
		},
		Includes: &twitter.TweetIncludes{
			Users: []twitter.User{{ID: "u9", Username: "bob"}},
		},
	}
	loop := NewDiscoveryLoop(deps, &fakeTweetSearcher{resp: resp}, fakeReplyPoster{postedID: "posted-9"}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var discovered models.DiscoveredTweet
	if err := db.First(&discovered, "id = ?", "d1").Error; err != nil {
		t.Fatalf("expected discovered tweet row: %v", err)
	}
	if !discovered.RepliedTo {
		t.Fatal("expected discovered tweet to be marked replied_to")
	}
}

func TestDiscoveryLoop_SkipsCandidateBelowScoreThreshold(t *testing.T) {
	deps, db := newTestDeps(t)
	deps.Scoring = scoring.New(scoring.Config{Threshold: 99}, []string{"widgets"})

	resp := &twitter.TweetResponse{
		Data: []twitter.Tweet{{ID: "d2", Text: "unrelated chatter", AuthorID: "u8"}},
	}
	loop := NewDiscoveryLoop(deps, &fakeTweetSearcher{resp: resp}, fakeReplyPoster{postedID: "posted-8"}, nil)

	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var discovered models.DiscoveredTweet
	if err := db.First(&discovered, "id = ?", "d2").Error; err != nil {
		t.Fatalf("expected discovered tweet row even when skipped: %v", err)
	}
	if discovered.RepliedTo {
		t.Fatal("expected tweet below threshold not to be replied to")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
