package automation

import (
	"context"
	"fmt"
	"testing"

	contentvalidate "github.com/aramirez087/tuitbot/pkg/content"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
)

type fakeThreadPoster struct {
	failAtBlock int // -1 means never fail
	nextID      int
}

func (f *fakeThreadPoster) PostTweet(ctx context.Context, text string, opts *twitter.TweetOptions) (*twitter.Tweet, error) {
	if f.failAtBlock == 0 {
		return nil, fmt.Errorf("simulated failure")
	}
	f.nextID++
	return &twitter.Tweet{ID: fmt.Sprintf("root-%d", f.nextID), Text: text, ConversationID: "conv-1"}, nil
}

func (f *fakeThreadPoster) PostReplyThread(ctx context.Context, params twitter.PostReplyThreadParams) (*twitter.Tweet, error) {
	f.nextID++
	if f.failAtBlock == f.nextID-1 {
		return nil, fmt.Errorf("simulated failure at block %d", f.nextID-1)
	}
	return &twitter.Tweet{ID: fmt.Sprintf("block-%d", f.nextID), Text: params.Text}, nil
}

func threadPayload(n int) string {
	blocks := make([]contentvalidate.ThreadBlock, n)
	for i := range blocks {
		blocks[i] = contentvalidate.ThreadBlock{
			ID:    fmt.Sprintf("b%d", i),
			Text:  fmt.Sprintf("thread block number %d about widgets", i),
			Order: i,
		}
	}
	payload, _ := contentvalidate.SerializeThreadBlocks(blocks)
	return payload
}

func TestThreadLoop_PostsAllBlocksAndRecordsThread(t *testing.T) {
	deps, db := newTestDeps(t)
	deps.LLM = stubLLM{out: threadPayload(3)}

	loop := NewThreadLoop(deps, &fakeThreadPoster{failAtBlock: -1}, nil)
	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var thread models.Thread
	if err := db.Preload("Tweets").First(&thread).Error; err != nil {
		t.Fatalf("expected thread row: %v", err)
	}
	if thread.Status != models.PostSent {
		t.Fatalf("expected status sent, got %s", thread.Status)
	}
	if len(thread.Tweets) != 3 {
		t.Fatalf("expected 3 thread tweets, got %d", len(thread.Tweets))
	}
}

func TestThreadLoop_RecordsPartialOnMidThreadFailure(t *testing.T) {
	deps, db := newTestDeps(t)
	deps.LLM = stubLLM{out: threadPayload(4)}

	loop := NewThreadLoop(deps, &fakeThreadPoster{failAtBlock: 2}, nil)
	if err := loop.tick(context.Background()); err == nil {
		t.Fatal("expected tick to report the dispatch failure")
	}

	var thread models.Thread
	if err := db.Preload("Tweets").First(&thread).Error; err != nil {
		t.Fatalf("expected thread row even on partial failure: %v", err)
	}
	if thread.Status != models.PostPartial {
		t.Fatalf("expected status partial, got %s", thread.Status)
	}
	if len(thread.Tweets) != 2 {
		t.Fatalf("expected 2 posted thread tweets before failure, got %d", len(thread.Tweets))
	}
}

func TestThreadLoop_SkipsWhenLLMOutputIsNotValidPayload(t *testing.T) {
	deps, db := newTestDeps(t)
	deps.LLM = stubLLM{out: "not json at all"}

	loop := NewThreadLoop(deps, &fakeThreadPoster{failAtBlock: -1}, nil)
	if err := loop.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	var count int64
	db.Model(&models.Thread{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no thread recorded for invalid LLM output, got %d", count)
	}
}
