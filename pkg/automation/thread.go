package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aramirez087/tuitbot/pkg/approval"
	contentvalidate "github.com/aramirez087/tuitbot/pkg/content"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/gateway"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/postqueue"
	"github.com/aramirez087/tuitbot/pkg/prompts"
	"github.com/aramirez087/tuitbot/pkg/scheduler"
)

// threadBlockCount is the number of tweets requested per generated thread.
const threadBlockCount = 5

// ThreadLoop periodically drafts a multi-tweet thread and posts it as one
// atomic action: either every block posts or the partial result (the
// posted prefix) is recorded and the run is reported as failed.
type ThreadLoop struct {
	Deps
	poster    ThreadPoster
	scheduler *scheduler.Scheduler
	topics    topicRotor
	errors    *ConsecutiveErrorTracker
}

// NewThreadLoop builds a ThreadLoop driven by sched's ticks.
func NewThreadLoop(deps Deps, poster ThreadPoster, sched *scheduler.Scheduler) *ThreadLoop {
	return &ThreadLoop{
		Deps:      deps,
		poster:    poster,
		scheduler: sched,
		topics:    topicRotor{topics: deps.Business.EffectiveIndustryTopics()},
		errors:    NewConsecutiveErrorTracker(5),
	}
}

func (l *ThreadLoop) Name() string { return "thread" }

func (l *ThreadLoop) Run(ctx context.Context) error {
	log := l.logger().WithField("loop", "thread")
	go l.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.scheduler.Chan():
			if err := l.tick(ctx); err != nil {
				log.WithError(err).Warn("thread tick failed")
				l.errors.RecordError()
			} else {
				l.errors.RecordSuccess()
			}
		}
	}
}

func (l *ThreadLoop) tick(ctx context.Context) error {
	log := l.logger().WithField("loop", "thread")

	topic := l.topics.next()
	prompt, err := prompts.ComposeThread(prompts.ThreadParams{
		Topic:          topic,
		BlockCount:     threadBlockCount,
		IndustryTopics: l.Business.EffectiveIndustryTopics(),
	})
	if err != nil {
		return fmt.Errorf("compose thread prompt: %w", err)
	}

	raw, err := l.LLM.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate thread: %w", err)
	}

	blocks, ok := contentvalidate.DeserializeThreadBlocks(raw)
	if !ok {
		log.Debug("LLM thread output was not a valid blocks payload, skipping")
		return nil
	}
	if err := contentvalidate.ValidateThreadBlocks(blocks, l.Limits.BannedPhrases); err != nil {
		log.WithError(err).Debug("generated thread failed validation, skipping")
		return nil
	}

	payload, err := contentvalidate.SerializeThreadBlocks(blocks)
	if err != nil {
		return fmt.Errorf("serialize thread blocks: %w", err)
	}

	paramsJSON, _ := json.Marshal(map[string]string{"topic": topic, "block_count": fmt.Sprintf("%d", len(blocks))})
	decision, err := l.Gateway.Evaluate(ctx, "post_thread", string(paramsJSON), approval.EnqueueParams{
		ActionType:       "thread",
		GeneratedContent: payload,
		Topic:            topic,
	}, nil)
	if err != nil {
		return fmt.Errorf("evaluate thread mutation: %w", err)
	}
	if decision.Kind != gateway.Proceed {
		log.WithField("decision", decision.Kind).Debug("thread not proceeding past gateway")
		return nil
	}

	started := time.Now()
	result := make(chan postqueue.Outcome, 1)
	posted := make([]models.ThreadTweet, 0, len(blocks))
	action := postqueue.Action{
		Kind:    postqueue.KindThread,
		Content: payload,
		Dispatch: func(ctx context.Context) (string, error) {
			ctx = twitter.WithCorrelationID(ctx, decision.Ticket.CorrelationID)
			return l.postBlocks(ctx, blocks, &posted)
		},
		Result: result,
	}
	if err := l.Queue.Enqueue(ctx, action); err != nil {
		_ = l.Gateway.CompleteFailure(ctx, decision.Ticket, err.Error(), time.Since(started).Milliseconds())
		recordActionLog(ctx, l.Deps, l.Name(), "thread", "", "failed", err.Error())
		return fmt.Errorf("enqueue thread: %w", err)
	}

	outcome := waitResult(ctx, result, dispatchTimeout)
	elapsed := time.Since(started).Milliseconds()

	status := models.PostSent
	if outcome.Err != nil {
		status = models.PostPartial
		if len(posted) == 0 {
			status = models.PostFailed
		}
		_ = l.Gateway.CompleteFailure(ctx, decision.Ticket, outcome.Err.Error(), elapsed)
	} else {
		resultJSON, _ := json.Marshal(map[string]string{"tweet_id": outcome.TweetID})
		if err := l.Gateway.CompleteSuccess(ctx, decision.Ticket, string(resultJSON), "", elapsed, nil); err != nil {
			log.WithError(err).Warn("failed to record mutation success")
		}
	}

	thread := models.Thread{Topic: topic, Status: status, Tweets: posted}
	if err := l.DB.WithContext(ctx).Create(&thread).Error; err != nil {
		log.WithError(err).Warn("failed to record thread row")
	}

	logOutcome := "sent"
	if outcome.Err != nil {
		logOutcome = "failed"
		if status == models.PostPartial {
			logOutcome = "partial"
		}
	}
	recordActionLog(ctx, l.Deps, l.Name(), "thread", outcome.TweetID, logOutcome, errString(outcome.Err))

	if outcome.Err != nil {
		return fmt.Errorf("post thread: %w", outcome.Err)
	}
	return nil
}

// postBlocks posts each thread block in order, the first standalone and
// the rest anchored as replies to it, appending a ThreadTweet to posted as
// each succeeds so a partial failure still records the posted prefix.
func (l *ThreadLoop) postBlocks(ctx context.Context, blocks []contentvalidate.ThreadBlock, posted *[]models.ThreadTweet) (string, error) {
	var rootID, conversationID string

	for i, block := range blocks {
		var tweet *twitter.Tweet
		var err error

		if i == 0 {
			tweet, err = l.poster.PostTweet(ctx, block.Text, nil)
			if tweet != nil {
				conversationID = tweet.ConversationID
			}
		} else {
			tweet, err = l.poster.PostReplyThread(ctx, twitter.PostReplyThreadParams{
				Text:           block.Text,
				ReplyToID:      rootID,
				ConversationID: conversationID,
			})
		}

		if err != nil {
			return rootID, fmt.Errorf("post thread block %d: %w", i, err)
		}

		if i == 0 {
			rootID = tweet.ID
		}
		*posted = append(*posted, models.ThreadTweet{
			Position:      block.Order,
			PostedTweetID: tweet.ID,
			Content:       block.Text,
		})
	}

	return rootID, nil
}
