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

// ContentLoop periodically drafts and posts a standalone tweet drawn from
// the business profile's industry topics.
type ContentLoop struct {
	Deps
	poster    TweetPoster
	scheduler *scheduler.Scheduler
	topics    topicRotor
	errors    *ConsecutiveErrorTracker
}

// NewContentLoop builds a ContentLoop driven by sched's ticks.
func NewContentLoop(deps Deps, poster TweetPoster, sched *scheduler.Scheduler) *ContentLoop {
	return &ContentLoop{
		Deps:      deps,
		poster:    poster,
		scheduler: sched,
		topics:    topicRotor{topics: deps.Business.EffectiveIndustryTopics()},
		errors:    NewConsecutiveErrorTracker(5),
	}
}

func (l *ContentLoop) Name() string { return "content" }

func (l *ContentLoop) Run(ctx context.Context) error {
	log := l.logger().WithField("loop", "content")
	go l.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.scheduler.Chan():
			if err := l.tick(ctx); err != nil {
				log.WithError(err).Warn("content tick failed")
				l.errors.RecordError()
			} else {
				l.errors.RecordSuccess()
			}
		}
	}
}

func (l *ContentLoop) tick(ctx context.Context) error {
	log := l.logger().WithField("loop", "content")

	topic := l.topics.next()
	prompt, err := prompts.ComposeContent(prompts.ContentParams{
		Topic:          topic,
		IndustryTopics: l.Business.EffectiveIndustryTopics(),
	})
	if err != nil {
		return fmt.Errorf("compose content prompt: %w", err)
	}

	text, err := l.LLM.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	if err := contentvalidate.Validate(text, l.Limits.BannedPhrases); err != nil {
		log.WithError(err).Debug("generated tweet failed validation, skipping")
		return nil
	}

	paramsJSON, _ := json.Marshal(map[string]string{"text": text, "topic": topic})
	decision, err := l.Gateway.Evaluate(ctx, "post_tweet", string(paramsJSON), approval.EnqueueParams{
		ActionType:       "tweet",
		GeneratedContent: text,
		Topic:            topic,
	}, nil)
	if err != nil {
		return fmt.Errorf("evaluate tweet mutation: %w", err)
	}
	if decision.Kind != gateway.Proceed {
		log.WithField("decision", decision.Kind).Debug("tweet not proceeding past gateway")
		return nil
	}

	started := time.Now()
	result := make(chan postqueue.Outcome, 1)
	poster := l.poster
	action := postqueue.Action{
		Kind:    postqueue.KindTweet,
		Content: text,
		Dispatch: func(ctx context.Context) (string, error) {
			ctx = twitter.WithCorrelationID(ctx, decision.Ticket.CorrelationID)
			posted, err := poster.PostTweet(ctx, text, nil)
			if err != nil {
				return "", err
			}
			return posted.ID, nil
		},
		Result: result,
	}
	if err := l.Queue.Enqueue(ctx, action); err != nil {
		_ = l.Gateway.CompleteFailure(ctx, decision.Ticket, err.Error(), time.Since(started).Milliseconds())
		recordActionLog(ctx, l.Deps, l.Name(), "tweet", "", "failed", err.Error())
		return fmt.Errorf("enqueue tweet: %w", err)
	}

	outcome := waitResult(ctx, result, dispatchTimeout)
	elapsed := time.Since(started).Milliseconds()
	if outcome.Err != nil {
		_ = l.Gateway.CompleteFailure(ctx, decision.Ticket, outcome.Err.Error(), elapsed)
		recordActionLog(ctx, l.Deps, l.Name(), "tweet", "", "failed", outcome.Err.Error())
		return fmt.Errorf("post tweet: %w", outcome.Err)
	}

	resultJSON, _ := json.Marshal(map[string]string{"tweet_id": outcome.TweetID})
	if err := l.Gateway.CompleteSuccess(ctx, decision.Ticket, string(resultJSON), "", elapsed, nil); err != nil {
		log.WithError(err).Warn("failed to record mutation success")
	}

	posted := models.OriginalTweet{
		PostedTweetID: outcome.TweetID,
		Content:       text,
		Topic:         topic,
		Status:        models.PostSent,
	}
	if err := l.DB.WithContext(ctx).Create(&posted).Error; err != nil {
		log.WithError(err).Warn("failed to record original_tweet row")
	}
	recordActionLog(ctx, l.Deps, l.Name(), "tweet", outcome.TweetID, "sent", "")

	return nil
}

// topicRotor cycles through the configured industry topics so consecutive
// posts don't repeat the same subject.
type topicRotor struct {
	topics []string
	idx    int
}

func (r *topicRotor) next() string {
	if len(r.topics) == 0 {
		return ""
	}
	t := r.topics[r.idx%len(r.topics)]
	r.idx++
	return t
}
