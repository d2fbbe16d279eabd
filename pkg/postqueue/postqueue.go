// Package postqueue serializes every outbound write behind a single
// consumer, applying an inter-action randomized delay and a per-kind
// rate-limit check immediately before dispatch.
package postqueue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/ratelimit"
)

// QueueCapacity is the default bounded capacity of the post queue.
const QueueCapacity = 128

// maxRateLimitBackoff caps how long a single dispatch failure re-enqueues
// for, so a misbehaving reset-time header can't stall the queue for hours.
const maxRateLimitBackoff = 15 * time.Minute

// Kind identifies the category of a queued post action, which doubles as
// its rate-limit dimension key.
type Kind string

const (
	KindReply  Kind = "reply"
	KindTweet  Kind = "tweet"
	KindThread Kind = "thread"
)

// Action is a unit of outbound work submitted to the queue.
type Action struct {
	Kind    Kind
	Content string
	Target  string // reply-to / quote tweet id, empty for standalone tweets

	// Dispatch performs the actual external-API write and returns the
	// posted tweet id on success.
	Dispatch func(ctx context.Context) (string, error)

	// Result, if non-nil, receives the outcome once the action has been
	// processed (or the queue shuts down before it runs).
	Result chan<- Outcome
}

// Outcome reports what happened to a dispatched Action.
type Outcome struct {
	TweetID string
	Err     error
}

// Queue is the single-consumer serialized posting worker.
type Queue struct {
	actions    chan Action
	rateLimits *ratelimit.Engine
	logger     *logrus.Logger
	minDelay   time.Duration
	maxDelay   time.Duration
}

// Config configures a Queue.
type Config struct {
	RateLimits *ratelimit.Engine
	Logger     *logrus.Logger
	MinDelay   time.Duration
	MaxDelay   time.Duration
	Capacity   int
}

func New(cfg Config) *Queue {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Queue{
		actions:    make(chan Action, capacity),
		rateLimits: cfg.RateLimits,
		logger:     logger,
		minDelay:   cfg.MinDelay,
		maxDelay:   cfg.MaxDelay,
	}
}

// Enqueue submits an action, blocking if the queue is at capacity until
// space is available or ctx is cancelled.
func (q *Queue) Enqueue(ctx context.Context, a Action) error {
	select {
	case q.actions <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue on a single goroutine until ctx is cancelled. Every
// dispatch is preceded by a per-kind rate-limit check and followed by a
// randomized inter-action delay.
func (q *Queue) Run(ctx context.Context) {
	log := q.logger.WithField("component", "postqueue")
	for {
		select {
		case <-ctx.Done():
			q.drainOnShutdown()
			return
		case action, ok := <-q.actions:
			if !ok {
				return
			}
			q.process(ctx, action, log)
			q.sleepBetweenActions(ctx)
		}
	}
}

func (q *Queue) process(ctx context.Context, action Action, log *logrus.Entry) {
	if q.rateLimits != nil {
		allowed, err := q.rateLimits.CheckAndIncrement(ctx, string(action.Kind))
		if err != nil {
			q.reply(action, Outcome{Err: fmt.Errorf("rate limit check: %w", err)})
			return
		}
		if !allowed {
			log.WithField("kind", action.Kind).Warn("post action denied by rate limit, dropping")
			q.reply(action, Outcome{Err: fmt.Errorf("rate limited: %s", action.Kind)})
			return
		}
	}

	tweetID, err := action.Dispatch(ctx)
	if err != nil {
		var rateLimitErr *twitter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			wait := rateLimitErr.WaitDuration
			if wait <= 0 {
				wait = 0
			}
			if wait > maxRateLimitBackoff {
				wait = maxRateLimitBackoff
			}
			log.WithField("kind", action.Kind).WithField("wait", wait).
				Warn("dispatch rate limited, re-enqueueing after reset window")
			q.requeueAfter(ctx, action, wait)
			return
		}
		log.WithError(err).WithField("kind", action.Kind).Error("dispatch failed")
	}
	q.reply(action, Outcome{TweetID: tweetID, Err: err})
}

// requeueAfter resubmits action once wait has elapsed, unless ctx is
// cancelled first -- in which case the action is failed out rather than
// left stranded.
func (q *Queue) requeueAfter(ctx context.Context, action Action, wait time.Duration) {
	go func() {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
			if err := q.Enqueue(ctx, action); err != nil {
				q.reply(action, Outcome{Err: err})
			}
		case <-ctx.Done():
			q.reply(action, Outcome{Err: ctx.Err()})
		}
	}()
}

func (q *Queue) reply(action Action, outcome Outcome) {
	if action.Result == nil {
		return
	}
	select {
	case action.Result <- outcome:
	default:
	}
}

func (q *Queue) sleepBetweenActions(ctx context.Context) {
	if q.maxDelay <= 0 {
		return
	}
	delay := q.minDelay
	if q.maxDelay > q.minDelay {
		delay += time.Duration(rand.Int63n(int64(q.maxDelay - q.minDelay)))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// drainOnShutdown fails every action still queued so waiting producers are
// never left blocked on a Result channel.
func (q *Queue) drainOnShutdown() {
	for {
		select {
		case action := <-q.actions:
			q.reply(action, Outcome{Err: context.Canceled})
		default:
			return
		}
	}
}
