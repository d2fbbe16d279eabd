package automation

import (
	"context"
	"fmt"
	"strings"

	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/scheduler"
)

// DiscoveryLoop searches for keyword-matching tweets from accounts the bot
// doesn't already follow a conversation with, scoring and replying to the
// ones worth engaging exactly like the mentions loop does.
type DiscoveryLoop struct {
	Deps
	searcher  TweetSearcher
	poster    ReplyPoster
	scheduler *scheduler.Scheduler
	rotor     archetypeRotor
	errors    *ConsecutiveErrorTracker
}

// NewDiscoveryLoop builds a DiscoveryLoop driven by sched's ticks.
func NewDiscoveryLoop(deps Deps, searcher TweetSearcher, poster ReplyPoster, sched *scheduler.Scheduler) *DiscoveryLoop {
	return &DiscoveryLoop{
		Deps:      deps,
		searcher:  searcher,
		poster:    poster,
		scheduler: sched,
		errors:    NewConsecutiveErrorTracker(5),
	}
}

func (l *DiscoveryLoop) Name() string { return "discovery" }

func (l *DiscoveryLoop) Run(ctx context.Context) error {
	log := l.logger().WithField("loop", "discovery")
	go l.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.scheduler.Chan():
			if err := l.tick(ctx); err != nil {
				log.WithError(err).Warn("discovery tick failed")
				l.errors.RecordError()
			} else {
				l.errors.RecordSuccess()
			}
		}
	}
}

// searchQuery builds a recent-search query OR-ing the business profile's
// product and competitor keywords, excluding retweets.
func (l *DiscoveryLoop) searchQuery() string {
	terms := append(append([]string{}, l.Business.ProductKeywords...), l.Business.CompetitorKeywords...)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("(%s) -is:retweet", strings.Join(quoted, " OR "))
}

func (l *DiscoveryLoop) tick(ctx context.Context) error {
	log := l.logger().WithField("loop", "discovery")

	query := l.searchQuery()
	if query == "" {
		log.Debug("no product or competitor keywords configured, skipping discovery search")
		return nil
	}

	dataChan, errChan := l.searcher.Search(ctx, twitter.SearchParams{Query: query, MaxResults: 25})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil {
				return fmt.Errorf("search tweets: %w", err)
			}
		case resp, ok := <-dataChan:
			if !ok {
				return nil
			}
			if resp == nil {
				continue
			}
			for _, tweet := range resp.Data {
				brief := l.rotor.next()
				if err := recordAndMaybeReply(ctx, l.Deps, l.poster, brief, l.Name(), resp, tweet); err != nil {
					log.WithError(err).WithField("tweet_id", tweet.ID).Warn("failed to process discovered tweet")
				}
			}
		}
	}
}
