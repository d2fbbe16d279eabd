package automation

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/scheduler"
)

// mentionsCursorKey names the Cursor row tracking the last-seen mention id,
// the loop's only piece of external state besides the scheduler itself.
const mentionsCursorKey = "last_mention_id"

// MentionsLoop watches @-mentions of the authenticated account and drafts
// replies for the ones worth engaging with.
type MentionsLoop struct {
	Deps
	fetcher   MentionsFetcher
	poster    ReplyPoster
	scheduler *scheduler.Scheduler
	rotor     archetypeRotor
	errors    *ConsecutiveErrorTracker
}

// NewMentionsLoop builds a MentionsLoop driven by sched's ticks.
func NewMentionsLoop(deps Deps, fetcher MentionsFetcher, poster ReplyPoster, sched *scheduler.Scheduler) *MentionsLoop {
	return &MentionsLoop{
		Deps:      deps,
		fetcher:   fetcher,
		poster:    poster,
		scheduler: sched,
		errors:    NewConsecutiveErrorTracker(5),
	}
}

func (l *MentionsLoop) Name() string { return "mentions" }

// Run drives the scheduler and processes each tick until ctx is cancelled.
func (l *MentionsLoop) Run(ctx context.Context) error {
	log := l.logger().WithField("loop", "mentions")
	go l.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.scheduler.Chan():
			if err := l.tick(ctx); err != nil {
				log.WithError(err).Warn("mentions tick failed")
				l.errors.RecordError()
			} else {
				l.errors.RecordSuccess()
			}
		}
	}
}

func (l *MentionsLoop) tick(ctx context.Context) error {
	log := l.logger().WithField("loop", "mentions")

	sinceID := l.readCursor(ctx)
	newest := sinceID

	dataChan, errChan := l.fetcher.GetUserMentions(ctx, twitter.GetUserMentionsParams{MaxResults: 50, SinceID: sinceID})
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
				return fmt.Errorf("fetch mentions: %w", err)
			}
		case resp, ok := <-dataChan:
			if !ok {
				l.writeCursor(ctx, newest)
				return nil
			}
			if resp == nil {
				continue
			}
			for _, tweet := range resp.Data {
				if newerTweetID(tweet.ID, newest) {
					newest = tweet.ID
				}
				brief := l.rotor.next()
				if err := recordAndMaybeReply(ctx, l.Deps, l.poster, brief, l.Name(), resp, tweet); err != nil {
					log.WithError(err).WithField("tweet_id", tweet.ID).Warn("failed to process mention")
				}
			}
		}
	}
}

// readCursor loads the last-seen mention id, returning "" if none recorded yet.
func (l *MentionsLoop) readCursor(ctx context.Context) string {
	var cursor models.Cursor
	if err := l.DB.WithContext(ctx).Where("key = ?", mentionsCursorKey).First(&cursor).Error; err != nil {
		return ""
	}
	return cursor.Value
}

// writeCursor persists the newest mention id seen this tick, a no-op if
// nothing newer than what's already stored was observed.
func (l *MentionsLoop) writeCursor(ctx context.Context, id string) {
	if id == "" {
		return
	}
	cursor := models.Cursor{Key: mentionsCursorKey, Value: id}
	err := l.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&cursor).Error
	if err != nil {
		l.logger().WithField("loop", "mentions").WithError(err).Warn("failed to persist mentions cursor")
	}
}

// newerTweetID compares Twitter snowflake ids lexicographically-safe by
// length first, since later ids are always longer or equal and numerically
// greater within the same length.
func newerTweetID(candidate, current string) bool {
	if current == "" {
		return candidate != ""
	}
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate > current
}
