package automation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/internal/archetype"
	"github.com/aramirez087/tuitbot/internal/config"
	"github.com/aramirez087/tuitbot/pkg/approval"
	contentvalidate "github.com/aramirez087/tuitbot/pkg/content"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/engagement"
	"github.com/aramirez087/tuitbot/pkg/gateway"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/llm"
	"github.com/aramirez087/tuitbot/pkg/postqueue"
	"github.com/aramirez087/tuitbot/pkg/prompts"
	"github.com/aramirez087/tuitbot/pkg/scoring"
)

// dispatchTimeout bounds how long a loop waits for the posting queue to
// report an outcome for a single action before giving up.
const dispatchTimeout = 2 * time.Minute

// MentionsFetcher streams pages of mention tweets, the narrow slice of
// twitter.TwitterClient the mentions loop needs.
type MentionsFetcher interface {
	GetUserMentions(ctx context.Context, params twitter.GetUserMentionsParams) (chan *twitter.TweetResponse, chan error)
}

// TweetSearcher streams pages of keyword-search results, the narrow slice
// of twitter.TwitterClient the discovery loop needs.
type TweetSearcher interface {
	Search(ctx context.Context, params twitter.SearchParams) (chan *twitter.TweetResponse, chan error)
}

// ReplyPoster posts a reply tweet.
type ReplyPoster interface {
	PostReply(ctx context.Context, text, replyToID string) (*twitter.Tweet, error)
}

// TweetPoster posts a standalone tweet.
type TweetPoster interface {
	PostTweet(ctx context.Context, text string, opts *twitter.TweetOptions) (*twitter.Tweet, error)
}

// ThreadPoster posts one block of a thread, anchored to the conversation
// started by the thread's first tweet.
type ThreadPoster interface {
	PostReplyThread(ctx context.Context, params twitter.PostReplyThreadParams) (*twitter.Tweet, error)
	PostTweet(ctx context.Context, text string, opts *twitter.TweetOptions) (*twitter.Tweet, error)
}

// Deps bundles the collaborators every loop needs. Loops hold a Deps value
// plus whatever additional per-loop state (scheduler, archetype rotation,
// error tracker) they require.
type Deps struct {
	DB       *gorm.DB
	Gateway  *gateway.Gateway
	Queue    *postqueue.Queue
	Scoring  *scoring.Engine
	LLM      llm.LLM
	Logger   *logrus.Logger
	Business config.BusinessProfile
	Limits   config.LimitsConfig
}

func (d Deps) logger() *logrus.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.New()
}

// resolveUsername looks up the username for authorID in a TweetResponse's
// expanded users, falling back to the raw id if it isn't present.
func resolveUsername(resp *twitter.TweetResponse, authorID string) string {
	if resp == nil || resp.Includes == nil {
		return authorID
	}
	for _, u := range resp.Includes.Users {
		if u.ID == authorID {
			return u.Username
		}
	}
	return authorID
}

// archetypeRotor rotates through the configured archetypes, tracked per loop
// instance so successive generations vary in style.
type archetypeRotor struct {
	prev archetype.Name
}

func (r *archetypeRotor) next() archetype.Brief {
	r.prev = archetype.Rotate(r.prev)
	brief, _ := archetype.Get(r.prev)
	return brief
}

// waitResult blocks on an Outcome channel with a bound so a loop can never
// hang forever waiting on the posting queue.
func waitResult(ctx context.Context, result <-chan postqueue.Outcome, timeout time.Duration) postqueue.Outcome {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-result:
		return out
	case <-timer.C:
		return postqueue.Outcome{Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return postqueue.Outcome{Err: ctx.Err()}
	}
}

// toTweetData adapts a twitter.Tweet plus its resolved author follower count
// into the scoring engine's transport-agnostic input shape.
func toTweetData(tweet twitter.Tweet, username string, followers uint64) scoring.TweetData {
	return scoring.TweetData{
		Text:            tweet.Text,
		CreatedAt:       tweet.CreatedAt,
		Likes:           uint64(tweet.PublicMetrics.LikeCount),
		Retweets:        uint64(tweet.PublicMetrics.RetweetCount),
		Replies:         uint64(tweet.PublicMetrics.ReplyCount),
		AuthorUsername:  username,
		AuthorFollowers: followers,
	}
}

// resolveFollowerCount looks up the expanded author's follower count from a
// TweetResponse's includes, defaulting to 0 when not present.
func resolveFollowerCount(resp *twitter.TweetResponse, authorID string) uint64 {
	if resp == nil || resp.Includes == nil {
		return 0
	}
	for _, u := range resp.Includes.Users {
		if u.ID == authorID {
			return uint64(u.PublicMetrics.FollowersCount)
		}
	}
	return 0
}

func firstMatchedKeyword(text string, keywords []string) string {
	matched := scoring.FindMatchedKeywords(text, keywords)
	if len(matched) == 0 {
		return ""
	}
	return matched[0]
}

// draftAndQueueReply composes a reply with the given archetype, validates
// it, runs it through the gateway, and dispatches it via the posting queue.
// Shared by the mentions and discovery loops, which differ only in where
// the candidate tweet came from.
func draftAndQueueReply(ctx context.Context, d Deps, poster ReplyPoster, brief archetype.Brief, loopName string, tweet twitter.Tweet, username string) error {
	log := d.logger().WithField("loop", loopName)

	prompt, err := prompts.ComposeReply(prompts.ReplyParams{
		Archetype:       brief,
		AuthorUsername:  username,
		TweetText:       tweet.Text,
		IndustryTopics:  d.Business.EffectiveIndustryTopics(),
		ProductKeywords: d.Business.ProductKeywords,
	})
	if err != nil {
		return fmt.Errorf("compose reply prompt: %w", err)
	}

	reply, err := d.LLM.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate reply: %w", err)
	}

	if err := contentvalidate.Validate(reply, d.Limits.BannedPhrases); err != nil {
		log.WithError(err).Debug("generated reply failed validation, skipping")
		return nil
	}

	paramsJSON, _ := json.Marshal(map[string]string{"text": reply, "reply_to_id": tweet.ID})
	decision, err := d.Gateway.Evaluate(ctx, "post_reply", string(paramsJSON), approval.EnqueueParams{
		ActionType:       "reply",
		TargetTweetID:    tweet.ID,
		TargetAuthor:     username,
		GeneratedContent: reply,
		Archetype:        string(brief.Name),
	}, nil)
	if err != nil {
		return fmt.Errorf("evaluate reply mutation: %w", err)
	}
	if decision.Kind != gateway.Proceed {
		log.WithField("decision", decision.Kind).Debug("reply not proceeding past gateway")
		return nil
	}

	started := time.Now()
	result := make(chan postqueue.Outcome, 1)
	action := postqueue.Action{
		Kind:    postqueue.KindReply,
		Content: reply,
		Target:  tweet.ID,
		Dispatch: func(ctx context.Context) (string, error) {
			ctx = twitter.WithCorrelationID(ctx, decision.Ticket.CorrelationID)
			posted, err := poster.PostReply(ctx, reply, tweet.ID)
			if err != nil {
				return "", err
			}
			return posted.ID, nil
		},
		Result: result,
	}
	if err := d.Queue.Enqueue(ctx, action); err != nil {
		_ = d.Gateway.CompleteFailure(ctx, decision.Ticket, err.Error(), time.Since(started).Milliseconds())
		recordActionLog(ctx, d, loopName, "reply", tweet.ID, "failed", err.Error())
		return fmt.Errorf("enqueue reply: %w", err)
	}

	outcome := waitResult(ctx, result, dispatchTimeout)
	elapsed := time.Since(started).Milliseconds()
	if outcome.Err != nil {
		_ = d.Gateway.CompleteFailure(ctx, decision.Ticket, outcome.Err.Error(), elapsed)
		recordActionLog(ctx, d, loopName, "reply", tweet.ID, "failed", outcome.Err.Error())
		return fmt.Errorf("post reply: %w", outcome.Err)
	}

	resultJSON, _ := json.Marshal(map[string]string{"tweet_id": outcome.TweetID})
	if err := d.Gateway.CompleteSuccess(ctx, decision.Ticket, string(resultJSON), "", elapsed, nil); err != nil {
		log.WithError(err).Warn("failed to record mutation success")
	}

	sent := models.ReplySent{
		PostedTweetID:    outcome.TweetID,
		InReplyToTweetID: tweet.ID,
		Content:          reply,
		Archetype:        string(brief.Name),
		Status:           models.PostSent,
	}
	if err := d.DB.WithContext(ctx).Create(&sent).Error; err != nil {
		log.WithError(err).Warn("failed to record reply_sent row")
	}
	if err := d.DB.WithContext(ctx).Model(&models.DiscoveredTweet{}).
		Where("id = ?", tweet.ID).Update("replied_to", true).Error; err != nil {
		log.WithError(err).Warn("failed to mark discovered tweet replied_to")
	}
	recordActionLog(ctx, d, loopName, "reply", outcome.TweetID, "sent", "")

	return nil
}

// recordAndMaybeReply scores a newly-seen candidate tweet, persists the
// discovery row, and -- if the score clears the threshold and the
// engagement recommendation does not advise skipping -- drafts and
// dispatches a reply.
// Shared by the mentions and discovery loops' per-candidate processing.
func recordAndMaybeReply(ctx context.Context, d Deps, poster ReplyPoster, brief archetype.Brief, loopName string, resp *twitter.TweetResponse, tweet twitter.Tweet) error {
	var existing models.DiscoveredTweet
	err := d.DB.WithContext(ctx).Where("id = ?", tweet.ID).First(&existing).Error
	if err == nil {
		return nil // already seen
	}
	if !isRecordNotFound(err) {
		return fmt.Errorf("look up discovered tweet: %w", err)
	}

	username := resolveUsername(resp, tweet.AuthorID)
	followers := resolveFollowerCount(resp, tweet.AuthorID)

	score := d.Scoring.ScoreTweet(toTweetData(tweet, username, followers))
	matched := firstMatchedKeyword(tweet.Text, d.Scoring.Keywords())

	row := models.DiscoveredTweet{
		ID:             tweet.ID,
		AuthorID:       tweet.AuthorID,
		AuthorUsername: username,
		Content:        tweet.Text,
		Score:          score.Total,
		MatchedKeyword: matched,
	}
	if err := d.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record discovered tweet: %w", err)
	}

	if !score.MeetsThreshold {
		return nil
	}

	rec, err := engagementRecommend(ctx, d, username, tweet.Text)
	if err != nil {
		return fmt.Errorf("recommend engagement: %w", err)
	}
	if rec == "skip" {
		return nil
	}

	return draftAndQueueReply(ctx, d, poster, brief, loopName, tweet, username)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// errString returns err's message, or "" for a nil error.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// recordActionLog appends one human-readable activity row per completed
// loop action. Independent of the gateway's mutation_audit trail and never
// read back by it -- purely a history log, so a write failure is only
// logged, never propagated.
func recordActionLog(ctx context.Context, d Deps, loopName, actionKind, targetID, outcome, detail string) {
	row := models.ActionLog{
		LoopName: loopName,
		Action:   actionKind,
		TargetID: targetID,
		Outcome:  outcome,
		Detail:   detail,
	}
	if err := d.DB.WithContext(ctx).Create(&row).Error; err != nil {
		d.logger().WithField("loop", loopName).WithError(err).Warn("failed to record action log")
	}
}

// engagementRecommend wraps engagement.RecommendEngagement with the Deps
// bundle's limits, returning just the recommended action.
func engagementRecommend(ctx context.Context, d Deps, username, tweetText string) (string, error) {
	rec, err := engagement.RecommendEngagement(ctx, d.DB, username, tweetText, engagement.Params{
		Keywords:                  d.Scoring.Keywords(),
		MaxRepliesPerDay:          int(d.Limits.MaxRepliesPerDay),
		MaxRepliesPerAuthorPerDay: int(d.Limits.MaxRepliesPerAuthorPerDay),
	})
	if err != nil {
		return "", err
	}
	return rec.RecommendedAction, nil
}
