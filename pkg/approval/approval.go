// Package approval implements the durable FIFO queue for mutations deferred
// to human review.
package approval

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
)

var ErrNotPending = errors.New("approval: item is not pending")

type Queue struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// EnqueueParams bundles the fields needed to create a new pending item.
type EnqueueParams struct {
	ActionType       string
	TargetTweetID    string
	TargetAuthor     string
	GeneratedContent string
	Topic            string
	Archetype        string
	Score            float64
	MediaURLs        []string
}

// Enqueue creates a new pending approval item and returns its id.
func (q *Queue) Enqueue(ctx context.Context, p EnqueueParams) (uint, error) {
	row := models.ApprovalQueue{
		ActionType:       p.ActionType,
		TargetTweetID:    p.TargetTweetID,
		TargetAuthor:     p.TargetAuthor,
		GeneratedContent: p.GeneratedContent,
		Topic:            p.Topic,
		Archetype:        p.Archetype,
		Score:            p.Score,
		Status:           models.ApprovalPending,
		MediaURLs:        p.MediaURLs,
	}
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// GetPending returns pending items ordered by created_at ascending (FIFO).
func (q *Queue) GetPending(ctx context.Context) ([]models.ApprovalQueue, error) {
	var rows []models.ApprovalQueue
	err := q.db.WithContext(ctx).
		Where("status = ?", models.ApprovalPending).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Review is the reviewer-supplied metadata attached to an approve/reject.
type Review struct {
	ReviewedBy string
	Notes      string
}

// Approve transitions a pending item to approved.
func (q *Queue) Approve(ctx context.Context, id uint, review Review) error {
	return q.transitionFromPending(ctx, id, models.ApprovalApproved, review)
}

// Reject transitions a pending item to rejected.
func (q *Queue) Reject(ctx context.Context, id uint, review Review) error {
	return q.transitionFromPending(ctx, id, models.ApprovalRejected, review)
}

func (q *Queue) transitionFromPending(ctx context.Context, id uint, to models.ApprovalStatus, review Review) error {
	now := time.Now().UTC()
	res := q.db.WithContext(ctx).Model(&models.ApprovalQueue{}).
		Where("id = ? AND status = ?", id, models.ApprovalPending).
		Updates(map[string]interface{}{
			"status":      to,
			"reviewed_at": now,
			"reviewed_by": review.ReviewedBy,
			"review_notes": review.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// UpdateContent replaces the generated content of a pending item.
func (q *Queue) UpdateContent(ctx context.Context, id uint, newContent string) error {
	res := q.db.WithContext(ctx).Model(&models.ApprovalQueue{}).
		Where("id = ? AND status = ?", id, models.ApprovalPending).
		Update("generated_content", newContent)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// UpdateContentAndApprove edits content and moves the row to approved in one
// atomic update.
func (q *Queue) UpdateContentAndApprove(ctx context.Context, id uint, newContent string, review Review) error {
	now := time.Now().UTC()
	res := q.db.WithContext(ctx).Model(&models.ApprovalQueue{}).
		Where("id = ? AND status = ?", id, models.ApprovalPending).
		Updates(map[string]interface{}{
			"generated_content": newContent,
			"status":            models.ApprovalApproved,
			"reviewed_at":       now,
			"reviewed_by":       review.ReviewedBy,
			"review_notes":      review.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// BatchApprove approves up to n oldest pending items and returns their ids.
func (q *Queue) BatchApprove(ctx context.Context, n int, review Review) ([]uint, error) {
	var pending []models.ApprovalQueue
	if err := q.db.WithContext(ctx).
		Where("status = ?", models.ApprovalPending).
		Order("created_at ASC").
		Limit(n).
		Find(&pending).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(pending))
	for _, row := range pending {
		if err := q.Approve(ctx, row.ID, review); err != nil {
			return ids, err
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// GetNextApproved returns the oldest approved-but-not-yet-posted item, if
// any, ordered by reviewed_at ascending.
func (q *Queue) GetNextApproved(ctx context.Context) (*models.ApprovalQueue, error) {
	var row models.ApprovalQueue
	err := q.db.WithContext(ctx).
		Where("status = ?", models.ApprovalApproved).
		Order("reviewed_at ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkPosted transitions an approved item to posted, recording the tweet id
// the posting queue obtained.
func (q *Queue) MarkPosted(ctx context.Context, id uint, tweetID string) error {
	res := q.db.WithContext(ctx).Model(&models.ApprovalQueue{}).
		Where("id = ? AND status = ?", id, models.ApprovalApproved).
		Updates(map[string]interface{}{
			"status":          models.ApprovalPosted,
			"posted_tweet_id": tweetID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// ExpireOldItems marks pending items older than maxAge as expired and
// returns the count affected. Idempotent: already-terminal rows are never
// touched.
func (q *Queue) ExpireOldItems(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res := q.db.WithContext(ctx).Model(&models.ApprovalQueue{}).
		Where("status = ? AND created_at < ?", models.ApprovalPending, cutoff).
		Update("status", models.ApprovalExpired)
	return res.RowsAffected, res.Error
}
