package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/scoring"
)

// ContributingFactor is one weighted input to a recommendation.
type ContributingFactor struct {
	Factor string
	Signal string // "positive", "neutral", or "negative"
	Weight float64
	Detail string
}

// PolicyConsideration flags a rate-limit or mode constraint relevant to the
// recommendation, surfaced for operator visibility.
type PolicyConsideration struct {
	Policy string
	Status string // "warning" or "blocked"
	Detail string
}

// Recommendation is the full output of RecommendEngagement.
type Recommendation struct {
	RecommendedAction   string // "reply", "observe", or "skip"
	Confidence          float64
	ContributingFactors []ContributingFactor
	PolicyConsiderations []PolicyConsideration
}

// Params bundles the configuration RecommendEngagement needs beyond the
// database and the tweet under evaluation.
type Params struct {
	Keywords                  []string // product + competitor + industry keywords combined
	CampaignObjective         string
	ApprovalModeActive        bool
	MaxRepliesPerDay          int
	MaxRepliesPerAuthorPerDay int
}

// RecommendEngagement combines author context, keyword relevance, and
// campaign-objective overlap into a weighted recommendation. It is an
// additional gate consulted by the mentions/discovery loops -- it never
// bypasses the gateway or rate limiter, it only informs whether a loop
// proceeds to generate content at all.
func RecommendEngagement(ctx context.Context, db *gorm.DB, authorUsername, tweetText string, p Params) (Recommendation, error) {
	authorCtx, err := GetAuthorContext(ctx, db, authorUsername, p.MaxRepliesPerAuthorPerDay)
	if err != nil {
		return Recommendation{}, err
	}

	repliesToday, err := countRepliesToday(ctx, db)
	if err != nil {
		return Recommendation{}, err
	}

	var factors []ContributingFactor
	blocked := false

	relevanceScore := evaluateKeywordRelevance(tweetText, p.Keywords, &factors)
	relationshipScore := evaluateRelationship(authorCtx, &factors)
	frequencyScore := evaluateAuthorFrequency(authorCtx.InteractionSummary.RepliesToday, int64(p.MaxRepliesPerAuthorPerDay), &factors, &blocked)
	capacityScore := evaluateCapacity(repliesToday, int64(p.MaxRepliesPerDay), &factors, &blocked)
	alignmentScore := evaluateCampaign(tweetText, p.CampaignObjective, &factors)

	weightedTotal := (relevanceScore*30.0 + relationshipScore*20.0 + frequencyScore*15.0 + capacityScore*15.0 + alignmentScore*20.0) / 100.0

	action, confidence := decideAction(weightedTotal, blocked)

	policies := buildPolicyConsiderations(p, repliesToday, authorCtx.InteractionSummary.RepliesToday)

	return Recommendation{
		RecommendedAction:     action,
		Confidence:            confidence,
		ContributingFactors:   factors,
		PolicyConsiderations:  policies,
	}, nil
}

func countRepliesToday(ctx context.Context, db *gorm.DB) (int64, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	var count int64
	err := db.WithContext(ctx).Model(&models.ReplySent{}).Where("created_at >= ?", startOfDay).Count(&count).Error
	return count, err
}

func evaluateKeywordRelevance(tweetText string, keywords []string, factors *[]ContributingFactor) float64 {
	matched := scoring.FindMatchedKeywords(tweetText, keywords)
	if len(matched) == 0 {
		*factors = append(*factors, ContributingFactor{
			Factor: "keyword_relevance", Signal: "negative", Weight: 30.0,
			Detail: "no configured keyword matches in tweet text",
		})
		return 10.0
	}
	score := minFloat(float64(len(matched))*30.0, 100.0)
	*factors = append(*factors, ContributingFactor{
		Factor: "keyword_relevance", Signal: "positive", Weight: 30.0,
		Detail: fmt.Sprintf("matched %d keywords: %s", len(matched), strings.Join(matched, ", ")),
	})
	return score
}

func evaluateRelationship(ctx AuthorContext, factors *[]ContributingFactor) float64 {
	if ctx.InteractionSummary.TotalRepliesSent == 0 {
		*factors = append(*factors, ContributingFactor{
			Factor: "author_relationship", Signal: "neutral", Weight: 20.0,
			Detail: "no prior interaction -- fresh engagement opportunity",
		})
		return 50.0
	}
	switch {
	case ctx.ResponseMetrics.ResponseRate > 0.2:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_relationship", Signal: "positive", Weight: 20.0,
			Detail: fmt.Sprintf("good engagement history (%.0f%% response rate over %d interactions)", ctx.ResponseMetrics.ResponseRate*100, ctx.ResponseMetrics.RepliesMeasured),
		})
		return 90.0
	case ctx.ResponseMetrics.ResponseRate > 0.0:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_relationship", Signal: "neutral", Weight: 20.0,
			Detail: fmt.Sprintf("some engagement history (%.0f%% response rate)", ctx.ResponseMetrics.ResponseRate*100),
		})
		return 60.0
	case ctx.ResponseMetrics.RepliesMeasured > 0:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_relationship", Signal: "negative", Weight: 20.0,
			Detail: "previous interactions received no engagement",
		})
		return 30.0
	default:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_relationship", Signal: "neutral", Weight: 20.0,
			Detail: "replied before, but no performance data collected yet",
		})
		return 50.0
	}
}

func evaluateAuthorFrequency(repliesToday, maxPerAuthor int64, factors *[]ContributingFactor, blocked *bool) float64 {
	switch {
	case repliesToday >= maxPerAuthor:
		*blocked = true
		*factors = append(*factors, ContributingFactor{
			Factor: "author_frequency", Signal: "negative", Weight: 15.0,
			Detail: fmt.Sprintf("at per-author daily limit (%d/%d)", repliesToday, maxPerAuthor),
		})
		return 0.0
	case repliesToday > 0:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_frequency", Signal: "neutral", Weight: 15.0,
			Detail: fmt.Sprintf("replied %d time(s) today (limit: %d)", repliesToday, maxPerAuthor),
		})
		return 40.0
	default:
		*factors = append(*factors, ContributingFactor{
			Factor: "author_frequency", Signal: "positive", Weight: 15.0,
			Detail: "no replies to this author today",
		})
		return 100.0
	}
}

func evaluateCapacity(repliesToday, maxPerDay int64, factors *[]ContributingFactor, blocked *bool) float64 {
	if repliesToday >= maxPerDay {
		*blocked = true
		*factors = append(*factors, ContributingFactor{
			Factor: "daily_capacity", Signal: "negative", Weight: 15.0,
			Detail: fmt.Sprintf("daily limit reached (%d/%d)", repliesToday, maxPerDay),
		})
		return 0.0
	}
	denom := maxPerDay
	if denom < 1 {
		denom = 1
	}
	utilization := float64(repliesToday) / float64(denom)
	if utilization > 0.8 {
		*factors = append(*factors, ContributingFactor{
			Factor: "daily_capacity", Signal: "negative", Weight: 15.0,
			Detail: fmt.Sprintf("nearing daily limit (%d/%d, %.0f%% used)", repliesToday, maxPerDay, utilization*100),
		})
		return 30.0
	}
	*factors = append(*factors, ContributingFactor{
		Factor: "daily_capacity", Signal: "positive", Weight: 15.0,
		Detail: fmt.Sprintf("capacity available (%d/%d, %.0f%% used)", repliesToday, maxPerDay, utilization*100),
	})
	return 100.0
}

func evaluateCampaign(tweetText, objective string, factors *[]ContributingFactor) float64 {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		*factors = append(*factors, ContributingFactor{
			Factor: "campaign_alignment", Signal: "neutral", Weight: 20.0,
			Detail: "no campaign objective specified",
		})
		return 50.0
	}

	tweetLower := strings.ToLower(tweetText)
	var matching int
	for _, word := range strings.Fields(objective) {
		if len(word) <= 3 {
			continue
		}
		if strings.Contains(tweetLower, strings.ToLower(word)) {
			matching++
		}
	}

	switch {
	case matching >= 3:
		*factors = append(*factors, ContributingFactor{
			Factor: "campaign_alignment", Signal: "positive", Weight: 20.0,
			Detail: fmt.Sprintf("strong alignment -- %d objective terms found in tweet", matching),
		})
		return 90.0
	case matching > 0:
		*factors = append(*factors, ContributingFactor{
			Factor: "campaign_alignment", Signal: "neutral", Weight: 20.0,
			Detail: fmt.Sprintf("partial alignment -- %d objective term(s) found in tweet", matching),
		})
		return 60.0
	default:
		*factors = append(*factors, ContributingFactor{
			Factor: "campaign_alignment", Signal: "negative", Weight: 20.0,
			Detail: "no objective terms found in tweet text",
		})
		return 20.0
	}
}

func decideAction(weightedTotal float64, blocked bool) (string, float64) {
	if blocked {
		return "skip", 0.95
	}
	switch {
	case weightedTotal >= 65.0:
		return "reply", clampFloat(0.5+(weightedTotal-65.0)/70.0, 0.6, 0.95)
	case weightedTotal >= 40.0:
		return "observe", clampFloat(0.4+(weightedTotal-40.0)/62.5, 0.4, 0.8)
	default:
		return "skip", clampFloat(0.5+(40.0-weightedTotal)/80.0, 0.5, 0.95)
	}
}

func buildPolicyConsiderations(p Params, repliesToday, repliesToAuthor int64) []PolicyConsideration {
	var policies []PolicyConsideration

	if p.ApprovalModeActive {
		policies = append(policies, PolicyConsideration{
			Policy: "approval_mode", Status: "warning",
			Detail: "approval mode active -- replies require manual review",
		})
	}

	maxPerDay := int64(p.MaxRepliesPerDay)
	switch {
	case repliesToday >= maxPerDay:
		policies = append(policies, PolicyConsideration{
			Policy: "daily_rate_limit", Status: "blocked",
			Detail: fmt.Sprintf("daily limit reached (%d/%d)", repliesToday, maxPerDay),
		})
	case float64(repliesToday) > float64(maxPerDay)*0.8:
		policies = append(policies, PolicyConsideration{
			Policy: "daily_rate_limit", Status: "warning",
			Detail: fmt.Sprintf("approaching daily limit (%d/%d)", repliesToday, maxPerDay),
		})
	}

	maxPerAuthor := int64(p.MaxRepliesPerAuthorPerDay)
	if repliesToAuthor >= maxPerAuthor {
		policies = append(policies, PolicyConsideration{
			Policy: "per_author_limit", Status: "blocked",
			Detail: fmt.Sprintf("per-author limit reached (%d/%d)", repliesToAuthor, maxPerAuthor),
		})
	}

	return policies
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
