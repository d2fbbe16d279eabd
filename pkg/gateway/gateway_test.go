package gateway

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/approval"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/policy"
	"github.com/aramirez087/tuitbot/pkg/ratelimit"
)

func newTestGateway(t *testing.T, policyConfig policy.Config) (*Gateway, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.MutationAudit{}, &models.RateLimit{}, &models.ApprovalQueue{}, &models.McpTelemetry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	rl := ratelimit.New(db)
	if err := rl.InitBuiltins(context.Background(), ratelimit.Limits{
		MaxRepliesPerDay: 100, MaxTweetsPerDay: 100, MaxThreadsPerWeek: 100, MaxMutationsPerHr: 1000,
	}); err != nil {
		t.Fatalf("init rate limits: %v", err)
	}

	evaluator := policy.New(policyConfig)
	approvals := approval.New(db)
	gw := New(db, evaluator, rl, approvals, "live")
	return gw, db
}

func defaultPolicy() policy.Config {
	return policy.Config{EnforceForMutations: true}
}

// Boundary scenario 3: duplicate detection within the window.
func TestEvaluate_DuplicateDetection(t *testing.T) {
	gw, _ := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	first, err := gw.Evaluate(ctx, "post_tweet", `{"text":"hi"}`, approval.EnqueueParams{}, nil)
	if err != nil || first.Kind != Proceed {
		t.Fatalf("expected proceed, got %+v err %v", first, err)
	}
	if err := gw.CompleteSuccess(ctx, first.Ticket, `{"tweet_id":"1"}`, "", 10, nil); err != nil {
		t.Fatalf("complete success: %v", err)
	}

	second, err := gw.Evaluate(ctx, "post_tweet", `{"text":"hi"}`, approval.EnqueueParams{}, nil)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if second.Kind != Duplicate {
		t.Fatalf("expected duplicate, got %+v", second)
	}
	if second.OriginalCorrelationID != first.Ticket.CorrelationID {
		t.Fatalf("expected original correlation id %s, got %s", first.Ticket.CorrelationID, second.OriginalCorrelationID)
	}
}

// Boundary scenario 4: retry after failure is NOT a duplicate.
func TestEvaluate_RetryAfterFailureProceeds(t *testing.T) {
	gw, _ := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	first, err := gw.Evaluate(ctx, "like_tweet", `{"tweet_id":"1"}`, approval.EnqueueParams{}, nil)
	if err != nil || first.Kind != Proceed {
		t.Fatalf("expected proceed, got %+v err %v", first, err)
	}
	if err := gw.CompleteFailure(ctx, first.Ticket, "boom", 5); err != nil {
		t.Fatalf("complete failure: %v", err)
	}

	second, err := gw.Evaluate(ctx, "like_tweet", `{"tweet_id":"1"}`, approval.EnqueueParams{}, nil)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if second.Kind != Proceed {
		t.Fatalf("expected proceed after failure, got %+v", second)
	}
}

// Telemetry is purely observational, recorded for the completed attempt,
// and never consulted by the policy/rate-limit checks
// above -- it must not change outcomes, only record them.
func TestEvaluate_RecordsTelemetryForEachAttempt(t *testing.T) {
	gw, db := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	first, err := gw.Evaluate(ctx, "like_tweet", `{"tweet_id":"2"}`, approval.EnqueueParams{}, nil)
	if err != nil || first.Kind != Proceed {
		t.Fatalf("expected proceed, got %+v err %v", first, err)
	}
	if err := gw.CompleteSuccess(ctx, first.Ticket, `{"ok":true}`, "", 12, nil); err != nil {
		t.Fatalf("complete success: %v", err)
	}

	var rows []models.McpTelemetry
	if err := db.Where("tool_name = ?", "like_tweet").Find(&rows).Error; err != nil {
		t.Fatalf("query telemetry: %v", err)
	}
	if len(rows) != 1 || !rows[0].Success || rows[0].OperationKind != "mutation" {
		t.Fatalf("expected one successful mutation telemetry row, got %+v", rows)
	}
}

// Boundary scenario 5: delete_tweet always routes to approval via the
// built-in hard rule, regardless of other policy configuration.
func TestEvaluate_DeleteRequiresApproval(t *testing.T) {
	gw, _ := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	decision, err := gw.Evaluate(ctx, "delete_tweet", `{"tweet_id":"X"}`, approval.EnqueueParams{ActionType: "delete_tweet"}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Kind != RoutedToApproval {
		t.Fatalf("expected routed to approval, got %+v", decision)
	}
	if decision.RuleID != policy.HardDeleteApprovalRuleID {
		t.Fatalf("expected hard rule id, got %q", decision.RuleID)
	}
}

// Invariant 2: every Proceed ticket reaches a terminal state; abandoned
// pending rows are recovered at startup.
func TestRecoverAbandoned_MarksPendingAsFailed(t *testing.T) {
	gw, db := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	decision, err := gw.Evaluate(ctx, "post_tweet", `{"text":"abandoned"}`, approval.EnqueueParams{}, nil)
	if err != nil || decision.Kind != Proceed {
		t.Fatalf("expected proceed, got %+v err %v", decision, err)
	}
	// Simulate process death: never call complete_success/failure.

	count, err := gw.RecoverAbandoned(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recovered row, got %d", count)
	}

	var row models.MutationAudit
	if err := db.Where("correlation_id = ?", decision.Ticket.CorrelationID).Take(&row).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.Status != models.AuditFailure || row.ErrorMessage != "abandoned at startup" {
		t.Fatalf("expected abandoned failure, got %+v", row)
	}
}

func TestEvaluate_ToolBlockedDenies(t *testing.T) {
	cfg := defaultPolicy()
	cfg.BlockedTools = []string{"post_tweet"}
	gw, _ := newTestGateway(t, cfg)

	decision, err := gw.Evaluate(context.Background(), "post_tweet", `{"text":"x"}`, approval.EnqueueParams{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Kind != Denied || decision.DenialReason != policy.ReasonToolBlocked {
		t.Fatalf("expected tool-blocked denial, got %+v", decision)
	}
}

func TestEvaluate_RateLimitDenies(t *testing.T) {
	gw, db := newTestGateway(t, defaultPolicy())
	if err := db.Model(&models.RateLimit{}).
		Where("action_type = ?", models.ActionMcpMutation).
		Update("max_requests", 0).Error; err != nil {
		t.Fatalf("set max 0: %v", err)
	}

	decision, err := gw.Evaluate(context.Background(), "post_tweet", `{"text":"x"}`, approval.EnqueueParams{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Kind != Denied || decision.DenialReason != policy.ReasonRateLimited {
		t.Fatalf("expected rate-limited denial, got %+v", decision)
	}
}

func TestEvaluate_InMemoryFastDedupeWithinWindow(t *testing.T) {
	gw, _ := newTestGateway(t, defaultPolicy())
	ctx := context.Background()

	first, err := gw.Evaluate(ctx, "tweet_needing_no_completion", `{"a":1}`, approval.EnqueueParams{}, nil)
	if err != nil || first.Kind != Proceed {
		t.Fatalf("expected proceed, got %+v err %v", first, err)
	}

	second, err := gw.Evaluate(ctx, "tweet_needing_no_completion", `{"a":1}`, approval.EnqueueParams{}, nil)
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if second.Kind != Duplicate {
		t.Fatalf("expected fast in-memory dedupe to short-circuit, got %+v", second)
	}
}
