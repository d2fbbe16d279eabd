// Package gateway is the spine of every mutation: it evaluates policy,
// enforces idempotency and rate limits, and keeps an append-only audit
// trail so every attempt is traceable by correlation id.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aramirez087/tuitbot/pkg/approval"
	"github.com/aramirez087/tuitbot/pkg/db/models"
	"github.com/aramirez087/tuitbot/pkg/policy"
	"github.com/aramirez087/tuitbot/pkg/ratelimit"
)

// DuplicateWindow is the default window within which an identical
// successful mutation is treated as a duplicate.
const DuplicateWindow = 300 * time.Second

// fastDedupeWindow is the in-memory transport-level dedupe window.
const fastDedupeWindow = 30 * time.Second

// Kind enumerates the possible gateway outcomes.
type Kind int

const (
	Proceed Kind = iota
	Denied
	RoutedToApproval
	DryRun
	Duplicate
)

// Ticket must be passed back into CompleteSuccess/CompleteFailure.
type Ticket struct {
	CorrelationID string
	AuditID       uint
	ToolName      string
	startedAt     time.Time
	dedupeKey     string
}

// Decision is the result of Evaluate.
type Decision struct {
	Kind Kind

	Ticket *Ticket // set when Kind == Proceed

	DenialReason policy.DenialReason // set when Kind == Denied
	RateLimitKey string              // set when Denied with ReasonRateLimited

	ApprovalQueueID uint   // set when Kind == RoutedToApproval
	RuleID          string // set when RoutedToApproval or DryRun

	OriginalCorrelationID string // set when Kind == Duplicate
	CachedResult          string // set when Kind == Duplicate
}

// ApprovalEnqueuer is the narrow slice of pkg/approval's Queue the gateway
// needs, kept as an interface to avoid a hard dependency on its full API.
type ApprovalEnqueuer interface {
	Enqueue(ctx context.Context, p approval.EnqueueParams) (uint, error)
}

// Gateway is the mutation gateway.
type Gateway struct {
	db         *gorm.DB
	policy     *policy.Evaluator
	rateLimits *ratelimit.Engine
	approvals  ApprovalEnqueuer
	dedupe     *idempotencyStore
	mode       string
}

// recordTelemetry appends one mcp_telemetry row. Purely observational: a
// write failure is logged nowhere and never surfaced, since telemetry must
// never perturb the decision it's describing.
func (g *Gateway) recordTelemetry(ctx context.Context, toolName, operationKind string, elapsedMs int64, success bool, errorCode, outcomeTag string) {
	_ = g.db.WithContext(ctx).Create(&models.McpTelemetry{
		ToolName:      toolName,
		OperationKind: operationKind,
		ElapsedMs:     elapsedMs,
		Success:       success,
		ErrorCode:     errorCode,
		OutcomeTag:    outcomeTag,
	}).Error
}

func New(db *gorm.DB, evaluator *policy.Evaluator, rateLimits *ratelimit.Engine, approvals ApprovalEnqueuer, mode string) *Gateway {
	return &Gateway{
		db:         db,
		policy:     evaluator,
		rateLimits: rateLimits,
		approvals:  approvals,
		dedupe:     newIdempotencyStore(fastDedupeWindow),
		mode:       mode,
	}
}

// Evaluate runs the full gateway algorithm for a mutation request.
// dimensionKeys are the extra per-dimension rate-limit keys this tool
// participates in (bumped at success-time only via Increment).
func (g *Gateway) Evaluate(ctx context.Context, toolName, paramsJSON string, enqueue approval.EnqueueParams, dimensionKeys []string) (Decision, error) {
	key := dedupeKey(toolName, paramsJSON)
	if g.dedupe.checkAndRecord(key) {
		return Decision{Kind: Duplicate, OriginalCorrelationID: "in-flight", CachedResult: "{}"}, nil
	}

	paramsHash := computeParamsHash(toolName, paramsJSON)
	paramsSummary := truncateSummary(paramsJSON, 500)

	var decision Decision
	var terminal bool
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.MutationAudit
		err := tx.Where(
			"tool_name = ? AND params_hash = ? AND status = ? AND created_at >= ?",
			toolName, paramsHash, models.AuditSuccess, time.Now().UTC().Add(-DuplicateWindow),
		).Order("created_at DESC").Take(&original).Error

		switch {
		case err == nil:
			dupRow := models.MutationAudit{
				CorrelationID: uuid.NewString(),
				ToolName:      toolName,
				ParamsHash:    paramsHash,
				ParamsSummary: paramsSummary,
				Status:        models.AuditDuplicate,
				ResultSummary: fmt.Sprintf(`{"duplicate_of":%q}`, original.CorrelationID),
				DuplicateOfID: &original.ID,
			}
			now := time.Now().UTC()
			dupRow.CompletedAt = &now
			if err := tx.Create(&dupRow).Error; err != nil {
				return err
			}
			decision = Decision{
				Kind:                  Duplicate,
				OriginalCorrelationID: original.CorrelationID,
				CachedResult:          original.ResultSummary,
			}
			terminal = true
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fall through to policy evaluation
		default:
			return err
		}

		policyDecision := g.policy.Evaluate(toolName, g.mode)
		switch policyDecision.Kind {
		case policy.Deny:
			decision = Decision{Kind: Denied, DenialReason: policyDecision.Reason}
			terminal = true
			return nil
		case policy.RouteToApproval:
			queueID, err := g.approvals.Enqueue(ctx, enqueue)
			if err != nil {
				return err
			}
			decision = Decision{Kind: RoutedToApproval, ApprovalQueueID: queueID, RuleID: policyDecision.RuleID}
			terminal = true
			return nil
		case policy.DryRun:
			decision = Decision{Kind: DryRun, RuleID: policyDecision.RuleID}
			terminal = true
			return nil
		}

		return nil
	})
	if err != nil {
		g.dedupe.release(key)
		return Decision{}, err
	}
	if terminal {
		g.dedupe.release(key)
		switch decision.Kind {
		case Duplicate:
			g.recordTelemetry(ctx, toolName, "duplicate", 0, true, "", "duplicate")
		case Denied:
			g.recordTelemetry(ctx, toolName, "denied", 0, false, string(decision.DenialReason), "denied")
		case RoutedToApproval:
			g.recordTelemetry(ctx, toolName, "approval_queued", 0, true, "", "routed_to_approval")
		case DryRun:
			g.recordTelemetry(ctx, toolName, "dry_run", 0, true, "", "dry_run")
		}
		return decision, nil
	}

	allowed, err := g.rateLimits.CheckAndIncrement(ctx, models.ActionMcpMutation)
	if err != nil {
		g.dedupe.release(key)
		return Decision{}, err
	}
	if !allowed {
		g.dedupe.release(key)
		g.recordTelemetry(ctx, toolName, "rate_limited", 0, false, models.ActionMcpMutation, "denied")
		return Decision{Kind: Denied, DenialReason: policy.ReasonRateLimited, RateLimitKey: models.ActionMcpMutation}, nil
	}
	for _, dimKey := range dimensionKeys {
		ok, err := g.rateLimits.Check(ctx, dimKey)
		if err != nil {
			g.dedupe.release(key)
			return Decision{}, err
		}
		if !ok {
			g.dedupe.release(key)
			g.recordTelemetry(ctx, toolName, "rate_limited", 0, false, dimKey, "denied")
			return Decision{Kind: Denied, DenialReason: policy.ReasonRateLimited, RateLimitKey: dimKey}, nil
		}
	}

	correlationID := uuid.NewString()
	row := models.MutationAudit{
		CorrelationID: correlationID,
		ToolName:      toolName,
		ParamsHash:    paramsHash,
		ParamsSummary: paramsSummary,
		Status:        models.AuditPending,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		g.dedupe.release(key)
		return Decision{}, err
	}

	return Decision{Kind: Proceed, Ticket: &Ticket{
		CorrelationID: correlationID,
		AuditID:       row.ID,
		ToolName:      toolName,
		startedAt:     time.Now(),
		dedupeKey:     key,
	}}, nil
}

// CompleteSuccess transitions the audit row to success and bumps every
// per-dimension rate-limit key for work that actually landed.
func (g *Gateway) CompleteSuccess(ctx context.Context, ticket *Ticket, resultJSON, rollbackJSON string, elapsedMs int64, dimensionKeys []string) error {
	now := time.Now().UTC()
	err := g.db.WithContext(ctx).Model(&models.MutationAudit{}).
		Where("id = ?", ticket.AuditID).
		Updates(map[string]interface{}{
			"status":          models.AuditSuccess,
			"result_summary":  truncateSummary(resultJSON, 500),
			"rollback_action": rollbackJSON,
			"elapsed_ms":      elapsedMs,
			"completed_at":    now,
		}).Error
	if err != nil {
		return err
	}
	for _, dimKey := range dimensionKeys {
		if err := g.rateLimits.Increment(ctx, dimKey); err != nil {
			return err
		}
	}
	g.dedupe.release(ticket.dedupeKey)
	g.recordTelemetry(ctx, ticket.ToolName, "mutation", elapsedMs, true, "", "success")
	return nil
}

// CompleteFailure transitions the audit row to failure. It does not roll
// back the mcp_mutation counter bumped during Evaluate -- a flood of
// failed attempts still consumes budget, a deliberate over-counting bias
// (see design notes).
func (g *Gateway) CompleteFailure(ctx context.Context, ticket *Ticket, errorMsg string, elapsedMs int64) error {
	now := time.Now().UTC()
	err := g.db.WithContext(ctx).Model(&models.MutationAudit{}).
		Where("id = ?", ticket.AuditID).
		Updates(map[string]interface{}{
			"status":        models.AuditFailure,
			"error_message": errorMsg,
			"elapsed_ms":    elapsedMs,
			"completed_at":  now,
		}).Error
	if err != nil {
		return err
	}
	g.dedupe.release(ticket.dedupeKey)
	g.recordTelemetry(ctx, ticket.ToolName, "mutation", elapsedMs, false, "", "failure")
	return nil
}

// RecoverAbandoned scans for audit rows still pending (meaning the previous
// process died mid-mutation) and marks them failed. Call once at startup,
// before any loop begins issuing mutations.
func (g *Gateway) RecoverAbandoned(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res := g.db.WithContext(ctx).Model(&models.MutationAudit{}).
		Where("status = ?", models.AuditPending).
		Updates(map[string]interface{}{
			"status":        models.AuditFailure,
			"error_message": "abandoned at startup",
			"completed_at":  now,
		})
	return res.RowsAffected, res.Error
}
