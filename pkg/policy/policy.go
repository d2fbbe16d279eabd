// Package policy evaluates mutation requests against configured rules to
// decide whether they may proceed, must be denied, routed to human
// approval, or only dry-run logged.
package policy

import "sort"

// DenialReason classifies why a Deny decision was produced.
type DenialReason string

const (
	ReasonToolBlocked  DenialReason = "tool_blocked"
	ReasonRateLimited  DenialReason = "rate_limited"
	ReasonHardRule     DenialReason = "hard_rule"
	ReasonUserRule     DenialReason = "user_rule"
)

// Kind distinguishes the four possible evaluation outcomes.
type Kind int

const (
	Allow Kind = iota
	Deny
	RouteToApproval
	DryRun
)

// Decision is the result of evaluating a tool name against policy.
type Decision struct {
	Kind   Kind
	Reason DenialReason
	RuleID string
}

// Rule is a single policy rule. A rule matches when every configured
// condition (tool allowlist, operating-mode allowlist) matches; the first
// matching rule, walked in ascending Priority order, wins.
type Rule struct {
	ID              string
	Priority        int
	ToolAllowlist   []string // empty means "matches any tool"
	ModeAllowlist   []string // empty means "matches any mode"
	RouteToApproval bool
	DryRun          bool
	Reason          DenialReason
}

// HardDeleteApprovalRuleID is the built-in rule that always routes
// delete_tweet to approval, regardless of any other configuration.
const HardDeleteApprovalRuleID = "hard:delete_approval"

func builtinHardRules() []Rule {
	return []Rule{
		{
			ID:              HardDeleteApprovalRuleID,
			Priority:        -1,
			ToolAllowlist:   []string{"delete_tweet"},
			RouteToApproval: true,
		},
	}
}

// Config is the policy configuration surface.
type Config struct {
	EnforceForMutations bool
	BlockedTools        []string
	RequireApprovalFor  []string
	DryRunMutations     bool
	Rules               []Rule
	Template            string
}

// Evaluator evaluates tool names against a Config.
type Evaluator struct {
	config Config
}

func New(config Config) *Evaluator {
	return &Evaluator{config: config}
}

// Evaluate runs the evaluation order from the mutation gateway's policy
// contract: enforcement gate, blocked-tools gate, rule walk (hard rules
// first), dry-run fallback, require-approval fallback, default allow.
func (e *Evaluator) Evaluate(toolName, mode string) Decision {
	if !e.config.EnforceForMutations {
		return Decision{Kind: Allow}
	}

	for _, blocked := range e.config.BlockedTools {
		if blocked == toolName {
			return Decision{Kind: Deny, Reason: ReasonToolBlocked}
		}
	}

	rules := append(append([]Rule{}, builtinHardRules()...), e.config.Rules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	for _, rule := range rules {
		if !ruleMatches(rule, toolName, mode) {
			continue
		}
		switch {
		case rule.RouteToApproval:
			return Decision{Kind: RouteToApproval, RuleID: rule.ID, Reason: ReasonUserRule}
		case rule.DryRun:
			return Decision{Kind: DryRun, RuleID: rule.ID}
		default:
			reason := rule.Reason
			if reason == "" {
				reason = ReasonHardRule
				if !isHardRule(rule.ID) {
					reason = ReasonUserRule
				}
			}
			return Decision{Kind: Deny, Reason: reason, RuleID: rule.ID}
		}
	}

	if e.config.DryRunMutations {
		return Decision{Kind: DryRun}
	}

	for _, tool := range e.config.RequireApprovalFor {
		if tool == toolName {
			return Decision{Kind: RouteToApproval, Reason: ReasonUserRule}
		}
	}

	return Decision{Kind: Allow}
}

func ruleMatches(rule Rule, toolName, mode string) bool {
	if len(rule.ToolAllowlist) > 0 && !contains(rule.ToolAllowlist, toolName) {
		return false
	}
	if len(rule.ModeAllowlist) > 0 && !contains(rule.ModeAllowlist, mode) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func isHardRule(id string) bool {
	return len(id) >= 5 && id[:5] == "hard:"
}
