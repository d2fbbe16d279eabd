// Package config assembles the agent's typed Config from an optional .env
// file and TUITBOT_-prefixed environment variables, following the
// GROUP__OPTION double-underscore nesting convention.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// OperatingMode distinguishes fully autonomous posting from a
// composer-assist mode where every mutation is queued for approval.
type OperatingMode string

const (
	ModeAutopilot OperatingMode = "autopilot"
	ModeComposer  OperatingMode = "composer"
)

// XApiConfig holds OAuth client credentials and the transport backend.
type XApiConfig struct {
	ClientID              string
	ClientSecret          string
	ProviderBackend       string
	ScraperAllowMutations bool
}

// AuthConfig controls how the OAuth authorization flow is completed.
type AuthConfig struct {
	Mode         string
	CallbackHost string
	CallbackPort uint16
}

// BusinessProfile drives content targeting and keyword matching.
type BusinessProfile struct {
	ProductName         string
	ProductKeywords     []string
	ProductDescription  string
	ProductURL          string
	TargetAudience      string
	CompetitorKeywords  []string
	IndustryTopics      []string
	BrandVoice          string
	ReplyStyle          string
	ContentStyle        string
	PersonaOpinions     []string
	PersonaExperiences  []string
	ContentPillars      []string
}

// EffectiveIndustryTopics returns IndustryTopics, falling back to
// ProductKeywords when no topics were configured explicitly.
func (b BusinessProfile) EffectiveIndustryTopics() []string {
	if len(b.IndustryTopics) == 0 {
		return b.ProductKeywords
	}
	return b.IndustryTopics
}

// IsEnriched reports whether any voice/persona field has been set.
func (b BusinessProfile) IsEnriched() bool {
	return b.BrandVoice != "" || b.ReplyStyle != "" || b.ContentStyle != "" ||
		len(b.PersonaOpinions) > 0 || len(b.PersonaExperiences) > 0 || len(b.ContentPillars) > 0
}

// ScoringConfig holds the discovery scoring engine's weights and threshold.
type ScoringConfig struct {
	Threshold           uint32
	KeywordRelevanceMax float32
	FollowerCountMax    float32
	RecencyMax          float32
	EngagementRateMax   float32
	ReplyCountMax       float32
	ContentTypeMax      float32
}

// LimitsConfig caps the volume and character of automated actions.
type LimitsConfig struct {
	MaxRepliesPerDay          uint32
	MaxTweetsPerDay           uint32
	MaxThreadsPerWeek         uint32
	MinActionDelaySeconds     uint64
	MaxActionDelaySeconds     uint64
	MaxRepliesPerAuthorPerDay uint32
	BannedPhrases             []string
	ProductMentionRatio       float32
}

// IntervalsConfig sets the cadence of each automation loop.
type IntervalsConfig struct {
	MentionsCheckSeconds      uint64
	DiscoverySearchSeconds    uint64
	ContentPostWindowSeconds  uint64
	ThreadIntervalSeconds     uint64
}

// ScheduleConfig gates loop ticks to an active window.
type ScheduleConfig struct {
	Timezone            string
	ActiveHoursStart    uint8
	ActiveHoursEnd      uint8
	ActiveDays          []string
	PreferredTimes      []string
	ThreadPreferredDay  string
	ThreadPreferredTime string
}

// TargetsConfig names accounts the mentions loop pays extra attention to.
type TargetsConfig struct {
	Accounts                 []string
	MaxTargetRepliesPerDay   uint32
}

// LlmConfig selects and configures the generation provider.
type LlmConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// StorageConfig controls the SQLite/Postgres data store and retention.
type StorageConfig struct {
	DBPath        string
	RetentionDays uint32
}

// ServerConfig binds the local operator HTTP surface.
type ServerConfig struct {
	Host string
	Port uint16
}

// LoggingConfig controls periodic status summaries.
type LoggingConfig struct {
	StatusIntervalSeconds uint64
}

// McpPolicyConfig is the gateway's mutation policy surface.
type McpPolicyConfig struct {
	EnforceForMutations bool
	RequireApprovalFor  []string
	BlockedTools        []string
	DryRunMutations     bool
	MaxMutationsPerHour uint32
	Template            string
}

// Config is the agent's full, typed configuration. It is passed explicitly
// through constructors and function arguments -- there is no package-level
// global.
type Config struct {
	Mode         OperatingMode
	ApprovalMode bool

	XApi      XApiConfig
	Auth      AuthConfig
	Business  BusinessProfile
	Scoring   ScoringConfig
	Limits    LimitsConfig
	Intervals IntervalsConfig
	Schedule  ScheduleConfig
	Targets   TargetsConfig
	Llm       LlmConfig
	Storage   StorageConfig
	Server    ServerConfig
	Logging   LoggingConfig
	McpPolicy McpPolicyConfig
}

// Load reads an optional .env file (missing is fine), builds a Config from
// its compiled-in defaults, applies TUITBOT_ environment overrides, and
// validates the result. Validation failures are fatal -- callers should
// treat a non-nil error as a boot failure.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.validate(logger); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Mode: ModeAutopilot,
		Auth: AuthConfig{
			Mode:         "manual",
			CallbackHost: "127.0.0.1",
			CallbackPort: 8080,
		},
		Scoring: ScoringConfig{
			Threshold:           60,
			KeywordRelevanceMax: 25.0,
			FollowerCountMax:    15.0,
			RecencyMax:          10.0,
			EngagementRateMax:   15.0,
			ReplyCountMax:       15.0,
			ContentTypeMax:      10.0,
		},
		Limits: LimitsConfig{
			MaxRepliesPerDay:          5,
			MaxTweetsPerDay:           6,
			MaxThreadsPerWeek:         1,
			MinActionDelaySeconds:     45,
			MaxActionDelaySeconds:     180,
			MaxRepliesPerAuthorPerDay: 1,
			BannedPhrases:             []string{"check out", "you should try", "I recommend", "link in bio"},
			ProductMentionRatio:       0.2,
		},
		Intervals: IntervalsConfig{
			MentionsCheckSeconds:     300,
			DiscoverySearchSeconds:   900,
			ContentPostWindowSeconds: 10800,
			ThreadIntervalSeconds:    604800,
		},
		Schedule: ScheduleConfig{
			Timezone:         "UTC",
			ActiveHoursStart: 8,
			ActiveHoursEnd:   22,
		},
		Targets: TargetsConfig{
			MaxTargetRepliesPerDay: 3,
		},
		Storage: StorageConfig{
			DBPath:        "~/.tuitbot/tuitbot.db",
			RetentionDays: 90,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3001,
		},
		McpPolicy: McpPolicyConfig{},
	}
}

// applyEnvOverrides mutates cfg in place from TUITBOT_-prefixed environment
// variables. It mirrors the base agent's group__option parsing style.
func (c *Config) applyEnvOverrides() error {
	if val, ok := lookup("TUITBOT_MODE"); ok {
		switch strings.ToLower(val) {
		case "autopilot":
			c.Mode = ModeAutopilot
		case "composer":
			c.Mode = ModeComposer
		default:
			return invalidValue("mode", fmt.Sprintf("invalid mode %q, expected 'autopilot' or 'composer'", val))
		}
	}

	if val, ok := lookup("TUITBOT_X_API__CLIENT_ID"); ok {
		c.XApi.ClientID = val
	}
	if val, ok := lookup("TUITBOT_X_API__CLIENT_SECRET"); ok {
		c.XApi.ClientSecret = val
	}
	if val, ok := lookup("TUITBOT_X_API__PROVIDER_BACKEND"); ok {
		c.XApi.ProviderBackend = val
	}
	if val, ok := lookup("TUITBOT_X_API__SCRAPER_ALLOW_MUTATIONS"); ok {
		b, err := parseBool("TUITBOT_X_API__SCRAPER_ALLOW_MUTATIONS", val)
		if err != nil {
			return err
		}
		c.XApi.ScraperAllowMutations = b
	}

	if val, ok := lookup("TUITBOT_AUTH__MODE"); ok {
		c.Auth.Mode = val
	}
	if val, ok := lookup("TUITBOT_AUTH__CALLBACK_HOST"); ok {
		c.Auth.CallbackHost = val
	}
	if val, ok := lookup("TUITBOT_AUTH__CALLBACK_PORT"); ok {
		p, err := parseUint16("TUITBOT_AUTH__CALLBACK_PORT", val)
		if err != nil {
			return err
		}
		c.Auth.CallbackPort = p
	}

	if val, ok := lookup("TUITBOT_BUSINESS__PRODUCT_NAME"); ok {
		c.Business.ProductName = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__PRODUCT_DESCRIPTION"); ok {
		c.Business.ProductDescription = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__PRODUCT_URL"); ok {
		c.Business.ProductURL = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__TARGET_AUDIENCE"); ok {
		c.Business.TargetAudience = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__PRODUCT_KEYWORDS"); ok {
		c.Business.ProductKeywords = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_BUSINESS__COMPETITOR_KEYWORDS"); ok {
		c.Business.CompetitorKeywords = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_BUSINESS__INDUSTRY_TOPICS"); ok {
		c.Business.IndustryTopics = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_BUSINESS__BRAND_VOICE"); ok {
		c.Business.BrandVoice = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__REPLY_STYLE"); ok {
		c.Business.ReplyStyle = val
	}
	if val, ok := lookup("TUITBOT_BUSINESS__CONTENT_STYLE"); ok {
		c.Business.ContentStyle = val
	}

	if val, ok := lookup("TUITBOT_SCORING__THRESHOLD"); ok {
		n, err := parseUint32("TUITBOT_SCORING__THRESHOLD", val)
		if err != nil {
			return err
		}
		c.Scoring.Threshold = n
	}
	if val, ok := lookup("TUITBOT_SCORING__KEYWORD_RELEVANCE_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__KEYWORD_RELEVANCE_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.KeywordRelevanceMax = f
	}
	if val, ok := lookup("TUITBOT_SCORING__FOLLOWER_COUNT_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__FOLLOWER_COUNT_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.FollowerCountMax = f
	}
	if val, ok := lookup("TUITBOT_SCORING__RECENCY_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__RECENCY_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.RecencyMax = f
	}
	if val, ok := lookup("TUITBOT_SCORING__ENGAGEMENT_RATE_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__ENGAGEMENT_RATE_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.EngagementRateMax = f
	}
	if val, ok := lookup("TUITBOT_SCORING__REPLY_COUNT_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__REPLY_COUNT_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.ReplyCountMax = f
	}
	if val, ok := lookup("TUITBOT_SCORING__CONTENT_TYPE_MAX"); ok {
		f, err := parseFloat32("TUITBOT_SCORING__CONTENT_TYPE_MAX", val)
		if err != nil {
			return err
		}
		c.Scoring.ContentTypeMax = f
	}

	if val, ok := lookup("TUITBOT_LIMITS__MAX_REPLIES_PER_DAY"); ok {
		n, err := parseUint32("TUITBOT_LIMITS__MAX_REPLIES_PER_DAY", val)
		if err != nil {
			return err
		}
		c.Limits.MaxRepliesPerDay = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__MAX_TWEETS_PER_DAY"); ok {
		n, err := parseUint32("TUITBOT_LIMITS__MAX_TWEETS_PER_DAY", val)
		if err != nil {
			return err
		}
		c.Limits.MaxTweetsPerDay = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__MAX_THREADS_PER_WEEK"); ok {
		n, err := parseUint32("TUITBOT_LIMITS__MAX_THREADS_PER_WEEK", val)
		if err != nil {
			return err
		}
		c.Limits.MaxThreadsPerWeek = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__MIN_ACTION_DELAY_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_LIMITS__MIN_ACTION_DELAY_SECONDS", val)
		if err != nil {
			return err
		}
		c.Limits.MinActionDelaySeconds = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__MAX_ACTION_DELAY_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_LIMITS__MAX_ACTION_DELAY_SECONDS", val)
		if err != nil {
			return err
		}
		c.Limits.MaxActionDelaySeconds = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__MAX_REPLIES_PER_AUTHOR_PER_DAY"); ok {
		n, err := parseUint32("TUITBOT_LIMITS__MAX_REPLIES_PER_AUTHOR_PER_DAY", val)
		if err != nil {
			return err
		}
		c.Limits.MaxRepliesPerAuthorPerDay = n
	}
	if val, ok := lookup("TUITBOT_LIMITS__BANNED_PHRASES"); ok {
		c.Limits.BannedPhrases = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_LIMITS__PRODUCT_MENTION_RATIO"); ok {
		f, err := parseFloat32("TUITBOT_LIMITS__PRODUCT_MENTION_RATIO", val)
		if err != nil {
			return err
		}
		c.Limits.ProductMentionRatio = f
	}

	if val, ok := lookup("TUITBOT_INTERVALS__MENTIONS_CHECK_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_INTERVALS__MENTIONS_CHECK_SECONDS", val)
		if err != nil {
			return err
		}
		c.Intervals.MentionsCheckSeconds = n
	}
	if val, ok := lookup("TUITBOT_INTERVALS__DISCOVERY_SEARCH_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_INTERVALS__DISCOVERY_SEARCH_SECONDS", val)
		if err != nil {
			return err
		}
		c.Intervals.DiscoverySearchSeconds = n
	}
	if val, ok := lookup("TUITBOT_INTERVALS__CONTENT_POST_WINDOW_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_INTERVALS__CONTENT_POST_WINDOW_SECONDS", val)
		if err != nil {
			return err
		}
		c.Intervals.ContentPostWindowSeconds = n
	}
	if val, ok := lookup("TUITBOT_INTERVALS__THREAD_INTERVAL_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_INTERVALS__THREAD_INTERVAL_SECONDS", val)
		if err != nil {
			return err
		}
		c.Intervals.ThreadIntervalSeconds = n
	}

	if val, ok := lookup("TUITBOT_TARGETS__ACCOUNTS"); ok {
		c.Targets.Accounts = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_TARGETS__MAX_TARGET_REPLIES_PER_DAY"); ok {
		n, err := parseUint32("TUITBOT_TARGETS__MAX_TARGET_REPLIES_PER_DAY", val)
		if err != nil {
			return err
		}
		c.Targets.MaxTargetRepliesPerDay = n
	}

	if val, ok := lookup("TUITBOT_LLM__PROVIDER"); ok {
		c.Llm.Provider = val
	}
	if val, ok := lookup("TUITBOT_LLM__API_KEY"); ok {
		c.Llm.APIKey = val
	}
	if val, ok := lookup("TUITBOT_LLM__MODEL"); ok {
		c.Llm.Model = val
	}
	if val, ok := lookup("TUITBOT_LLM__BASE_URL"); ok {
		c.Llm.BaseURL = val
	}

	if val, ok := lookup("TUITBOT_STORAGE__DB_PATH"); ok {
		c.Storage.DBPath = val
	}
	if val, ok := lookup("TUITBOT_STORAGE__RETENTION_DAYS"); ok {
		n, err := parseUint32("TUITBOT_STORAGE__RETENTION_DAYS", val)
		if err != nil {
			return err
		}
		c.Storage.RetentionDays = n
	}

	if val, ok := lookup("TUITBOT_SERVER__HOST"); ok {
		c.Server.Host = val
	}
	if val, ok := lookup("TUITBOT_SERVER__PORT"); ok {
		p, err := parseUint16("TUITBOT_SERVER__PORT", val)
		if err != nil {
			return err
		}
		c.Server.Port = p
	}

	if val, ok := lookup("TUITBOT_LOGGING__STATUS_INTERVAL_SECONDS"); ok {
		n, err := parseUint64("TUITBOT_LOGGING__STATUS_INTERVAL_SECONDS", val)
		if err != nil {
			return err
		}
		c.Logging.StatusIntervalSeconds = n
	}

	if val, ok := lookup("TUITBOT_SCHEDULE__TIMEZONE"); ok {
		c.Schedule.Timezone = val
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__ACTIVE_HOURS_START"); ok {
		n, err := parseUint8("TUITBOT_SCHEDULE__ACTIVE_HOURS_START", val)
		if err != nil {
			return err
		}
		c.Schedule.ActiveHoursStart = n
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__ACTIVE_HOURS_END"); ok {
		n, err := parseUint8("TUITBOT_SCHEDULE__ACTIVE_HOURS_END", val)
		if err != nil {
			return err
		}
		c.Schedule.ActiveHoursEnd = n
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__ACTIVE_DAYS"); ok {
		c.Schedule.ActiveDays = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__PREFERRED_TIMES"); ok {
		c.Schedule.PreferredTimes = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__THREAD_PREFERRED_DAY"); ok {
		val = strings.TrimSpace(val)
		if val == "" || val == "none" {
			c.Schedule.ThreadPreferredDay = ""
		} else {
			c.Schedule.ThreadPreferredDay = val
		}
	}
	if val, ok := lookup("TUITBOT_SCHEDULE__THREAD_PREFERRED_TIME"); ok {
		c.Schedule.ThreadPreferredTime = val
	}

	if val, ok := lookup("TUITBOT_MCP_POLICY__ENFORCE_FOR_MUTATIONS"); ok {
		b, err := parseBool("TUITBOT_MCP_POLICY__ENFORCE_FOR_MUTATIONS", val)
		if err != nil {
			return err
		}
		c.McpPolicy.EnforceForMutations = b
	}
	if val, ok := lookup("TUITBOT_MCP_POLICY__REQUIRE_APPROVAL_FOR"); ok {
		c.McpPolicy.RequireApprovalFor = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_MCP_POLICY__BLOCKED_TOOLS"); ok {
		c.McpPolicy.BlockedTools = splitCSV(val)
	}
	if val, ok := lookup("TUITBOT_MCP_POLICY__DRY_RUN_MUTATIONS"); ok {
		b, err := parseBool("TUITBOT_MCP_POLICY__DRY_RUN_MUTATIONS", val)
		if err != nil {
			return err
		}
		c.McpPolicy.DryRunMutations = b
	}
	if val, ok := lookup("TUITBOT_MCP_POLICY__MAX_MUTATIONS_PER_HOUR"); ok {
		n, err := parseUint32("TUITBOT_MCP_POLICY__MAX_MUTATIONS_PER_HOUR", val)
		if err != nil {
			return err
		}
		c.McpPolicy.MaxMutationsPerHour = n
	}
	if val, ok := lookup("TUITBOT_MCP_POLICY__TEMPLATE"); ok {
		c.McpPolicy.Template = val
	}

	explicitApproval := false
	if val, ok := lookup("TUITBOT_APPROVAL_MODE"); ok {
		b, err := parseBool("TUITBOT_APPROVAL_MODE", val)
		if err != nil {
			return err
		}
		c.ApprovalMode = b
		explicitApproval = true
	}

	// Auto-detection: running inside an external orchestration harness
	// implies approval mode unless the operator explicitly set it.
	if !explicitApproval && anyEnvHasPrefix("OPENCLAW_") {
		c.ApprovalMode = true
	}

	return nil
}

// validate runs boot-time checks. Missing required fields or malformed
// values are fatal; softer concerns (like scoring weights that could sum
// above 100) are logged as warnings and otherwise left alone.
func (c *Config) validate(logger *logrus.Logger) error {
	if c.XApi.ClientID == "" {
		return invalidValue("x_api.client_id", "X API client ID is required")
	}
	if c.Llm.Provider == "" {
		return invalidValue("llm.provider", "an LLM provider must be configured")
	}
	if c.Llm.Provider != "ollama" && c.Llm.APIKey == "" {
		return invalidValue("llm.api_key", fmt.Sprintf("an API key is required for provider %q", c.Llm.Provider))
	}
	if c.Business.ProductName == "" {
		return invalidValue("business.product_name", "product name is required")
	}
	if len(c.Business.ProductKeywords) == 0 {
		return invalidValue("business.product_keywords", "at least one product keyword is required")
	}
	if c.Limits.MinActionDelaySeconds > c.Limits.MaxActionDelaySeconds {
		return invalidValue("limits", "min_action_delay_seconds must not exceed max_action_delay_seconds")
	}

	if logger != nil {
		sum := c.Scoring.KeywordRelevanceMax + c.Scoring.FollowerCountMax + c.Scoring.RecencyMax +
			c.Scoring.EngagementRateMax
		if sum > 100.0 {
			logger.Warnf("scoring weights sum to %.1f, above 100 -- scores will be clamped, not scaled", sum)
		}
	}

	return nil
}

// InvalidValueError reports a config field that failed validation or
// environment-variable parsing.
type InvalidValueError struct {
	Field   string
	Message string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func invalidValue(field, message string) error {
	return &InvalidValueError{Field: field, Message: message}
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

func anyEnvHasPrefix(prefix string) bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}
	return false
}

// splitCSV splits s on commas, trimming whitespace and dropping empty
// elements.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseUint16(field, val string) (uint16, error) {
	n, err := strconv.ParseUint(val, 10, 16)
	if err != nil {
		return 0, invalidValue(field, fmt.Sprintf("%q is not a valid uint16", val))
	}
	return uint16(n), nil
}

func parseUint32(field, val string) (uint32, error) {
	n, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, invalidValue(field, fmt.Sprintf("%q is not a valid uint32", val))
	}
	return uint32(n), nil
}

func parseUint64(field, val string) (uint64, error) {
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, invalidValue(field, fmt.Sprintf("%q is not a valid uint64", val))
	}
	return n, nil
}

func parseUint8(field, val string) (uint8, error) {
	n, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return 0, invalidValue(field, fmt.Sprintf("%q is not a valid uint8", val))
	}
	return uint8(n), nil
}

func parseFloat32(field, val string) (float32, error) {
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return 0, invalidValue(field, fmt.Sprintf("%q is not a valid float", val))
	}
	return float32(f), nil
}

// parseBool accepts true/false/1/0/yes/no case-insensitively, matching the
// base agent's environment-variable boolean convention.
func parseBool(field, val string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, invalidValue(field, fmt.Sprintf("%q is not a valid boolean (use true/false/1/0/yes/no)", val))
	}
}
