package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func baseOverrides(t *testing.T) {
	t.Helper()
	t.Setenv("TUITBOT_X_API__CLIENT_ID", "client-123")
	t.Setenv("TUITBOT_LLM__PROVIDER", "openai")
	t.Setenv("TUITBOT_LLM__API_KEY", "sk-test")
	t.Setenv("TUITBOT_BUSINESS__PRODUCT_NAME", "Widgetly")
	t.Setenv("TUITBOT_BUSINESS__PRODUCT_KEYWORDS", "widgets, gadgets ,  ")
}

func TestLoad_AppliesRequiredOverridesAndDefaults(t *testing.T) {
	baseOverrides(t)

	cfg, err := Load(logrus.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.XApi.ClientID != "client-123" {
		t.Fatalf("expected client id override, got %q", cfg.XApi.ClientID)
	}
	if len(cfg.Business.ProductKeywords) != 2 || cfg.Business.ProductKeywords[0] != "widgets" {
		t.Fatalf("expected trimmed, filtered CSV split, got %#v", cfg.Business.ProductKeywords)
	}
	if cfg.Limits.MaxRepliesPerDay != 5 {
		t.Fatalf("expected default max replies per day 5, got %d", cfg.Limits.MaxRepliesPerDay)
	}
	if cfg.Scoring.Threshold != 60 {
		t.Fatalf("expected default scoring threshold 60, got %d", cfg.Scoring.Threshold)
	}
}

func TestLoad_MissingRequiredFieldIsFatal(t *testing.T) {
	if _, err := Load(logrus.New()); err == nil {
		t.Fatal("expected missing x_api.client_id to fail validation")
	}
}

func TestLoad_InvalidModeRejected(t *testing.T) {
	baseOverrides(t)
	t.Setenv("TUITBOT_MODE", "bogus")

	if _, err := Load(logrus.New()); err == nil {
		t.Fatal("expected invalid mode to be rejected")
	}
}

func TestLoad_InvalidNumericOverrideRejected(t *testing.T) {
	baseOverrides(t)
	t.Setenv("TUITBOT_LIMITS__MAX_REPLIES_PER_DAY", "not-a-number")

	if _, err := Load(logrus.New()); err == nil {
		t.Fatal("expected non-numeric override to be rejected")
	}
}

func TestLoad_BooleanOverrideAcceptsAllForms(t *testing.T) {
	baseOverrides(t)
	for _, val := range []string{"true", "1", "yes", "TRUE", "Yes"} {
		t.Setenv("TUITBOT_APPROVAL_MODE", val)
		cfg, err := Load(logrus.New())
		if err != nil {
			t.Fatalf("load with %q: %v", val, err)
		}
		if !cfg.ApprovalMode {
			t.Fatalf("expected approval mode true for %q", val)
		}
	}
	for _, val := range []string{"false", "0", "no"} {
		t.Setenv("TUITBOT_APPROVAL_MODE", val)
		cfg, err := Load(logrus.New())
		if err != nil {
			t.Fatalf("load with %q: %v", val, err)
		}
		if cfg.ApprovalMode {
			t.Fatalf("expected approval mode false for %q", val)
		}
	}
}

func TestLoad_MinDelayExceedsMaxDelayRejected(t *testing.T) {
	baseOverrides(t)
	t.Setenv("TUITBOT_LIMITS__MIN_ACTION_DELAY_SECONDS", "200")
	t.Setenv("TUITBOT_LIMITS__MAX_ACTION_DELAY_SECONDS", "100")

	if _, err := Load(logrus.New()); err == nil {
		t.Fatal("expected min > max action delay to fail validation")
	}
}

func TestBusinessProfile_EffectiveIndustryTopicsFallsBackToKeywords(t *testing.T) {
	b := BusinessProfile{ProductKeywords: []string{"a", "b"}}
	topics := b.EffectiveIndustryTopics()
	if len(topics) != 2 {
		t.Fatalf("expected fallback to product keywords, got %#v", topics)
	}

	b.IndustryTopics = []string{"c"}
	topics = b.EffectiveIndustryTopics()
	if len(topics) != 1 || topics[0] != "c" {
		t.Fatalf("expected explicit industry topics to win, got %#v", topics)
	}
}

func TestBusinessProfile_IsEnriched(t *testing.T) {
	b := BusinessProfile{}
	if b.IsEnriched() {
		t.Fatal("expected bare profile to be unenriched")
	}
	b.BrandVoice = "confident, direct"
	if !b.IsEnriched() {
		t.Fatal("expected brand voice to mark the profile enriched")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a ,b,, c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseBool_RejectsUnknownValue(t *testing.T) {
	if _, err := parseBool("field", "maybe"); err == nil {
		t.Fatal("expected unknown boolean value to be rejected")
	}
}
