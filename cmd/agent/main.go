package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aramirez087/tuitbot/internal/config"
	"github.com/aramirez087/tuitbot/pkg/approval"
	"github.com/aramirez087/tuitbot/pkg/automation"
	"github.com/aramirez087/tuitbot/pkg/db"
	"github.com/aramirez087/tuitbot/pkg/gateway"
	"github.com/aramirez087/tuitbot/pkg/interfaces/twitter"
	"github.com/aramirez087/tuitbot/pkg/llm"
	"github.com/aramirez087/tuitbot/pkg/llm/openai"
	"github.com/aramirez087/tuitbot/pkg/logging"
	"github.com/aramirez087/tuitbot/pkg/policy"
	"github.com/aramirez087/tuitbot/pkg/postqueue"
	"github.com/aramirez087/tuitbot/pkg/ratelimit"
	"github.com/aramirez087/tuitbot/pkg/scheduler"
	"github.com/aramirez087/tuitbot/pkg/scoring"
)

func main() {
	log := logrus.New()
	log.SetFormatter(logging.NewColoredJSONFormatter())

	cfg, err := config.Load(log)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	database, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("failed to set up database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rateLimits := ratelimit.New(database)
	if err := rateLimits.InitBuiltins(ctx, ratelimit.Limits{
		MaxRepliesPerDay:  int(cfg.Limits.MaxRepliesPerDay),
		MaxTweetsPerDay:   int(cfg.Limits.MaxTweetsPerDay),
		MaxThreadsPerWeek: int(cfg.Limits.MaxThreadsPerWeek),
		MaxMutationsPerHr: int(cfg.McpPolicy.MaxMutationsPerHour),
	}); err != nil {
		log.WithError(err).Fatal("failed to initialize rate limits")
	}

	evaluator := policy.New(policy.Config{
		EnforceForMutations: cfg.McpPolicy.EnforceForMutations,
		BlockedTools:        cfg.McpPolicy.BlockedTools,
		RequireApprovalFor:  cfg.McpPolicy.RequireApprovalFor,
		DryRunMutations:     cfg.McpPolicy.DryRunMutations,
	})
	approvals := approval.New(database)
	gw := gateway.New(database, evaluator, rateLimits, approvals, string(cfg.Mode))

	queue := postqueue.New(postqueue.Config{
		RateLimits: rateLimits,
		Logger:     log,
		MinDelay:   time.Duration(cfg.Limits.MinActionDelaySeconds) * time.Second,
		MaxDelay:   time.Duration(cfg.Limits.MaxActionDelaySeconds) * time.Second,
	})
	go queue.Run(ctx)

	keywords := append(append([]string{}, cfg.Business.ProductKeywords...), cfg.Business.CompetitorKeywords...)
	scoringEngine := scoring.New(scoring.Config{
		Threshold:           int(cfg.Scoring.Threshold),
		KeywordRelevanceMax: float64(cfg.Scoring.KeywordRelevanceMax),
		FollowerCountMax:    float64(cfg.Scoring.FollowerCountMax),
		RecencyMax:          float64(cfg.Scoring.RecencyMax),
		EngagementRateMax:   float64(cfg.Scoring.EngagementRateMax),
	}, keywords)

	twitterClient, err := newTwitterClient(log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize twitter client")
	}

	generator, err := newLLM(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize llm client")
	}

	deps := automation.Deps{
		DB:       database,
		Gateway:  gw,
		Queue:    queue,
		Scoring:  scoringEngine,
		LLM:      generator,
		Logger:   log,
		Business: cfg.Business,
		Limits:   cfg.Limits,
	}

	sup := automation.NewSupervisor(log)
	sup.Spawn(automation.NewMentionsLoop(deps, twitterClient, twitterClient, newSchedule(cfg, cfg.Intervals.MentionsCheckSeconds)))
	sup.Spawn(automation.NewDiscoveryLoop(deps, twitterClient, twitterClient, newSchedule(cfg, cfg.Intervals.DiscoverySearchSeconds)))
	sup.Spawn(automation.NewContentLoop(deps, twitterClient, newSchedule(cfg, cfg.Intervals.ContentPostWindowSeconds)))
	sup.Spawn(automation.NewThreadLoop(deps, twitterClient, newSchedule(cfg, cfg.Intervals.ThreadIntervalSeconds)))

	log.WithField("mode", cfg.Mode).Info("tuitbot agent running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		sup.Shutdown()
	}()

	sup.RunUntilShutdown()
	log.Info("tuitbot agent stopped")
}

func newTwitterClient(log *logrus.Logger) (*twitter.TwitterClient, error) {
	twitterConfig, err := twitter.NewTwitterConfig()
	if err != nil {
		return nil, err
	}
	twitterConfig.Logger = log
	return twitter.NewTwitterClient(twitterConfig)
}

func newLLM(cfg *config.Config, log *logrus.Logger) (llm.LLM, error) {
	return openai.NewClient(&openai.OpenAIConfig{
		APIKey: cfg.Llm.APIKey,
		Model:  cfg.Llm.Model,
		Logger: log,
	})
}

func newSchedule(cfg *config.Config, intervalSeconds uint64) *scheduler.Scheduler {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return scheduler.New(scheduler.Config{
		Interval:        time.Duration(intervalSeconds) * time.Second,
		Jitter:          0.2,
		Location:        loc,
		ActiveDays:      parseWeekdays(cfg.Schedule.ActiveDays),
		ActiveHourStart: int(cfg.Schedule.ActiveHoursStart),
		ActiveHourEnd:   int(cfg.Schedule.ActiveHoursEnd),
	}, nil)
}

var weekdaysByName = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

func parseWeekdays(names []string) []time.Weekday {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		if d, ok := weekdaysByName[strings.ToLower(name)]; ok {
			days = append(days, d)
		}
	}
	return days
}
