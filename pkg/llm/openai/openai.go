package openai

import (
	"context"
	"fmt"

	"github.com/aramirez087/tuitbot/pkg/llm"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type Client struct {
	logger *logrus.Logger
	llm    llms.LLM
	config *OpenAIConfig
}

func NewClient(config *OpenAIConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	llmOpts := []openai.Option{openai.WithToken(config.APIKey)}
	if config.Model != "" {
		llmOpts = append(llmOpts, openai.WithModel(config.Model))
	}
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return &Client{
		logger: config.Logger,
		llm:    llm,
		config: config,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: 0.7,
		MaxTokens:   1000,
		Model:       c.config.Model,
	}

	for _, opt := range opts {
		opt(options)
	}

	c.logger.WithFields(logrus.Fields{
		"temperature": options.Temperature,
		"maxTokens":   options.MaxTokens,
		"model":       options.Model,
	}).Debug("Generating completion")

	callOpts := []llms.CallOption{
		llms.WithTemperature(options.Temperature),
		llms.WithMaxTokens(options.MaxTokens),
	}
	if options.Model != "" {
		callOpts = append(callOpts, llms.WithModel(options.Model))
	}
	completion, err := c.llm.Call(ctx, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	return completion, nil
}
