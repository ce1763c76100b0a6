// Package openai provides an implementation of the generation.Generator
// interface backed by an OpenAI-compatible chat-completion endpoint.
// A custom base URL may be configured to reach self-hosted compatible
// servers.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"studyhall/internal/config"
	"studyhall/internal/domain"
	"studyhall/internal/generation"
)

// systemPrompt frames every chat completion issued by this provider.
const systemPrompt = "You are a study companion that produces summaries, " +
	"Mermaid mind maps, learning road maps, and answers about a subject. " +
	"Always reply with a single JSON object and nothing else."

// Verify interface compliance at compile time.
var _ generation.Generator = (*Generator)(nil)

// Generator implements the generation.Generator interface using the
// OpenAI chat-completion API.
type Generator struct {
	logger *slog.Logger
	client *openai.Client
	model  string
}

// NewGenerator creates an OpenAI-backed Generator. Returns an error
// wrapping generation.ErrInvalidConfig if the configuration is
// incomplete.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &Generator{
		logger: logger.With(slog.String("component", "openai_generator")),
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.ModelName,
	}, nil
}

// Generate produces content for the given task request through a single
// chat completion. No retry is attempted; transient failures surface as
// generation errors for the caller to re-issue.
func (g *Generator) Generate(ctx context.Context, req domain.TaskRequest) (*generation.Response, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: generation.PromptFor(req),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in completion", generation.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	g.logger.DebugContext(ctx, "chat completion resolved",
		slog.String("subject_id", req.SubjectID),
		slog.String("kind", string(req.Kind)),
		slog.Int("content_length", len(content)))

	var response generation.Response
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrMalformedResponse, err)
	}

	return &response, nil
}
