package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"studyhall/internal/config"
	"studyhall/internal/domain"
	"studyhall/internal/generation"
)

// Verify interface compliance at compile time.
var _ generation.Generator = (*Generator)(nil)

// Generator implements the generation.Generator interface using
// Google's Gemini API.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewGenerator creates a new Gemini-backed Generator with the provided
// dependencies. Returns an error wrapping generation.ErrInvalidConfig
// if the configuration is incomplete or the client cannot be created.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Generate produces content for the given task request by calling the
// Gemini API with retry for transient errors. The reply is requested as
// a single-key JSON object matching the backend response contract.
func (g *Generator) Generate(ctx context.Context, req domain.TaskRequest) (*generation.Response, error) {
	prompt := generation.PromptFor(req)

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var response generation.Response
	if err := json.Unmarshal([]byte(text), &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrMalformedResponse, err)
	}

	return &response, nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff
// retry logic. Permanent errors (content blocked, malformed response)
// are returned immediately; transient errors are retried up to
// config.MaxRetries times with jittered backoff.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		text, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			g.logger.DebugContext(ctx, "Gemini API call successful",
				"attempt", attempt+1)
			return text, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", err)

		if !transient {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// callOnce performs a single Gemini API call and classifies any failure
// as transient (retryable) or permanent.
func (g *Generator) callOnce(ctx context.Context, prompt string) (text string, transient bool, err error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", false, err
		}
		// Assume API errors are transient by default.
		return "", true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrMalformedResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: response blocked", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", generation.ErrMalformedResponse)
	}

	text = resp.Text()
	if text == "" {
		return "", false, fmt.Errorf("%w: no text in response", generation.ErrMalformedResponse)
	}

	return text, false, nil
}
