// File: internal/vision/gemini.go
package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
	"github.com/xkilldash9x/mimic-cli/internal/config"
)

// GeminiClient implements schemas.VisionClient on top of the Google Gemini
// API. It owns the transport policy: authentication, client-side rate
// limiting, and the per-call timeout.
type GeminiClient struct {
	client  *genai.Client
	limiter *rate.Limiter
	log     *zap.Logger
	cfg     config.VisionConfig
}

// NewGeminiClient builds the client. The API key must already be resolved
// (config binds MIMIC_VISION_API_KEY); an empty key is a hard error because
// every later call would fail anyway.
func NewGeminiClient(ctx context.Context, cfg config.VisionConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("vision: gemini API key is required (set MIMIC_VISION_API_KEY)")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.Endpoint
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("vision: failed to construct gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:     logger.Named("vision.gemini"),
		cfg:     cfg,
	}, nil
}

// Model reports the configured model identifier.
func (c *GeminiClient) Model() string { return c.cfg.Model }

// AnalyzeTransition submits one before/after screenshot pair together with
// the composed prompts and returns the model's raw text. The rate limiter is
// consulted before the per-call timeout starts so queueing time does not eat
// into the API budget.
func (c *GeminiClient) AnalyzeTransition(ctx context.Context, req schemas.TransitionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("vision: rate limiter interrupted: %w", err)
	}

	callCtx := ctx
	if c.cfg.APITimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.APITimeout)
		defer cancel()
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.UserPrompt),
		genai.NewPartFromBytes(req.BeforeImage, "image/png"),
		genai.NewPartFromBytes(req.AfterImage, "image/png"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(callCtx, c.cfg.Model, contents, genConfig)
	duration := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("vision: gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("vision: gemini returned an empty response")
	}

	fields := []zap.Field{
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", duration),
	}
	if usage := resp.UsageMetadata; usage != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", usage.PromptTokenCount),
			zap.Int32("completion_tokens", usage.CandidatesTokenCount),
			zap.Int32("total_tokens", usage.TotalTokenCount),
		)
	}
	c.log.Info("Vision analysis complete.", fields...)

	return text, nil
}
