package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"autopilot/internal/config"
	"autopilot/internal/logging"
)

// GeminiProvider calls the Google Gemini API. Each attempt draws a key from
// the rotation pool, so a rate-limited key does not stall the whole pool.
type GeminiProvider struct {
	cfg        *config.Config
	model      string
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
}

// NewGeminiProvider builds the network-backed provider. Key presence is
// validated by config.Validate before this is called.
func NewGeminiProvider(cfg *config.Config) *GeminiProvider {
	retryDelay := cfg.API.Retry.RetryDelay
	if retryDelay == 0 {
		retryDelay = 1 * time.Second
	}
	maxDelay := cfg.API.Retry.MaxDelay
	if maxDelay == 0 {
		maxDelay = 10 * time.Second
	}
	return &GeminiProvider{
		cfg:        cfg,
		model:      cfg.Model.Name,
		maxRetries: cfg.MaxRetries(),
		retryDelay: retryDelay,
		maxDelay:   maxDelay,
	}
}

// GenerateText runs the completion with per-attempt key rotation and
// exponential backoff.
func (p *GeminiProvider) GenerateText(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(p.retryDelay, attempt-1, p.maxDelay)
			logging.Info("retrying completion", "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := p.generateOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return "", err
		}
		logging.Warn("completion attempt failed, will retry", "attempt", attempt, "error", err)
	}

	return "", fmt.Errorf("%w: retries (%d) exhausted: %v", ErrCompletionFailed, p.maxRetries, lastErr)
}

func (p *GeminiProvider) generateOnce(ctx context.Context, req Request) (string, error) {
	key := p.cfg.RotateKey()
	if key == "" {
		return "", fmt.Errorf("%w: no API keys configured", ErrCompletionFailed)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  key,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.cfg.Model.Temperature),
		TopP:            genai.Ptr(p.cfg.Model.TopP),
		MaxOutputTokens: p.cfg.Model.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, p.model, contents, genCfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion response")
	}
	return text, nil
}
