package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/keepsake-app/keepsake-api/internal/config"
	"github.com/keepsake-app/keepsake-api/internal/domain"
	"github.com/keepsake-app/keepsake-api/internal/insight"
)

// defaultPromptTemplate asks the model for a single short reflection
// question about the memory. The response is used verbatim as the insight
// body, so the prompt insists on plain text.
const defaultPromptTemplate = `You help people reflect on personal memories they have recorded.

A memory titled {{printf "%q" .Title}} was captured on {{.CapturedAt}}.
{{- if .Tags}}
It is tagged: {{.Tags}}.
{{- end}}

Write one short, warm reflection question (at most two sentences) that
helps the person recall this moment more vividly before they replay the
recording. Respond with the question only, as plain text.`

// promptData is the template input for a single memory.
type promptData struct {
	Title      string
	CapturedAt string
	Tags       string
}

// Generator implements the insight.Generator interface backed by the
// Gemini API.
type Generator struct {
	logger         *slog.Logger
	config         config.InsightConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
	rng            *rand.Rand
}

// NewGenerator creates a Gemini-backed insight generator. Returns
// insight.ErrInvalidConfig when required settings are missing.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.InsightConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", insight.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", insight.ErrInvalidConfig)
	}

	promptTemplate, err := template.New("insight").Parse(defaultPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", insight.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", insight.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:         logger.With(slog.String("component", "gemini_generator")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

var _ insight.Generator = (*Generator)(nil)

// GenerateInsight creates a reflection prompt for the given memory.
func (g *Generator) GenerateInsight(ctx context.Context, memory *domain.Memory) (*domain.Insight, error) {
	if memory == nil {
		return nil, errors.New("memory cannot be nil")
	}

	prompt, err := g.buildPrompt(memory)
	if err != nil {
		return nil, err
	}

	body, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := domain.NewInsight(memory.UserID, memory.ID, body, g.model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", insight.ErrInvalidResponse, err)
	}

	g.logger.InfoContext(ctx, "generated insight",
		"memory_id", memory.ID,
		"body_length", len(body))

	return result, nil
}

// buildPrompt renders the prompt template for one memory.
func (g *Generator) buildPrompt(memory *domain.Memory) (string, error) {
	data := promptData{
		Title:      memory.Title,
		CapturedAt: memory.CapturedAt.Format("January 2, 2006"),
		Tags:       strings.Join(memory.Tags, ", "),
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff plus jitter. Permanent failures (blocked content,
// malformed responses) are returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		body, err := g.callOnce(ctx, prompt)
		if err == nil {
			return body, nil
		}

		g.logger.WarnContext(ctx, "gemini call failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", err)

		if errors.Is(err, insight.ErrContentBlocked) || errors.Is(err, insight.ErrInvalidResponse) {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				insight.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + g.rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", insight.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call and validates its response.
func (g *Generator) callOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// Treat API errors as transient; the retry loop decides whether
		// to give up.
		return "", fmt.Errorf("%w: %v", insight.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", insight.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response stopped by safety filters", insight.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", insight.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	body := strings.TrimSpace(sb.String())
	if body == "" {
		return "", fmt.Errorf("%w: empty text in response", insight.ErrInvalidResponse)
	}

	return body, nil
}
