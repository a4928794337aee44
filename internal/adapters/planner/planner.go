// Package planner generates retention plans through a generative text
// service, validating every response before it reaches the engine.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/internal/domain/plan"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
)

// Default generation parameters.
const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 2048
	defaultTimeout   = 30 * time.Second
)

const systemPrompt = "You are an HR retention specialist. You respond only " +
	"with a single valid JSON object, no prose and no code fences."

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel sets the generation model.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithMaxTokens caps the generated output length.
func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client delegates plan generation to the Anthropic Messages API.
type Client struct {
	anthropic anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    logger.Logger
}

// New creates a plan client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		anthropic: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("planner")
	}
	return c
}

// Generate asks the service for a retention plan for p at the given score
// and level, and returns the validated plan text.
func (c *Client) Generate(ctx context.Context, p model.Profile, score int, level model.RiskLevel) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordRemoteCallLatency("plan", float64(time.Since(start).Milliseconds())) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.anthropic.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(p, score, level))),
		},
	})
	if err != nil {
		metrics.RecordRemoteCallError("plan")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	text := ""
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		metrics.RecordRemoteCallError("plan")
		return "", fmt.Errorf("%w: no text content in response", ErrInvalidResponse)
	}

	payload, err := plan.ParsePayload(text)
	if err != nil {
		metrics.RecordRemoteCallError("plan")
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return payload.RetentionPlan, nil
}

// BuildPrompt renders the generation prompt for p. Exported so tests can
// pin the format the service is instructed to honor.
func BuildPrompt(p model.Profile, score int, level model.RiskLevel) string {
	var b strings.Builder

	b.WriteString("Write a detailed retention plan for the following employee profile.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Department: %s\n", p.Department)
	fmt.Fprintf(&b, "Years at the company: %g\n", p.TenureYears)
	fmt.Fprintf(&b, "Performance rating (0-5): %g\n", p.PerformanceRating)
	fmt.Fprintf(&b, "Compensation: %.0f\n", p.Compensation)
	fmt.Fprintf(&b, "Assessed risk score: %d\n", score)
	fmt.Fprintf(&b, "Assessed risk level: %s\n\n", level)

	b.WriteString("Format the plan as a professional HR document in markdown with sections:\n")
	b.WriteString("- Strategic Overview\n")
	b.WriteString("- Immediate Actions\n")
	b.WriteString("- Long-Term Development\n")
	b.WriteString("- Compensation Adjustments (if applicable)\n")
	b.WriteString("- Recognition Strategy\n\n")

	b.WriteString("Respond ONLY with a valid JSON object in this exact format:\n")
	b.WriteString("{\n")
	b.WriteString(`  "riskScore": <number between 0 and 100>,` + "\n")
	b.WriteString(`  "riskLevel": "<LOW or MEDIUM or HIGH>",` + "\n")
	b.WriteString(`  "retentionPlan": "<detailed plan in markdown>"` + "\n")
	b.WriteString("}")

	return b.String()
}
