// Package assistant calls the external AI guide service. It is fully
// independent of the visit workflow: a failure here never touches intake,
// payment, or certificate state.
package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/pkg/faults"
)

// systemInstruction frames the assistant as the clinic's front-desk guide.
// It is prepended to every request.
const systemInstruction = "You are Nulbom, the friendly AI guide of a public " +
	"walk-in clinic. Answer visitors' questions about services, departments, " +
	"and visit procedures clearly and politely. Never give personal medical " +
	"diagnoses or prescriptions; recommend consulting a doctor instead. In an " +
	"emergency, tell the visitor to call emergency services or alert staff " +
	"immediately."

// Config holds the assistant endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns settings for the hosted generative API.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com",
		Model:   "gemini-1.5-flash-latest",
		Timeout: 30 * time.Second,
	}
}

// Client is the HTTP client for the assistant service, guarded by a circuit
// breaker so a degraded upstream fails fast instead of stalling kiosks.
type Client struct {
	http    *resty.Client
	config  Config
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	requests metric.Int64Counter
	failures metric.Int64Counter
}

// NewClient creates an assistant client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http:   httpClient,
		config: cfg,
		logger: logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "assistant",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("assistant circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	meter := otel.Meter("assistant")
	c.requests, _ = meter.Int64Counter("assistant_requests_total",
		metric.WithDescription("Total assistant requests"))
	c.failures, _ = meter.Int64Counter("assistant_failures_total",
		metric.WithDescription("Total failed assistant requests"))

	return c
}

// generateRequest mirrors the generative API's content schema.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Ask sends the visitor's question, with optional base64 image data, and
// returns the assistant's reply.
func (c *Client) Ask(ctx context.Context, question, base64Image string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", faults.New(faults.CodeValidation, "question must not be empty")
	}
	if c.config.APIKey == "" {
		return "", faults.New(faults.CodeAssistantUnavailable, "assistant API key not configured")
	}

	parts := []part{{Text: systemInstruction}}
	if base64Image != "" {
		img, err := decodeImage(base64Image)
		if err != nil {
			return "", err
		}
		parts = append(parts, part{InlineData: img})
	}
	parts = append(parts, part{Text: question})

	c.requests.Add(ctx, 1, metric.WithAttributes(attribute.Bool("has_image", base64Image != "")))

	reply, err := c.breaker.Execute(func() (interface{}, error) {
		text, err := c.generate(ctx, generateRequest{Contents: []content{{Parts: parts}}})
		return text, err
	})
	if err != nil {
		c.failures.Add(ctx, 1)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", faults.Wrap(faults.CodeAssistantUnavailable, "assistant temporarily unavailable", err)
		}
		var f *faults.Fault
		if errors.As(err, &f) {
			return "", f
		}
		return "", faults.Wrap(faults.CodeAssistantUnavailable, "assistant request failed", err)
	}
	return reply.(string), nil
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	var out generateResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.config.Model)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.config.APIKey).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(path)
	if err != nil {
		c.logger.Error("assistant call failed", zap.Error(err))
		return "", err
	}

	if resp.IsError() {
		msg := "assistant returned an error"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		c.logger.Error("assistant API error",
			zap.Int("status", resp.StatusCode()), zap.String("message", msg))
		return "", faults.Newf(faults.CodeAssistantUnavailable, "%s (status %d)", msg, resp.StatusCode())
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback.BlockReason != "" {
			return "", faults.Newf(faults.CodeValidation,
				"question was blocked by safety filters (%s)", out.PromptFeedback.BlockReason)
		}
		return "", faults.New(faults.CodeAssistantUnavailable, "assistant returned no reply")
	}

	cand := out.Candidates[0]
	if len(cand.Content.Parts) == 0 || cand.Content.Parts[0].Text == "" {
		if cand.FinishReason == "SAFETY" {
			return "", faults.New(faults.CodeValidation,
				"the reply was withheld for safety reasons")
		}
		return "", faults.New(faults.CodeAssistantUnavailable, "assistant returned an empty reply")
	}
	return cand.Content.Parts[0].Text, nil
}

// decodeImage validates base64 image input, tolerating a data-URL prefix, and
// returns the inline payload for the API.
func decodeImage(data string) (*inlineData, error) {
	mimeType := "image/png"
	encoded := data
	if i := strings.Index(data, ","); i >= 0 {
		header := data[:i]
		encoded = data[i+1:]
		if start := strings.Index(header, ":"); start >= 0 {
			if end := strings.Index(header, ";"); end > start {
				mimeType = header[start+1 : end]
			}
		}
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return nil, faults.Wrap(faults.CodeValidation, "invalid base64 image data", err)
	}
	return &inlineData{MimeType: mimeType, Data: encoded}, nil
}
