// Package nlu is the natural-language extraction client: one model call
// per user turn returning intent, extracted fields, a reply and an
// advance flag.
package nlu

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"AutoLead/internal/config"
	"AutoLead/internal/lib/sl"
)

type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(conf *config.Config, logger *slog.Logger) *Client {
	return &Client{
		client:  openai.NewClient(conf.OpenAI.ApiKey),
		model:   conf.OpenAI.Model,
		timeout: time.Duration(conf.OpenAI.Timeout) * time.Second,
		log:     logger.With(sl.Module("nlu")),
	}
}

// wire mirrors the JSON shape the model is prompted to return.
type wire struct {
	Intent        string `json:"intent"`
	ParsedData    Fields `json:"parsed_data"`
	Response      string `json:"response"`
	ShouldAdvance bool   `json:"should_advance"`
	Confidence    string `json:"confidence"`
}

// Process makes the single extraction call for a turn. It never returns
// an error to the caller: any failure degrades to the per-step fallback
// reply so the turn still produces an answer within the channel budget.
func (c *Client) Process(ctx context.Context, req Request) Result {
	prompt := buildPrompt(req)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 400,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.log.With(
			slog.String("step", req.Step),
			sl.Err(err),
		).Error("extraction call failed")
		return FallbackResult(req.Step)
	}
	if len(resp.Choices) == 0 {
		c.log.With(slog.String("step", req.Step)).Error("extraction returned no choices")
		return FallbackResult(req.Step)
	}

	return c.parse(req.Step, resp.Choices[0].Message.Content)
}

// parse tolerates markdown fences around the JSON body and falls back
// on any decoding failure.
func (c *Client) parse(step, raw string) Result {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var w wire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		c.log.With(
			slog.String("step", step),
			slog.String("raw", truncate(raw, 200)),
			sl.Err(err),
		).Warn("extraction response is not valid json")
		return FallbackResult(step)
	}

	reply := w.Response
	if reply == "" {
		reply = FallbackResult(step).Reply
	}
	confidence := w.Confidence
	if confidence == "" {
		confidence = "low"
	}

	c.log.With(
		slog.String("step", step),
		slog.String("intent", w.Intent),
		slog.String("confidence", confidence),
	).Debug("extraction processed")

	return Result{
		Intent:        validIntent(w.Intent),
		Fields:        w.ParsedData,
		Reply:         reply,
		ShouldAdvance: w.ShouldAdvance,
		Confidence:    confidence,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
