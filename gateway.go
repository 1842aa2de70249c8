package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// Retry policy for a single gateway call.
const (
	maxAttempts       = 3
	defaultRetryDelay = 1 * time.Second
)

// nextAction is the model's continuation decision for a step.
type nextAction string

const (
	actionContinue    nextAction = "continue"
	actionFinalAnswer nextAction = "final_answer"
)

// stepRecord is one structured reasoning step parsed from the model's
// JSON response body.
type stepRecord struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	NextAction nextAction `json:"next_action,omitempty"`
}

// completeFunc performs one raw chat-completion round trip and returns the
// response body of the first choice.
type completeFunc func(ctx context.Context, conv []chatMessage, maxTokens int64) (string, error)

// gateway wraps the chat-completion endpoint. It owns the retry policy and
// converts every failure to a stepRecord instead of returning an error.
type gateway struct {
	complete   completeFunc
	retryDelay time.Duration
	log        *logger
}

// newGateway builds a gateway backed by an OpenAI-compatible client.
func newGateway(cfg *runConfig, log *logger) *gateway {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	model := cfg.Model

	return &gateway{
		complete: func(ctx context.Context, conv []chatMessage, maxTokens int64) (string, error) {
			resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model:       openai.ChatModel(model),
				Messages:    toMessageParams(conv),
				MaxTokens:   openai.Int(maxTokens),
				Temperature: openai.Float(0.2),
				ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
					OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
				},
			})
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", errors.New("no choices in response")
			}
			return resp.Choices[0].Message.Content, nil
		},
		retryDelay: defaultRetryDelay,
		log:        log,
	}
}

// call performs one protocol step against the model: up to maxAttempts
// round trips with a fixed delay between failed attempts. It never returns
// an error; after the last failure it synthesizes an Error-titled record
// whose next_action forces the reasoning loop to finalize.
func (g *gateway) call(ctx context.Context, conv []chatMessage, maxTokens int64, isFinalAnswer bool) stepRecord {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(g.retryDelay)
		}

		content, err := g.complete(ctx, conv, maxTokens)
		if err != nil {
			lastErr = err
			g.log.warnf("model call failed (attempt %d/%d): %v", attempt+1, maxAttempts, err)
			continue
		}

		rec, err := parseStepRecord(content)
		if err != nil {
			lastErr = err
			g.log.warnf("unusable model response (attempt %d/%d): %v", attempt+1, maxAttempts, err)
			continue
		}
		return rec
	}

	kind := "step"
	if isFinalAnswer {
		kind = "final answer"
	}
	rec := stepRecord{
		Title:   "Error",
		Content: fmt.Sprintf("Failed to generate %s after %d attempts. Error: %v", kind, maxAttempts, lastErr),
	}
	if !isFinalAnswer {
		rec.NextAction = actionFinalAnswer
	}
	return rec
}

// parseStepRecord decodes a response body into a stepRecord. Bodies that do
// not decode as-is get one repair pass before the attempt is written off.
// A record carrying neither title nor content is as unusable as unparseable
// JSON and is rejected the same way.
func parseStepRecord(content string) (stepRecord, error) {
	var rec stepRecord
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return stepRecord{}, fmt.Errorf("parse step: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &rec); err != nil {
			return stepRecord{}, fmt.Errorf("parse repaired step: %w", err)
		}
	}
	if rec.Title == "" && rec.Content == "" {
		return stepRecord{}, errors.New("step has neither title nor content")
	}
	return rec, nil
}

// serialize renders the record back to the JSON the conversation carries as
// the assistant's turn.
func (r stepRecord) serialize() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// toMessageParams converts conversation turns to the SDK's message unions.
func toMessageParams(conv []chatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, m := range conv {
		switch m.Role {
		case roleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case roleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
