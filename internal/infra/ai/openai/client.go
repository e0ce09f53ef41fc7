package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/domain/ai"
	"github.com/bryanwahyu/truthlens/internal/infra/ai/prompt"
)

const maxTokens = 2048

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultTextModel   = "gemini-2.0-flash"
	DefaultVisionModel = "gemini-2.0-flash"
)

// Config for the chat-completions client.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	// HTTPClient is optional; nil keeps the library default.
	HTTPClient *http.Client
}

type Client struct {
	*openai.Client
	TextModel   string
	VisionModel string
	log         *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	return &Client{
		Client:      openai.NewClientWithConfig(oc),
		TextModel:   cfg.TextModel,
		VisionModel: cfg.VisionModel,
		log:         logger,
	}
}

// AnalyzeText sends the fixed reliability prompt plus text in a single call.
func (c *Client) AnalyzeText(ctx context.Context, text string) (string, error) {
	model := c.TextModel
	if model == "" {
		model = DefaultTextModel
	}
	req := newRequest(model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: prompt.GetTextPrompt(text)},
	})
	return c.complete(ctx, "text", req)
}

// AnalyzeImage sends the image prompt and the raw image as a data URL.
func (c *Client) AnalyzeImage(ctx context.Context, data []byte) (string, error) {
	model := c.VisionModel
	if model == "" {
		model = DefaultVisionModel
	}
	req := newRequest(model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.GetImagePrompt()},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL(data),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	})
	return c.complete(ctx, "image", req)
}

func newRequest(model string, msgs []openai.ChatCompletionMessage) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return req
}

func (c *Client) complete(ctx context.Context, kind string, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Error("ai completion failed",
			zap.String("kind", kind),
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		if isQuota(err) {
			return "", fmt.Errorf("%w: %w: %v", ai.ErrAIService, ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%w: failed to create chat completion: %v", ai.ErrAIService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ai.ErrAIService)
	}

	c.log.Debug("ai completion ok",
		zap.String("kind", kind),
		zap.String("model", req.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}

func dataURL(data []byte) string {
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
