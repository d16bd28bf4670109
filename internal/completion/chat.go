package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
)

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	FallbackModel string
	// Timeout is the wall-clock budget per call (including the fallback
	// retry). Zero means 10 minutes.
	Timeout time.Duration
}

// ChatClient invokes an OpenAI-compatible chat-completions endpoint. When
// the primary model is rejected as unavailable it retries once against the
// configured fallback model before propagating the failure.
type ChatClient struct {
	cfg    ChatConfig
	client *http.Client
	logger *zap.Logger
}

var _ Client = (*ChatClient)(nil)

// NewChatClient builds a client from configuration.
func NewChatClient(cfg ChatConfig, logger *zap.Logger) *ChatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available implements Client.
func (c *ChatClient) Available() error {
	if c.cfg.APIKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Complete implements Client.
func (c *ChatClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := c.Available(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.call(ctx, c.cfg.Model, req)
	if err == nil {
		return resp, nil
	}

	// A model rejection is worth one retry against the fallback model;
	// everything else propagates.
	if c.cfg.FallbackModel != "" && c.cfg.FallbackModel != c.cfg.Model && isModelRejection(err) {
		c.logger.Warn("primary model unavailable; retrying with fallback",
			zap.String("primary", c.cfg.Model),
			zap.String("fallback", c.cfg.FallbackModel),
			zap.Error(err))
		return c.call(ctx, c.cfg.FallbackModel, req)
	}
	return nil, err
}

func isModelRejection(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound ||
			strings.Contains(apiErr.Message, "model")
	}
	return false
}

// apiError carries the backend's HTTP status and message.
type apiError struct {
	Status  int
	Message string
	wrapped error
}

func (e *apiError) Error() string {
	return fmt.Sprintf("completion API status %d: %s", e.Status, e.Message)
}

func (e *apiError) Unwrap() error { return e.wrapped }

func (c *ChatClient) call(ctx context.Context, model string, req Request) (*Response, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":                 model,
		"messages":              messages,
		"max_completion_tokens": req.MaxTokens,
		"temperature":           req.Temperature,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, time.Since(start).Round(time.Millisecond), err)
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(httpResp.Body).Decode(&errResp)

		ae := &apiError{Status: httpResp.StatusCode, Message: errResp.Error.Message}
		switch httpResp.StatusCode {
		case http.StatusTooManyRequests:
			ae.wrapped = ErrRateLimited
		case http.StatusNotFound:
			ae.wrapped = ErrModelUnavailable
		default:
			if strings.Contains(errResp.Error.Message, "model") {
				ae.wrapped = ErrModelUnavailable
			}
		}
		return nil, ae
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from completion API")
	}

	c.logger.Debug("completion call finished",
		zap.String("model", model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("output_tokens", chatResp.Usage.CompletionTokens))

	return &Response{
		Text:  chatResp.Choices[0].Message.Content,
		Model: model,
		Usage: internal.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:  chatResp.Usage.TotalTokens,
		},
	}, nil
}
