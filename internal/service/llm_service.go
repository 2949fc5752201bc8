package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"statement-ingest/internal/parser"
	"statement-ingest/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// maxErrorBody bounds how much of a failed response is kept in ServiceError.
const maxErrorBody = 2048

// NewCompleter returns the completion client selected by cfg.Provider.
// Missing credentials are not an error here: the returned Completer reports
// parser.ErrConfiguration on first use so CSV and heuristic PDF parsing keep
// working without an AI key.
func NewCompleter(cfg *config.LLMConfig, logger *zap.Logger) (parser.Completer, error) {
	var completer parser.Completer
	switch cfg.Provider {
	case "", "groq":
		completer = NewGroqCompleter(cfg.Groq, logger)
	case "gigachat":
		completer = NewGigaChatCompleter(cfg.GigaChat, logger)
	case "gemini":
		completer = NewGeminiCompleter(cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	if cfg.Timeout > 0 {
		return &timeoutCompleter{next: completer, timeout: cfg.Timeout}, nil
	}
	return completer, nil
}

// timeoutCompleter bounds every completion call by timeout.
type timeoutCompleter struct {
	next    parser.Completer
	timeout time.Duration
}

func (c *timeoutCompleter) Complete(ctx context.Context, req parser.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Complete(ctx, req)
}

func (c *timeoutCompleter) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// GroqCompleter talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqCompleter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGroqCompleter(cfg config.GroqConfig, logger *zap.Logger) *GroqCompleter {
	return &GroqCompleter{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *GroqCompleter) Complete(ctx context.Context, req parser.CompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: GROQ_API_KEY is not set", parser.ErrConfiguration)
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Groq request failed",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
		return "", &parser.ServiceError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %w", parser.ErrEmptyResponse, err)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", parser.ErrEmptyResponse
	}

	c.logger.Info("Groq completion received",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("content_length", len(decoded.Choices[0].Message.Content)),
	)
	return decoded.Choices[0].Message.Content, nil
}

// GigaChatCompleter uses the GigaChat API through gigago. The client is
// created on first use because creating it performs the OAuth exchange.
type GigaChatCompleter struct {
	cfg    config.GigaChatConfig
	logger *zap.Logger

	mu     sync.Mutex
	client *gigago.Client
}

func NewGigaChatCompleter(cfg config.GigaChatConfig, logger *zap.Logger) *GigaChatCompleter {
	if cfg.Model == "" {
		cfg.Model = "GigaChat"
	}
	return &GigaChatCompleter{cfg: cfg, logger: logger}
}

func (c *GigaChatCompleter) getClient(ctx context.Context) (*gigago.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(c.cfg.Scope),
	}
	if c.cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		c.logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, c.cfg.APIKey, opts...)
	if err != nil {
		return nil, &parser.ServiceError{Body: fmt.Sprintf("failed to create GigaChat client: %v", err)}
	}
	c.client = client
	return client, nil
}

func (c *GigaChatCompleter) Complete(ctx context.Context, req parser.CompletionRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: GIGACHAT_API_KEY is not set", parser.ErrConfiguration)
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = req.System
	setTemperature(&model.Temperature, req.Temperature)

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: req.Prompt},
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", &parser.ServiceError{Body: err.Error()}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", parser.ErrEmptyResponse
	}

	c.logger.Info("GigaChat completion received",
		zap.String("model", c.cfg.Model),
		zap.Int("content_length", len(resp.Choices[0].Message.Content)),
	)
	return resp.Choices[0].Message.Content, nil
}

// setTemperature stores t in a float field of either width.
func setTemperature[F ~float32 | ~float64](dst *F, t float32) {
	*dst = F(t)
}

func (c *GigaChatCompleter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}

// GeminiCompleter uses the Gemini API through google.golang.org/genai.
type GeminiCompleter struct {
	cfg    config.GeminiConfig
	logger *zap.Logger

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiCompleter(cfg config.GeminiConfig, logger *zap.Logger) *GeminiCompleter {
	return &GeminiCompleter{cfg: cfg, logger: logger}
}

func (c *GeminiCompleter) getClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.client = client
	return client, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, req parser.CompletionRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", parser.ErrConfiguration)
	}

	client, err := c.getClient(ctx)
	if err != nil {
		return "", err
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](req.Temperature),
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &parser.ServiceError{StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", parser.ErrEmptyResponse
	}

	c.logger.Info("Gemini completion received",
		zap.String("model", c.cfg.Model),
		zap.Int("content_length", len(text)),
	)
	return text, nil
}
