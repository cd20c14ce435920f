// Package llm 提供了按请求携带配置调用大模型的客户端，支持 OpenRouter 与本地 Ollama。
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sashabaranov/go-openai"

	"solr-admin-go/internal/config"
	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
)

// MessageWriter defines an interface for writing WebSocket messages.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

var (
	ErrNotConfigured     = errors.New("ai service is not enabled")
	ErrMissingAPIKey     = errors.New("openrouter api key is missing")
	ErrUnknownProvider   = errors.New("unknown ai provider")
	ErrOllamaUnavailable = errors.New("could not connect to ollama")
	ErrModelNotFound     = errors.New("model is not available in ollama")
	ErrInvalidResponse   = errors.New("invalid response from ai provider")
)

// ProviderError 表示模型服务返回了错误响应。Message 是服务端给出的错误说明，可能为空。
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Client defines the interface for an LLM client.
// 配置随每次调用传入，客户端本身不保存任何密钥。
type Client interface {
	Generate(ctx context.Context, prompt string, cfg model.AIServiceConfig) (string, error)
	// StreamGenerate 将生成的分块逐条写入 writer。
	StreamGenerate(ctx context.Context, prompt string, cfg model.AIServiceConfig, writer MessageWriter) error
}

type client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

// NewClient 创建 LLM 客户端。cfg 提供默认地址、默认模型与生成参数。
func NewClient(cfg config.AIConfig) Client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type provider interface {
	generate(ctx context.Context, prompt string) (string, error)
	stream(ctx context.Context, prompt string, writer MessageWriter) error
}

func (c *client) resolve(cfg model.AIServiceConfig) (provider, error) {
	if !cfg.Enabled {
		return nil, ErrNotConfigured
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case model.ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return c.openRouter(cfg), nil
	case model.ProviderOllama:
		return c.ollama(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func (c *client) Generate(ctx context.Context, prompt string, cfg model.AIServiceConfig) (string, error) {
	p, err := c.resolve(cfg)
	if err != nil {
		return "", err
	}
	log.Infof("[LLMClient] provider: %s, model: %s, prompt 长度: %d", cfg.Provider, cfg.Model, len(prompt))
	return p.generate(ctx, prompt)
}

func (c *client) StreamGenerate(ctx context.Context, prompt string, cfg model.AIServiceConfig, writer MessageWriter) error {
	p, err := c.resolve(cfg)
	if err != nil {
		return err
	}
	log.Infof("[LLMClient] 流式生成, provider: %s, model: %s", cfg.Provider, cfg.Model)
	return p.stream(ctx, prompt, writer)
}

// refererTransport 为 OpenRouter 请求附加 HTTP-Referer 头，用于应用归属统计。
type refererTransport struct {
	base    http.RoundTripper
	referer string
}

func (t *refererTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", t.referer)
	return t.base.RoundTrip(req)
}

type openRouterProvider struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func (c *client) openRouter(cfg model.AIServiceConfig) *openRouterProvider {
	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = strings.TrimRight(c.cfg.OpenRouterURL, "/")
	conf.HTTPClient = &http.Client{
		Timeout:   c.cfg.Timeout,
		Transport: &refererTransport{base: http.DefaultTransport, referer: c.cfg.Referer},
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = c.cfg.OpenRouterModel
	}
	return &openRouterProvider{
		api:         openai.NewClientWithConfig(conf),
		model:       modelName,
		temperature: c.cfg.Temperature,
		maxTokens:   c.cfg.MaxTokens,
	}
}

func (p *openRouterProvider) request(prompt string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Stream:      stream,
	}
}

func (p *openRouterProvider) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.api.CreateChatCompletion(ctx, p.request(prompt, false))
	if err != nil {
		return "", openRouterError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openRouterProvider) stream(ctx context.Context, prompt string, writer MessageWriter) error {
	stream, err := p.api.CreateChatCompletionStream(ctx, p.request(prompt, true))
	if err != nil {
		return openRouterError(err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return openRouterError(err)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := writer.WriteMessage(websocket.TextMessage, []byte(chunk.Choices[0].Delta.Content)); err != nil {
			return fmt.Errorf("failed to write message to websocket: %w", err)
		}
	}
}

func openRouterError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: model.ProviderOpenRouter, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: model.ProviderOpenRouter, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: model.ProviderOpenRouter, Err: err}
}
