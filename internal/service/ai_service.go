package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/llm"
	"solr-admin-go/pkg/log"
)

const msgGenerateFailed = "Failed to generate response"

// AIService 负责把提示词转发给浏览器配置的模型服务。
type AIService interface {
	Generate(ctx context.Context, req model.GenerateRequest) (string, error)
	StreamGenerate(ctx context.Context, req model.GenerateRequest, writer llm.MessageWriter) error
}

type aiService struct {
	llmClient llm.Client
}

// NewAIService 创建一个新的 AIService 实例。
func NewAIService(llmClient llm.Client) AIService {
	return &aiService{llmClient: llmClient}
}

func (s *aiService) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" && req.Config.Enabled {
		return "", NewClientInputError("Prompt is required")
	}
	text, err := s.llmClient.Generate(ctx, req.Prompt, req.Config)
	if err != nil {
		log.Errorf("[AIService] 生成失败, provider: %s, error: %v", req.Config.Provider, err)
		return "", translateAIError(err)
	}
	return text, nil
}

func (s *aiService) StreamGenerate(ctx context.Context, req model.GenerateRequest, writer llm.MessageWriter) error {
	if strings.TrimSpace(req.Prompt) == "" && req.Config.Enabled {
		return NewClientInputError("Prompt is required")
	}
	if err := s.llmClient.StreamGenerate(ctx, req.Prompt, req.Config, writer); err != nil {
		log.Errorf("[AIService] 流式生成失败, provider: %s, error: %v", req.Config.Provider, err)
		return translateAIError(err)
	}
	return nil
}

func translateAIError(err error) *APIError {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return &APIError{Status: http.StatusBadRequest, Category: CategoryClientInput, Message: "AI service is not configured", Err: err}
	case errors.Is(err, llm.ErrMissingAPIKey):
		return &APIError{Status: http.StatusBadRequest, Category: CategoryClientInput, Message: "OpenRouter API key is required", Err: err}
	case errors.Is(err, llm.ErrUnknownProvider):
		return &APIError{Status: http.StatusBadRequest, Category: CategoryClientInput, Message: "Unsupported AI provider", Err: err}
	case errors.Is(err, llm.ErrOllamaUnavailable):
		return &APIError{
			Status:   http.StatusServiceUnavailable,
			Category: CategoryUnavailable,
			Message:  "Could not connect to Ollama. Please ensure Ollama is running on the specified URL.",
			Err:      err,
		}
	case errors.Is(err, llm.ErrModelNotFound):
		return &APIError{
			Status:   http.StatusNotFound,
			Category: CategoryNotFound,
			Message:  "The specified model is not available in Ollama. Please pull the model first.",
			Err:      err,
		}
	}

	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) && providerErr.Message != "" {
		return &APIError{Status: http.StatusInternalServerError, Category: CategoryUnknownUpstream, Message: providerErr.Message, Err: err}
	}
	return &APIError{Status: http.StatusInternalServerError, Category: CategoryUnknownUpstream, Message: msgGenerateFailed, Err: err}
}
