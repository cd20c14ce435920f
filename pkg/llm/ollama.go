package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"

	"solr-admin-go/internal/model"
)

type ollamaProvider struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
}

func (c *client) ollama(cfg model.AIServiceConfig) *ollamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = c.cfg.OllamaURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = c.cfg.OllamaModel
	}
	return &ollamaProvider{
		httpClient:  c.httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       modelName,
		temperature: c.cfg.Temperature,
		maxTokens:   c.cfg.MaxTokens,
	}
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// post 发送 /api/generate 请求，并把连接失败与 404 映射成对应的哨兵错误。
func (p *ollamaProvider) post(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBytes, err := json.Marshal(ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  stream,
		Options: ollamaOptions{Temperature: p.temperature, NumPredict: p.maxTokens},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("%w: %v", ErrOllamaUnavailable, err)
		}
		return nil, &ProviderError{Provider: model.ProviderOllama, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, p.model)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		var body ollamaResponse
		_ = json.Unmarshal(bodyBytes, &body)
		return nil, &ProviderError{
			Provider:   model.ProviderOllama,
			StatusCode: resp.StatusCode,
			Message:    body.Error,
			Err:        fmt.Errorf("ollama returned non-200 status: %s", resp.Status),
		}
	}
	return resp, nil
}

func (p *ollamaProvider) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.post(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if body.Response == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	return body.Response, nil
}

// stream 读取 Ollama 的 NDJSON 流，每行一个分块，done 为 true 时结束。
func (p *ollamaProvider) stream(ctx context.Context, prompt string, writer MessageWriter) error {
	resp, err := p.post(ctx, prompt, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Error != "" {
			return &ProviderError{Provider: model.ProviderOllama, StatusCode: http.StatusOK, Message: chunk.Error}
		}
		if chunk.Response != "" {
			if err := writer.WriteMessage(websocket.TextMessage, []byte(chunk.Response)); err != nil {
				return fmt.Errorf("failed to write message to websocket: %w", err)
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}
	return nil
}
