package model

const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// AIServiceConfig 由浏览器保存，并按值随每次生成请求传入；服务端从不保存它。
type AIServiceConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
	Model    string `json:"model,omitempty"`
}

// GenerateRequest 是 POST /ai/generate 的请求体。
type GenerateRequest struct {
	Prompt string          `json:"prompt"`
	Config AIServiceConfig `json:"config"`
}
