// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
// 注意：Solr 凭据与 AI 密钥从不出现在这里，它们随每个请求传入。
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Solr   SolrConfig   `mapstructure:"solr"`
	AI     AIConfig     `mapstructure:"ai"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// SolrConfig 控制发往 Solr 管理/查询 API 的出站请求。
type SolrConfig struct {
	// ProbeTimeout 用于列表、状态、schema 读取和连通性探测。
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	// WriteTimeout 为 0 时沿用 transport 默认行为（不设超时）。
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	DowngradeHTTPS      bool          `mapstructure:"downgrade_https"`
	DefaultCommitWithin int           `mapstructure:"default_commit_within"`
	DefaultRows         int           `mapstructure:"default_rows"`
}

// AIConfig 存储大语言模型提供方的默认值。
type AIConfig struct {
	OpenRouterURL   string        `mapstructure:"openrouter_url"`
	OllamaURL       string        `mapstructure:"ollama_url"`
	OpenRouterModel string        `mapstructure:"openrouter_model"`
	OllamaModel     string        `mapstructure:"ollama_model"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Referer         string        `mapstructure:"referer"`
}

// Default 返回仅包含默认值的配置，测试和未提供配置文件时使用。
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值都是合法的，这里不会失败
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 配置文件不存在时使用默认值；环境变量 SOLRADMIN_* 可以覆盖任意键。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}

// Load 读取配置但不修改全局变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SOLRADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// SetConfigFile 指向不存在的文件时 viper 返回 *fs.PathError，而不是 ConfigFileNotFoundError
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	v.SetDefault("solr.probe_timeout", "5s")
	v.SetDefault("solr.write_timeout", "0s")
	v.SetDefault("solr.downgrade_https", false)
	v.SetDefault("solr.default_commit_within", 1000)
	v.SetDefault("solr.default_rows", 10)

	v.SetDefault("ai.openrouter_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.ollama_url", "http://localhost:11434")
	v.SetDefault("ai.openrouter_model", "mistralai/mistral-7b-instruct")
	v.SetDefault("ai.ollama_model", "mistral")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.referer", "https://stackblitz.com")
}
