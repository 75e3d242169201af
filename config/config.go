package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

type Config struct {
	// Reddit API
	RedditClientID  string `json:"reddit_client_id"`
	RedditSecret    string `json:"reddit_secret"`
	RedditUserAgent string `json:"reddit_user_agent"`
	RedditAuthURL   string `json:"reddit_auth_url"`
	RedditAPIURL    string `json:"reddit_api_url"`

	// Language model
	LLMProvider    string `json:"llm_provider"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	Model          string `json:"model"`
	BackendURL     string `json:"backend_url"`
	MaxTokens      int    `json:"max_tokens"`

	// Conversation behaviour
	Streaming       bool `json:"streaming"`
	SentimentFilter bool `json:"sentiment_filter"`

	ListenAddr string `json:"listen_addr"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	Debug     bool   `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		RedditUserAgent: "RedditLens/1.0",
		RedditAuthURL:   "https://www.reddit.com/api/v1/access_token",
		RedditAPIURL:    "https://oauth.reddit.com",

		LLMProvider: ProviderOpenAI,
		MaxTokens:   4096,

		Streaming:       false,
		SentimentFilter: true,

		ListenAddr: ":8080",
		LogLevel:   "info",
		LogFormat:  "text",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("REDDIT_CLIENT_ID"); val != "" {
		c.RedditClientID = val
	}
	if val := os.Getenv("REDDIT_CLIENT_SECRET"); val != "" {
		c.RedditSecret = val
	}
	if val := os.Getenv("REDDIT_USER_AGENT"); val != "" {
		c.RedditUserAgent = val
	}
	if val := os.Getenv("REDDIT_AUTH_URL"); val != "" {
		c.RedditAuthURL = val
	}
	if val := os.Getenv("REDDIT_API_URL"); val != "" {
		c.RedditAPIURL = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}

	if val := os.Getenv("STREAMING"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Streaming = enabled
		}
	}
	if val := os.Getenv("SENTIMENT_FILTER"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.SentimentFilter = enabled
		}
	}

	if val := os.Getenv("LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
	}
	if val := os.Getenv("REDDITLENS_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// ModelName returns the configured model, falling back to the provider default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.LLMProvider == ProviderDeepSeek {
		return "deepseek-chat"
	}
	return "gpt-4o-mini"
}

// LLMAPIKey returns the key for the selected provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderDeepSeek {
		return c.DeepSeekAPIKey
	}
	return c.OpenAIAPIKey
}

// HasRedditCredentials reports whether the app-only OAuth pair is set.
func (c *Config) HasRedditCredentials() bool {
	return c.RedditClientID != "" && c.RedditSecret != ""
}

// Validate checks the settings needed to answer a prompt.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case ProviderOpenAI, ProviderDeepSeek:
	default:
		errs = append(errs, fmt.Errorf("unsupported llm provider %q", c.LLMProvider))
	}
	if c.LLMAPIKey() == "" {
		errs = append(errs, fmt.Errorf("api key for llm provider %q is not set", c.LLMProvider))
	}
	if !c.HasRedditCredentials() {
		errs = append(errs, errors.New("reddit client id and secret are required"))
	}
	if strings.TrimSpace(c.RedditUserAgent) == "" {
		errs = append(errs, errors.New("reddit user agent is required"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
