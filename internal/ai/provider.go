package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderCompatible = "compatible"
)

var (
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	ErrRequestFailed = errors.New("llm request failed")
	ErrConfig        = errors.New("llm config is invalid")
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatConfig holds everything an adapter needs. Credentials are passed in
// here and never looked up from the environment at call time.
type ChatConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Provider turns a message list into the raw completion text. Adapters map
// rate limiting to ErrQuotaExceeded and every other failure, including an
// empty or malformed envelope, to ErrRequestFailed. Nothing is retried.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

func NewProvider(ctx context.Context, cfg ChatConfig) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: api key and model are required", ErrConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case ProviderCompatible:
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("%w: base url is required for %s", ErrConfig, ProviderCompatible)
		}
		return NewOpenAICompatibleClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfig, cfg.Provider)
	}
}

func quotaError(detail string) error {
	return fmt.Errorf("%w: %s", ErrQuotaExceeded, detail)
}

func requestError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRequestFailed, fmt.Sprintf(format, args...))
}
