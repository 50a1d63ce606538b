// Package llm 封装了对外部大语言模型的调用。
package llm

import (
	"context"
	"errors"
	"fmt"

	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/models"
)

// ErrNotConfigured 表示没有可用的模型凭据，所有调用都会立即失败。
var ErrNotConfigured = errors.New("language model is not configured")

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
// 请求中最后一项 Content 是本次消息，其余为按时间顺序排列的历史。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// 所选提供商缺少凭据时返回 ErrNotConfigured。
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "", "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, ErrNotConfigured
		}
		model := cfg.Gemini.Model
		if model == "" {
			model = config.DefaultGeminiModel
		}
		return NewGemini(ctx, model, cfg.Gemini.APIKey)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), nil
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
