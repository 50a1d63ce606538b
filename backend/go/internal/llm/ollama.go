package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"jarvis/backend/go/internal/models"

	olla "github.com/ollama/ollama/api"
)

const defaultOllamaModel = "llama3"

// Ollama 是一个用于本地 Ollama 服务的 LLM 客户端。
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama 创建一个新的 Ollama 客户端。baseURL 为空时默认为 "http://localhost:11434"。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if model == "" {
		model = defaultOllamaModel
	}
	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// GenerateContent 使用 Ollama 的 chat 接口以非流式方式生成内容。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	var messages []olla.Message
	if req != nil {
		for _, c := range req.Content {
			messages = append(messages, olla.Message{Role: chatRole(c.Role), Content: contentText(c)})
		}
	}

	stream := false
	var result olla.ChatResponse
	err := o.client.Chat(ctx, &olla.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
	}, func(resp olla.ChatResponse) error {
		result = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}

	return &models.GenerateContentResponse{
		Content:      []models.Content{models.TextContent(models.SpeakerModel, result.Message.Content)},
		ModelVersion: result.Model,
	}, nil
}
