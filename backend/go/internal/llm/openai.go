package llm

import (
	"context"
	"fmt"

	"jarvis/backend/go/internal/models"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI 是一个用于 OpenAI 兼容接口的 LLM 客户端。
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI 创建一个新的 OpenAI 客户端。baseURL 为空时使用官方地址。
func NewOpenAI(model, apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// GenerateContent 使用 OpenAI API 生成内容。
func (o *OpenAI) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toOpenAIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	return toOpenAIResponse(&resp), nil
}

func (o *OpenAI) toOpenAIRequest(req *models.GenerateContentRequest) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req != nil {
		for _, c := range req.Content {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    chatRole(c.Role),
				Content: contentText(c),
			})
		}
	}
	return openai.ChatCompletionRequest{Model: o.model, Messages: messages}
}

func toOpenAIResponse(resp *openai.ChatCompletionResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{ModelVersion: resp.Model}
	for _, choice := range resp.Choices {
		out.Content = append(out.Content, models.TextContent(models.SpeakerModel, choice.Message.Content))
	}
	return out
}

// chatRole 把内部角色映射为 user/assistant 风格的聊天角色。
func chatRole(r models.SpeakerRole) string {
	if r == models.SpeakerModel || r == models.SpeakerAssistant {
		return "assistant"
	}
	return "user"
}

func contentText(c models.Content) string {
	var s string
	for _, p := range c.Parts {
		if p != nil {
			s += p.Text
		}
	}
	return s
}
