package llm

import (
	"context"

	"jarvis/backend/go/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次调用都新建聊天会话，历史由调用方提供，因此实例可以并发使用。
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini 创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: client.GenerativeModel(model)}, nil
}

// GenerateContent 把历史装入新的聊天会话，再发送最后一条消息。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	history, last := splitRequest(req)
	parts := toGenaiParts(last)
	if len(parts) == 0 {
		return nil, ErrEmptyPrompt
	}

	cs := g.model.StartChat()
	cs.History = toGenaiHistory(history)

	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return fromGenaiResponse(resp), nil
}

// Close 释放底层的 gRPC 连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}

// splitRequest 把请求拆成历史和本次消息。
func splitRequest(req *models.GenerateContentRequest) ([]models.Content, models.Content) {
	if req == nil || len(req.Content) == 0 {
		return nil, models.Content{Role: models.SpeakerUser}
	}
	n := len(req.Content)
	return req.Content[:n-1], req.Content[n-1]
}

// toGenaiHistory 转换历史。Gemini 拒绝没有 parts 的内容，这些条目被丢弃；
// 丢弃后相邻的同角色条目合并为一条。
func toGenaiHistory(history []models.Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, c := range history {
		parts := toGenaiParts(c)
		if len(parts) == 0 {
			continue
		}
		role := "user"
		if c.Role == models.SpeakerModel || c.Role == models.SpeakerAssistant {
			role = "model"
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, parts...)
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out
}

func toGenaiParts(c models.Content) []genai.Part {
	parts := make([]genai.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, genai.Text(p.Text))
		}
	}
	return parts
}

// fromGenaiResponse 将 GenAI 响应转换为内部响应格式，只保留文本片段。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		content := models.Content{Role: models.SpeakerModel}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				content.Parts = append(content.Parts, &models.Part{Text: string(t)})
			}
		}
		out.Content = append(out.Content, content)
	}
	return out
}
