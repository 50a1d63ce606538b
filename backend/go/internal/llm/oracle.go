package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/circuitbreaker"
)

// ErrEmptyResponse 表示模型返回了没有文本的响应（例如被安全策略拦截）。
var ErrEmptyResponse = errors.New("language model returned no text")

// ErrEmptyPrompt 表示没有可发送的文本。空消息不会被发给模型。
var ErrEmptyPrompt = errors.New("prompt has no text")

// ServiceError 包装了模型调用失败的原因。
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("llm %s: %v", e.Op, e.Err) }

func (e *ServiceError) Unwrap() error { return e.Err }

// Oracle 是对话编排所需的两个模型能力：带历史的自由对话，以及单轮的文本分类。
type Oracle struct {
	llm     LLM
	breaker *circuitbreaker.Breaker
}

// NewOracle 创建 Oracle。client 为 nil 时进入未配置模式，每次调用都返回 ErrNotConfigured。
// breaker 可以为 nil。
func NewOracle(client LLM, breaker *circuitbreaker.Breaker) *Oracle {
	return &Oracle{llm: client, breaker: breaker}
}

// Configured 报告是否有可用的模型。
func (o *Oracle) Configured() bool { return o.llm != nil }

// Converse 以 history（按时间升序）为上下文发送 prompt，返回模型的回复文本。
// 没有文本的历史轮次会被跳过；空白的 prompt 直接返回 ErrEmptyPrompt。
func (o *Oracle) Converse(ctx context.Context, prompt string, history []models.Turn) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &ServiceError{Op: "converse", Err: ErrEmptyPrompt}
	}
	contents := make([]models.Content, 0, len(history)+1)
	for _, t := range history {
		text := t.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		contents = append(contents, models.TextContent(t.Role, text))
	}
	contents = append(contents, models.TextContent(models.SpeakerUser, prompt))
	return o.generate(ctx, "converse", contents)
}

// Classify 发送单轮提示，返回去除首尾空白的原始输出。
func (o *Oracle) Classify(ctx context.Context, prompt string) (string, error) {
	out, err := o.generate(ctx, "classify", []models.Content{models.TextContent(models.SpeakerUser, prompt)})
	return strings.TrimSpace(out), err
}

func (o *Oracle) generate(ctx context.Context, op string, contents []models.Content) (string, error) {
	if o.llm == nil {
		return "", &ServiceError{Op: op, Err: ErrNotConfigured}
	}

	var text string
	err := o.breaker.Do(func() error {
		resp, err := o.llm.GenerateContent(ctx, &models.GenerateContentRequest{Content: contents})
		if err != nil {
			return err
		}
		text = resp.Text()
		if strings.TrimSpace(text) == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", &ServiceError{Op: op, Err: err}
	}
	return text, nil
}
