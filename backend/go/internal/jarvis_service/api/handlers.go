package api

import (
	"context"
	"fmt"
	"net/http"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/internal/orchestrator"

	"github.com/gin-gonic/gin"
)

// Conversations 是对话编排器对外暴露的能力。
type Conversations interface {
	Handle(ctx context.Context, prompt, conversationID string) (*orchestrator.Reply, error)
}

// RuleTeacher 直接解析规则教学语句，绕过意图分类。
type RuleTeacher interface {
	ParseRule(ctx context.Context, prompt string) string
}

// Journal 记录审计日志。
type Journal interface {
	Info(ctx context.Context, message string)
	Warn(ctx context.Context, message string)
	Critical(ctx context.Context, message string)
}

const internalErrorMessage = "An internal server error occurred."

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	conversations Conversations
	teacher       RuleTeacher
	journal       Journal
	serviceName   string
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(conversations Conversations, teacher RuleTeacher, journal Journal, serviceName string) *Handler {
	return &Handler{
		conversations: conversations,
		teacher:       teacher,
		journal:       journal,
		serviceName:   serviceName,
	}
}

// ChatRequest 定义了对话请求的 JSON 结构。prompt 必须出现，但可以为空字符串。
type ChatRequest struct {
	Prompt         *string `json:"prompt" binding:"required"`
	ConversationID string  `json:"conversation_id"`
}

// Chat 处理一条用户消息。
func (h *Handler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.journal.Warn(ctx, "Request to /api/chat without the 'prompt' field.")
		c.JSON(http.StatusBadRequest, gin.H{"error": "The 'prompt' field is required."})
		return
	}
	if err := models.ValidateConversationID(req.ConversationID); err != nil {
		h.journal.Warn(ctx, "Request to /api/chat with an oversized 'conversation_id'.")
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("The 'conversation_id' field must be at most %d characters.", models.MaxConversationIDLength)})
		return
	}

	target := req.ConversationID
	if target == "" {
		target = "new"
	}
	h.journal.Info(ctx, fmt.Sprintf("New request on /api/chat for conversation: %s", target))

	reply, err := h.conversations.Handle(ctx, *req.Prompt, req.ConversationID)
	if err != nil {
		h.journal.Critical(ctx, fmt.Sprintf("Fatal error on /api/chat: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, reply)
}

// TeachRuleRequest 定义了规则教学请求的 JSON 结构。
type TeachRuleRequest struct {
	Rule *string `json:"rule" binding:"required"`
}

// TeachRule 直接调用规则解析器。
func (h *Handler) TeachRule(c *gin.Context) {
	var req TeachRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The 'rule' field is required."})
		return
	}

	text := h.teacher.ParseRule(c.Request.Context(), *req.Rule)
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Health 返回固定的健康检查结果。
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.serviceName})
}

// Explain 是预留的推理解释接口。
func (h *Handler) Explain(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Endpoint under development."})
}
