// Package mcptools exposes the conversation core as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/internal/orchestrator"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version 是服务的版本号
var Version = "1.0"

// Conversations handles chat messages.
type Conversations interface {
	Handle(ctx context.Context, prompt, conversationID string) (*orchestrator.Reply, error)
}

// RuleTeacher parses a rule-teaching sentence.
type RuleTeacher interface {
	ParseRule(ctx context.Context, prompt string) string
}

// RuleLister lists stored rules.
type RuleLister interface {
	ListRules(ctx context.Context) ([]models.Rule, error)
}

// Journal records audit events.
type Journal interface {
	Critical(ctx context.Context, message string)
}

// Handler implements the tool callbacks.
type Handler struct {
	conversations Conversations
	teacher       RuleTeacher
	rules         RuleLister
	journal       Journal
}

// NewHandler creates a Handler.
func NewHandler(conversations Conversations, teacher RuleTeacher, rules RuleLister, journal Journal) *Handler {
	return &Handler{conversations: conversations, teacher: teacher, rules: rules, journal: journal}
}

// NewServer registers the chat, teach_rule and list_rules tools.
func NewServer(h *Handler) *server.MCPServer {
	s := server.NewMCPServer(
		"jarvis",
		Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool(
		"chat",
		mcp.WithDescription("Send a message to JARVIS. Returns the reply and the conversation id to use for follow-up messages."),
		mcp.WithString("prompt",
			mcp.Description("The user message"),
			mcp.Required(),
		),
		mcp.WithString("conversation_id",
			mcp.Description("Existing conversation id; omit to start a new conversation"),
		),
	), h.HandleChat)

	s.AddTool(mcp.NewTool(
		"teach_rule",
		mcp.WithDescription("Teach JARVIS a rule in the form 'If <condition>, then <action>'."),
		mcp.WithString("rule",
			mcp.Description("The rule sentence"),
			mcp.Required(),
		),
	), h.HandleTeachRule)

	s.AddTool(mcp.NewTool(
		"list_rules",
		mcp.WithDescription("List every stored rule with its priority and active flag."),
	), h.HandleListRules)

	return s
}

// HandleChat 处理 chat 工具请求。
func (h *Handler) HandleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	conversationID := request.GetString("conversation_id", "")
	if err := models.ValidateConversationID(conversationID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := h.conversations.Handle(ctx, prompt, conversationID)
	if err != nil {
		h.journal.Critical(ctx, fmt.Sprintf("Fatal error in MCP tool chat: %v", err))
		return mcp.NewToolResultError("An internal server error occurred."), nil
	}
	return jsonResult(reply)
}

// HandleTeachRule 处理 teach_rule 工具请求。
func (h *Handler) HandleTeachRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rule, err := request.RequireString("rule")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(h.teacher.ParseRule(ctx, rule)), nil
}

// HandleListRules 处理 list_rules 工具请求。
func (h *Handler) HandleListRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := h.rules.ListRules(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error listing rules: %v", err)), nil
	}
	return jsonResult(rules)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
