package mcp_host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrToolNotFound 表示没有任何已连接的服务端提供该工具。
var ErrToolNotFound = errors.New("tool not found")

// Host 是一个 MCP 客户端主机
// 它可以连接并管理多个 MCP 服务端，聚合所有工具，并提供统一的调用入口。
type Host struct {
	servers map[string]client.MCPClient
	mu      sync.RWMutex
}

// ConnectOptions 定义了通过 stdio 启动并连接 MCP 服务端的配置项
type ConnectOptions struct {
	ServerName string
	Command    string
	Args       []string
	Env        []string
}

// NewHost 创建一个新的 Host 实例
func NewHost() *Host {
	return &Host{servers: make(map[string]client.MCPClient)}
}

// Connect 启动服务端进程并完成初始化握手。
func (h *Host) Connect(ctx context.Context, opts ConnectOptions) error {
	c, err := client.NewStdioMCPClient(opts.Command, opts.Env, opts.Args...)
	if err != nil {
		return fmt.Errorf("failed to create stdio client: %w", err)
	}
	return h.Attach(ctx, opts.ServerName, c)
}

// Attach 初始化一个已经启动的客户端并以 name 注册。失败时关闭该客户端。
func (h *Host) Attach(ctx context.Context, name string, c client.MCPClient) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.servers[name]; exists {
		_ = c.Close()
		return fmt.Errorf("server with name '%s' already connected", name)
	}

	initRequest := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "jarvis-cli",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	h.servers[name] = c
	return nil
}

// names 返回排好序的服务端名称，调用方需持有读锁。
func (h *Host) names() []string {
	names := make([]string, 0, len(h.servers))
	for name := range h.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTools 聚合所有服务端的工具。部分服务端失败时仍返回其余工具，并附带合并后的错误。
func (h *Host) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var tools []mcp.Tool
	var errs []error
	for _, name := range h.names() {
		res, err := h.servers[name].ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		tools = append(tools, res.Tools...)
	}
	return tools, errors.Join(errs...)
}

// CallTool 在第一个提供该工具的服务端上调用它，返回拼接后的文本内容。
// 工具自身报告的错误也作为 error 返回。
func (h *Host) CallTool(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, name := range h.names() {
		c := h.servers[name]
		res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			continue
		}
		for _, tool := range res.Tools {
			if tool.Name != toolName {
				continue
			}
			var req mcp.CallToolRequest
			req.Params.Name = toolName
			req.Params.Arguments = args
			result, err := c.CallTool(ctx, req)
			if err != nil {
				return "", fmt.Errorf("failed to call tool: %w", err)
			}
			text := resultText(result)
			if result.IsError {
				return "", errors.New(text)
			}
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, toolName)
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// CloseAll 关闭所有到服务端的连接并清理资源
func (h *Host) CloseAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, c := range h.servers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.servers = make(map[string]client.MCPClient)
	return errors.Join(errs...)
}
