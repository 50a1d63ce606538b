package cmd

import (
	"fmt"
	"strings"

	"jarvis/backend/go/pkg/mcp_host"

	"github.com/spf13/cobra"
)

// tools 子命令通过 stdio 启动 jarvis-mcp，直接使用 MCP 工具而不经过 HTTP 服务。
func toolsCmd() *cobra.Command {
	var (
		command string
		mcpArgs []string
	)
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or call the tools exposed by the JARVIS MCP server",
	}
	cmd.PersistentFlags().StringVar(&command, "mcp-command", envOr("JARVIS_MCP_COMMAND", "jarvis-mcp"), "MCP server executable")
	cmd.PersistentFlags().StringArrayVar(&mcpArgs, "mcp-arg", nil, "argument passed to the MCP server (repeatable)")

	connect := func(cmd *cobra.Command) (*mcp_host.Host, error) {
		host := mcp_host.NewHost()
		err := host.Connect(cmd.Context(), mcp_host.ConnectOptions{
			ServerName: "jarvis",
			Command:    command,
			Args:       mcpArgs,
		})
		if err != nil {
			return nil, err
		}
		return host, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := connect(cmd)
			if err != nil {
				return err
			}
			defer host.CloseAll()

			tools, err := host.ListTools(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, t.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "call [tool] [key=value...]",
		Short: "Call a tool, e.g. tools call chat prompt=hello",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}
			host, err := connect(cmd)
			if err != nil {
				return err
			}
			defer host.CloseAll()

			out, err := host.CallTool(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	})
	return cmd
}

func parseToolArgs(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}
