package cmd

import (
	"fmt"
	"os"

	jhttp "jarvis/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "jarvis-cli",
		Short:        "A CLI client to interact with the JARVIS backend",
		Long:         `A command-line interface for chatting with JARVIS, teaching it rules, checking the server health and driving its MCP tools.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", envOr("JARVIS_SERVER", "http://localhost:10000"), "base URL of the JARVIS server")
	root.AddCommand(chatCmd())
	root.AddCommand(teachCmd())
	root.AddCommand(healthCmd())
	root.AddCommand(toolsCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}

// newClient opens the circuit after three consecutive server failures.
func newClient() (*jhttp.Client, error) {
	return jhttp.NewClient(serverURL, jhttp.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          "30s",
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
