package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	jhttp "jarvis/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

type chatRequest struct {
	Prompt         string `json:"prompt"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
}

func chatCmd() *cobra.Command {
	var conversationID string
	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a message, or start an interactive session when no prompt is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				reply, err := sendChat(cmd.Context(), client, args[0], conversationID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
				fmt.Fprintf(cmd.ErrOrStderr(), "conversation: %s\n", reply.ConversationID)
				return nil
			}
			return repl(cmd.Context(), client, cmd.InOrStdin(), cmd.OutOrStdout(), conversationID)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	return cmd
}

func sendChat(ctx context.Context, client *jhttp.Client, prompt, conversationID string) (*chatResponse, error) {
	var reply chatResponse
	err := client.PostJSON(ctx, "/api/chat", chatRequest{Prompt: prompt, ConversationID: conversationID}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// repl reads one prompt per line and keeps the conversation id between turns.
func repl(ctx context.Context, client *jhttp.Client, in io.Reader, out io.Writer, conversationID string) error {
	fmt.Fprintln(out, "Type a message, or 'exit' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		reply, err := sendChat(ctx, client, line, conversationID)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		conversationID = reply.ConversationID
		fmt.Fprintf(out, "JARVIS: %s\n", reply.Text)
	}
}
