package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/user/reviewbot/internal/bot"
	"github.com/user/reviewbot/pkg/llm"
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().Bool("heavy", false, "use the heavy model")
	askCmd.Flags().String("session-id", "", "session id from a previous reply")
	askCmd.Flags().String("parent-id", "", "parent message id from a previous reply")
}

var askCmd = &cobra.Command{
	Use:   "ask [message|-]",
	Short: "Send one message and print the reply",
	Long: `Send one message and print the reply. With "-" or no argument and piped
input, the message is read from stdin. For backends with server-side
sessions the new session handle is printed to stderr; pass it back with
--session-id and --parent-id to continue the conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := readMessage(args)
		if err != nil {
			return err
		}

		cfg := loadConfig()
		logger := setupLogging(cfg)

		b, err := newBot(cfg, botKind(cmd), bot.NewLimiter(int64(cfg.LLM.ConcurrencyLimit)), logger)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session-id")
		parentID, _ := cmd.Flags().GetString("parent-id")

		resp, err := b.Exchange(cmd.Context(), message, llm.SessionHandle{SessionID: sessionID, ParentMessageID: parentID})
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}

		fmt.Fprintln(os.Stdout, resp.Text)
		if b.SupportsSessions() {
			fmt.Fprintf(os.Stderr, "session_id=%s parent_message_id=%s\n", resp.Handle.SessionID, resp.Handle.ParentMessageID)
		}
		return nil
	},
}

func readMessage(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no message given")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		return "", errors.New("no message given")
	}
	return message, nil
}
