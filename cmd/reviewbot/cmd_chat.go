package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/reviewbot/internal/bot"
	"github.com/user/reviewbot/pkg/llm"
)

var (
	youStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	hintStyle = lipgloss.NewStyle().Faint(true)
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("heavy", false, "use the heavy model")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logger := setupLogging(cfg)

		b, err := newBot(cfg, botKind(cmd), bot.NewLimiter(1), logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(os.Stdout, hintStyle.Render("/reset clears the conversation, /history shows it, /quit exits"))

		var handle llm.SessionHandle
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Fprint(os.Stdout, youStyle.Render("you> "))
			if !scanner.Scan() {
				fmt.Fprintln(os.Stdout)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())

			switch line {
			case "":
				continue
			case "/quit", "/exit":
				return nil
			case "/reset":
				b.Reset()
				handle = llm.SessionHandle{}
				fmt.Fprintln(os.Stdout, hintStyle.Render("conversation cleared"))
				continue
			case "/history":
				printHistory(b, handle)
				continue
			}

			reply, next := b.Converse(ctx, line, handle)
			if ctx.Err() != nil {
				return nil
			}
			if reply == "" {
				fmt.Fprintln(os.Stdout, hintStyle.Render("(no reply, see log)"))
				continue
			}
			if b.SupportsSessions() {
				handle = next
			}
			fmt.Fprintf(os.Stdout, "%s%s\n", botStyle.Render("bot> "), reply)
		}
	},
}

func printHistory(b *bot.Bot, handle llm.SessionHandle) {
	if b.SupportsSessions() {
		fmt.Fprintln(os.Stdout, hintStyle.Render(fmt.Sprintf("history is kept server-side (session_id=%s parent_message_id=%s)",
			handle.SessionID, handle.ParentMessageID)))
		return
	}
	memory := b.Memory()
	if len(memory) == 0 {
		fmt.Fprintln(os.Stdout, hintStyle.Render("(empty)"))
		return
	}
	for _, t := range memory {
		style := youStyle
		if t.Speaker == llm.RoleAssistant {
			style = botStyle
		}
		fmt.Fprintf(os.Stdout, "%s %s\n", style.Render(string(t.Speaker)+":"), t.Text)
	}
}
