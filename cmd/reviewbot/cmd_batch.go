package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/reviewbot/internal/bot"
	"github.com/user/reviewbot/internal/types"
	"github.com/user/reviewbot/pkg/llm"
)

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().Bool("heavy", false, "use the heavy model")
	batchCmd.Flags().Bool("json", false, "print results as JSON")
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Send every non-empty line of a file as an independent prompt",
	Long: `Send every non-empty line of a file as an independent prompt. Each prompt
gets its own bot; they run concurrently within llm.concurrency_limit and
replies are printed in input order. Failed prompts print an empty reply.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompts, err := readPrompts(args[0])
		if err != nil {
			return err
		}

		cfg := loadConfig()
		batchID := types.NewBatchID()
		logger := setupLogging(cfg).With("batch_id", batchID)
		limiter := bot.NewLimiter(int64(cfg.LLM.ConcurrencyLimit))
		kind := botKind(cmd)

		results := make([]types.BatchResult, len(prompts))
		g, ctx := errgroup.WithContext(cmd.Context())
		for i, prompt := range prompts {
			i, prompt := i, prompt
			key := types.NewItemKey(string(batchID), strconv.Itoa(i))
			g.Go(func() error {
				b, err := newBot(cfg, kind, limiter, logger.With("item", key))
				if err != nil {
					return err
				}
				reply, _ := b.Converse(ctx, prompt, llm.SessionHandle{})
				results[i] = types.BatchResult{Key: key, Prompt: prompt, Reply: reply}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("batch: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "## %d\n%s\n", i+1, r.Reply)
		}
		return nil
	},
}

func readPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	defer f.Close()

	var prompts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts in %s", path)
	}
	return prompts, nil
}
