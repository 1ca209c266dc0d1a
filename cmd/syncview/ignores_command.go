package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"syncview/internal/cache"
)

func newIgnoresCommand(ctx *commandContext) *cobra.Command {
	ignoresCmd := &cobra.Command{
		Use:   "ignores",
		Short: "Read or replace a folder's ignore patterns",
	}

	ignoresCmd.AddCommand(newIgnoresGetCommand(ctx))
	ignoresCmd.AddCommand(newIgnoresSetCommand(ctx))

	return ignoresCmd
}

func newIgnoresGetCommand(ctx *commandContext) *cobra.Command {
	var expanded bool

	cmd := &cobra.Command{
		Use:   "get <folder>",
		Short: "Print the folder's ignore patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.IgnorePatterns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			patterns := resp.Ignore
			if expanded {
				patterns = resp.Expanded
			}
			out := cmd.OutOrStdout()
			if len(patterns) == 0 {
				fmt.Fprintln(out, "(no ignore patterns)")
				return nil
			}
			for _, pattern := range patterns {
				fmt.Fprintln(out, pattern)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&expanded, "expanded", false, "Show patterns with includes expanded")
	return cmd
}

func newIgnoresSetCommand(ctx *commandContext) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "set <folder> [pattern...]",
		Short: "Replace the folder's ignore patterns",
		Long: "Replaces the complete ignore pattern list. Patterns come from the\n" +
			"arguments, from --file, or from stdin when neither is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			patterns, err := collectPatterns(args[1:], fromFile)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.SetIgnorePatterns(cmd.Context(), folder, patterns); err != nil {
				return err
			}
			// New patterns change which items count as ignored everywhere in
			// the folder.
			if err := ctx.withStore(func(store *cache.Store) error {
				return store.InvalidateFolder(cmd.Context(), folder)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %d ignore pattern(s) for %s\n", len(patterns), folder)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Read patterns from a file, one per line")
	return cmd
}

func collectPatterns(args []string, fromFile string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	source := os.Stdin
	if fromFile != "" {
		file, err := os.Open(fromFile)
		if err != nil {
			return nil, fmt.Errorf("open pattern file: %w", err)
		}
		defer file.Close()
		source = file
	}

	var patterns []string
	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			patterns = append(patterns, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	return patterns, nil
}
