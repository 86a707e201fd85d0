// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/report"
	"github.com/pdiddy/compliance-engine/internal/store"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored analyses, newest first",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored analyses by content, findings and status",
	Long: `Search matches the query case-insensitively against the analyzed text and
the text and context of every finding. Use --status to keep only one
verdict.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, searchCmd} {
		c.Flags().Int("limit", 0, "maximum results (0 = store.max_results)")
		c.Flags().Int("offset", 0, "number of results to skip")
		c.Flags().Bool("json", false, "output results as JSON")
	}
	searchCmd.Flags().String("status", "", "filter by status: compliant, non-compliant or error")
	showCmd.Flags().String("format", "text", "output format: text or json")

	rootCmd.AddCommand(historyCmd, showCmd, searchCmd, deleteCmd)
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Fallback) error) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	return withStore(cmd, func(ctx context.Context, s *store.Fallback) error {
		page, err := s.History(ctx, limit, offset)
		if err != nil {
			return err
		}
		return printPage(cmd, page)
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := store.SearchOptions{}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	status, _ := cmd.Flags().GetString("status")
	opts.Status = types.Status(status)
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.Offset, _ = cmd.Flags().GetInt("offset")

	return withStore(cmd, func(ctx context.Context, s *store.Fallback) error {
		page, err := s.Search(ctx, opts)
		if err != nil {
			return err
		}
		return printPage(cmd, page)
	})
}

func printPage(cmd *cobra.Command, page store.Page) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return report.JSON(page, cmd.OutOrStdout())
	}
	report.Records(page.Records, page.Total, cmd.OutOrStdout())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	return withStore(cmd, func(ctx context.Context, s *store.Fallback) error {
		rec, err := s.Get(ctx, args[0])
		if err != nil {
			return err
		}
		switch format {
		case "json":
			return report.JSON(rec, cmd.OutOrStdout())
		case "text", "":
			fmt.Fprintf(cmd.OutOrStdout(), "ID:          %s\nFile:        %s\nCreated:     %s\n",
				rec.ID, rec.FilePath, rec.CreatedAt.Format("2006-01-02 15:04:05"))
			report.Text(rec.Details, cmd.OutOrStdout())
			return nil
		default:
			return fmt.Errorf("unsupported format %q: use text or json", format)
		}
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Fallback) error {
		if err := s.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}
