package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/munidigital/tramites-rag/internal/storage"
)

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			db, err := openDatabase(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			stats, err := storage.NewDocumentRepository(db).Stats(ctx)
			if err != nil {
				return fmt.Errorf("query stats: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			color.New(color.FgCyan, color.Bold).Println("Corpus")
			fmt.Printf("  Documents: %d\n", stats.TotalDocuments)
			fmt.Printf("  Chunks:    %d\n", stats.TotalChunks)
			fmt.Printf("  Pages:     %d\n", stats.TotalPages)

			printCounts := func(title string, counts map[string]int) {
				if len(counts) == 0 {
					return
				}
				keys := make([]string, 0, len(counts))
				for k := range counts {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				fmt.Println()
				color.New(color.FgCyan, color.Bold).Println(title)
				for _, k := range keys {
					fmt.Printf("  %-20s %d\n", k, counts[k])
				}
			}

			printCounts("By category", stats.Categories)
			printCounts("By document type", stats.DocumentTypes)

			return nil
		},
	}
}

// newClearCmd creates the clear subcommand.
func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every document and chunk from the corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			if !yes {
				fmt.Print("This deletes the entire corpus. Continue? [y/N] ")
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			db, err := openDatabase(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			deleted, err := storage.NewDocumentRepository(db).DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("clear corpus: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				return enc.Encode(map[string]int64{"deleted": deleted})
			}

			color.New(color.FgGreen).Printf("✓ Deleted %d documents\n", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")

	return cmd
}

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			db, err := openDatabase(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := storage.Migrate(ctx, db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "ok"})
			}

			color.New(color.FgGreen).Println("✓ Migrations applied")
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"version": "0.1.0"})
				return
			}
			fmt.Println("tramites-cli v0.1.0")
		},
	}
}
