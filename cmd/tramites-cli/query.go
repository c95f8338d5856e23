package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/munidigital/tramites-rag/internal/llm"
	"github.com/munidigital/tramites-rag/internal/rag"
	"github.com/munidigital/tramites-rag/internal/storage"
)

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question against the ingested corpus",
		Long: `Query embeds the question, retrieves the most similar chunks and asks
the generation model for an answer grounded on them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			question := strings.Join(args, " ")

			db, err := openDatabase(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			generator, err := llm.NewClient(llm.Config{
				APIKey:  cfg.Generation.APIKey,
				Model:   cfg.Generation.Model,
				BaseURL: cfg.Generation.BaseURL,
				Timeout: cfg.Generation.Timeout,
			})
			if err != nil {
				return fmt.Errorf("create generation client: %w", err)
			}

			service := rag.NewService(
				newEmbedder(),
				generator,
				storage.NewChunkRepository(db),
				nil, // no answer cache for one-shot queries
				rag.Options{
					SimilarityThreshold: cfg.RAG.SimilarityThreshold,
					TopK:                cfg.RAG.TopK,
				},
				logger,
			)

			resp, err := service.Query(ctx, question)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Println(resp.Answer)
			if len(resp.Sources) > 0 {
				fmt.Println()
				color.New(color.FgCyan).Println("Fuentes:")
				for _, src := range resp.Sources {
					fmt.Printf("  • %s\n", src)
				}
			}

			return nil
		},
	}

	return cmd
}
