package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/munidigital/tramites-rag/internal/chunker"
	"github.com/munidigital/tramites-rag/internal/ingest"
	"github.com/munidigital/tramites-rag/internal/storage"
)

// newProcessCmd creates the process subcommand.
func newProcessCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "process <dir-or-pdf>",
		Short: "Ingest a PDF or a directory of PDFs into the corpus",
		Long: `Process extracts text from each PDF, detects the document type, chunks
the text, generates embeddings and stores everything in Postgres.

Already-ingested files (matched by content hash) are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			paths, err := collectPDFs(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no PDF files found in %s", args[0])
			}

			db, err := openDatabase(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := storage.Migrate(ctx, db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			pipeline := ingest.NewPipeline(
				storage.NewDocumentRepository(db),
				storage.NewChunkRepository(db),
				newEmbedder(),
				chunker.Options{
					MaxChunkSize: cfg.RAG.ChunkSize,
					Overlap:      cfg.RAG.ChunkOverlap,
				},
				logger,
			)

			var bar *progressbar.ProgressBar
			if !outputJSON {
				bar = progressbar.NewOptions(len(paths),
					progressbar.OptionSetDescription("Processing PDFs"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			results := make([]*ingest.Status, 0, len(paths))
			for _, path := range paths {
				status := pipeline.ProcessPDF(ctx, path, filepath.Base(path), category)
				results = append(results, status)
				if bar != nil {
					_ = bar.Add(1)
				}
			}

			var successful, failed int
			for _, r := range results {
				if r.State == storage.ProcessingStateCompleted {
					successful++
				} else {
					failed++
				}
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(ingest.BatchResult{
					Results:    results,
					Total:      len(results),
					Successful: successful,
					Failed:     failed,
				})
			}

			fmt.Println()
			for _, r := range results {
				if r.State == storage.ProcessingStateCompleted {
					color.New(color.FgGreen).Printf("✓ %s", r.Filename)
					if r.ChunksCreated > 0 {
						fmt.Printf(" (%d chunks)", r.ChunksCreated)
					}
					fmt.Println()
				} else {
					color.New(color.FgRed).Printf("✗ %s: %s\n", r.Filename, r.ErrorMessage)
				}
			}
			fmt.Printf("\nProcessed %d files: %d ok, %d failed\n", len(results), successful, failed)

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category override (default: detected from content)")

	return cmd
}

// collectPDFs returns the PDF files under path. A single PDF path is
// returned as-is.
func collectPDFs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil, fmt.Errorf("%s is not a PDF file", path)
		}
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".pdf") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	return paths, nil
}
