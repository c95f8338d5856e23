// Package main provides the tramites CLI for corpus administration: bulk
// PDF ingestion, ad-hoc queries, statistics and cleanup.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/munidigital/tramites-rag/internal/config"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/observability"
	"github.com/munidigital/tramites-rag/internal/storage"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "tramites-cli",
	Short: "Administration CLI for the municipal procedures RAG backend",
	Long: `tramites-cli manages the document corpus behind the tramites API.

Use this tool to:
- Ingest directories of municipal PDFs (formularios, ordenanzas, guías)
- Ask ad-hoc questions against the ingested corpus
- Inspect corpus statistics
- Clear the corpus and rerun migrations

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		level := cfg.Observability.LogLevel
		if outputJSON {
			logFormat = "json"
		}
		if !verbose {
			level = "warn"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:   level,
			Format:  logFormat,
			Service: "tramites-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("CONFIG_PATH"), "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase opens the Postgres connection from the loaded configuration.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	return storage.Open(ctx, storage.PostgresConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

// newEmbedder builds the embedding client, falling back to the mock when
// no API key is configured so local runs work without credentials.
func newEmbedder() embedding.Embedder {
	if cfg.Embedding.APIKey == "" {
		logger.Warn().Msg("no API key configured, using mock embeddings")
		return embedding.NewMockClient(cfg.Embedding.Dimension)
	}

	client, err := embedding.NewClient(embedding.Config{
		APIKey:       cfg.Embedding.APIKey,
		Model:        cfg.Embedding.Model,
		BaseURL:      cfg.Embedding.BaseURL,
		Dimension:    cfg.Embedding.Dimension,
		RequestDelay: cfg.Embedding.RequestDelay,
		Timeout:      cfg.Embedding.Timeout,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create embedding client, using mock")
		return embedding.NewMockClient(cfg.Embedding.Dimension)
	}

	return client
}
