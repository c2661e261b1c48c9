package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Harshitk-cp/sahai/internal/bootstrap"
	"github.com/Harshitk-cp/sahai/internal/catalog"
	"github.com/Harshitk-cp/sahai/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	catalogPath string
	verbose     bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sahaictl",
	Short: "Operator tool for the SahAI conversation engine",
	Long: `sahaictl runs the SahAI engine locally without the HTTP server.

It can hold a conversation on the terminal, browse and search the scheme
catalog, and evaluate eligibility for a set of facts. Configuration is read
from the same environment (SAHAI_ENV, .env and .env.secret) as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if catalogPath != "" {
			if err := os.Setenv("CATALOG_SOURCE", "file"); err != nil {
				return err
			}
			if err := os.Setenv("CATALOG_PATH", catalogPath); err != nil {
				return err
			}
		}
		if verbose {
			l, err := bootstrap.NewLogger("debug")
			if err != nil {
				return err
			}
			logger = l
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Load the catalog from a JSON or YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(eligibilityCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadCatalog reads the configured catalog without a database unless
// CATALOG_SOURCE asks for one.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	pool, err := bootstrap.Connect(ctx, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		defer pool.Close()
	}

	src, err := bootstrap.CatalogSource(pool)
	if err != nil {
		return nil, err
	}
	return catalog.Load(ctx, src)
}
