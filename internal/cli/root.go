// Package cli implements the mediagen command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mediagen/internal/http/handlers"
	"mediagen/internal/infra"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "mediagen",
	Short:   "Generate images, videos and plans from the terminal",
	Long:    "Mediagen routes generation requests to the configured backends and reports normalized results.",
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp wires the provider graph the same way the API server does.
func newApp() (*handlers.App, error) {
	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv)
	return handlers.Wire(cfg, logger)
}
