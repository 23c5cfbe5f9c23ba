package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cineverse/ambientfx/internal/fxconfig"
	"github.com/cineverse/ambientfx/internal/particles"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ambientfx",
	Short: "CineVerse decorative particle backdrops",
	Long: `ambientfx renders the CineVerse ambient particle and star backdrops.

Run "window" for a desktop window, "term" for a terminal rendition or
"report" for a headless statistics run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ambientfx.yaml", "Layer configuration file (defaults apply if missing)")

	rootCmd.AddCommand(windowCmd, termCmd, reportCmd)
}

// loadLayers reads the configured layer file.
func loadLayers(path string) ([]particles.Config, error) {
	f, err := fxconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return f.Configs()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
