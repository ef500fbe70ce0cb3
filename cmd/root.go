package cmd

import (
	"fmt"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/docchat-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noColor bool
	// HTTP flags (override config if set)
	flagAPIURL         string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "DocChat CLI: upload documents and chat about them",
	Long: `DocChat uploads documents to a summarization backend, waits for processing to finish,
and lets you ask questions about any document you uploaded before.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.docchat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print HTTP diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config load it again and report the error
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	applyFlagOverrides()
}

func applyFlagOverrides() {
	f := rootCmd.PersistentFlags()
	if f.Changed("api-url") && flagAPIURL != "" {
		cfg.APIBaseURL = strings.TrimRight(flagAPIURL, "/")
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if noColor {
		cfg.Color = false
	}
}

// requireConfig returns the loaded configuration, loading it if startup failed.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	applyFlagOverrides()
	return cfg, nil
}
