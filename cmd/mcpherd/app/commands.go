// Package app provides the entry point for the mcpherd command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpherd/mcpherd/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "mcpherd",
	DisableAutoGenTag: true,
	Short:             "mcpherd discovers and consolidates MCP configuration across AI coding tools",
	Long: `mcpherd keeps MCP (Model Context Protocol) server configuration consistent across
AI coding assistants such as Claude Code, Cursor, VS Code, Cline, Roo Code, and Codex.

It detects which clients are installed (including Windows-side installs visible from
WSL), scans their native configuration files for integration entries, redacts literal
secrets, reports conflicting definitions, and imports the rest into a single canonical
configuration file.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the mcpherd CLI.
func NewRootCmd() *cobra.Command {
	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	if err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	// Add subcommands
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			logger.Infof("mcpherd version: %s", getVersion())
		},
	}
}

// getVersion returns the version string (will be set at build time)
func getVersion() string {
	// This will be replaced with actual version info using ldflags
	return "dev"
}
