package app

import (
	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/cmd/mcpherd/app/ui"
	"github.com/mcpherd/mcpherd/pkg/env"
	"github.com/mcpherd/mcpherd/pkg/scanner"
)

func newScanCmd() *cobra.Command {
	var jsonOutput bool
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan client configuration files for MCP server entries",
		Long: `Read the native configuration files of every supported client and list the MCP
server entries not yet under central management. Literal secrets are replaced with
environment variable placeholders and entries defined differently across clients
are reported as conflicts.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			report, err := runScan(projectRoot)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(report)
			}
			return ui.RenderScanReport(report)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "Project root for project-scoped config files (defaults to the working directory)")
	return cmd
}

// runScan performs a full scan pass and conflict analysis.
func runScan(projectRoot string) (scanner.Report, error) {
	cfg, err := loadConfig()
	if err != nil {
		return scanner.Report{}, err
	}

	projectRoot, err = resolveProjectRoot(projectRoot)
	if err != nil {
		return scanner.Report{}, err
	}

	var opts []scanner.Option
	if projectRoot != "" {
		opts = append(opts, scanner.WithProjectRoot(projectRoot))
	}

	scan, err := scanner.New(&env.OSEnvironment{}, cfg.ManagedNames(), opts...).Scan()
	if err != nil {
		return scanner.Report{}, err
	}
	return scanner.BuildReport(scan), nil
}
