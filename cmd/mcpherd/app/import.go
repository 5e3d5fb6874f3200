package app

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/cmd/mcpherd/app/ui"
	"github.com/mcpherd/mcpherd/pkg/config"
	"github.com/mcpherd/mcpherd/pkg/importer"
	"github.com/mcpherd/mcpherd/pkg/scanner"
)

func newImportCmd() *cobra.Command {
	var jsonOutput bool
	var dryRun bool
	var projectRoot string
	var names []string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import scanned MCP server entries into the canonical configuration",
		Long: `Scan client configuration files and merge the discovered entries into the
canonical configuration, partitioned into global and project scope. Conflicting
entries are never imported. Re-running import with the same inputs is a no-op.

By default every non-conflicting entry is imported; use --name to select a subset.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Release the import lock on interrupt instead of leaving a stale file.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			projectRoot, err := resolveProjectRoot(projectRoot)
			if err != nil {
				return err
			}

			report, err := runScan(projectRoot)
			if err != nil {
				return err
			}

			selected, err := selectServers(report.Discovered, names)
			if err != nil {
				return err
			}

			globalPath, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to resolve canonical config path: %w", err)
			}
			projectPath := config.ProjectConfigPath(projectRoot)

			result, err := importer.ImportServers(ctx, selected, globalPath, projectPath, dryRun)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(result)
			}
			return ui.RenderImportResult(result, dryRun)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be imported without writing anything")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "Project root for project-scoped entries (defaults to the working directory)")
	cmd.Flags().StringSliceVar(&names, "name", nil, "Import only the named entries (repeatable)")
	return cmd
}

// selectServers filters discovered entries down to the requested names. An
// unknown name is an error rather than a silent no-op.
func selectServers(discovered []scanner.DiscoveredServer, names []string) ([]scanner.DiscoveredServer, error) {
	if len(names) == 0 {
		return discovered, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	var selected []scanner.DiscoveredServer
	matched := make(map[string]struct{}, len(names))
	for _, server := range discovered {
		if _, ok := wanted[server.Name]; ok {
			selected = append(selected, server)
			matched[server.Name] = struct{}{}
		}
	}
	for name := range wanted {
		if _, ok := matched[name]; !ok {
			return nil, fmt.Errorf("no importable entry named %q was found", name)
		}
	}
	return selected, nil
}
