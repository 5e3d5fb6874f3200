package app

import (
	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/cmd/mcpherd/app/ui"
	"github.com/mcpherd/mcpherd/pkg/discovery"
	"github.com/mcpherd/mcpherd/pkg/env"
)

func newDiscoverCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Detect which MCP clients are installed on this machine",
		Long: `Detect every supported MCP client: binary lookup on PATH, application bundle
presence, configured binary path overrides, and (inside WSL) Windows-side installs
reachable through the /mnt/c mount. Also reports the validity of each client's
configuration files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			outcome := discovery.New(cfg, &env.OSEnvironment{}).DiscoverAll(cmd.Context())

			if jsonOutput {
				return printJSON(outcome)
			}
			return ui.RenderDiscoveryTable(outcome)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}
