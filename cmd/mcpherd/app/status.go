package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/cmd/mcpherd/app/ui"
	"github.com/mcpherd/mcpherd/pkg/config"
	"github.com/mcpherd/mcpherd/pkg/env"
	"github.com/mcpherd/mcpherd/pkg/wsl"
)

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	ConfigPath string             `json:"config_path"`
	Managed    []managedEntry     `json:"managed"`
	WSL        *wsl.Report        `json:"wsl,omitempty"`
	Overrides  map[string]ceShape `json:"overrides,omitempty"`
}

type managedEntry struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Transport string `json:"transport,omitempty"`
}

type ceShape struct {
	Disabled      bool   `json:"disabled,omitempty"`
	BinaryPath    string `json:"binary_path,omitempty"`
	AutoDetectWSL *bool  `json:"auto_detect_wsl,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the canonical configuration and environment summary",
		Long: `Show the canonical configuration path, the centrally managed MCP server entries,
per-client discovery overrides, and the WSL environment report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			configPath, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to resolve canonical config path: %w", err)
			}

			environ := &env.OSEnvironment{}
			report := wsl.NewDetector(environ).Detect(cmd.Context())

			if jsonOutput {
				out := statusOutput{ConfigPath: configPath, WSL: report}
				for name, server := range cfg.MCP {
					out.Managed = append(out.Managed, managedEntry{
						Name:      name,
						Command:   server.Command,
						Transport: server.Transport,
					})
				}
				sort.Slice(out.Managed, func(i, j int) bool {
					return out.Managed[i].Name < out.Managed[j].Name
				})
				if len(cfg.Clients.Overrides) > 0 {
					out.Overrides = make(map[string]ceShape, len(cfg.Clients.Overrides))
					for name, override := range cfg.Clients.Overrides {
						out.Overrides[name] = ceShape(override)
					}
				}
				return printJSON(out)
			}

			fmt.Printf("Canonical config: %s\n", configPath)
			if report.IsWSL {
				distro := report.DistroName
				if distro == "" {
					distro = "unknown distro"
				}
				fmt.Printf("Environment: WSL (%s)", distro)
				if report.HostUserProfile != "" {
					fmt.Printf(", Windows profile at %s", report.HostUserProfile)
				}
				fmt.Println()
			} else {
				fmt.Printf("Environment: %s\n", report.Platform)
			}

			return renderManaged(cfg)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

// renderManaged prints the managed entry table.
func renderManaged(cfg *config.Config) error {
	if len(cfg.MCP) == 0 {
		fmt.Println("No MCP server entries under management. Run 'mcpherd scan' to find some.")
		return nil
	}

	names := make([]string, 0, len(cfg.MCP))
	for name := range cfg.MCP {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		server := cfg.MCP[name]
		command := server.Command
		if len(server.Args) > 0 {
			command = command + " " + strings.Join(server.Args, " ")
		}
		rows = append(rows, []string{name, command, server.Transport})
	}
	return ui.RenderManagedTable(rows)
}
