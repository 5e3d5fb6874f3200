package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcpherd/mcpherd/pkg/client"
	"github.com/mcpherd/mcpherd/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage discovery settings in the canonical configuration",
	}
	cmd.AddCommand(newConfigAutoDetectWSLCmd())
	cmd.AddCommand(newConfigSetOverrideCmd())
	cmd.AddCommand(newConfigRemoveOverrideCmd())
	return cmd
}

func newConfigAutoDetectWSLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auto-detect-wsl [true|false]",
		Short: "Enable or disable the WSL fallback search globally",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[0])
			}

			err = config.UpdateConfig(func(cfg *config.Config) {
				cfg.Clients.AutoDetectWSL = enabled
			})
			if err != nil {
				return err
			}
			fmt.Printf("WSL auto-detection set to %v\n", enabled)
			return nil
		},
	}
}

func newConfigSetOverrideCmd() *cobra.Command {
	var disabled bool
	var binaryPath string

	cmd := &cobra.Command{
		Use:   "set-override [client]",
		Short: "Set a per-client discovery override",
		Long: `Set a per-client discovery override: disable detection for the client entirely,
or point detection at an explicit binary path checked before native lookup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := client.MCPClient(args[0])
			if _, err := client.AdapterFor(name); err != nil {
				return err
			}

			err := config.UpdateConfig(func(cfg *config.Config) {
				if cfg.Clients.Overrides == nil {
					cfg.Clients.Overrides = make(map[string]config.ClientOverride)
				}
				override := cfg.Clients.Overrides[string(name)]
				override.Disabled = disabled
				if cmd.Flags().Changed("binary-path") {
					override.BinaryPath = binaryPath
				}
				cfg.Clients.Overrides[string(name)] = override
			})
			if err != nil {
				return err
			}
			fmt.Printf("Override saved for %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&disabled, "disabled", false, "Skip detection for this client")
	cmd.Flags().StringVar(&binaryPath, "binary-path", "", "Explicit binary path checked before native detection")
	return cmd
}

func newConfigRemoveOverrideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-override [client]",
		Short: "Remove a per-client discovery override",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			err := config.UpdateConfig(func(cfg *config.Config) {
				delete(cfg.Clients.Overrides, name)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Override removed for %s\n", name)
			return nil
		},
	}
}
