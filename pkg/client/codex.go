package client

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// codexAdapter implements Adapter for the Codex CLI, which stores its
// integration entries in a TOML file instead of JSON.
type codexAdapter struct{}

type codexConfig struct {
	MCPServers map[string]codexServer `toml:"mcp_servers"`
}

type codexServer struct {
	Command   string            `toml:"command"`
	Args      []string          `toml:"args"`
	Env       map[string]string `toml:"env"`
	Transport string            `toml:"transport"`
}

func (*codexAdapter) ClientType() MCPClient { return Codex }
func (*codexAdapter) Description() string   { return "Codex CLI" }
func (*codexAdapter) BinaryNames() []string { return []string{"codex"} }
func (*codexAdapter) RequiresBinary() bool  { return true }
func (*codexAdapter) SchemaRootKey() string { return "mcp_servers" }

func (*codexAdapter) AppBundlePaths(_, _ string) []string { return nil }

func (*codexAdapter) ConfigPaths(home, _, _ string) []ConfigPath {
	return []ConfigPath{{
		Path: filepath.Join(home, ".codex", "config.toml"),
		Kind: LocationGlobal,
	}}
}

func (*codexAdapter) ValidateConfig(data []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return nil
}

func (*codexAdapter) ExtractEntries(_ ConfigPath, data []byte) ([]Entry, error) {
	var cfg codexConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	// TOML maps have no document order; sort for deterministic output.
	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		server := cfg.MCPServers[name]
		entries = append(entries, Entry{
			Name:      name,
			Command:   server.Command,
			Args:      server.Args,
			Env:       server.Env,
			Transport: server.Transport,
		})
	}
	return entries, nil
}

func (*codexAdapter) TranslateFromNativeEnv(envMap map[string]string) map[string]string {
	return translateEnvSyntax(EnvSyntaxDefault, envMap)
}

func (*codexAdapter) WindowsInstallCandidates(profile string) []string {
	return []string{
		strings.ReplaceAll(`%USERPROFILE%\AppData\Roaming\npm\codex.cmd`, profilePlaceholder, profile),
	}
}

func (*codexAdapter) WindowsConfigPath(profile string) string {
	return strings.ReplaceAll(`%USERPROFILE%\.codex\config.toml`, profilePlaceholder, profile)
}
