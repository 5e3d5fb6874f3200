// Package client defines the supported MCP clients and the adapter surface
// used to read their native configuration schemas. Each supported client is
// described by exactly one adapter; adding a client means adding an adapter,
// never branching inside the scanner.
package client

import (
	"fmt"

	"github.com/mcpherd/mcpherd/pkg/errors"
)

// MCPClient is an enum of supported MCP clients.
type MCPClient string

const (
	// ClaudeCode represents the Claude Code CLI.
	ClaudeCode MCPClient = "claude-code"
	// Cursor represents the Cursor editor.
	Cursor MCPClient = "cursor"
	// VSCode represents the standard VS Code editor.
	VSCode MCPClient = "vscode"
	// Cline represents the Cline extension for VS Code.
	Cline MCPClient = "cline"
	// RooCode represents the Roo Code extension for VS Code.
	RooCode MCPClient = "roo-code"
	// Codex represents the Codex CLI.
	Codex MCPClient = "codex"
)

// LocationKind classifies where within a client's configuration an entry was
// found.
type LocationKind string

const (
	// LocationGlobal is the client's user-global configuration.
	LocationGlobal LocationKind = "global"
	// LocationProject is a per-project configuration file.
	LocationProject LocationKind = "project"
	// LocationDirectoryOverride is a per-directory override nested inside a
	// global configuration file.
	LocationDirectoryOverride LocationKind = "directory-override"
)

// ConfigPath couples a native config file path with the scope it covers.
type ConfigPath struct {
	Path string
	Kind LocationKind
}

// Entry is one integration entry in a client's native schema, before any
// normalization or redaction.
type Entry struct {
	Name      string
	Command   string
	Args      []string
	Env       map[string]string
	Transport string

	// Directory is the absolute working directory an entry is scoped to, for
	// clients with per-directory override maps. Empty otherwise.
	Directory string
}

// Adapter is implemented once per supported client. It confines every
// client-specific schema nuance so the scanner and discovery layers stay
// uniform.
type Adapter interface {
	// ClientType returns the client identity.
	ClientType() MCPClient

	// Description returns a human-readable client name.
	Description() string

	// BinaryNames returns candidate binary names for PATH lookup.
	BinaryNames() []string

	// AppBundlePaths returns candidate application or extension install
	// paths for the platform, in priority order.
	AppBundlePaths(home, platform string) []string

	// RequiresBinary indicates whether binary presence is mandatory for the
	// client to be considered installed.
	RequiresBinary() bool

	// ConfigPaths returns the client's native config file paths per scope.
	// The project path is only included when projectRoot is non-empty.
	ConfigPaths(home, platform, projectRoot string) []ConfigPath

	// SchemaRootKey returns the top-level key under which the client nests
	// its integration entries.
	SchemaRootKey() string

	// ValidateConfig performs a structural parse check on raw config data.
	ValidateConfig(data []byte) error

	// ExtractEntries parses raw config data from the given path and returns
	// the integration entries it declares.
	ExtractEntries(path ConfigPath, data []byte) ([]Entry, error)

	// TranslateFromNativeEnv normalizes the client's environment placeholder
	// syntax to the ${VAR} convention.
	TranslateFromNativeEnv(envMap map[string]string) map[string]string

	// WindowsInstallCandidates returns Windows-style install paths to probe
	// when falling back to WSL host detection. profile is the Windows user
	// profile path (e.g. C:\Users\jeff).
	WindowsInstallCandidates(profile string) []string

	// WindowsConfigPath returns the Windows-side config path for the given
	// profile, or "" when unknown.
	WindowsConfigPath(profile string) string
}

// Adapters returns the closed set of supported client adapters in fixed
// registration order. The order is stable so that discovery and scan output
// are deterministic for identical inputs.
func Adapters() []Adapter {
	adapters := make([]Adapter, 0, len(supportedIntegrations)+1)
	for i := range supportedIntegrations {
		adapters = append(adapters, &jsonAdapter{cfg: &supportedIntegrations[i]})
	}
	adapters = append(adapters, &codexAdapter{})
	return adapters
}

// AdapterFor returns the adapter for the named client.
func AdapterFor(name MCPClient) (Adapter, error) {
	for _, adapter := range Adapters() {
		if adapter.ClientType() == name {
			return adapter, nil
		}
	}
	return nil, errors.NewInvalidArgumentError(fmt.Sprintf("unknown client: %s", name), nil)
}
