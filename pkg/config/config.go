// Package config contains the definition of the canonical configuration
// document and logic required to load and update it.
package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/mcpherd/mcpherd/pkg/fileutils"
)

// CurrentVersion is the canonical document schema version.
const CurrentVersion = 1

// projectConfigFile is the name of the project-scoped canonical file.
const projectConfigFile = ".mcpherd.yaml"

// Config represents the canonical configuration document.
type Config struct {
	Version int                  `yaml:"version"`
	MCP     map[string]MCPServer `yaml:"mcp"`
	Clients Clients              `yaml:"clients,omitempty"`
}

// MCPServer is one centrally managed integration entry.
type MCPServer struct {
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	Transport string            `yaml:"transport,omitempty"`
}

// Clients contains settings controlling client discovery.
type Clients struct {
	// AutoDetectWSL enables the WSL fallback search for all clients unless
	// overridden per client.
	AutoDetectWSL bool `yaml:"auto_detect_wsl"`

	// Overrides adjusts discovery per client, keyed by client identity.
	Overrides map[string]ClientOverride `yaml:"overrides,omitempty"`
}

// ClientOverride adjusts discovery behavior for a single client.
type ClientOverride struct {
	// Disabled skips detection for the client entirely.
	Disabled bool `yaml:"disabled,omitempty"`

	// BinaryPath is an explicit binary path checked before native
	// detection. A leading ~ is expanded to the home directory.
	BinaryPath string `yaml:"binary_path,omitempty"`

	// AutoDetectWSL overrides the global WSL fallback flag for this client.
	AutoDetectWSL *bool `yaml:"auto_detect_wsl,omitempty"`
}

// defaultPathGenerator generates the default config path using xdg.
var defaultPathGenerator = func() (string, error) {
	return xdg.ConfigFile("mcpherd/config.yaml")
}

// getConfigPath is the current path generator, can be replaced in tests.
var getConfigPath = defaultPathGenerator

// DefaultConfigPath returns the global canonical config path.
func DefaultConfigPath() (string, error) {
	return getConfigPath()
}

// ProjectConfigPath returns the project-scoped canonical config path for the
// given project root.
func ProjectConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, projectConfigFile)
}

// LockFilePath returns the well-known lock file guarding canonical mutation.
func LockFilePath() (string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return "", fmt.Errorf("unable to fetch config path: %w", err)
	}
	return configPath + ".lock", nil
}

// createNewConfigWithDefaults creates a new config with default values.
func createNewConfigWithDefaults() Config {
	return Config{
		Version: CurrentVersion,
		MCP:     make(map[string]MCPServer),
	}
}

// LoadOrCreateConfig fetches the canonical configuration.
// If it does not already exist - it will create a new config file with
// default values.
func LoadOrCreateConfig() (*Config, error) {
	return LoadOrCreateConfigWithPath("")
}

// LoadOrCreateConfigWithPath fetches the canonical configuration from a
// specific path. If configPath is empty, it uses the default path.
func LoadOrCreateConfigWithPath(configPath string) (*Config, error) {
	store := NewLocalStore(configPath)
	return store.Load(context.Background())
}

// save serializes the config struct and writes it to disk.
func (c *Config) save() error {
	return c.saveToPath("")
}

// saveToPath serializes the config struct and writes it to a specific path.
// If configPath is empty, it uses the default path.
func (c *Config) saveToPath(configPath string) error {
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return fmt.Errorf("unable to fetch config path: %w", err)
		}
	}

	configBytes, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}

	if err := fileutils.AtomicWriteFile(configPath, configBytes, 0600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// ManagedNames returns the set of entry names tracked by canonical
// configuration.
func (c *Config) ManagedNames() map[string]struct{} {
	names := make(map[string]struct{}, len(c.MCP))
	for name := range c.MCP {
		names[name] = struct{}{}
	}
	return names
}

// OverrideFor returns the discovery override for the named client, if any.
func (c *Config) OverrideFor(name string) (ClientOverride, bool) {
	override, ok := c.Clients.Overrides[name]
	return override, ok
}

// UpdateConfig loads config from the default store, applies changes, and
// saves back under the store's file lock.
func UpdateConfig(updateFn func(*Config)) error {
	return NewLocalStore("").Update(context.Background(), updateFn)
}
