package client

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
)

// profilePlaceholder is expanded to the Windows user profile path when
// probing WSL fallback candidates.
const profilePlaceholder = "%USERPROFILE%"

// clientIntegration describes one JSON-configured client.
type clientIntegration struct {
	ClientType     MCPClient
	Description    string
	BinaryNames    []string
	RequiresBinary bool

	// BundlePaths are absolute application bundle paths per GOOS.
	BundlePaths map[string][]string

	// BundleFromSettingsDir treats the settings directory itself as the
	// installation marker (editor extensions have no binary or bundle of
	// their own).
	BundleFromSettingsDir bool

	SettingsFile   string
	RelPath        []string
	PlatformPrefix map[string][]string

	// ProjectFile is the per-project config path relative to the project
	// root, "" when the client has no project scope.
	ProjectFile string

	// RootKey is the gjson path to the integration entries in the global
	// file; ProjectRootKey overrides it for the project file.
	RootKey        string
	ProjectRootKey string

	// DirectoryOverrideKey names a map of per-directory overrides nested in
	// the global file, keyed by absolute working directory.
	DirectoryOverrideKey string

	// TransportField is the native field holding the transport kind when the
	// client does not call it "transport".
	TransportField string

	EnvSyntax EnvSyntax

	// WindowsBinaryCandidates and WindowsSettingsPath are Windows-style
	// paths containing the %USERPROFILE% placeholder.
	WindowsBinaryCandidates []string
	WindowsSettingsPath     string
}

var vsCodePlatformPrefix = map[string][]string{
	"linux":   {".config"},
	"darwin":  {"Library", "Application Support"},
	"windows": {"AppData", "Roaming"},
}

var supportedIntegrations = []clientIntegration{
	{
		ClientType:           ClaudeCode,
		Description:          "Claude Code CLI",
		BinaryNames:          []string{"claude"},
		RequiresBinary:       true,
		SettingsFile:         ".claude.json",
		RelPath:              []string{},
		ProjectFile:          ".mcp.json",
		RootKey:              "mcpServers",
		ProjectRootKey:       "mcpServers",
		DirectoryOverrideKey: "projects",
		TransportField:       "type",
		WindowsBinaryCandidates: []string{
			`%USERPROFILE%\AppData\Roaming\npm\claude.cmd`,
			`%USERPROFILE%\.local\bin\claude.exe`,
		},
		WindowsSettingsPath: `%USERPROFILE%\.claude.json`,
	},
	{
		ClientType:     Cursor,
		Description:    "Cursor editor",
		BinaryNames:    []string{"cursor"},
		RequiresBinary: false,
		BundlePaths: map[string][]string{
			"darwin": {"/Applications/Cursor.app"},
		},
		SettingsFile:   "mcp.json",
		RelPath:        []string{".cursor"},
		ProjectFile:    filepath.Join(".cursor", "mcp.json"),
		RootKey:        "mcpServers",
		TransportField: "type",
		WindowsBinaryCandidates: []string{
			`%USERPROFILE%\AppData\Local\Programs\cursor\Cursor.exe`,
		},
		WindowsSettingsPath: `%USERPROFILE%\.cursor\mcp.json`,
	},
	{
		ClientType:     VSCode,
		Description:    "Visual Studio Code",
		BinaryNames:    []string{"code"},
		RequiresBinary: false,
		BundlePaths: map[string][]string{
			"darwin": {"/Applications/Visual Studio Code.app"},
		},
		SettingsFile:   "settings.json",
		RelPath:        []string{"Code", "User"},
		PlatformPrefix: vsCodePlatformPrefix,
		ProjectFile:    filepath.Join(".vscode", "mcp.json"),
		RootKey:        "mcp.servers",
		ProjectRootKey: "servers",
		TransportField: "type",
		EnvSyntax:      EnvSyntaxVSCode,
		WindowsBinaryCandidates: []string{
			`%USERPROFILE%\AppData\Local\Programs\Microsoft VS Code\Code.exe`,
		},
		WindowsSettingsPath: `%USERPROFILE%\AppData\Roaming\Code\User\settings.json`,
	},
	{
		ClientType:            Cline,
		Description:           "VS Code Cline extension",
		RequiresBinary:        false,
		BundleFromSettingsDir: true,
		SettingsFile:          "cline_mcp_settings.json",
		RelPath: []string{
			"Code", "User", "globalStorage", "saoudrizwan.claude-dev", "settings",
		},
		PlatformPrefix: vsCodePlatformPrefix,
		RootKey:        "mcpServers",
		WindowsSettingsPath: `%USERPROFILE%\AppData\Roaming\Code\User\globalStorage` +
			`\saoudrizwan.claude-dev\settings\cline_mcp_settings.json`,
	},
	{
		ClientType:            RooCode,
		Description:           "VS Code Roo Code extension",
		RequiresBinary:        false,
		BundleFromSettingsDir: true,
		SettingsFile:          "mcp_settings.json",
		RelPath: []string{
			"Code", "User", "globalStorage", "rooveterinaryinc.roo-cline", "settings",
		},
		PlatformPrefix: vsCodePlatformPrefix,
		RootKey:        "mcpServers",
		EnvSyntax:      EnvSyntaxStructured,
		WindowsSettingsPath: `%USERPROFILE%\AppData\Roaming\Code\User\globalStorage` +
			`\rooveterinaryinc.roo-cline\settings\mcp_settings.json`,
	},
}

// jsonAdapter implements Adapter for every JSON-configured client using the
// clientIntegration table.
type jsonAdapter struct {
	cfg *clientIntegration
}

func (a *jsonAdapter) ClientType() MCPClient { return a.cfg.ClientType }
func (a *jsonAdapter) Description() string   { return a.cfg.Description }
func (a *jsonAdapter) BinaryNames() []string { return a.cfg.BinaryNames }
func (a *jsonAdapter) RequiresBinary() bool  { return a.cfg.RequiresBinary }
func (a *jsonAdapter) SchemaRootKey() string { return a.cfg.RootKey }

func (a *jsonAdapter) AppBundlePaths(home, platform string) []string {
	paths := append([]string{}, a.cfg.BundlePaths[platform]...)
	if a.cfg.BundleFromSettingsDir {
		paths = append(paths, a.settingsDir(home, platform))
	}
	return paths
}

func (a *jsonAdapter) ConfigPaths(home, platform, projectRoot string) []ConfigPath {
	paths := []ConfigPath{{
		Path: buildConfigFilePath(a.cfg.SettingsFile, a.cfg.RelPath, a.cfg.PlatformPrefix, platform, home),
		Kind: LocationGlobal,
	}}
	if a.cfg.ProjectFile != "" && projectRoot != "" {
		paths = append(paths, ConfigPath{
			Path: filepath.Join(projectRoot, a.cfg.ProjectFile),
			Kind: LocationProject,
		})
	}
	return paths
}

func (a *jsonAdapter) ValidateConfig(data []byte) error {
	if _, err := hujson.Parse(data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func (a *jsonAdapter) ExtractEntries(path ConfigPath, data []byte) ([]Entry, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	rootKey := a.cfg.RootKey
	if path.Kind == LocationProject && a.cfg.ProjectRootKey != "" {
		rootKey = a.cfg.ProjectRootKey
	}

	entries := entriesFromResult(gjson.GetBytes(std, rootKey), a.cfg.TransportField, "")

	// Per-directory override map, nested inside the global file only.
	if path.Kind == LocationGlobal && a.cfg.DirectoryOverrideKey != "" {
		gjson.GetBytes(std, a.cfg.DirectoryOverrideKey).ForEach(func(dir, project gjson.Result) bool {
			nested := project.Get(a.cfg.RootKey)
			entries = append(entries, entriesFromResult(nested, a.cfg.TransportField, dir.String())...)
			return true
		})
	}

	return entries, nil
}

func (a *jsonAdapter) TranslateFromNativeEnv(envMap map[string]string) map[string]string {
	return translateEnvSyntax(a.cfg.EnvSyntax, envMap)
}

func (a *jsonAdapter) WindowsInstallCandidates(profile string) []string {
	candidates := make([]string, 0, len(a.cfg.WindowsBinaryCandidates))
	for _, candidate := range a.cfg.WindowsBinaryCandidates {
		candidates = append(candidates, strings.ReplaceAll(candidate, profilePlaceholder, profile))
	}
	return candidates
}

func (a *jsonAdapter) WindowsConfigPath(profile string) string {
	if a.cfg.WindowsSettingsPath == "" {
		return ""
	}
	return strings.ReplaceAll(a.cfg.WindowsSettingsPath, profilePlaceholder, profile)
}

func (a *jsonAdapter) settingsDir(home, platform string) string {
	path := []string{home}
	if prefix, ok := a.cfg.PlatformPrefix[platform]; ok {
		path = append(path, prefix...)
	}
	path = append(path, a.cfg.RelPath...)
	return filepath.Clean(filepath.Join(path...))
}

func buildConfigFilePath(settingsFile string, relPath []string, platformPrefix map[string][]string, platform, home string) string {
	path := []string{home}
	if prefix, ok := platformPrefix[platform]; ok {
		path = append(path, prefix...)
	}
	path = append(path, relPath...)
	path = append(path, settingsFile)
	return filepath.Clean(filepath.Join(path...))
}

// entriesFromResult converts a gjson object of name -> server definition into
// entries, preserving document order.
func entriesFromResult(result gjson.Result, transportField, dir string) []Entry {
	if !result.Exists() {
		return nil
	}

	var entries []Entry
	result.ForEach(func(name, value gjson.Result) bool {
		entry := Entry{
			Name:      name.String(),
			Command:   value.Get("command").String(),
			Directory: dir,
		}
		for _, arg := range value.Get("args").Array() {
			entry.Args = append(entry.Args, arg.String())
		}
		if envResult := value.Get("env"); envResult.Exists() {
			entry.Env = make(map[string]string)
			envResult.ForEach(func(k, v gjson.Result) bool {
				entry.Env[k.String()] = v.String()
				return true
			})
		}
		entry.Transport = value.Get("transport").String()
		if entry.Transport == "" && transportField != "" {
			entry.Transport = value.Get(transportField).String()
		}
		entries = append(entries, entry)
		return true
	})
	return entries
}
