package client

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpherd/mcpherd/pkg/errors"
)

func TestAdaptersAreStable(t *testing.T) {
	t.Parallel()

	first := Adapters()
	second := Adapters()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ClientType(), second[i].ClientType())
	}

	// Every supported client appears exactly once.
	seen := map[MCPClient]bool{}
	for _, adapter := range first {
		assert.False(t, seen[adapter.ClientType()], "duplicate adapter for %s", adapter.ClientType())
		seen[adapter.ClientType()] = true
	}
	for _, want := range []MCPClient{ClaudeCode, Cursor, VSCode, Cline, RooCode, Codex} {
		assert.True(t, seen[want], "missing adapter for %s", want)
	}
}

func TestAdapterFor(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(ClaudeCode)
	require.NoError(t, err)
	assert.Equal(t, ClaudeCode, adapter.ClientType())

	_, err = AdapterFor("no-such-client")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestClaudeCodeConfigPaths(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(ClaudeCode)
	require.NoError(t, err)

	paths := adapter.ConfigPaths("/home/jeff", "linux", "")
	require.Len(t, paths, 1)
	assert.Equal(t, "/home/jeff/.claude.json", paths[0].Path)
	assert.Equal(t, LocationGlobal, paths[0].Kind)

	paths = adapter.ConfigPaths("/home/jeff", "linux", "/home/jeff/proj")
	require.Len(t, paths, 2)
	assert.Equal(t, "/home/jeff/proj/.mcp.json", paths[1].Path)
	assert.Equal(t, LocationProject, paths[1].Kind)
}

func TestVSCodeConfigPathPerPlatform(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(VSCode)
	require.NoError(t, err)

	tests := []struct {
		platform string
		want     string
	}{
		{platform: "linux", want: "/home/jeff/.config/Code/User/settings.json"},
		{platform: "darwin", want: "/home/jeff/Library/Application Support/Code/User/settings.json"},
		{platform: "windows", want: filepath.Clean("/home/jeff/AppData/Roaming/Code/User/settings.json")},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			t.Parallel()
			paths := adapter.ConfigPaths("/home/jeff", tt.platform, "")
			require.NotEmpty(t, paths)
			assert.Equal(t, tt.want, paths[0].Path)
		})
	}
}

func TestClaudeCodeExtractEntries(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(ClaudeCode)
	require.NoError(t, err)

	data := []byte(`{
		// user settings
		"theme": "dark",
		"mcpServers": {
			"github": {
				"command": "npx",
				"args": ["-y", "@modelcontextprotocol/server-github"],
				"env": {"GITHUB_TOKEN": "ghp_secret"},
				"type": "stdio"
			},
			"fetch": {
				"command": "uvx",
				"args": ["mcp-server-fetch"]
			}
		}
	}`)

	entries, err := adapter.ExtractEntries(ConfigPath{Path: "/home/jeff/.claude.json", Kind: LocationGlobal}, data)
	require.NoError(t, err)

	want := []Entry{
		{
			Name:      "github",
			Command:   "npx",
			Args:      []string{"-y", "@modelcontextprotocol/server-github"},
			Env:       map[string]string{"GITHUB_TOKEN": "ghp_secret"},
			Transport: "stdio",
		},
		{
			Name:    "fetch",
			Command: "uvx",
			Args:    []string{"mcp-server-fetch"},
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("ExtractEntries() mismatch (-want +got):\n%s", diff)
	}
}

func TestClaudeCodeDirectoryOverrides(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(ClaudeCode)
	require.NoError(t, err)

	data := []byte(`{
		"mcpServers": {},
		"projects": {
			"/home/jeff/work/api": {
				"mcpServers": {
					"postgres": {"command": "npx", "args": ["-y", "server-postgres"]}
				}
			}
		}
	}`)

	entries, err := adapter.ExtractEntries(ConfigPath{Kind: LocationGlobal}, data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "postgres", entries[0].Name)
	assert.Equal(t, "/home/jeff/work/api", entries[0].Directory)
}

func TestVSCodeExtractEntriesNestedRootKey(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(VSCode)
	require.NoError(t, err)

	global := []byte(`{
		"editor.fontSize": 14,
		"mcp": {
			"servers": {
				"memory": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-memory"]}
			}
		}
	}`)

	entries, err := adapter.ExtractEntries(ConfigPath{Kind: LocationGlobal}, global)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "memory", entries[0].Name)

	// The project file nests entries directly under "servers".
	project := []byte(`{"servers": {"memory": {"command": "npx"}}}`)
	entries, err = adapter.ExtractEntries(ConfigPath{Kind: LocationProject}, project)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExtractEntriesMalformedJSON(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(Cursor)
	require.NoError(t, err)

	_, err = adapter.ExtractEntries(ConfigPath{Kind: LocationGlobal}, []byte(`{"mcpServers": {`))
	assert.Error(t, err)
}

func TestTranslateEnvSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		syntax EnvSyntax
		in     map[string]string
		want   map[string]string
	}{
		{
			name:   "vscode syntax",
			syntax: EnvSyntaxVSCode,
			in:     map[string]string{"TOKEN": "${env:GITHUB_TOKEN}"},
			want:   map[string]string{"TOKEN": "${GITHUB_TOKEN}"},
		},
		{
			name:   "structured syntax",
			syntax: EnvSyntaxStructured,
			in:     map[string]string{"TOKEN": "{env:GITHUB_TOKEN}"},
			want:   map[string]string{"TOKEN": "${GITHUB_TOKEN}"},
		},
		{
			name:   "default passthrough",
			syntax: EnvSyntaxDefault,
			in:     map[string]string{"TOKEN": "${GITHUB_TOKEN}", "MODE": "fast"},
			want:   map[string]string{"TOKEN": "${GITHUB_TOKEN}", "MODE": "fast"},
		},
		{
			name:   "nil map",
			syntax: EnvSyntaxVSCode,
			in:     nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, translateEnvSyntax(tt.syntax, tt.in))
		})
	}
}

func TestWindowsInstallCandidates(t *testing.T) {
	t.Parallel()

	adapter, err := AdapterFor(ClaudeCode)
	require.NoError(t, err)

	candidates := adapter.WindowsInstallCandidates(`C:\Users\jeff`)
	require.NotEmpty(t, candidates)
	assert.Equal(t, `C:\Users\jeff\AppData\Roaming\npm\claude.cmd`, candidates[0])

	assert.Equal(t, `C:\Users\jeff\.claude.json`, adapter.WindowsConfigPath(`C:\Users\jeff`))
}
