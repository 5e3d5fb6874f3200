package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mcpherd/mcpherd/pkg/scanner"
)

func server(name, command string, scope scanner.Scope) scanner.DiscoveredServer {
	return scanner.DiscoveredServer{
		Name:           name,
		Command:        command,
		Args:           []string{"-y", "pkg-" + name},
		SuggestedScope: scope,
	}
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func mcpSection(t *testing.T, path string) map[string]any {
	t.Helper()
	doc := readDoc(t, path)
	mcp, ok := doc["mcp"].(map[string]any)
	require.True(t, ok, "document has no mcp section")
	return mcp
}

func TestImportCreatesCanonicalFile(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	selected := []scanner.DiscoveredServer{
		server("github", "npx", scanner.ScopeGlobal),
	}

	result, err := ImportServers(context.Background(), selected, globalPath, "", false)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []scanner.Scope{scanner.ScopeGlobal}, result.ModifiedScopes)

	mcp := mcpSection(t, globalPath)
	require.Contains(t, mcp, "github")
	entry := mcp["github"].(map[string]any)
	assert.Equal(t, "npx", entry["command"])
}

func TestImportIsIdempotent(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	selected := []scanner.DiscoveredServer{
		server("github", "npx", scanner.ScopeGlobal),
		server("fetch", "uvx", scanner.ScopeGlobal),
	}

	for i := 0; i < 3; i++ {
		_, err := ImportServers(context.Background(), selected, globalPath, "", false)
		require.NoError(t, err)
	}

	// Re-importing overwrites by name; the document never grows.
	mcp := mcpSection(t, globalPath)
	assert.Len(t, mcp, 2)
}

func TestImportPartitionsByScope(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	globalPath := filepath.Join(dir, "config.yaml")
	projectPath := filepath.Join(dir, ".mcpherd.yaml")

	selected := []scanner.DiscoveredServer{
		server("github", "npx", scanner.ScopeGlobal),
		server("postgres", "npx", scanner.ScopeProject),
	}

	result, err := ImportServers(context.Background(), selected, globalPath, projectPath, false)
	require.NoError(t, err)
	require.Len(t, result.Imported, 2)
	assert.ElementsMatch(t, []scanner.Scope{scanner.ScopeGlobal, scanner.ScopeProject}, result.ModifiedScopes)

	assert.Contains(t, mcpSection(t, globalPath), "github")
	assert.NotContains(t, mcpSection(t, globalPath), "postgres")
	assert.Contains(t, mcpSection(t, projectPath), "postgres")
}

func TestImportPreservesUnrelatedContent(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	existing := `version: 1
mcp:
  fetch:
    command: uvx
clients:
  auto_detect_wsl: true
`
	require.NoError(t, os.WriteFile(globalPath, []byte(existing), 0600))

	_, err := ImportServers(context.Background(),
		[]scanner.DiscoveredServer{server("github", "npx", scanner.ScopeGlobal)},
		globalPath, "", false)
	require.NoError(t, err)

	doc := readDoc(t, globalPath)
	assert.Contains(t, doc, "clients")
	mcp := doc["mcp"].(map[string]any)
	assert.Contains(t, mcp, "fetch")
	assert.Contains(t, mcp, "github")
}

func TestImportDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	result, err := ImportServers(context.Background(),
		[]scanner.DiscoveredServer{server("github", "npx", scanner.ScopeGlobal)},
		globalPath, "", true)
	require.NoError(t, err)

	require.Len(t, result.Imported, 1)
	assert.Empty(t, result.ModifiedScopes)
	assert.NoFileExists(t, globalPath)
	assert.NoFileExists(t, globalPath+".lock")
}

func TestImportScopeFailureIsIsolated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	globalPath := filepath.Join(dir, "config.yaml")
	projectPath := filepath.Join(dir, ".mcpherd.yaml")

	// A malformed project file makes the project scope fail; the global scope
	// must still import.
	require.NoError(t, os.WriteFile(projectPath, []byte(":\nnot yaml at all\n\t"), 0600))

	selected := []scanner.DiscoveredServer{
		server("github", "npx", scanner.ScopeGlobal),
		server("postgres", "npx", scanner.ScopeProject),
	}

	result, err := ImportServers(context.Background(), selected, globalPath, projectPath, false)
	require.NoError(t, err)

	require.Len(t, result.Imported, 1)
	assert.Equal(t, "github", result.Imported[0].Name)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "postgres", result.Skipped[0].Name)
	assert.Equal(t, []scanner.Scope{scanner.ScopeGlobal}, result.ModifiedScopes)
}

func TestImportEmptySelection(t *testing.T) {
	t.Parallel()

	result, err := ImportServers(context.Background(), nil, filepath.Join(t.TempDir(), "config.yaml"), "", false)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.ModifiedScopes)
}

func TestImportCollectsEnvVars(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	first := server("github", "npx", scanner.ScopeGlobal)
	first.EnvVarsToSet = []string{"GITHUB_TOKEN"}
	second := server("slack", "npx", scanner.ScopeGlobal)
	second.EnvVarsToSet = []string{"SLACK_TOKEN", "GITHUB_TOKEN"}

	result, err := ImportServers(context.Background(),
		[]scanner.DiscoveredServer{first, second}, globalPath, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"GITHUB_TOKEN", "SLACK_TOKEN"}, result.EnvVarsToSet)
}

func TestImportReleasesLock(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	_, err := ImportServers(context.Background(),
		[]scanner.DiscoveredServer{server("github", "npx", scanner.ScopeGlobal)},
		globalPath, "", false)
	require.NoError(t, err)

	assert.NoFileExists(t, globalPath+".lock")
}

func TestImportLastWriteWins(t *testing.T) {
	t.Parallel()

	globalPath := filepath.Join(t.TempDir(), "config.yaml")
	older := server("github", "npx", scanner.ScopeGlobal)
	newer := server("github", "docker", scanner.ScopeGlobal)

	_, err := ImportServers(context.Background(),
		[]scanner.DiscoveredServer{older, newer}, globalPath, "", false)
	require.NoError(t, err)

	mcp := mcpSection(t, globalPath)
	require.Len(t, mcp, 1)
	entry := mcp["github"].(map[string]any)
	assert.Equal(t, "docker", entry["command"])
}
