// Package importer merges discovered integration entries into the canonical
// configuration files. Imports are idempotent: re-importing the same entries
// overwrites by name and never grows the document.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	mcperrors "github.com/mcpherd/mcpherd/pkg/errors"
	"github.com/mcpherd/mcpherd/pkg/fileutils"
	"github.com/mcpherd/mcpherd/pkg/lockfile"
	"github.com/mcpherd/mcpherd/pkg/logger"
	"github.com/mcpherd/mcpherd/pkg/scanner"
)

// Result summarizes an import run.
type Result struct {
	Imported       []scanner.DiscoveredServer `json:"imported"`
	Skipped        []scanner.DiscoveredServer `json:"skipped,omitempty"`
	EnvVarsToSet   []string                   `json:"env_vars_to_set,omitempty"`
	ModifiedScopes []scanner.Scope            `json:"modified_scopes,omitempty"`
}

// ImportServers writes the selected entries into the canonical files,
// partitioned by suggested scope. Scopes fail independently: a write failure
// for one scope moves its entries to Skipped and the other scope still
// proceeds. When dryRun is set nothing is written and no lock is taken.
func ImportServers(ctx context.Context, selected []scanner.DiscoveredServer, globalPath, projectPath string, dryRun bool) (Result, error) {
	if len(selected) == 0 {
		return Result{}, nil
	}

	if !dryRun {
		handle, err := lockfile.Acquire(ctx, globalPath+".lock")
		if err != nil {
			return Result{}, err
		}
		defer func() {
			if releaseErr := handle.Release(); releaseErr != nil {
				logger.Warnf("failed to release import lock: %v", releaseErr)
			}
		}()
	}

	byScope := map[scanner.Scope][]scanner.DiscoveredServer{}
	for _, server := range selected {
		byScope[server.SuggestedScope] = append(byScope[server.SuggestedScope], server)
	}

	targets := []struct {
		scope scanner.Scope
		path  string
	}{
		{scanner.ScopeGlobal, globalPath},
		{scanner.ScopeProject, projectPath},
	}

	var result Result
	for _, target := range targets {
		servers := byScope[target.scope]
		if len(servers) == 0 {
			continue
		}
		if target.path == "" {
			logger.Warnf("no %s canonical file configured, skipping %d entries", target.scope, len(servers))
			result.Skipped = append(result.Skipped, servers...)
			continue
		}

		if err := mergeIntoFile(target.path, servers, dryRun); err != nil {
			logger.Warnf("failed to import into %s scope (%s): %v", target.scope, target.path, err)
			result.Skipped = append(result.Skipped, servers...)
			continue
		}
		result.Imported = append(result.Imported, servers...)
		if !dryRun {
			result.ModifiedScopes = append(result.ModifiedScopes, target.scope)
		}
	}

	result.EnvVarsToSet = collectEnvVars(result.Imported)
	return result, nil
}

// mergeIntoFile merges entries into the canonical document at path,
// preserving unrelated document content. Missing files are initialized with
// an empty document. Entries with the same name overwrite in input order, so
// the last write wins.
func mergeIntoFile(path string, servers []scanner.DiscoveredServer, dryRun bool) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	mcp, ok := doc["mcp"].(map[string]any)
	if !ok {
		mcp = map[string]any{}
		doc["mcp"] = mcp
	}

	for _, server := range servers {
		entry := map[string]any{"command": server.Command}
		if len(server.Args) > 0 {
			entry["args"] = server.Args
		}
		if len(server.Env) > 0 {
			entry["env"] = server.Env
		}
		if server.Transport != "" {
			entry["transport"] = server.Transport
		}
		mcp[server.Name] = entry
	}

	if dryRun {
		return nil
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize canonical config: %w", err)
	}
	if err := fileutils.AtomicWriteFile(path, data, 0600); err != nil {
		return mcperrors.NewImportFailureError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// loadDocument reads the canonical file as a generic document so keys the
// importer does not understand survive the round trip.
func loadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{"version": 1, "mcp": map[string]any{}}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, mcperrors.NewConfigParseError(fmt.Sprintf("failed to parse %s", path), err)
	}
	if doc == nil {
		doc = map[string]any{"version": 1}
	}
	return doc, nil
}

// collectEnvVars dedupes and sorts the env var names the user must export
// for the imported entries to resolve.
func collectEnvVars(imported []scanner.DiscoveredServer) []string {
	seen := map[string]struct{}{}
	for _, server := range imported {
		for _, name := range server.EnvVarsToSet {
			seen[name] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
