package scanner

import (
	"fmt"
	"os"

	"github.com/mcpherd/mcpherd/pkg/client"
	"github.com/mcpherd/mcpherd/pkg/detect"
	"github.com/mcpherd/mcpherd/pkg/env"
	"github.com/mcpherd/mcpherd/pkg/logger"
)

// Scanner walks client config files and collects normalized entries.
type Scanner struct {
	adapters    []client.Adapter
	managed     map[string]struct{}
	environ     env.Environment
	projectRoot string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithAdapters overrides the default adapter set.
func WithAdapters(adapters []client.Adapter) Option {
	return func(s *Scanner) {
		s.adapters = adapters
	}
}

// WithProjectRoot enables scanning of project-scoped config files under root.
func WithProjectRoot(root string) Option {
	return func(s *Scanner) {
		s.projectRoot = root
	}
}

// New creates a Scanner. Entries whose name is in managed are already under
// central management and are skipped during scanning.
func New(environ env.Environment, managed map[string]struct{}, opts ...Option) *Scanner {
	s := &Scanner{
		adapters: client.Adapters(),
		managed:  managed,
		environ:  environ,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads every known config file for every adapter and returns the
// normalized entries plus per-file parse statuses. A malformed file is
// recorded and skipped; it never aborts the rest of the scan.
func (s *Scanner) Scan() (ScanResult, error) {
	home, err := s.environ.HomeDir()
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	platform := s.environ.Platform()

	var result ScanResult
	for _, adapter := range s.adapters {
		for _, configPath := range adapter.ConfigPaths(home, platform, s.projectRoot) {
			status, servers := s.scanFile(adapter, configPath)
			result.PathStatuses = append(result.PathStatuses, status)
			result.Discovered = append(result.Discovered, servers...)
		}
	}
	return result, nil
}

// scanFile reads and extracts entries from one config file.
func (s *Scanner) scanFile(adapter client.Adapter, configPath client.ConfigPath) (detect.ConfigPathStatus, []DiscoveredServer) {
	data, err := os.ReadFile(configPath.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return detect.ConfigPathStatus{Path: configPath.Path, Status: detect.ParseNotFound}, nil
		}
		return detect.ConfigPathStatus{
			Path:   configPath.Path,
			Exists: true,
			Status: detect.ParseInvalid,
			Error:  &detect.ParseError{Message: err.Error()},
		}, nil
	}

	entries, err := adapter.ExtractEntries(configPath, data)
	if err != nil {
		logger.Warnf("skipping malformed config file %s: %v", configPath.Path, err)
		return detect.ConfigPathStatus{
			Path:   configPath.Path,
			Exists: true,
			Status: detect.ParseInvalid,
			Error:  detect.ParseDetail(err, data),
		}, nil
	}

	var servers []DiscoveredServer
	for _, entry := range entries {
		if _, ok := s.managed[entry.Name]; ok {
			continue
		}
		servers = append(servers, s.normalize(adapter, configPath, entry))
	}
	return detect.ConfigPathStatus{Path: configPath.Path, Exists: true, Status: detect.ParseValid}, servers
}

// normalize converts a native entry into the client-neutral discovered form,
// translating env placeholder syntax and redacting literal secrets.
func (s *Scanner) normalize(adapter client.Adapter, configPath client.ConfigPath, entry client.Entry) DiscoveredServer {
	translated := adapter.TranslateFromNativeEnv(entry.Env)
	redacted, original, toSet := RedactEnv(translated)

	kind := configPath.Kind
	if entry.Directory != "" {
		kind = client.LocationDirectoryOverride
	}

	scope := ScopeGlobal
	switch kind {
	case client.LocationProject:
		scope = ScopeProject
	case client.LocationDirectoryOverride:
		// A directory override only maps to project scope when it targets the
		// project currently being scanned.
		if s.projectRoot != "" && entry.Directory == s.projectRoot {
			scope = ScopeProject
		}
	}

	return DiscoveredServer{
		Name:           entry.Name,
		Command:        entry.Command,
		Args:           entry.Args,
		Env:            redacted,
		Transport:      entry.Transport,
		Source:         sourceFor(adapter, configPath, kind),
		SuggestedScope: scope,
		OriginalEnv:    original,
		EnvVarsToSet:   toSet,
	}
}

// sourceFor builds the provenance record for a discovered entry.
func sourceFor(adapter client.Adapter, configPath client.ConfigPath, kind client.LocationKind) Source {
	return Source{
		Client:   adapter.ClientType(),
		Location: fmt.Sprintf("%s (%s)", adapter.Description(), kind),
		Kind:     kind,
		FilePath: configPath.Path,
	}
}
