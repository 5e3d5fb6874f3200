// Package detect determines which client tools are present on this machine:
// binary lookup on the system path, application bundle presence, version
// probing, and config file validity checks.
package detect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/mcpherd/mcpherd/pkg/client"
	"github.com/mcpherd/mcpherd/pkg/env"
)

// versionProbeTimeout bounds the version-reporting invocation so one
// unresponsive client binary cannot stall a discovery pass.
const versionProbeTimeout = 5 * time.Second

// Status is the binary presence status of a client.
type Status string

const (
	// StatusFound indicates the client binary or bundle was found.
	StatusFound Status = "found"
	// StatusNotFound indicates the client could not be located.
	StatusNotFound Status = "not-found"
	// StatusSkipped indicates detection was disabled for the client.
	StatusSkipped Status = "skipped"
)

// ResolutionSource records which detection strategy produced a result.
type ResolutionSource string

const (
	// SourceNative is ordinary detection on the current platform.
	SourceNative ResolutionSource = "native"
	// SourceConfigOverride is an explicit binary path override.
	SourceConfigOverride ResolutionSource = "config-override"
	// SourceWSLFallback is detection of a Windows-side install from WSL.
	SourceWSLFallback ResolutionSource = "wsl2-fallback"
	// SourceSkipped means no detection was attempted.
	SourceSkipped ResolutionSource = "skipped"
)

// BinaryResult is the outcome of a binary lookup.
type BinaryResult struct {
	Found   bool
	Path    string
	Version string
}

// Result is the per-client detection result. It is created fresh on every
// discovery run and never persisted.
type Result struct {
	Client            client.MCPClient   `json:"client"`
	Status            Status             `json:"status"`
	Source            ResolutionSource   `json:"source"`
	BinaryPath        string             `json:"binary_path,omitempty"`
	Version           string             `json:"version,omitempty"`
	AppBundlePath     string             `json:"app_bundle_path,omitempty"`
	ConfigPaths       []ConfigPathStatus `json:"config_paths,omitempty"`
	WindowsConfigPath string             `json:"windows_config_path,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// DetectBinary resolves the first of the candidate binary names present on
// the system path and probes its version. Failure to obtain a version never
// invalidates the found result; version is optional metadata.
func DetectBinary(ctx context.Context, names ...string) BinaryResult {
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return BinaryResult{
			Found:   true,
			Path:    path,
			Version: probeVersion(ctx, path),
		}
	}
	return BinaryResult{}
}

// probeVersion runs the binary's version-reporting invocation with a bounded
// timeout and returns the first line of output, or "" on any failure.
func probeVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return ""
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(version)
}

// DetectAppBundle returns the first candidate path that exists on disk, in
// caller-supplied priority order. There is no fallback search.
func DetectAppBundle(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// ValidateConfigFile reports whether the file at path exists and parses as
// JSON-with-comments. It returns false for missing files and malformed
// content and never returns an error.
func ValidateConfigFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	_, err = hujson.Parse(data)
	return err == nil
}

// DetectClient composes binary/bundle detection for one client adapter and
// independently validates its declared config paths. Config invalidity is
// advisory: it is merged into the warnings list without disqualifying a
// found client.
func DetectClient(ctx context.Context, adapter client.Adapter, environ env.Environment) Result {
	result := Result{
		Client: adapter.ClientType(),
		Status: StatusNotFound,
		Source: SourceNative,
	}
	platform := environ.Platform()

	home, err := environ.HomeDir()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to resolve home directory: %v", err))
		return result
	}

	if adapter.RequiresBinary() {
		if binary := DetectBinary(ctx, adapter.BinaryNames()...); binary.Found {
			result.Status = StatusFound
			result.BinaryPath = binary.Path
			result.Version = binary.Version
			if binary.Version == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("could not determine version of %s", binary.Path))
			}
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("binary not found: %s", strings.Join(adapter.BinaryNames(), ", ")))
		}
	} else {
		if bundle, found := DetectAppBundle(adapter.AppBundlePaths(home, platform)); found {
			result.Status = StatusFound
			result.AppBundlePath = bundle
		} else if binary := DetectBinary(ctx, adapter.BinaryNames()...); binary.Found {
			result.Status = StatusFound
			result.BinaryPath = binary.Path
			result.Version = binary.Version
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no application bundle or binary found for %s", adapter.ClientType()))
		}
	}

	for _, configPath := range adapter.ConfigPaths(home, platform, "") {
		status := CheckConfigPath(configPath.Path, adapter.ValidateConfig)
		result.ConfigPaths = append(result.ConfigPaths, status)
		if status.Status == ParseInvalid {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("config file %s is not valid: %s", configPath.Path, status.Error.Message))
		}
	}

	return result
}
