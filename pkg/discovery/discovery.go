// Package discovery orchestrates client detection across all supported
// clients: configuration overrides, native detection, and the WSL fallback
// search for Windows-side installs.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcpherd/mcpherd/pkg/client"
	"github.com/mcpherd/mcpherd/pkg/config"
	"github.com/mcpherd/mcpherd/pkg/detect"
	"github.com/mcpherd/mcpherd/pkg/env"
	"github.com/mcpherd/mcpherd/pkg/logger"
	"github.com/mcpherd/mcpherd/pkg/wsl"
)

// Summary aggregates a discovery pass.
type Summary struct {
	Detected    int `json:"detected"`
	NotFound    int `json:"not_found"`
	Skipped     int `json:"skipped"`
	WSLFallback int `json:"wsl_fallback"`
}

// Outcome is the full result of one discovery pass.
type Outcome struct {
	Results []detect.Result `json:"results"`
	Summary Summary         `json:"summary"`
}

// Discoverer runs detection for the full adapter set.
type Discoverer struct {
	adapters []client.Adapter
	cfg      *config.Config
	environ  env.Environment
	shim     *wsl.Detector
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithAdapters overrides the default adapter set.
func WithAdapters(adapters []client.Adapter) Option {
	return func(d *Discoverer) {
		d.adapters = adapters
	}
}

// WithWSLDetector overrides the WSL environment detector.
func WithWSLDetector(detector *wsl.Detector) Option {
	return func(d *Discoverer) {
		d.shim = detector
	}
}

// New creates a Discoverer using the supplied canonical config for per-client
// overrides and WSL fallback settings.
func New(cfg *config.Config, environ env.Environment, opts ...Option) *Discoverer {
	d := &Discoverer{
		adapters: client.Adapters(),
		cfg:      cfg,
		environ:  environ,
		shim:     wsl.NewDetector(environ),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscoverAll detects every supported client concurrently. Results are
// returned in adapter registration order regardless of completion order.
func (d *Discoverer) DiscoverAll(ctx context.Context) Outcome {
	results := make([]detect.Result, len(d.adapters))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, adapter := range d.adapters {
		group.Go(func() error {
			results[i] = d.discoverOne(groupCtx, adapter)
			return nil
		})
	}
	// Workers never return errors; Wait is purely a join barrier.
	_ = group.Wait()

	var summary Summary
	for _, result := range results {
		switch result.Status {
		case detect.StatusFound:
			summary.Detected++
			if result.Source == detect.SourceWSLFallback {
				summary.WSLFallback++
			}
		case detect.StatusSkipped:
			summary.Skipped++
		default:
			summary.NotFound++
		}
	}
	return Outcome{Results: results, Summary: summary}
}

// discoverOne detects a single client. A panic in one client's detection is
// contained and reported as a not-found result with a warning.
func (d *Discoverer) discoverOne(ctx context.Context, adapter client.Adapter) (result detect.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("detection for %s panicked: %v", adapter.ClientType(), r)
			result = detect.Result{
				Client:   adapter.ClientType(),
				Status:   detect.StatusNotFound,
				Source:   detect.SourceNative,
				Warnings: []string{fmt.Sprintf("detection failed unexpectedly: %v", r)},
			}
		}
	}()

	name := string(adapter.ClientType())
	override, hasOverride := d.cfg.OverrideFor(name)

	if hasOverride && override.Disabled {
		return detect.Result{
			Client: adapter.ClientType(),
			Status: detect.StatusSkipped,
			Source: detect.SourceSkipped,
		}
	}

	if hasOverride && override.BinaryPath != "" {
		if result, ok := d.detectFromOverride(adapter, override.BinaryPath); ok {
			return result
		}
		// Fall through to native detection when the override path is absent.
	}

	result = detect.DetectClient(ctx, adapter, d.environ)
	if result.Status == detect.StatusFound {
		return result
	}

	if d.wslFallbackEnabled(override, hasOverride) {
		if fallback, ok := d.detectViaWSL(ctx, adapter); ok {
			fallback.Warnings = append(result.Warnings, fallback.Warnings...)
			fallback.ConfigPaths = result.ConfigPaths
			return fallback
		}
	}
	return result
}

// detectFromOverride checks an explicitly configured binary path.
func (d *Discoverer) detectFromOverride(adapter client.Adapter, binaryPath string) (detect.Result, bool) {
	expanded := binaryPath
	if strings.HasPrefix(expanded, "~") {
		if home, err := d.environ.HomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}

	if _, err := os.Stat(expanded); err != nil {
		logger.Warnf("configured binary path for %s does not exist: %s", adapter.ClientType(), expanded)
		return detect.Result{}, false
	}
	return detect.Result{
		Client:     adapter.ClientType(),
		Status:     detect.StatusFound,
		Source:     detect.SourceConfigOverride,
		BinaryPath: expanded,
	}, true
}

// wslFallbackEnabled resolves the per-client WSL fallback setting, which
// overrides the global flag when present.
func (d *Discoverer) wslFallbackEnabled(override config.ClientOverride, hasOverride bool) bool {
	if hasOverride && override.AutoDetectWSL != nil {
		return *override.AutoDetectWSL
	}
	return d.cfg.Clients.AutoDetectWSL
}

// detectViaWSL probes Windows-side install locations through the /mnt/c
// mount. Paths returned in the result are the mounted forms usable from
// inside the distro.
func (d *Discoverer) detectViaWSL(ctx context.Context, adapter client.Adapter) (detect.Result, bool) {
	report := d.shim.Detect(ctx)
	if !report.IsWSL || report.HostUserProfile == "" {
		return detect.Result{}, false
	}

	winProfile := wsl.ToWindowsPath(report.HostUserProfile)
	for _, candidate := range adapter.WindowsInstallCandidates(winProfile) {
		mounted := wsl.TranslateWindowsPath(candidate)
		if _, err := os.Stat(mounted); err != nil {
			continue
		}

		result := detect.Result{
			Client:     adapter.ClientType(),
			Status:     detect.StatusFound,
			Source:     detect.SourceWSLFallback,
			BinaryPath: mounted,
		}
		if winConfig := adapter.WindowsConfigPath(winProfile); winConfig != "" {
			result.WindowsConfigPath = winConfig
		}
		logger.Infof("found %s via Windows host install at %s", adapter.ClientType(), mounted)
		return result, true
	}
	return detect.Result{}, false
}
