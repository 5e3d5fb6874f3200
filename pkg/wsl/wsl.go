// Package wsl detects whether the process is running inside the Windows
// Subsystem for Linux and locates resources on the Windows host, such as the
// host user profile directory. Detection results are cached for the process
// lifetime; Reset discards the cache.
package wsl

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mcpherd/mcpherd/pkg/env"
	"github.com/mcpherd/mcpherd/pkg/logger"
)

const (
	// distroEnvVar is set by WSL inside every distribution.
	distroEnvVar = "WSL_DISTRO_NAME"

	// kernelVersionPath contains a "microsoft" marker on WSL kernels.
	kernelVersionPath = "/proc/version"
	kernelMarker      = "microsoft"

	// windowsCmdPath is the mounted Windows command interpreter.
	windowsCmdPath = "/mnt/c/Windows/System32/cmd.exe"

	// usersMountPath is the mounted Windows Users directory.
	usersMountPath = "/mnt/c/Users"

	// hostProbeTimeout bounds invocations of Windows-side binaries so an
	// unresponsive interop layer cannot stall detection.
	hostProbeTimeout = 5 * time.Second
)

var (
	drivePathPattern = regexp.MustCompile(`^([A-Za-z]):\\`)
	mountPathPattern = regexp.MustCompile(`^/mnt/([a-z])(/|$)`)
)

// ProfilePolicy decides which entries under the mounted Users directory
// plausibly belong to a real Windows user. It is a best-effort filter, not a
// guarantee.
type ProfilePolicy struct {
	// ExcludedAccounts are well-known system account directories.
	ExcludedAccounts []string

	// MarkerSubdirs are per-user folders, at least one of which must exist
	// for a directory to be considered a user profile.
	MarkerSubdirs []string
}

// DefaultProfilePolicy returns the policy used in production.
func DefaultProfilePolicy() ProfilePolicy {
	return ProfilePolicy{
		ExcludedAccounts: []string{"Public", "Default", "Default User", "All Users", "WDAGUtilityAccount"},
		MarkerSubdirs:    []string{"Desktop", "Documents", "Downloads", "AppData"},
	}
}

// Excludes reports whether name is a well-known system account.
func (p ProfilePolicy) Excludes(name string) bool {
	for _, excluded := range p.ExcludedAccounts {
		if strings.EqualFold(name, excluded) {
			return true
		}
	}
	return false
}

// HasMarker reports whether dir contains at least one typical per-user
// subfolder.
func (p ProfilePolicy) HasMarker(dir string) bool {
	for _, marker := range p.MarkerSubdirs {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// Report describes the compatibility-shim environment for one run.
type Report struct {
	// Platform is the GOOS identifier of the host.
	Platform string `json:"platform"`

	// IsWSL indicates the process is running inside WSL.
	IsWSL bool `json:"is_wsl"`

	// DistroName is the WSL distribution name, if reported.
	DistroName string `json:"distro_name,omitempty"`

	// HostUserProfile is the Windows user profile translated into its
	// mounted path (e.g. /mnt/c/Users/jeff), if it could be determined.
	HostUserProfile string `json:"host_user_profile,omitempty"`
}

// CommandRunner executes a host-side command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Detector performs WSL environment detection.
type Detector struct {
	environ     env.Environment
	policy      ProfilePolicy
	versionPath string
	cmdPath     string
	usersPath   string
	runCommand  CommandRunner

	mu     sync.Mutex
	cached *Report
}

// Option customizes a Detector. Used by tests to substitute host state.
type Option func(*Detector)

// WithPolicy replaces the profile plausibility policy.
func WithPolicy(policy ProfilePolicy) Option {
	return func(d *Detector) { d.policy = policy }
}

// WithVersionPath replaces the kernel version marker file path.
func WithVersionPath(path string) Option {
	return func(d *Detector) { d.versionPath = path }
}

// WithUsersMount replaces the mounted Windows Users directory path.
func WithUsersMount(path string) Option {
	return func(d *Detector) { d.usersPath = path }
}

// WithCommandRunner replaces the host command runner.
func WithCommandRunner(run CommandRunner) Option {
	return func(d *Detector) { d.runCommand = run }
}

// NewDetector creates a WSL detector for the given environment.
func NewDetector(environ env.Environment, opts ...Option) *Detector {
	d := &Detector{
		environ:     environ,
		policy:      DefaultProfilePolicy(),
		versionPath: kernelVersionPath,
		cmdPath:     windowsCmdPath,
		usersPath:   usersMountPath,
		runCommand:  runHostCommand,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsWSL reports whether the process appears to be running inside WSL.
// A read failure on the kernel marker file is treated as "not present".
func (d *Detector) IsWSL() bool {
	if d.environ.Platform() != "linux" {
		return false
	}
	if d.environ.Getenv(distroEnvVar) != "" {
		return true
	}
	data, err := os.ReadFile(d.versionPath)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), kernelMarker)
}

// DistroName returns the WSL distribution name, or "" when unset.
func (d *Detector) DistroName() string {
	return d.environ.Getenv(distroEnvVar)
}

// HostUserProfile determines the Windows host user profile and returns it as
// a mounted path. It first asks the Windows command interpreter for
// %USERPROFILE%; if that fails, it falls back to enumerating the mounted
// Users directory using the plausibility policy.
func (d *Detector) HostUserProfile(ctx context.Context) (string, error) {
	out, err := d.runCommand(ctx, d.cmdPath, "/c", "echo %USERPROFILE%")
	if err == nil {
		profile := strings.TrimSpace(out)
		if drivePathPattern.MatchString(profile) {
			return TranslateWindowsPath(profile), nil
		}
	}
	return d.inferProfileFromUsersDir()
}

// inferProfileFromUsersDir selects the first real per-user directory under
// the mounted Users directory.
func (d *Detector) inferProfileFromUsersDir() (string, error) {
	entries, err := os.ReadDir(d.usersPath)
	if err != nil {
		return "", fmt.Errorf("failed to enumerate %s: %w", d.usersPath, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if d.policy.Excludes(entry.Name()) {
			continue
		}
		dir := filepath.Join(d.usersPath, entry.Name())
		if d.policy.HasMarker(dir) {
			return dir, nil
		}
	}

	return "", fmt.Errorf("no plausible user profile found under %s", d.usersPath)
}

// Detect performs a full detection pass. The result is cached for the
// process lifetime; call Reset to force re-detection.
func (d *Detector) Detect(ctx context.Context) *Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil {
		return d.cached
	}

	report := &Report{Platform: d.environ.Platform()}
	if d.IsWSL() {
		report.IsWSL = true
		report.DistroName = d.DistroName()

		profile, err := d.HostUserProfile(ctx)
		if err != nil {
			logger.Warnf("could not determine Windows host user profile: %v", err)
		} else {
			report.HostUserProfile = profile
		}
	}

	d.cached = report
	return report
}

// Reset discards the cached detection result.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = nil
}

// TranslateWindowsPath rewrites a Windows drive path into its WSL mount
// equivalent, e.g. `C:\Users\jeff` becomes `/mnt/c/Users/jeff`. Paths that do
// not start with a drive letter are returned unchanged.
func TranslateWindowsPath(path string) string {
	m := drivePathPattern.FindStringSubmatch(path)
	if m == nil {
		return path
	}
	rest := strings.ReplaceAll(path[len(m[0]):], `\`, "/")
	return "/mnt/" + strings.ToLower(m[1]) + "/" + rest
}

// ToWindowsPath is the inverse of TranslateWindowsPath: it rewrites a mounted
// path such as /mnt/c/Users/jeff into `C:\Users\jeff`. Paths not under a
// drive mount are returned unchanged.
func ToWindowsPath(path string) string {
	m := mountPathPattern.FindStringSubmatch(path)
	if m == nil {
		return path
	}
	rest := strings.TrimPrefix(path[len("/mnt/x"):], "/")
	return strings.ToUpper(m[1]) + `:\` + strings.ReplaceAll(rest, "/", `\`)
}

// runHostCommand executes a Windows-side binary through the interop layer
// with a bounded timeout.
func runHostCommand(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, hostProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", name, err)
	}
	return string(out), nil
}
