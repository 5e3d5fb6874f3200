// Package scanner reads existing client configuration files, normalizes
// their integration entries into a client-neutral form, redacts embedded
// secrets, and detects conflicting definitions across clients.
package scanner

import (
	"github.com/mcpherd/mcpherd/pkg/client"
	"github.com/mcpherd/mcpherd/pkg/detect"
)

// Scope is the canonical scope an entry belongs to.
type Scope string

const (
	// ScopeGlobal targets the user-wide canonical file.
	ScopeGlobal Scope = "global"
	// ScopeProject targets the per-project canonical file.
	ScopeProject Scope = "project"
)

// Source identifies where a discovered entry came from.
type Source struct {
	Client   client.MCPClient    `json:"client"`
	Location string              `json:"location"`
	Kind     client.LocationKind `json:"kind"`
	FilePath string              `json:"file_path"`
}

// DiscoveredServer is a normalized integration entry found in a client
// config file. Env holds the redacted form; OriginalEnv retains the literal
// values so the caller can surface which variables need to be exported.
type DiscoveredServer struct {
	Name           string            `json:"name"`
	Command        string            `json:"command"`
	Args           []string          `json:"args,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	Transport      string            `json:"transport,omitempty"`
	Source         Source            `json:"source"`
	SuggestedScope Scope             `json:"suggested_scope"`
	OriginalEnv    map[string]string `json:"-"`
	EnvVarsToSet   []string          `json:"env_vars_to_set,omitempty"`
}

// ConflictReason classifies what differs between conflicting definitions.
type ConflictReason string

const (
	// ReasonDifferentCommand means the commands differ.
	ReasonDifferentCommand ConflictReason = "different-command"
	// ReasonDifferentArgs means the argument lists differ.
	ReasonDifferentArgs ConflictReason = "different-args"
	// ReasonDifferentEnv means the environment maps differ.
	ReasonDifferentEnv ConflictReason = "different-env"
)

// ServerTuple is the comparable shape of one definition in a conflict.
type ServerTuple struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Conflict reports a name defined differently by two or more sources.
type Conflict struct {
	Name    string         `json:"name"`
	Sources []Source       `json:"sources"`
	Configs []ServerTuple  `json:"configs"`
	Reason  ConflictReason `json:"reason"`
}

// ScanResult is the raw output of a scan pass before conflict analysis.
type ScanResult struct {
	Discovered   []DiscoveredServer
	PathStatuses []detect.ConfigPathStatus
}

// Report is the assembled scan outcome: entries safe to import, conflicts
// requiring manual resolution, and the parse health of every file visited.
type Report struct {
	Discovered   []DiscoveredServer        `json:"discovered"`
	Conflicts    []Conflict                `json:"conflicts,omitempty"`
	PathStatuses []detect.ConfigPathStatus `json:"path_statuses,omitempty"`
}

// BuildReport runs conflict analysis over a scan result and assembles the
// final report. Entries whose name is conflicting are excluded from the
// importable list.
func BuildReport(scan ScanResult) Report {
	conflicts := DetectConflicts(scan.Discovered)
	return Report{
		Discovered:   ImportableServers(scan.Discovered, conflicts),
		Conflicts:    conflicts,
		PathStatuses: scan.PathStatuses,
	}
}
