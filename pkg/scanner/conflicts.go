package scanner

import (
	"maps"
	"slices"
)

// DetectConflicts groups discovered entries by name and reports every name
// whose definitions diverge. The first definition encountered is the
// baseline; the reason records the first field found to differ, checked in
// command, args, env order. Env comparison uses the redacted form so two
// literal copies of the same secret do not register as a conflict.
func DetectConflicts(discovered []DiscoveredServer) []Conflict {
	groups := make(map[string][]DiscoveredServer)
	var order []string
	for _, server := range discovered {
		if _, seen := groups[server.Name]; !seen {
			order = append(order, server.Name)
		}
		groups[server.Name] = append(groups[server.Name], server)
	}

	var conflicts []Conflict
	for _, name := range order {
		group := groups[name]
		if len(group) < 2 {
			continue
		}

		baseline := group[0]
		reason := ConflictReason("")
		for _, other := range group[1:] {
			if r := compareDefinitions(baseline, other); r != "" {
				reason = r
				break
			}
		}
		if reason == "" {
			continue
		}

		conflict := Conflict{Name: name, Reason: reason}
		for _, server := range group {
			conflict.Sources = append(conflict.Sources, server.Source)
			conflict.Configs = append(conflict.Configs, ServerTuple{
				Command: server.Command,
				Args:    server.Args,
				Env:     server.Env,
			})
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

// compareDefinitions returns the reason the two definitions differ, or ""
// when they are equivalent.
func compareDefinitions(a, b DiscoveredServer) ConflictReason {
	if a.Command != b.Command {
		return ReasonDifferentCommand
	}
	if !slices.Equal(a.Args, b.Args) {
		return ReasonDifferentArgs
	}
	if !maps.Equal(a.Env, b.Env) {
		return ReasonDifferentEnv
	}
	return ""
}

// ImportableServers filters out every entry whose name appears in the
// conflict list. Non-conflicting duplicates collapse later during import.
func ImportableServers(discovered []DiscoveredServer, conflicts []Conflict) []DiscoveredServer {
	if len(conflicts) == 0 {
		return discovered
	}
	conflicting := make(map[string]struct{}, len(conflicts))
	for _, conflict := range conflicts {
		conflicting[conflict.Name] = struct{}{}
	}

	importable := make([]DiscoveredServer, 0, len(discovered))
	for _, server := range discovered {
		if _, excluded := conflicting[server.Name]; excluded {
			continue
		}
		importable = append(importable, server)
	}
	return importable
}
