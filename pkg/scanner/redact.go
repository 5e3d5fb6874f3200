package scanner

import (
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches values that are already environment variable
// references and therefore carry no literal secret.
var placeholderPattern = regexp.MustCompile(`^\$\{[A-Za-z_][A-Za-z0-9_]*\}$`)

// secretKeyPattern matches env var names that conventionally hold
// credentials.
var secretKeyPattern = regexp.MustCompile(`(?i)(token|secret|key|password|passwd|credential|auth)`)

// secretValuePrefixes are well-known credential formats recognized by their
// leading characters regardless of the variable name.
var secretValuePrefixes = []string{
	"ghp_", "gho_", "github_pat_",
	"sk-",
	"xoxb-", "xoxp-",
	"AKIA",
	"glpat-",
}

// envNameSanitizer rewrites characters not allowed in env var names.
var envNameSanitizer = regexp.MustCompile(`[^A-Z0-9_]`)

// IsSecretShaped reports whether an env entry looks like it carries a literal
// credential. Values that are already placeholder references are never
// secret-shaped.
func IsSecretShaped(key, value string) bool {
	if value == "" || placeholderPattern.MatchString(value) {
		return false
	}
	if secretKeyPattern.MatchString(key) {
		return true
	}
	for _, prefix := range secretValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// GeneratedEnvName derives a valid environment variable name from a config
// key: uppercased, with disallowed characters replaced by underscores.
func GeneratedEnvName(key string) string {
	name := envNameSanitizer.ReplaceAllString(strings.ToUpper(key), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

// RedactEnv replaces literal secrets in env with ${VAR} placeholders. It
// returns the redacted map, a full copy of the original values, and the
// names of variables the user must export for the redacted form to work.
// The input map is never mutated.
func RedactEnv(env map[string]string) (redacted, original map[string]string, toSet []string) {
	if len(env) == 0 {
		return nil, nil, nil
	}

	redacted = make(map[string]string, len(env))
	original = make(map[string]string, len(env))

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := env[key]
		original[key] = value
		if IsSecretShaped(key, value) {
			name := GeneratedEnvName(key)
			redacted[key] = "${" + name + "}"
			toSet = append(toSet, name)
		} else {
			redacted[key] = value
		}
	}
	return redacted, original, toSet
}
