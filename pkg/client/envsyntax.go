package client

import (
	"regexp"
)

// EnvSyntax identifies a client's native environment placeholder convention.
// All syntaxes are normalized to the ${VAR} convention before storage.
type EnvSyntax int

const (
	// EnvSyntaxDefault is the ${VAR} convention used by canonical storage.
	EnvSyntaxDefault EnvSyntax = iota
	// EnvSyntaxVSCode is the ${env:VAR} convention.
	EnvSyntaxVSCode
	// EnvSyntaxStructured is the {env:VAR} convention.
	EnvSyntaxStructured
)

var (
	vscodeEnvPattern     = regexp.MustCompile(`\$\{env:([A-Za-z_][A-Za-z0-9_]*)\}`)
	structuredEnvPattern = regexp.MustCompile(`\{env:([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// translateEnvSyntax rewrites every placeholder in the mapping's values into
// the ${VAR} convention. The input map is never mutated.
func translateEnvSyntax(syntax EnvSyntax, envMap map[string]string) map[string]string {
	if envMap == nil {
		return nil
	}

	translated := make(map[string]string, len(envMap))
	for key, value := range envMap {
		switch syntax {
		case EnvSyntaxVSCode:
			value = vscodeEnvPattern.ReplaceAllString(value, `${$1}`)
		case EnvSyntaxStructured:
			value = structuredEnvPattern.ReplaceAllString(value, `${$1}`)
		}
		translated[key] = value
	}
	return translated
}
