// Package env provides access to host environment state: environment
// variables, the platform identifier, and the home directory. It is the one
// package allowed to touch ambient process state; everything else takes these
// interfaces so that tests can substitute a fixed environment.
package env

import (
	"os"
	"runtime"
)

// Reader is an interface for reading environment variables.
type Reader interface {
	Getenv(key string) string
}

// OSReader reads environment variables from the actual process environment.
type OSReader struct{}

// Getenv reads an environment variable from the process environment.
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Environment reports the host state needed by client detection.
type Environment interface {
	Reader

	// Platform returns the GOOS identifier of the host (darwin, linux, windows).
	Platform() string

	// HomeDir returns the current user's home directory.
	HomeDir() (string, error)
}

// OSEnvironment implements Environment using the real host.
type OSEnvironment struct {
	OSReader
}

// Platform returns the GOOS identifier of the host.
func (*OSEnvironment) Platform() string {
	return runtime.GOOS
}

// HomeDir returns the current user's home directory.
func (*OSEnvironment) HomeDir() (string, error) {
	return os.UserHomeDir()
}
