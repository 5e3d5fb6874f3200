package wsl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv is a fixed environment for tests.
type fakeEnv struct {
	platform string
	vars     map[string]string
	home     string
}

func (f *fakeEnv) Getenv(key string) string {
	return f.vars[key]
}

func (f *fakeEnv) Platform() string {
	return f.platform
}

func (f *fakeEnv) HomeDir() (string, error) {
	return f.home, nil
}

func TestTranslateWindowsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive path with backslashes",
			in:   `C:\Users\jeff\Documents`,
			want: "/mnt/c/Users/jeff/Documents",
		},
		{
			name: "secondary drive",
			in:   `D:\Projects\App`,
			want: "/mnt/d/Projects/App",
		},
		{
			name: "uppercase drive is lowered",
			in:   `E:\data`,
			want: "/mnt/e/data",
		},
		{
			name: "already mounted path unchanged",
			in:   "/mnt/c/Users/jeff",
			want: "/mnt/c/Users/jeff",
		},
		{
			name: "plain linux path unchanged",
			in:   "/home/jeff",
			want: "/home/jeff",
		},
		{
			name: "empty string unchanged",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TranslateWindowsPath(tt.in))
		})
	}
}

func TestToWindowsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mounted path",
			in:   "/mnt/c/Users/jeff",
			want: `C:\Users\jeff`,
		},
		{
			name: "mount root",
			in:   "/mnt/d",
			want: `D:\`,
		},
		{
			name: "non mount path unchanged",
			in:   "/home/jeff",
			want: "/home/jeff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToWindowsPath(tt.in))
		})
	}
}

func TestRoundTripPathTranslation(t *testing.T) {
	t.Parallel()

	original := `C:\Users\jeff\AppData\Roaming\npm`
	assert.Equal(t, original, ToWindowsPath(TranslateWindowsPath(original)))
}

func TestIsWSL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		platform      string
		distroVar     string
		kernelVersion string
		want          bool
	}{
		{
			name:      "env var set",
			platform:  "linux",
			distroVar: "Ubuntu-22.04",
			want:      true,
		},
		{
			name:          "kernel marker",
			platform:      "linux",
			kernelVersion: "Linux version 5.15.90.1-microsoft-standard-WSL2",
			want:          true,
		},
		{
			name:          "plain linux",
			platform:      "linux",
			kernelVersion: "Linux version 6.5.0-generic (buildd@lcy02)",
			want:          false,
		},
		{
			name:      "darwin never WSL",
			platform:  "darwin",
			distroVar: "Ubuntu",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			versionPath := filepath.Join(t.TempDir(), "version")
			if tt.kernelVersion != "" {
				require.NoError(t, os.WriteFile(versionPath, []byte(tt.kernelVersion), 0644))
			}

			environ := &fakeEnv{
				platform: tt.platform,
				vars:     map[string]string{"WSL_DISTRO_NAME": tt.distroVar},
			}
			d := NewDetector(environ, WithVersionPath(versionPath))
			assert.Equal(t, tt.want, d.IsWSL())
		})
	}
}

func TestIsWSLMissingVersionFileFailsOpen(t *testing.T) {
	t.Parallel()

	environ := &fakeEnv{platform: "linux", vars: map[string]string{}}
	d := NewDetector(environ, WithVersionPath(filepath.Join(t.TempDir(), "missing")))
	assert.False(t, d.IsWSL())
}

func TestHostUserProfileFromCmd(t *testing.T) {
	t.Parallel()

	environ := &fakeEnv{platform: "linux", vars: map[string]string{"WSL_DISTRO_NAME": "Ubuntu"}}
	d := NewDetector(environ, WithCommandRunner(
		func(_ context.Context, _ string, _ ...string) (string, error) {
			return "C:\\Users\\jeff\r\n", nil
		},
	))

	profile, err := d.HostUserProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/mnt/c/Users/jeff", profile)
}

func TestHostUserProfileFallbackToUsersDir(t *testing.T) {
	t.Parallel()

	usersDir := t.TempDir()
	for _, account := range []string{"Public", "Default"} {
		require.NoError(t, os.MkdirAll(filepath.Join(usersDir, account, "Desktop"), 0755))
	}
	// A directory without marker subfolders should be passed over.
	require.NoError(t, os.MkdirAll(filepath.Join(usersDir, "placeholder"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(usersDir, "jeff", "Documents"), 0755))

	environ := &fakeEnv{platform: "linux", vars: map[string]string{"WSL_DISTRO_NAME": "Ubuntu"}}
	d := NewDetector(environ,
		WithUsersMount(usersDir),
		WithCommandRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
			return "", fmt.Errorf("interop unavailable")
		}),
	)

	profile, err := d.HostUserProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(usersDir, "jeff"), profile)
}

func TestHostUserProfileNoPlausibleUser(t *testing.T) {
	t.Parallel()

	usersDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(usersDir, "Public", "Desktop"), 0755))

	environ := &fakeEnv{platform: "linux", vars: map[string]string{}}
	d := NewDetector(environ,
		WithUsersMount(usersDir),
		WithCommandRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
			return "", fmt.Errorf("interop unavailable")
		}),
	)

	_, err := d.HostUserProfile(context.Background())
	assert.Error(t, err)
}

func TestDetectCachesResult(t *testing.T) {
	t.Parallel()

	calls := 0
	environ := &fakeEnv{platform: "linux", vars: map[string]string{"WSL_DISTRO_NAME": "Ubuntu"}}
	d := NewDetector(environ, WithCommandRunner(
		func(_ context.Context, _ string, _ ...string) (string, error) {
			calls++
			return "C:\\Users\\jeff", nil
		},
	))

	first := d.Detect(context.Background())
	second := d.Detect(context.Background())
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	require.True(t, first.IsWSL)
	assert.Equal(t, "Ubuntu", first.DistroName)
	assert.Equal(t, "/mnt/c/Users/jeff", first.HostUserProfile)

	d.Reset()
	third := d.Detect(context.Background())
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, calls)
}

func TestDetectNonWSL(t *testing.T) {
	t.Parallel()

	environ := &fakeEnv{platform: "darwin", vars: map[string]string{}}
	report := NewDetector(environ).Detect(context.Background())

	assert.Equal(t, "darwin", report.Platform)
	assert.False(t, report.IsWSL)
	assert.Empty(t, report.HostUserProfile)
}

func TestProfilePolicyExcludes(t *testing.T) {
	t.Parallel()

	policy := DefaultProfilePolicy()
	assert.True(t, policy.Excludes("Public"))
	assert.True(t, policy.Excludes("default user"))
	assert.False(t, policy.Excludes("jeff"))
}
