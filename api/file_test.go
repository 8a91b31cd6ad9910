package api_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/api"
)

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestXDGPaths(t *testing.T) {
	tcs := map[string]struct {
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		"XDG variables set": {
			env: map[string]string{
				"XDG_CONFIG_HOME": "/custom/config",
				"XDG_DATA_HOME":   "/custom/data",
			},
			wantConfig: "/custom/config/tagrss/config.yaml",
			wantData:   "/custom/data/tagrss/tagrss.db",
		},
		"XDG variables empty and HOME set": {
			env: map[string]string{
				"XDG_CONFIG_HOME": "",
				"XDG_DATA_HOME":   "",
				"HOME":            "/test/home",
			},
			wantConfig: "/test/home/.config/tagrss/config.yaml",
			wantData:   "/test/home/.local/share/tagrss/tagrss.db",
		},
		"nothing set": {
			env: map[string]string{
				"XDG_CONFIG_HOME": "",
				"XDG_DATA_HOME":   "",
				"HOME":            "",
			},
			wantConfig: filepath.Join(os.TempDir(), "tagrss", "config.yaml"), //nolint:usetesting // Needs to equal host.
			wantData:   filepath.Join(os.TempDir(), "tagrss", "tagrss.db"),   //nolint:usetesting // Needs to equal host.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			assert.Equal(t, tc.wantConfig, api.GetConfigPath("config.yaml"))
			assert.Equal(t, tc.wantData, api.GetDataPath("tagrss.db"))
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile   func(t *testing.T) string
		wantErr     bool
		wantMissing bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "test.yaml")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

				return path
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr:     true,
			wantMissing: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := api.ReadFile(tc.setupFile(t))
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, []byte("content"), got)

				return
			}

			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, tc.wantMissing, errors.Is(err, os.ErrNotExist))
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	type testObj struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	data, err := api.MarshalYAML(testObj{Name: "test", Value: 42})
	require.NoError(t, err)
	assert.Equal(t, "name: test\nvalue: 42\n", string(data))
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "rules.yaml")

	require.NoError(t, api.WriteFileAtomic(path, []byte("first")))
	require.NoError(t, api.WriteFileAtomic(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should be cleaned up")
}

func TestWriteIfNotExists(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupPath func(t *testing.T) string
		want      string
		errMsg    string
	}{
		"new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "deep", "new.yaml")
			},
			want: "new content",
		},
		"existing file is kept": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "existing.yaml")
				require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

				return path
			},
			want: "existing",
		},
		"path is directory": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			errMsg: "path is a directory",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := tc.setupPath(t)

			err := api.WriteIfNotExists(path, []byte("new content"))
			if tc.errMsg != "" {
				require.ErrorContains(t, err, tc.errMsg)
				return
			}

			require.NoError(t, err)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestWriteDefaultFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		existing   string
		want       string
		force      bool
		wantBackup bool
	}{
		"new file": {
			want: "default",
		},
		"existing file without force": {
			existing: "mine",
			want:     "mine",
		},
		"existing file with force": {
			existing:   "mine",
			force:      true,
			want:       "default",
			wantBackup: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if tc.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tc.existing), 0o600))
			}

			require.NoError(t, api.WriteDefaultFile(path, []byte("default"), tc.force, "test"))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))

			backups, err := filepath.Glob(filepath.Join(dir, "*.old"))
			require.NoError(t, err)

			if !tc.wantBackup {
				assert.Empty(t, backups)
				return
			}

			require.Len(t, backups, 1)

			backup, err := os.ReadFile(backups[0])
			require.NoError(t, err)
			assert.Equal(t, tc.existing, string(backup))
		})
	}
}
