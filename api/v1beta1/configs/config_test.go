package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/api/v1beta1/configs"
	"github.com/macropower/tagrss/pkg/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := configs.New()

	assert.Equal(t, "tagrss.jacobcolvin.com/v1beta1", cfg.GetAPIVersion())
	assert.Equal(t, "Configuration", cfg.GetKind())
	assert.Equal(t, configs.DefaultConcurrency, cfg.Concurrency())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.False(t, cfg.LeafOnlyNot())
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestConfig_EnsureDefaults_KeepsValues(t *testing.T) {
	t.Parallel()

	leafOnly := true
	concurrency := 2

	cfg := &configs.Config{
		Database: &configs.DatabaseConfig{Path: "/data/feeds.db"},
		Rules:    &configs.RulesConfig{Path: "/etc/tagrss/rules.yaml"},
		Folders:  &configs.FoldersConfig{Path: "/etc/tagrss/folders.yaml", LeafOnlyNot: &leafOnly},
		Update:   &configs.UpdateConfig{Concurrency: &concurrency, Timeout: "5s"},
	}
	cfg.EnsureDefaults()

	assert.Equal(t, "/data/feeds.db", cfg.DatabasePath())
	assert.Equal(t, "/etc/tagrss/rules.yaml", cfg.RulesPath())
	assert.Equal(t, "/etc/tagrss/folders.yaml", cfg.FoldersPath())
	assert.True(t, cfg.LeafOnlyNot())
	assert.Equal(t, 2, cfg.Concurrency())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, configs.DefaultUserAgent, cfg.Update.UserAgent)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	zero := 0

	tcs := map[string]struct {
		cfg     *configs.Config
		wantErr bool
	}{
		"defaults": {
			cfg: configs.New(),
		},
		"zero concurrency": {
			cfg:     &configs.Config{Update: &configs.UpdateConfig{Concurrency: &zero}},
			wantErr: true,
		},
		"bad timeout": {
			cfg:     &configs.Config{Update: &configs.UpdateConfig{Timeout: "soon"}},
			wantErr: true,
		},
		"negative timeout": {
			cfg:     &configs.Config{Update: &configs.UpdateConfig{Timeout: "-1s"}},
			wantErr: true,
		},
		"https feed": {
			cfg: &configs.Config{Feeds: []configs.FeedConfig{{URL: "https://go.dev/blog/feed.atom"}}},
		},
		"unsupported scheme": {
			cfg:     &configs.Config{Feeds: []configs.FeedConfig{{URL: "ftp://example.com/feed"}}},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, configs.ErrInvalidConfig)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConfig_Write(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupPath func(t *testing.T) string
		errMsg    string
	}{
		"new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "config.yaml")
			},
		},
		"existing file is kept": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

				return path
			},
		},
		"creates parent directories": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "subdir", "config.yaml")
			},
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

			err := configs.New().Write(path)
			if tc.errMsg != "" {
				require.ErrorContains(t, err, tc.errMsg)

				return
			}

			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)
		})
	}
}

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestGetPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	cfg := configs.New()

	assert.Equal(t, "/custom/config/tagrss/config.yaml", configs.GetPath())
	assert.Equal(t, "/custom/config/tagrss/rules.yaml", cfg.RulesPath())
	assert.Equal(t, "/custom/config/tagrss/folders.yaml", cfg.FoldersPath())
	assert.Equal(t, "/custom/data/tagrss/tagrss.db", cfg.DatabasePath())
}

func TestDefaultConfigFullPipeline(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, configs.WriteDefault(configPath, false))

	cl, err := config.NewLoaderFromFile(configPath, configs.New, configs.DefaultValidator)
	require.NoError(t, err)
	require.NoError(t, cl.Validate())

	cfg, err := cl.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Feeds, 2)
	assert.Equal(t, 4, cfg.Concurrency())

	// The marshaled config loads again.
	b, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cl2 := config.NewLoaderFromBytes(b, configs.New, configs.DefaultValidator)
	require.NoError(t, cl2.Validate())

	cfg2, err := cl2.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Feeds, cfg2.Feeds)
	assert.Equal(t, cfg.Concurrency(), cfg2.Concurrency())
}

func TestEmbeddedConfigMatchesSourceFile(t *testing.T) {
	t.Parallel()

	sourceConfig, err := os.ReadFile("config.yaml")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "embedded-config.yaml")
	require.NoError(t, configs.WriteDefault(path, false))

	embeddedConfig, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(sourceConfig), string(embeddedConfig))
}

func TestSchemaRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte("update:\n  workers: 3\n"), configs.New, configs.DefaultValidator)
	require.ErrorIs(t, cl.Validate(), config.ErrParse)
}

func TestConfig_MarshalYAML(t *testing.T) {
	t.Parallel()

	data, err := configs.New().MarshalYAML()
	require.NoError(t, err)

	assert.Contains(t, string(data), "apiVersion: tagrss.jacobcolvin.com/v1beta1")
	assert.Contains(t, string(data), "kind: Configuration")
}
