package cli_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/internal/cli"
)

func envLookup(vars map[string]string) cli.EnvLookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]

		return v, ok
	}
}

func TestEnvFlags(t *testing.T) {
	tcs := map[string]struct {
		env        map[string]string
		wantLevel  string
		wantFormat string
		args       []string
	}{
		"variables apply without args": {
			env:        map[string]string{"TAGRSS_LOG_LEVEL": "debug", "TAGRSS_LOG_FORMAT": "json"},
			wantLevel:  "debug",
			wantFormat: "json",
		},
		"args take precedence": {
			env:        map[string]string{"TAGRSS_LOG_LEVEL": "debug", "TAGRSS_LOG_FORMAT": "json"},
			args:       []string{"--log-level", "error", "--log-format", "logfmt"},
			wantLevel:  "error",
			wantFormat: "logfmt",
		},
		"partial override": {
			env:        map[string]string{"TAGRSS_LOG_LEVEL": "warn"},
			args:       []string{"--log-format", "json"},
			wantLevel:  "warn",
			wantFormat: "json",
		},
		"defaults": {
			wantLevel:  "info",
			wantFormat: "text",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			env := map[string]string{"TAGRSS_CONFIG": filepath.Join(t.TempDir(), "config.yaml")}
			for k, v := range tc.env {
				env[k] = v
			}

			cmd := cli.NewRootCmd(cli.WithEnvLookup(envLookup(env)))
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(append([]string{"version"}, tc.args...))

			require.NoError(t, cmd.ExecuteContext(t.Context()))

			flags := cmd.PersistentFlags()
			assert.Equal(t, tc.wantLevel, flags.Lookup("log-level").Value.String())
			assert.Equal(t, tc.wantFormat, flags.Lookup("log-format").Value.String())
			assert.Equal(t, env["TAGRSS_CONFIG"], flags.Lookup("config").Value.String())
		})
	}
}

func TestEnvFlags_Subcommand(t *testing.T) {
	env := map[string]string{
		"TAGRSS_CONFIG":    filepath.Join(t.TempDir(), "config.yaml"),
		"TAGRSS_LOG_LEVEL": "error",
		"TAGRSS_OUTPUT":    "json",
	}

	out := &bytes.Buffer{}

	cmd := cli.NewRootCmd(cli.WithEnvLookup(envLookup(env)))
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), `"platform"`)
}

func TestEnvFlags_InvalidValue(t *testing.T) {
	env := map[string]string{
		"TAGRSS_CONFIG": filepath.Join(t.TempDir(), "config.yaml"),
		"TAGRSS_LIMIT":  "many",
	}

	cmd := cli.NewRootCmd(cli.WithEnvLookup(envLookup(env)))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"items", "list"})

	err := cmd.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$TAGRSS_LIMIT")
}

func TestEnvFlags_Usage(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCmd()

	tcs := map[string]struct {
		path []string
		flag string
		want string
	}{
		"root":       {flag: "log-level", want: "$TAGRSS_LOG_LEVEL"},
		"config":     {flag: "config", want: "$TAGRSS_CONFIG"},
		"subcommand": {path: []string{"items", "list"}, flag: "limit", want: "$TAGRSS_LIMIT"},
		"serve-mcp":  {path: []string{"serve-mcp"}, flag: "address", want: "$TAGRSS_ADDRESS"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sub, _, err := cmd.Find(tc.path)
			require.NoError(t, err)

			flag := sub.Flags().Lookup(tc.flag)
			if flag == nil {
				flag = sub.PersistentFlags().Lookup(tc.flag)
			}

			require.NotNil(t, flag)
			assert.Contains(t, flag.Usage, tc.want)
		})
	}
}
