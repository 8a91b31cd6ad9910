package folders_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/api/v1beta1/folders"
	"github.com/macropower/tagrss/pkg/config"
)

func TestDefaultFoldersPipeline(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "folders.yaml")
	require.NoError(t, folders.WriteDefault(path, false))

	l, err := config.NewLoaderFromFile(path, folders.New, folders.DefaultValidator,
		config.WithKinds(folders.ValidKinds...))
	require.NoError(t, err)
	require.NoError(t, l.Validate())

	doc, err := l.Load()
	require.NoError(t, err)

	var names []string
	for _, e := range doc.Folders {
		names = append(names, folders.EntryName(e))
	}

	assert.Equal(t, []string{"Today", "AI News", "Rust", "Hacker News", "Untagged", "Everything Else"}, names)
}

func TestSchema_ShellOnly(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		data    string
		wantErr bool
	}{
		"entries are not validated": {
			data: "folders:\n  - name: A\n    bogus: 1\n",
		},
		"non-mapping entries": {
			data: "folders:\n  - name: A\n    tag: a\n  - just-a-string\n  - 42\n",
		},
		"empty": {
			data: "",
		},
		"unknown top level field": {
			data:    "folders: []\nsmart: true\n",
			wantErr: true,
		},
		"wrong kind": {
			data:    "kind: TagRules\nfolders: []\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			l := config.NewLoaderFromBytes([]byte(tc.data), folders.New, folders.DefaultValidator)

			err := l.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, config.ErrParse)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestEntryName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		entry any
		want  string
	}{
		"named":       {entry: map[string]any{"name": "A"}, want: "A"},
		"unnamed":     {entry: map[string]any{"tag": "a"}},
		"number name": {entry: map[string]any{"name": 3}},
		"string":      {entry: "just-a-string"},
		"nil":         {entry: nil},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, folders.EntryName(tc.entry))
		})
	}
}
