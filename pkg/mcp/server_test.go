package mcp_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/folder"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/log"
	"github.com/macropower/tagrss/pkg/mcp"
	"github.com/macropower/tagrss/pkg/ruleset"
	"github.com/macropower/tagrss/pkg/store"
)

const (
	rulesYAML = `rules:
  - type: Contains
    tag: tech/ai
    pattern: AI
`
	foldersYAML = `folders:
  - name: AI News
    and:
      - tag: tech/ai
      - time: "2024-01-01 ~ "
  - name: Untagged
    match: size(tags) == 0
  - name: Broken
    time: "someday ~ "
`
)

type fakeItems struct {
	items []*item.Item
}

func (f *fakeItems) ListItems(_ context.Context, _ store.ItemQuery) ([]*item.Item, error) {
	return f.items, nil
}

func ptr[T any](v T) *T {
	return &v
}

func newClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()

	rs, err := ruleset.Parse([]byte(rulesYAML))
	require.NoError(t, err)

	catalog, err := folder.ParseCatalog([]byte(foldersYAML))
	require.NoError(t, err)

	return classifier.New(rs, catalog)
}

func connect(t *testing.T, s *mcp.Server) *sdk.ClientSession {
	t.Helper()

	ctx := t.Context()
	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	serverSession, err := s.Server().Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := sdk.NewClient(&sdk.Implementation{Name: "client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, clientSession.Close())
		require.NoError(t, serverSession.Wait())
	})

	return clientSession
}

//nolint:paralleltest,tparallel // Shares a clientSession.
func TestServer_Integration(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: []*item.Item{
		{
			ID:          1,
			SourceID:    5,
			Title:       "New AI breakthrough",
			PublishedAt: ptr(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
			Tags:        item.NewTagSet("tech/ai"),
		},
		{
			ID:       2,
			SourceID: 5,
			Title:    "Sports update",
		},
	}}

	s := mcp.NewServer("", newClassifier(t), mcp.WithItems(items))
	session := connect(t, s)

	tcs := map[string]struct {
		params *sdk.CallToolParams
		want   map[string]any
	}{
		"classify_item matching": {
			params: &sdk.CallToolParams{
				Name: "classify_item",
				Arguments: map[string]any{
					"title":     "New AI breakthrough",
					"published": "2024-06-01T00:00:00Z",
				},
			},
			want: map[string]any{
				"message":   "Added 1 tags. Tags: tech/ai. Folders: AI News.",
				"tags":      []any{"tech/ai"},
				"folders":   []any{"AI News"},
				"addedTags": float64(1),
			},
		},
		"classify_item no match": {
			params: &sdk.CallToolParams{
				Name:      "classify_item",
				Arguments: map[string]any{"title": "Sports update"},
			},
			want: map[string]any{
				"message":   "Added 0 tags. Folders: Untagged.",
				"tags":      []any{},
				"folders":   []any{"Untagged"},
				"addedTags": float64(0),
			},
		},
		"list_folders": {
			params: &sdk.CallToolParams{
				Name:      "list_folders",
				Arguments: map[string]any{},
			},
			want: map[string]any{
				"message": "Found 2 folders. 1 folder definitions were skipped.",
				"folders":     folderInfos(t),
				"skipped":     []any{skippedMessage(t)},
				"folderCount": float64(2),
			},
		},
		"folder_items": {
			params: &sdk.CallToolParams{
				Name:      "folder_items",
				Arguments: map[string]any{"folder": "AI News"},
			},
			want: map[string]any{
				"folder":  "AI News",
				"message": `Found 1 items in folder "AI News".`,
				"items": []any{
					map[string]any{
						"id":        float64(1),
						"sourceID":  float64(5),
						"title":     "New AI breakthrough",
						"published": "2024-06-01T12:00:00Z",
						"tags":      []any{"tech/ai"},
					},
				},
				"itemCount": float64(1),
				"found":     true,
			},
		},
		"folder_items limit": {
			params: &sdk.CallToolParams{
				Name:      "folder_items",
				Arguments: map[string]any{"folder": "Untagged", "limit": 1},
			},
			want: map[string]any{
				"folder":  "Untagged",
				"message": `Found 1 items in folder "Untagged".`,
				"items": []any{
					map[string]any{
						"id":       float64(2),
						"sourceID": float64(5),
						"title":    "Sports update",
						"tags":     []any{},
					},
				},
				"itemCount": float64(1),
				"found":     true,
			},
		},
		"folder_items unknown": {
			params: &sdk.CallToolParams{
				Name:      "folder_items",
				Arguments: map[string]any{"folder": "Nope"},
			},
			want: map[string]any{
				"folder":    "Nope",
				"message":   `INVALID INPUT ERROR: Folder "Nope" not found. Use an EXACT INPUT from the list_folders tool.`,
				"items":     []any{},
				"itemCount": float64(0),
				"found":     false,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			r, err := session.CallTool(t.Context(), tc.params)
			require.NoError(t, err)
			require.NotNil(t, r)

			assert.Equal(t, tc.want, r.StructuredContent)
		})
	}
}

func skippedMessage(t *testing.T) string {
	t.Helper()

	catalog, err := folder.ParseCatalog([]byte(foldersYAML))
	require.NoError(t, err)

	diags := catalog.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "Broken", diags[0].Name)

	return diags[0].String()
}

func folderInfos(t *testing.T) []any {
	t.Helper()

	catalog, err := folder.ParseCatalog([]byte(foldersYAML))
	require.NoError(t, err)

	var out []any
	for _, f := range catalog.Folders() {
		out = append(out, map[string]any{"name": f.Name, "expression": f.Root.String()})
	}

	require.Len(t, out, 2)

	return out
}

func TestServer_ClassifyItem_InvalidPublished(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer("", newClassifier(t)))

	r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      "classify_item",
		Arguments: map[string]any{"title": "x", "published": "yesterday"},
	})
	require.NoError(t, err)

	got, ok := r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, got["error"], "published")
	assert.Equal(t, []any{}, got["folders"])
}

func TestServer_ClassifyDoesNotMutateStoredItems(t *testing.T) {
	t.Parallel()

	items := &fakeItems{items: []*item.Item{{ID: 1, Title: "AI"}}}
	session := connect(t, mcp.NewServer("", newClassifier(t), mcp.WithItems(items)))

	_, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      "folder_items",
		Arguments: map[string]any{"folder": "Untagged"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, items.items[0].Tags.Len())
}

func TestServer_OptionalTools(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts []mcp.ServerOpt
		want []string
	}{
		"classifier only": {
			want: []string{"classify_item", "list_folders"},
		},
		"with items and recorder": {
			opts: []mcp.ServerOpt{
				mcp.WithItems(&fakeItems{}),
				mcp.WithRecorder(log.NewRecorder(10, slog.LevelInfo)),
			},
			want: []string{"classify_item", "folder_items", "list_folders", "recent_logs"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session := connect(t, mcp.NewServer("", newClassifier(t), tc.opts...))

			res, err := session.ListTools(t.Context(), nil)
			require.NoError(t, err)

			var got []string
			for _, tool := range res.Tools {
				got = append(got, tool.Name)
			}

			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestServer_RecentLogs(t *testing.T) {
	t.Parallel()

	rec := log.NewRecorder(10, slog.LevelInfo)
	logger := slog.New(rec)

	logger.Debug("hidden")
	logger.Info("first", slog.String("source", "hn"))
	logger.Warn("second")

	session := connect(t, mcp.NewServer("", newClassifier(t), mcp.WithRecorder(rec)))

	r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      "recent_logs",
		Arguments: map[string]any{"limit": 1},
	})
	require.NoError(t, err)

	got, ok := r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Found 1 log records.", got["message"])

	entries, ok := got["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "second", entry["message"])
	assert.Equal(t, "WARN", entry["level"])

	r, err = session.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      "recent_logs",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)

	got, ok = r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Found 2 log records.", got["message"])
}
