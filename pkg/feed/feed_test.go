package feed_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/tagrss/pkg/feed"
)

func serveFile(t *testing.T, path string) *httptest.Server {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "tagrss-test" {
			w.WriteHeader(http.StatusForbidden)

			return
		}

		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetcher_Fetch_RSS(t *testing.T) {
	t.Parallel()

	srv := serveFile(t, filepath.Join("testdata", "hn.rss"))
	f := feed.NewFetcher(feed.WithUserAgent("tagrss-test"), feed.WithHTTPClient(srv.Client()))

	res, err := f.Fetch(t.Context(), feed.Source{ID: 5, URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, "Hacker News", res.Title)
	require.Len(t, res.Items, 3)

	ai := res.Items[0]
	assert.Equal(t, int64(5), ai.SourceID)
	assert.Equal(t, "New AI breakthrough", ai.Title)
	assert.Equal(t, "https://example.com/ai#guid", ai.GUID)
	assert.Equal(t, "Researchers announced a GPT-5 class model.", ai.ContentString())
	require.NotNil(t, ai.PublishedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), *ai.PublishedAt)

	sports := res.Items[1]
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://example.com/sports")).String(), sports.GUID)
	assert.Nil(t, sports.Content)
	require.NotNil(t, sports.PublishedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC), *sports.PublishedAt)

	titleOnly := res.Items[2]
	assert.NotEmpty(t, titleOnly.GUID)
	assert.Nil(t, titleOnly.PublishedAt)
}

func TestFetcher_Fetch_StableIdentity(t *testing.T) {
	t.Parallel()

	srv := serveFile(t, filepath.Join("testdata", "hn.rss"))
	f := feed.NewFetcher(feed.WithUserAgent("tagrss-test"), feed.WithHTTPClient(srv.Client()))

	first, err := f.Fetch(t.Context(), feed.Source{ID: 1, URL: srv.URL})
	require.NoError(t, err)

	second, err := f.Fetch(t.Context(), feed.Source{ID: 1, URL: srv.URL})
	require.NoError(t, err)

	require.Len(t, second.Items, len(first.Items))

	for i := range first.Items {
		assert.Equal(t, first.Items[i].GUID, second.Items[i].GUID)
	}
}

func TestFetcher_Fetch_AtomFile(t *testing.T) {
	t.Parallel()

	path, err := filepath.Abs(filepath.Join("testdata", "blog.atom"))
	require.NoError(t, err)

	res, err := feed.NewFetcher().Fetch(t.Context(), feed.Source{ID: 2, URL: "file://" + filepath.ToSlash(path)})
	require.NoError(t, err)

	assert.Equal(t, "The Go Blog", res.Title)
	require.Len(t, res.Items, 1)

	it := res.Items[0]
	assert.Equal(t, "tag:blog.golang.org,2013:blog.golang.org/go1.23", it.GUID)
	assert.Equal(t, "https://go.dev/blog/go1.23", it.URL)
	assert.Equal(t, "Iterators and more.", it.ContentString())
	require.NotNil(t, it.PublishedAt, "updated is used when published is absent")
	assert.Equal(t, time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), *it.PublishedAt)
}

func TestFetcher_Fetch_Errors(t *testing.T) {
	t.Parallel()

	srv := serveFile(t, filepath.Join("testdata", "hn.rss"))

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	t.Cleanup(garbage.Close)

	tcs := map[string]struct {
		url string
	}{
		"http error status":  {url: srv.URL},
		"not a feed":         {url: garbage.URL},
		"unsupported scheme": {url: "gopher://example.com/feed"},
		"missing file":       {url: "file:///does/not/exist.xml"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// The default user agent is rejected by the fixture server.
			res, err := feed.NewFetcher().Fetch(t.Context(), feed.Source{URL: tc.url})
			require.ErrorIs(t, err, feed.ErrFetch)
			assert.Nil(t, res)
		})
	}
}

func TestToItem(t *testing.T) {
	t.Parallel()

	published := time.Date(2024, 1, 15, 12, 0, 0, 0, time.FixedZone("EST", -5*60*60))

	it := feed.ToItem(3, &gofeed.Item{
		Title:           "  Padded  ",
		Content:         "   ",
		Description:     "fallback",
		PublishedParsed: &published,
	})

	assert.Equal(t, "Padded", it.Title)
	assert.Equal(t, "fallback", it.ContentString())
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceOID, []byte("Padded")).String(), it.GUID)
	assert.Equal(t, time.UTC, it.PublishedAt.Location())
	assert.Equal(t, 0, it.Tags.Len())

	assert.Empty(t, feed.ToItem(1, &gofeed.Item{Description: "anonymous"}).GUID)
}

func TestSource_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "HN", feed.Source{Title: "HN", URL: "https://hn"}.Name())
	assert.Equal(t, "https://hn", feed.Source{URL: "https://hn"}.Name())
}
