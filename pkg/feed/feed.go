// Package feed fetches RSS, Atom and JSON feeds and converts their entries
// into [item.Item]s.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/log"
)

// ErrFetch indicates that a feed could not be downloaded or parsed.
var ErrFetch = errors.New("fetch feed")

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "tagrss"
)

// Source is a subscribed feed.
type Source struct {
	LastFetched *time.Time `json:"lastFetched,omitempty"`
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	ID          int64      `json:"id"`
}

// Name returns the title of the source, or its URL if it has none.
func (s Source) Name() string {
	if s.Title != "" {
		return s.Title
	}

	return s.URL
}

// Result is the outcome of fetching a [Source].
type Result struct {
	// Title is the feed's own title.
	Title string
	// Items are in feed order, all attributed to the source.
	Items []*item.Item
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// FetcherOpt configures a [Fetcher].
type FetcherOpt func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) FetcherOpt {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) FetcherOpt {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) FetcherOpt {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new [Fetcher].
func NewFetcher(opts ...FetcherOpt) *Fetcher {
	f := &Fetcher{
		client:    http.DefaultClient,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads and parses the feed of src. Local files may be given as
// file:// URLs.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (*Result, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, src.URL, err)
	}

	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.userAgent

	var parsed *gofeed.Feed

	switch u.Scheme {
	case "file":
		parsed, err = parseFile(parser, u.Path)
	case "http", "https":
		parsed, err = parser.ParseURLWithContext(src.URL, ctx)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, src.URL, err)
	}

	res := &Result{
		Title: strings.TrimSpace(parsed.Title),
		Items: make([]*item.Item, 0, len(parsed.Items)),
	}

	for _, entry := range parsed.Items {
		it := ToItem(src.ID, entry)
		if it.GUID == "" {
			log.WithContext(ctx).DebugContext(ctx, "skipping feed entry without identity",
				slog.String("source", src.URL),
			)

			continue
		}

		res.Items = append(res.Items, it)
	}

	return res, nil
}

func parseFile(parser *gofeed.Parser, path string) (*gofeed.Feed, error) {
	r, err := os.Open(path) //nolint:gosec // G304: user-provided feed path.
	if err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}
	defer r.Close() //nolint:errcheck // Read only.

	return parser.Parse(r) //nolint:wrapcheck // Wrapped by caller.
}

// ToItem converts a parsed feed entry into an [item.Item] of source.
//
// Entries without a GUID are identified by a name-based UUID of their link,
// or of their title when they have no link, so that re-fetching a feed
// yields the same identity. Entries with neither get an empty GUID.
func ToItem(sourceID int64, entry *gofeed.Item) *item.Item {
	it := &item.Item{
		SourceID: sourceID,
		GUID:     strings.TrimSpace(entry.GUID),
		URL:      strings.TrimSpace(entry.Link),
		Title:    strings.TrimSpace(entry.Title),
	}

	if it.GUID == "" {
		switch {
		case it.URL != "":
			it.GUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(it.URL)).String()
		case it.Title != "":
			it.GUID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(it.Title)).String()
		}
	}

	content := entry.Content
	if strings.TrimSpace(content) == "" {
		content = entry.Description
	}

	if strings.TrimSpace(content) != "" {
		it.Content = &content
	}

	switch {
	case entry.PublishedParsed != nil:
		ts := entry.PublishedParsed.UTC()
		it.PublishedAt = &ts
	case entry.UpdatedParsed != nil:
		ts := entry.UpdatedParsed.UTC()
		it.PublishedAt = &ts
	}

	return it
}
