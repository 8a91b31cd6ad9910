// Package update implements the fetch cycle: every registered source is
// fetched, new items are tagged by the rule set and stored.
package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/tagrss/pkg/feed"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/log"
	"github.com/macropower/tagrss/pkg/store"
)

// DefaultConcurrency is the number of sources fetched at once.
const DefaultConcurrency = 4

// Store persists sources and items. It is satisfied by [*store.Store].
type Store interface {
	ListSources(ctx context.Context) ([]feed.Source, error)
	TouchSource(ctx context.Context, id int64, title string) error
	HasItem(ctx context.Context, sourceID int64, guid string) (bool, error)
	AddItem(ctx context.Context, it *item.Item) error
	ListItems(ctx context.Context, q store.ItemQuery) ([]*item.Item, error)
	SaveItemTags(ctx context.Context, itemID int64, names []string) error
}

// Fetcher retrieves the current entries of a source.
type Fetcher interface {
	Fetch(ctx context.Context, src feed.Source) (*feed.Result, error)
}

// Tagger adds tags to an item and returns the number of new tag names.
type Tagger interface {
	Apply(it *item.Item) int
}

// SourceResult is the outcome of updating one source.
type SourceResult struct {
	Err       error       `json:"-"`
	Source    feed.Source `json:"source"`
	Error     string      `json:"error,omitempty"`
	Fetched   int         `json:"fetched"`
	Added     int         `json:"added"`
	Skipped   int         `json:"skipped"`
	TagsAdded int         `json:"tagsAdded"`
}

// Summary is the outcome of one update cycle.
type Summary struct {
	Results   []SourceResult `json:"results"`
	Duration  time.Duration  `json:"duration"`
	Sources   int            `json:"sources"`
	Fetched   int            `json:"fetched"`
	Added     int            `json:"added"`
	Skipped   int            `json:"skipped"`
	TagsAdded int            `json:"tagsAdded"`
	Failed    int            `json:"failed"`
}

// Err joins the errors of all failed sources, or returns nil.
func (s *Summary) Err() error {
	var errs []error

	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source.Name(), r.Err))
		}
	}

	return errors.Join(errs...)
}

// Runner runs update cycles.
type Runner struct {
	store       Store
	fetcher     Fetcher
	tagger      Tagger
	tracer      trace.Tracer
	concurrency int
}

// RunnerOpt configures a [Runner].
type RunnerOpt func(*Runner)

// WithConcurrency sets the number of sources fetched at once.
func WithConcurrency(n int) RunnerOpt {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRunner creates a new [Runner]. A nil tagger stores items untagged.
func NewRunner(s Store, f Fetcher, tagger Tagger, opts ...RunnerOpt) *Runner {
	r := &Runner{
		store:       s,
		fetcher:     f,
		tagger:      tagger,
		tracer:      otel.Tracer("update-runner"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run updates every registered source. A failing source is recorded in the
// returned [Summary] and never stops the others; only failing to list the
// sources is returned as an error.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	ctx, span := r.tracer.Start(ctx, "update")
	defer span.End()

	start := time.Now()

	sources, err := r.store.ListSources(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("list sources: %w", err)
	}

	results := make([]SourceResult, len(sources))

	g := errgroup.Group{}
	g.SetLimit(r.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			results[i] = r.runSource(ctx, src)

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // Errors are recorded per source.

	sum := &Summary{
		Results:  results,
		Sources:  len(sources),
		Duration: time.Since(start),
	}

	for _, res := range results {
		sum.Fetched += res.Fetched
		sum.Added += res.Added
		sum.Skipped += res.Skipped
		sum.TagsAdded += res.TagsAdded

		if res.Err != nil {
			sum.Failed++
		}
	}

	span.SetAttributes(
		attribute.Int("sources", sum.Sources),
		attribute.Int("added", sum.Added),
		attribute.Int("failed", sum.Failed),
	)

	log.WithContext(ctx).InfoContext(ctx, "update complete",
		slog.Int("sources", sum.Sources),
		slog.Int("fetched", sum.Fetched),
		slog.Int("added", sum.Added),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
		slog.Duration("duration", sum.Duration),
	)

	return sum, nil
}

func (r *Runner) runSource(ctx context.Context, src feed.Source) SourceResult {
	ctx, span := r.tracer.Start(ctx, "source", trace.WithAttributes(
		attribute.Int64("source.id", src.ID),
		attribute.String("source.url", src.URL),
	))
	defer span.End()

	res := SourceResult{Source: src}

	err := r.updateSource(ctx, src, &res)
	if err != nil {
		res.Err = err
		res.Error = err.Error()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		log.WithContext(ctx).WarnContext(ctx, "update source",
			slog.String("source", src.Name()),
			slog.Any("err", err),
		)
	}

	return res
}

func (r *Runner) updateSource(ctx context.Context, src feed.Source, res *SourceResult) error {
	fetched, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return err //nolint:wrapcheck // Already carries the source URL.
	}

	res.Fetched = len(fetched.Items)

	for _, it := range fetched.Items {
		it.SourceID = src.ID

		exists, err := r.store.HasItem(ctx, src.ID, it.GUID)
		if err != nil {
			return err //nolint:wrapcheck // Already descriptive.
		}

		if exists {
			res.Skipped++

			continue
		}

		added := 0
		if r.tagger != nil {
			added = r.tagger.Apply(it)
		}

		err = r.store.AddItem(ctx, it)
		if errors.Is(err, store.ErrExists) {
			// Duplicate GUID within the same fetch.
			res.Skipped++

			continue
		}
		if err != nil {
			return err //nolint:wrapcheck // Already descriptive.
		}

		res.Added++
		res.TagsAdded += added
	}

	err = r.store.TouchSource(ctx, src.ID, fetched.Title)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	return nil
}

// Retag applies the tagger to every stored item and saves the tags it adds.
// It returns the number of tag names added across all items.
func (r *Runner) Retag(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "retag")
	defer span.End()

	if r.tagger == nil {
		return 0, nil
	}

	items, err := r.store.ListItems(ctx, store.ItemQuery{})
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	total := 0

	for _, it := range items {
		before := it.Tags.Clone()

		if r.tagger.Apply(it) == 0 {
			continue
		}

		var added []string

		for _, name := range it.Tags.Names() {
			if !before.Has(name) {
				added = append(added, name)
			}
		}

		err := r.store.SaveItemTags(ctx, it.ID, added)
		if err != nil {
			return total, fmt.Errorf("item %d: %w", it.ID, err)
		}

		total += len(added)
	}

	span.SetAttributes(attribute.Int("tags_added", total))

	return total, nil
}
