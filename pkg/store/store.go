// Package store persists sources, items and their tags in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	_ "embed"

	"github.com/macropower/tagrss/pkg/feed"
	"github.com/macropower/tagrss/pkg/item"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound indicates that a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists indicates that a record with the same identity exists.
	ErrExists = errors.New("already exists")
)

const (
	// Fixed width, so that stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
	tagSep     = "\x1f"
)

// Store is a SQLite-backed repository. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Opt configures a [Store].
type Opt func(*Store)

// WithNow sets the clock used for created and fetched timestamps.
func WithNow(now func() time.Time) Opt {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Opt) (*Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close() //nolint:wrapcheck // Terminal.
}

// AddSource registers a new feed source. A source with the same URL yields
// [ErrExists].
func (s *Store) AddSource(ctx context.Context, url, title string) (feed.Source, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sources (url, title, created_at) VALUES (?, ?, ?)",
		url, title, s.timestamp(),
	)
	if isUniqueViolation(err) {
		return feed.Source{}, fmt.Errorf("source %q: %w", url, ErrExists)
	}
	if err != nil {
		return feed.Source{}, fmt.Errorf("insert source: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return feed.Source{}, fmt.Errorf("insert source: %w", err)
	}

	return feed.Source{ID: id, URL: url, Title: title}, nil
}

// EnsureSource returns the source with url, registering it first if needed.
func (s *Store) EnsureSource(ctx context.Context, url, title string) (feed.Source, error) {
	src, err := s.AddSource(ctx, url, title)
	if !errors.Is(err, ErrExists) {
		return src, err
	}

	var id int64

	err = s.db.QueryRowContext(ctx, "SELECT id FROM sources WHERE url = ?", url).Scan(&id)
	if err != nil {
		return feed.Source{}, fmt.Errorf("find source: %w", err)
	}

	return s.GetSource(ctx, id)
}

// GetSource returns the source with id.
func (s *Store) GetSource(ctx context.Context, id int64) (feed.Source, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, url, title, last_fetched FROM sources WHERE id = ?", id)

	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Source{}, fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return feed.Source{}, fmt.Errorf("get source: %w", err)
	}

	return src, nil
}

// ListSources returns every source ordered by ID.
func (s *Store) ListSources(ctx context.Context) ([]feed.Source, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, url, title, last_fetched FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Checked via rows.Err.

	var sources []feed.Source

	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}

		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	return sources, nil
}

// TouchSource records a successful fetch. The title is only filled in when
// the source has none.
func (s *Store) TouchSource(ctx context.Context, id int64, title string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sources SET last_fetched = ?, title = CASE WHEN title = '' THEN ? ELSE title END WHERE id = ?",
		s.timestamp(), title, id,
	)
	if err != nil {
		return fmt.Errorf("touch source: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch source: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("source %d: %w", id, ErrNotFound)
	}

	return nil
}

// HasItem reports whether an item with guid was already stored for source.
func (s *Store) HasItem(ctx context.Context, sourceID int64, guid string) (bool, error) {
	var n int

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE source_id = ? AND guid = ?", sourceID, guid,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check item: %w", err)
	}

	return n > 0, nil
}

// AddItem stores it with its tags and sets its ID. An item with the same
// source and GUID yields [ErrExists].
func (s *Store) AddItem(ctx context.Context, it *item.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	res, err := tx.ExecContext(ctx,
		`INSERT INTO items (source_id, guid, url, title, content, published_at, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.SourceID, it.GUID, it.URL, it.Title, it.Content, formatTime(it.PublishedAt), s.timestamp(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("item %q of source %d: %w", it.GUID, it.SourceID, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	err = saveTags(ctx, tx, id, it.Tags.Names())
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	it.ID = id

	return nil
}

// SaveItemTags adds names to the tags of the stored item. Existing tags
// are kept.
func (s *Store) SaveItemTags(ctx context.Context, itemID int64, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	err = saveTags(ctx, tx, itemID, names)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func saveTags(ctx context.Context, tx *sql.Tx, itemID int64, names []string) error {
	for _, name := range names {
		_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", name, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_tags (item_id, tag_id) SELECT ?, id FROM tags WHERE name = ?",
			itemID, name,
		)
		if err != nil {
			return fmt.Errorf("tag item %d with %q: %w", itemID, name, err)
		}
	}

	return nil
}

const itemColumns = `i.id, i.source_id, i.guid, i.url, i.title, i.content, i.published_at,
	(SELECT group_concat(t.name, char(31)) FROM item_tags it JOIN tags t ON t.id = it.tag_id WHERE it.item_id = i.id)`

// GetItem returns the stored item with id, including its tags.
func (s *Store) GetItem(ctx context.Context, id int64) (*item.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items i WHERE i.id = ?", id)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	return it, nil
}

// ItemQuery filters [Store.ListItems]. Zero fields do not filter.
type ItemQuery struct {
	// Since keeps items published at or after the time.
	Since *time.Time
	// Tag keeps items carrying the exact tag name.
	Tag string
	// SourceID keeps items of one source.
	SourceID int64
	// Limit caps the number of items returned.
	Limit int
}

// ListItems returns stored items, newest first. Undated items sort last.
func (s *Store) ListItems(ctx context.Context, q ItemQuery) ([]*item.Item, error) {
	var (
		where []string
		args  []any
	)

	if q.SourceID != 0 {
		where = append(where, "i.source_id = ?")
		args = append(args, q.SourceID)
	}

	if q.Tag != "" {
		where = append(where,
			"EXISTS (SELECT 1 FROM item_tags it JOIN tags t ON t.id = it.tag_id WHERE it.item_id = i.id AND t.name = ?)")
		args = append(args, q.Tag)
	}

	if q.Since != nil {
		where = append(where, "i.published_at >= ?")
		args = append(args, formatTime(q.Since))
	}

	query := "SELECT " + itemColumns + " FROM items i"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY i.published_at IS NULL, i.published_at DESC, i.id DESC"

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Checked via rows.Err.

	var items []*item.Item

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// TagCount is a tag name with the number of items carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ListTags returns every tag with its item count, ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.name, COUNT(it.item_id)
		FROM tags t LEFT JOIN item_tags it ON it.tag_id = t.id
		GROUP BY t.id ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Checked via rows.Err.

	var tags []TagCount

	for rows.Next() {
		var tc TagCount

		err := rows.Scan(&tc.Name, &tc.Count)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}

		tags = append(tags, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (feed.Source, error) {
	var (
		src         feed.Source
		lastFetched sql.NullString
	)

	err := row.Scan(&src.ID, &src.URL, &src.Title, &lastFetched)
	if err != nil {
		return feed.Source{}, err //nolint:wrapcheck // Wrapped by caller.
	}

	src.LastFetched, err = parseTime(lastFetched)
	if err != nil {
		return feed.Source{}, err
	}

	return src, nil
}

func scanItem(row scanner) (*item.Item, error) {
	var (
		it        item.Item
		content   sql.NullString
		published sql.NullString
		tags      sql.NullString
	)

	err := row.Scan(&it.ID, &it.SourceID, &it.GUID, &it.URL, &it.Title, &content, &published, &tags)
	if err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by caller.
	}

	if content.Valid {
		it.Content = &content.String
	}

	it.PublishedAt, err = parseTime(published)
	if err != nil {
		return nil, err
	}

	if tags.Valid && tags.String != "" {
		it.Tags = item.NewTagSet(strings.Split(tags.String, tagSep)...)
	}

	return &it, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC().Format(timeLayout)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil //nolint:nilnil // NULL.
	}

	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", s.String, err)
	}

	return &t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
