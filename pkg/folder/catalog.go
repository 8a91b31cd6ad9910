package folder

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/macropower/tagrss/api/v1beta1/folders"
	"github.com/macropower/tagrss/pkg/config"
	"github.com/macropower/tagrss/pkg/item"
)

// Diagnostic records a folder declaration that was skipped during a load.
type Diagnostic struct {
	Err   error
	Name  string
	Index int
}

func (d Diagnostic) String() string {
	if d.Name == "" {
		return fmt.Sprintf("folder %d: %v", d.Index, d.Err)
	}

	return fmt.Sprintf("folder %d (%s): %v", d.Index, d.Name, d.Err)
}

// Catalog is an ordered list of folders bound to a FolderCatalog document.
// It is safe for concurrent use; [Catalog.Reload] swaps the list atomically.
type Catalog struct {
	parser      *Parser
	path        string
	loaderOpts  []config.LoaderOpt
	folders     []*Folder
	diagnostics []Diagnostic
	mu          sync.RWMutex
}

// NewCatalog creates an unbound [Catalog] holding the given folders.
func NewCatalog(fs ...*Folder) *Catalog {
	return &Catalog{
		parser:  NewParser(),
		folders: slices.Clone(fs),
	}
}

// LoadCatalog loads the FolderCatalog document at path.
//
// A missing file yields an empty catalog that remains bound to path, so a
// later [Catalog.Reload] picks the file up once it exists. Malformed folder
// entries are skipped and reported by [Catalog.Diagnostics].
func LoadCatalog(path string, opts ...Option) (*Catalog, error) {
	o := newOptions(opts...)

	c := &Catalog{
		parser:     NewParser(opts...),
		path:       path,
		loaderOpts: append([]config.LoaderOpt{config.WithKinds(folders.ValidKinds...)}, o.loaderOpts...),
	}

	fs, diags, err := c.read()
	if errors.Is(err, config.ErrSourceNotFound) {
		slog.Debug("folders not found, starting empty", slog.String("path", path))

		return c, nil
	}
	if err != nil {
		return nil, err
	}

	c.folders, c.diagnostics = fs, diags

	return c, nil
}

// ParseCatalog builds an unbound [Catalog] from document data.
func ParseCatalog(data []byte, opts ...Option) (*Catalog, error) {
	o := newOptions(opts...)

	c := &Catalog{parser: NewParser(opts...)}

	l := config.NewLoaderFromBytes(data, folders.New, folders.DefaultValidator,
		append([]config.LoaderOpt{config.WithKinds(folders.ValidKinds...)}, o.loaderOpts...)...)

	fs, diags, err := c.build(l)
	if err != nil {
		return nil, err
	}

	c.folders, c.diagnostics = fs, diags

	return c, nil
}

// Reload re-reads the bound document. On success the folder list is
// replaced; on failure, including a missing file, the previous list is
// kept and the error is returned.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return errors.New("reload folders: catalog is not bound to a file")
	}

	fs, diags, err := c.read()
	if err != nil {
		return fmt.Errorf("reload folders: %w", err)
	}

	c.mu.Lock()
	c.folders, c.diagnostics = fs, diags
	c.mu.Unlock()

	slog.Debug("reloaded folders",
		slog.String("path", c.path),
		slog.Int("folders", len(fs)),
		slog.Int("skipped", len(diags)),
	)

	return nil
}

func (c *Catalog) read() ([]*Folder, []Diagnostic, error) {
	l, err := config.NewLoaderFromFile(c.path, folders.New, folders.DefaultValidator, c.loaderOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("read folders: %w", err)
	}

	return c.build(l)
}

func (c *Catalog) build(l *config.Loader[*folders.FolderCatalog]) ([]*Folder, []Diagnostic, error) {
	err := l.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("validate folders: %w", err)
	}

	doc, err := l.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load folders: %w", err)
	}

	var (
		fs    = make([]*Folder, 0, len(doc.Folders))
		diags []Diagnostic
		seen  = map[string]int{}
	)

	for i, entry := range doc.Folders {
		loc := []string{"folders", strconv.Itoa(i)}

		f, err := c.parser.parseEntry(entry, loc)
		if err == nil {
			if first, dup := seen[f.Name]; dup {
				err = fmt.Errorf("%w: %q first declared by folder %d", ErrDuplicateName, f.Name, first)
			}
		}

		if err != nil {
			d := Diagnostic{Index: i, Name: folders.EntryName(entry), Err: l.ParseError(err)}
			diags = append(diags, d)

			slog.Warn("skipping folder",
				slog.Int("index", i),
				slog.String("name", d.Name),
				slog.Any("error", err),
			)

			continue
		}

		seen[f.Name] = i
		fs = append(fs, f)
	}

	return fs, diags, nil
}

// Path returns the bound document path, or "" for an unbound catalog.
func (c *Catalog) Path() string {
	return c.path
}

// Folders returns a snapshot of the folder list.
func (c *Catalog) Folders() []*Folder {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.folders)
}

// Folder returns the folder with the given name.
func (c *Catalog) Folder(name string) (*Folder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.folders {
		if f.Name == name {
			return f, true
		}
	}

	return nil, false
}

// Diagnostics returns the entries skipped by the most recent successful load.
func (c *Catalog) Diagnostics() []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.diagnostics)
}

// Len returns the number of folders.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.folders)
}

// Classify returns the names of every folder containing it, in catalog
// order. An item may belong to any number of folders.
func (c *Catalog) Classify(it *item.Item) []string {
	var names []string

	for _, f := range c.Folders() {
		if f.Contains(it) {
			names = append(names, f.Name)
		}
	}

	return names
}
