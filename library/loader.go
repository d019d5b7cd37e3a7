package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ldtools/archive"
	"ldtools/catalog"
	"ldtools/dom"
)

// Loader reads documents from library roots. When catalog is given it is
// consulted instead of probing every root.
type Loader struct {
	roots   []catalog.Root
	catalog *catalog.Catalog
	trusted bool
	log     *zap.Logger

	mu       sync.Mutex
	archives map[string]*archive.Index
}

// NewLoader creates loader for roots in precedence order. Documents coming
// from trusted roots are marked as library documents.
func NewLoader(roots []catalog.Root, cat *catalog.Catalog, trusted bool, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		roots:    roots,
		catalog:  cat,
		trusted:  trusted,
		log:      log.Named("loader"),
		archives: make(map[string]*archive.Index),
	}
}

func (l *Loader) Roots() []catalog.Root { return l.roots }

// Load finds, reads and parses library document.
func (l *Loader) Load(ctx context.Context, name string) (*dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := l.Locate(name)
	if err != nil {
		return nil, err
	}

	rc, err := l.open(loc)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", loc.Path, err)
	}
	defer rc.Close()

	r, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", loc.Path, err)
	}
	doc, err := dom.ParseDocument(r, name, l.log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s from %s: %w", name, loc.Root, err)
	}
	if l.trusted {
		if err := doc.SetLibrary(true); err != nil {
			return nil, err
		}
	}
	l.log.Debug("Library document loaded",
		zap.String("name", name), zap.Stringer("root", loc.Root), zap.String("path", loc.Path))
	return doc, nil
}

// Locate finds where the document is stored.
func (l *Loader) Locate(name string) (catalog.Location, error) {
	if l.catalog != nil {
		loc, found, err := l.catalog.Locate(name)
		if err != nil {
			return catalog.Location{}, err
		}
		if !found {
			return catalog.Location{}, fmt.Errorf("%s is not in catalog: %w", name, ErrNotFound)
		}
		return loc, nil
	}

	candidates := catalog.Candidates(name)
	for _, root := range l.roots {
		for rank, rel := range candidates {
			if loc, ok := l.probe(root, rel); ok {
				loc.Rank = rank
				return loc, nil
			}
		}
	}
	return catalog.Location{}, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (l *Loader) probe(root catalog.Root, rel string) (catalog.Location, bool) {
	if root.Archive {
		idx, err := l.index(root.Path)
		if err != nil {
			l.log.Debug("Library archive is not available", zap.String("archive", root.Path), zap.Error(err))
			return catalog.Location{}, false
		}
		for _, entry := range []string{"ldraw/" + rel, rel} {
			if f := idx.Lookup(entry); f != nil {
				return catalog.Location{Root: root, Path: f.Name}, true
			}
		}
		return catalog.Location{}, false
	}

	// names in references are case-insensitive, files are usually lower case
	for _, p := range []string{rel, strings.ToLower(rel)} {
		if fi, err := os.Stat(filepath.Join(root.Path, filepath.FromSlash(p))); err == nil && fi.Mode().IsRegular() {
			return catalog.Location{Root: root, Path: p}, true
		}
	}
	return catalog.Location{}, false
}

func (l *Loader) open(loc catalog.Location) (io.ReadCloser, error) {
	if !loc.Root.Archive {
		return os.Open(filepath.Join(loc.Root.Path, filepath.FromSlash(loc.Path)))
	}
	idx, err := l.index(loc.Root.Path)
	if err != nil {
		return nil, err
	}
	rc, err := idx.Open(loc.Path)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, fmt.Errorf("%w: catalog may be stale", err)
	}
	return rc, err
}

func (l *Loader) index(path string) (*archive.Index, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idx, ok := l.archives[path]; ok {
		return idx, nil
	}
	idx, err := archive.OpenIndex(path)
	if err != nil {
		return nil, err
	}
	l.archives[path] = idx
	return idx, nil
}

// Close releases opened archives.
func (l *Loader) Close() (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for path, idx := range l.archives {
		if er := idx.Close(); er != nil && !errors.Is(er, fs.ErrClosed) {
			err = multierr.Append(err, fmt.Errorf("unable to close %s: %w", path, er))
		}
	}
	clear(l.archives)
	return err
}
