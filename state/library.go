package state

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ldtools/archive"
	"ldtools/catalog"
	"ldtools/config"
	"ldtools/library"
	"ldtools/palette"
)

// paletteName is the name of colour configuration file in library root.
const paletteName = "LDConfig.ldr"

// Roots returns configured library roots with their kinds resolved.
// Inaccessible roots are logged and skipped.
func (e *LocalEnv) Roots() []catalog.Root {
	log := e.logger()
	roots := make([]catalog.Root, 0, len(e.Cfg.Library.Roots))
	for _, rc := range e.Cfg.Library.Roots {
		root, err := resolveRoot(rc)
		if err != nil {
			log.Warn("Skipping library root", zap.String("path", rc.Path), zap.Error(err))
			continue
		}
		roots = append(roots, root)
	}
	return roots
}

func resolveRoot(rc config.RootConfig) (catalog.Root, error) {
	fi, err := os.Stat(rc.Path)
	if err != nil {
		return catalog.Root{}, err
	}
	root := catalog.Root{Path: rc.Path}
	switch rc.Kind {
	case config.RootKindDirectory:
		if !fi.IsDir() {
			return root, errors.New("not a directory")
		}
	case config.RootKindArchive:
		if !fi.Mode().IsRegular() {
			return root, errors.New("not a file")
		}
		root.Archive = true
	default:
		if fi.IsDir() {
			break
		}
		zip, err := archive.IsZip(rc.Path)
		if err != nil {
			return root, err
		}
		if !zip {
			return root, errors.New("neither directory nor zip archive")
		}
		root.Archive = true
	}
	return root, nil
}

// OpenLibrary prepares reference cache and colour palette according to
// configuration.
func (e *LocalEnv) OpenLibrary(ctx context.Context) error {
	log := e.logger()
	lcfg := &e.Cfg.Library

	roots := e.Roots()
	if len(lcfg.CatalogPath) > 0 {
		cat, err := catalog.Open(lcfg.CatalogPath)
		if err != nil {
			return err
		}
		e.Catalog = cat
		if n, err := cat.Count(); err != nil {
			return err
		} else if n == 0 {
			log.Warn("Library catalog is empty, use index command to build it", zap.String("catalog", lcfg.CatalogPath))
		}
	}
	e.Loader = library.NewLoader(roots, e.Catalog, lcfg.Trusted, log)
	e.Library = library.NewCache(e.Loader, log)
	e.lru = library.NewLRU(e.Library, lcfg.CacheCapacity, log)

	pal, err := e.loadPalette(ctx, log)
	if err != nil {
		return err
	}
	e.Palette = pal

	log.Debug("Library prepared",
		zap.Int("roots", len(roots)), zap.Bool("catalog", e.Catalog != nil), zap.Int("colours", len(pal.Codes())))
	return nil
}

func (e *LocalEnv) loadPalette(ctx context.Context, log *zap.Logger) (*palette.Palette, error) {
	if path := e.Cfg.Library.PalettePath; len(path) > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("unable to open palette: %w", err)
		}
		defer f.Close()
		r, err := library.Decode(f)
		if err != nil {
			return nil, err
		}
		return palette.Load(r, path, log)
	}
	doc, err := e.Library.Lookup(ctx, paletteName)
	if err != nil {
		log.Debug("Using built-in palette", zap.Error(err))
		return palette.Default(), nil
	}
	return palette.FromDocument(doc, log), nil
}

// CloseLibrary releases library resources.
func (e *LocalEnv) CloseLibrary() (err error) {
	if e.lru != nil {
		e.lru.Detach()
		e.lru = nil
	}
	if e.Loader != nil {
		err = multierr.Append(err, e.Loader.Close())
		e.Loader = nil
	}
	if e.Catalog != nil {
		err = multierr.Append(err, e.Catalog.Close())
		e.Catalog = nil
	}
	e.Library = nil
	return err
}

func (e *LocalEnv) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log.Named("library")
}
