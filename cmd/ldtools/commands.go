package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"ldtools/catalog"
	"ldtools/content"
	"ldtools/state"
)

func dumpDocuments(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dump")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		}
	}

	var out io.Writer = os.Stdout
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}

	asXML := cmd.Bool("xml")
	return content.Walk(ctx, src, func(ctx context.Context, r io.Reader, name string) error {
		c, err := content.Prepare(ctx, r, name, log)
		if err != nil {
			return err
		}
		defer c.Doc.Dispose()

		if asXML {
			_, err = c.Doc.ToXML().WriteTo(out)
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n%s\n", name, c.String())
		return err
	}, log)
}

func buildIndex(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("index")

	cat := env.Catalog
	if path := cmd.Args().Get(0); len(path) > 0 && (cat == nil || filepath.Clean(path) != filepath.Clean(cat.Path())) {
		c, err := catalog.Open(path)
		if err != nil {
			return fmt.Errorf("unable to open catalog: %w", err)
		}
		defer c.Close()
		cat = c
	}
	if cat == nil {
		return errors.New("no catalog has been specified")
	}

	roots := env.Roots()
	if len(roots) == 0 {
		return errors.New("no library roots are available")
	}

	log.Info("Indexing starting", zap.String("catalog", cat.Path()), zap.Int("roots", len(roots)))
	start := time.Now()
	count, err := cat.Build(ctx, roots, log)
	if err != nil {
		return fmt.Errorf("unable to build catalog: %w", err)
	}
	log.Info("Indexing completed", zap.Int("documents", count), zap.Duration("elapsed", time.Since(start)))
	return nil
}
