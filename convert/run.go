// Package convert re-serializes LDraw sources in requested code format.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"ldtools/common"
	"ldtools/content"
	"ldtools/dom"
	"ldtools/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format = env.Cfg.Document.Format
	if f := cmd.String("format"); len(f) > 0 {
		format, err := common.ParseCodeFormat(f)
		if err != nil {
			log.Warn("Unknown code format requested, using configured one", zap.Error(err), zap.Stringer("format", env.Format))
		} else {
			env.Format = format
		}
	}

	env.NoDirs, env.Overwrite, env.Split = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("split")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", env.Format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core conversion logic independently of CLI framework.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	return content.Walk(ctx, src, func(ctx context.Context, r io.Reader, name string) error {
		return processDocument(ctx, r, name, dst, log)
	}, log)
}

// processDocument converts single LDraw source. "src" is part of the source
// path relative to the original path, "dst" is the destination directory.
func processDocument(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	log.Info("Conversion starting", zap.String("from", src))
	start := time.Now()

	c, err := content.Prepare(ctx, r, src, log)
	if err != nil {
		return fmt.Errorf("unable to parse LDraw source (%s): %w", src, err)
	}
	defer c.Doc.Dispose()

	opts := dom.CodeOptions{Format: env.Format}

	var outputs []string
	if env.Split && c.Doc.IsMultiPage() {
		for i, p := range c.Doc.Pages() {
			outputName := buildOutputPath(c, p, i, dst, env)
			if err := writeOutput(outputName, lineEndings(c.Doc, p.Code(opts)), env.Overwrite, log); err != nil {
				return err
			}
			storeResult(env, c.Doc, i, outputName)
			outputs = append(outputs, outputName)
		}
	} else {
		outputName := buildOutputPath(c, nil, 0, dst, env)
		if err := writeOutput(outputName, c.Doc.Code(opts), env.Overwrite, log); err != nil {
			return err
		}
		storeResult(env, c.Doc, 0, outputName)
		outputs = append(outputs, outputName)
	}

	log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.Strings("to", outputs), zap.Stringer("id", c.Doc.ID()))
	return nil
}

// lineEndings applies document line endings to separately written page code.
func lineEndings(d *dom.Document, code string) string {
	if d.CRLF() {
		return strings.ReplaceAll(code, "\n", "\r\n")
	}
	return code
}

func writeOutput(outputName, code string, overwrite bool, log *zap.Logger) error {
	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(code), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// storeResult keeps conversion result for debugging.
func storeResult(env *state.LocalEnv, d *dom.Document, index int, outputName string) {
	env.Rpt.Store(fmt.Sprintf("result-%s-%d%s", d.ID(), index, filepath.Ext(outputName)), outputName)
}
