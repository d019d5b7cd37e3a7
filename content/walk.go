package content

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"ldtools/archive"
	"ldtools/state"
)

// Handler is called for every LDraw source found by Walk. "src" is part of
// the source path (always including file name) relative to the original
// path. When actual file was specified it is just base file name. When
// looking inside archive or directory it is relative path inside archive or
// directory. Errors are logged and do not stop the walk.
type Handler func(ctx context.Context, r io.Reader, src string) error

// Walk determines the input type (directory, archive, path inside archive or
// single file) and calls handler for every LDraw source it finds there.
func Walk(ctx context.Context, src string, handle Handler, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := walkDir(ctx, head, handle, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		zipped, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if zipped {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := walkArchive(ctx, head, filepath.ToSlash(tail), "", handle, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		ldraw, enc, err := isLDrawFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if ldraw && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open file: %w", err)
			}
			defer file.Close()
			if err := call(ctx, handle, selectReader(file, enc), filepath.Base(head)); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as LDraw file (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// walkDir walks directory tree finding LDraw files and archives.
func walkDir(ctx context.Context, dir string, handle Handler, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		zipped, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if zipped {
			count++
			rel, _ := filepath.Rel(dir, filepath.Dir(path))
			if err := walkArchive(ctx, path, "", rel, handle, log); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		ldraw, enc, err := isLDrawFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ldraw {
			log.Debug("Skipping file, not recognized as LDraw file or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := call(ctx, handle, selectReader(file, enc), src); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// walkArchive processes all LDraw files inside archive under "pathIn".
// "pathOut" is prepended to names of files in archive.
func walkArchive(ctx context.Context, path, pathIn, pathOut string, handle Handler, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
		}
	}()

	cp := state.EnvFromContext(ctx).CodePage

	err = archive.Walk(path, archive.LDraw(pathIn), func(archivePath string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		ldraw, enc, err := isLDrawInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", archivePath), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !ldraw {
			log.Debug("Skipping file, not recognized as LDraw file",
				zap.String("archive", archivePath), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archivePath), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		name, err := archive.Name(f, cp)
		if err != nil {
			n, _ := ianaindex.IANA.Name(cp)
			log.Warn("Unable to convert archive name from specified encoding",
				zap.String("charset", n), zap.String("path", name), zap.Error(err))
		}
		if err := call(ctx, handle, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(name))); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archivePath), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// call runs handler, converting panics into errors so a single broken source
// does not stop processing of others.
func call(ctx context.Context, handle Handler, r io.Reader, src string) (rerr error) {
	defer func(start time.Time) {
		if p := recover(); p != nil {
			rerr = fmt.Errorf("processing panic after %s: %v\n%s", time.Since(start), p, debug.Stack())
		}
	}(time.Now())

	if err := handle(ctx, r, src); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s: %w", src, err)
	}
	return nil
}
