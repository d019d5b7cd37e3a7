// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
)

// Extensions of files with LDraw code.
var Extensions = []string{".ldr", ".dat", ".mpd", ".l3b"}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, the file argument is the zip.File structure for file in archive which
// satisfies match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// MatchFunc selects archive entries by their slash separated names.
type MatchFunc func(name string) bool

// Prefix matches entries under the path prefix, case-sensitively.
func Prefix(pattern string) MatchFunc {
	return func(name string) bool {
		return strings.HasPrefix(name, pattern)
	}
}

// LDraw matches files with LDraw code under the path prefix.
func LDraw(pattern string) MatchFunc {
	return func(name string) bool {
		return strings.HasPrefix(name, pattern) && HasLDrawExt(name)
	}
}

// HasLDrawExt checks file name extension ignoring its case.
func HasLDrawExt(name string) bool {
	return slices.Contains(Extensions, strings.ToLower(path.Ext(name)))
}

// Walk walks the all files in the archive which satisfy match condition,
// calling walkFn for each item. Archives with path traversal components
// ("..") or absolute paths are rejected.
func Walk(archive string, match MatchFunc, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || (match != nil && !match(name)) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// Name returns entry name, names not marked as UTF-8 are decoded with the
// code page when it is given.
func Name(f *zip.File, cp encoding.Encoding) (string, error) {
	name := f.FileHeader.Name
	if cp == nil || !f.FileHeader.NonUTF8 {
		return name, nil
	}
	n, err := cp.NewDecoder().String(name)
	if err != nil {
		return name, fmt.Errorf("unable to decode entry name %q: %w", name, err)
	}
	return n, nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// IsZip checks file content for zip signature.
func IsZip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// enough for any matcher filetype knows about
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
