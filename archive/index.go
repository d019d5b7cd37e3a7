package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrNotFound is returned for names absent from archive.
var ErrNotFound = errors.New("file not found in archive")

// Index keeps an archive open for random access to its files by name. Names
// are matched ignoring case and kind of path separator. It is safe for
// concurrent use.
type Index struct {
	path  string
	mu    sync.Mutex
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

// OpenIndex opens archive and indexes its files.
func OpenIndex(path string) (*Index, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	idx := &Index{path: path, rc: rc, files: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() || !isSafePath(f.Name) {
			continue
		}
		key := indexKey(f.Name)
		if _, exists := idx.files[key]; !exists {
			idx.files[key] = f
		}
	}
	return idx, nil
}

func indexKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, `\`, "/"))
}

func (x *Index) Path() string { return x.path }
func (x *Index) Len() int     { return len(x.files) }

// Lookup finds file by its name inside archive.
func (x *Index) Lookup(name string) *zip.File {
	return x.files[indexKey(name)]
}

// Open opens file by its name inside archive.
func (x *Index) Open(name string) (io.ReadCloser, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.rc == nil {
		return nil, fmt.Errorf("archive %s is closed", x.path)
	}
	f := x.Lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%s not found in %s: %w", name, x.path, ErrNotFound)
	}
	return f.Open()
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.rc == nil {
		return nil
	}
	err := x.rc.Close()
	x.rc = nil
	return err
}
