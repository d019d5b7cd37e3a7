package config

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"ldtools/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report archive at configured destination, or in
// temporary directory when destination cannot be created.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return newReport(f), nil
}

// entry is either in-memory data or a path to file or directory on disk.
type entry struct {
	source string // path as it was given
	path   string // absolute path of what goes into archive
	stamp  time.Time
	data   []byte
	owned  bool // path is a private copy and must be removed
}

// Report accumulates everything necessary for a debug report and writes it
// as a single zip archive on Close. Nil report ignores all calls, so callers
// never check if reporting was requested.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

func newReport(f *os.File) *Report {
	return &Report{entries: make(map[string]entry), file: f}
}

// Name returns absolute name of report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file or directory to be archived on Close. Directories
// are removed after archiving, they are expected to be working directories
// created for the report.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.source != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.source, path))
	}
	e := entry{source: path, path: path}
	if p, err := filepath.Abs(path); err == nil {
		e.path = p
	}
	if fi, err := os.Stat(e.path); err == nil && fi.IsDir() {
		e.owned = true
	}
	r.entries[name] = e
}

// StoreData remembers data to be archived on Close under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy copies file or directory as it is now. Repeated names get
// timestamp suffix, so the same path may be stored many times.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}
	e := entry{source: path, path: dir, stamp: time.Now(), owned: true}

	fi, err := os.Stat(src)
	if err != nil {
		os.RemoveAll(dir)
		return err
	}
	if fi.IsDir() {
		err = copyTree(dir, src)
	} else {
		// single file is archived as is, not as directory
		e.path = filepath.Join(dir, filepath.Base(src))
		err = copyFile(e.path, src, fi.ModTime())
	}
	if err != nil {
		os.RemoveAll(dir)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}
	r.entries[name] = e
	return nil
}

// Close writes report archive and removes working directories.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.finalize()
	err = errors.Join(err, r.file.Close())
	if err != nil {
		return err
	}
	return r.removeDirs()
}

func (r *Report) removeDirs() error {
	var errs []error
	for _, e := range r.entries {
		if !e.owned {
			continue
		}
		if fi, err := os.Stat(e.path); err != nil {
			continue
		} else if !fi.IsDir() {
			e.path = filepath.Dir(e.path)
		}
		if err := os.RemoveAll(e.path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names := slices.Sorted(maps.Keys(r.entries))
	if err := addFile(arc, "MANIFEST", time.Now(), bytes.NewReader(r.manifest(names))); err != nil {
		return err
	}
	for _, name := range names {
		e := r.entries[name]
		if e.data != nil {
			if err := addFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := addPath(arc, name, e.path); err != nil {
			return err
		}
	}
	return arc.Close()
}

func (r *Report) manifest(names []string) []byte {
	now := time.Now()
	buf := new(bytes.Buffer)
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", stamp.UTC().Format(time.UnixDate), name, e.source, e.path)
	}
	return buf.Bytes()
}

// addPath archives file under name, or directory content under name
// prefix. Absent paths and non regular files are skipped.
func addPath(arc *zip.Writer, name, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !fi.IsDir() {
		return addDiskFile(arc, name, path, fi)
	}
	return walkFiles(path, func(rel, full string, fi fs.FileInfo) error {
		return addDiskFile(arc, filepath.ToSlash(filepath.Join(name, rel)), full, fi)
	})
}

func addDiskFile(arc *zip.Writer, name, path string, fi fs.FileInfo) error {
	if !fi.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addFile(arc, name, fi.ModTime(), f)
}

func addFile(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// walkFiles calls fn for every regular file under root with path relative
// to root. Symbolic links are not followed.
func walkFiles(root string, fn func(rel, full string, fi fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(rel, path, fi)
	})
}

func copyTree(dst, src string) error {
	return walkFiles(src, func(rel, full string, fi fs.FileInfo) error {
		return copyFile(filepath.Join(dst, rel), full, fi.ModTime())
	})
}

func copyFile(dst, src string, modTime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, modTime, modTime)
}
