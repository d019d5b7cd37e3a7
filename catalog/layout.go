package catalog

import (
	"archive/zip"
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"ldtools/archive"
	"ldtools/dom"
)

// Root is a library root: directory or zip archive laid out as the official
// library.
type Root struct {
	Path    string
	Archive bool
}

func (r Root) String() string {
	if r.Archive {
		return "zip:" + r.Path
	}
	return r.Path
}

// Location tells where a library document is stored.
type Location struct {
	Root Root
	// Path is slash separated: relative to the root directory or full
	// entry name inside archive.
	Path string
	// Rank is index of search folder the document was found in.
	Rank int
}

// SearchFolders lists library folders in search order, the root itself is
// searched last. References to subparts and primitives carry their sub
// folder ("s/", "48/", "8/") in the name.
var SearchFolders = []string{"parts", "p", "models", ""}

// archivePrefix is the top level folder of official library archives.
const archivePrefix = "ldraw/"

// Classify maps slash separated path relative to the root to the lookup
// key and rank of its search folder.
func Classify(rel string) (key string, rank int, ok bool) {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, `\`, "/"), "/")
	if !archive.HasLDrawExt(rel) {
		return "", 0, false
	}
	for i, folder := range SearchFolders {
		if folder == "" {
			if strings.Contains(rel, "/") {
				break
			}
			return dom.NameKey(rel), i, true
		}
		if len(rel) > len(folder) && strings.EqualFold(rel[:len(folder)+1], folder+"/") {
			return dom.NameKey(rel[len(folder)+1:]), i, true
		}
	}
	return "", 0, false
}

// Candidates returns paths relative to the root where document with the
// given name could be, in search order.
func Candidates(name string) []string {
	name = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"), "/")
	if len(name) == 0 {
		return nil
	}
	out := make([]string, 0, len(SearchFolders))
	for _, folder := range SearchFolders {
		if folder == "" {
			if strings.Contains(name, "/") {
				continue
			}
			out = append(out, name)
			continue
		}
		out = append(out, path.Join(folder, name))
	}
	return out
}

// ArchiveRel strips official top level folder from archive entry name.
func ArchiveRel(entry string) string {
	if len(entry) > len(archivePrefix) && strings.EqualFold(entry[:len(archivePrefix)], archivePrefix) {
		return entry[len(archivePrefix):]
	}
	return entry
}

type scanned struct {
	key string
	loc Location
}

// Scan calls fn for every library document under root, ordered by search
// folder rank. The same key may be reported more than once, the first
// report takes precedence.
func Scan(ctx context.Context, root Root, fn func(key string, loc Location) error) error {
	var found []scanned

	add := func(rel, stored string) {
		if key, rank, ok := Classify(rel); ok {
			found = append(found, scanned{key: key, loc: Location{Root: root, Path: stored, Rank: rank}})
		}
	}

	if root.Archive {
		err := archive.Walk(root.Path, archive.LDraw(""), func(_ string, f *zip.File) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			add(ArchiveRel(f.Name), f.Name)
			return nil
		})
		if err != nil {
			return fmt.Errorf("unable to scan archive %s: %w", root.Path, err)
		}
	} else {
		err := filepath.WalkDir(root.Path, func(p string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !de.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root.Path, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			add(rel, rel)
			return nil
		})
		if err != nil {
			return fmt.Errorf("unable to scan directory %s: %w", root.Path, err)
		}
	}

	slices.SortStableFunc(found, func(a, b scanned) int {
		return cmp.Compare(a.loc.Rank, b.loc.Rank)
	})
	for _, s := range found {
		if err := fn(s.key, s.loc); err != nil {
			return err
		}
	}
	return nil
}
