package library

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"ldtools/catalog"
	"ldtools/dom"
)

func parse(t *testing.T, name, code string) *dom.Document {
	t.Helper()
	d, err := dom.ParseDocument(strings.NewReader(code), name, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("ParseDocument(%s) error = %v", name, err)
	}
	return d
}

// mapSource serves documents from memory and counts loads.
type mapSource struct {
	t     *testing.T
	mu    sync.Mutex
	files map[string]string
	loads int
}

func (s *mapSource) Load(_ context.Context, name string) (*dom.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	code, ok := s.files[dom.NameKey(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return parse(s.t, name, code), nil
}

func TestCacheLookup(t *testing.T) {
	src := &mapSource{t: t, files: map[string]string{
		"3001.dat": "0 Brick  2 x  4\n0 Name: 3001.dat\n1 16 0 0 0 1 0 0 0 1 0 0 0 1 s/3001s01.dat\n",
		"s/3001s01.dat": "0 ~Brick  2 x  4 without Front Face\n0 Name: s\\3001s01.dat\n" +
			"3 16 0 0 0 1 0 0 0 1 0\n",
	}}
	c := NewCache(src, zaptest.NewLogger(t))

	var events []string
	cancel := c.Subscribe(func(ev Event) { events = append(events, ev.Kind.String()+":"+ev.Key) })

	doc, err := c.Lookup(context.Background(), "3001.DAT")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !doc.IsFrozen() {
		t.Error("loaded document must be frozen")
	}
	if doc.Resolver() != c {
		t.Error("loaded document must resolve through the cache")
	}

	again, err := c.Lookup(context.Background(), "3001.dat")
	if err != nil || again != doc {
		t.Fatalf("second Lookup() = %v, %v", again, err)
	}
	if src.loads != 1 {
		t.Errorf("source loads = %d, want 1", src.loads)
	}

	// references inside loaded documents resolve through the cache too
	var ref *dom.Reference
	for e := range doc.MainPage().Elements() {
		if r, ok := e.(*dom.Reference); ok {
			ref = r
		}
	}
	if ref == nil {
		t.Fatal("no reference in loaded document")
	}
	// every resolution is a cache lookup, resolve once to keep events predictable
	if tgt := ref.Target(); tgt == nil || tgt.Document().Name() != "s/3001s01.dat" {
		t.Fatalf("reference target was not resolved: %v", tgt)
	}

	if _, err := c.Lookup(context.Background(), "9999.dat"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
	if _, err := c.Lookup(context.Background(), "9999.dat"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
	if src.loads != 3 {
		t.Errorf("source loads = %d, want 3 (failures are remembered)", src.loads)
	}
	c.Forget()
	_, _ = c.Lookup(context.Background(), "9999.dat")
	if src.loads != 4 {
		t.Errorf("source loads = %d, want 4 after Forget()", src.loads)
	}

	want := []string{"added:3001.dat", "used:3001.dat", "added:s/3001s01.dat"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}

	cancel()
	c.Evict("3001.dat")
	if len(events) != len(want) {
		t.Errorf("listener called after cancel: %v", events)
	}
}

// racingSource caches another copy of the document while loading, as a
// concurrent lookup finishing first would.
type racingSource struct {
	t      *testing.T
	cache  *Cache
	winner *dom.Document
	loser  *dom.Document
}

func (s *racingSource) Load(_ context.Context, name string) (*dom.Document, error) {
	if err := s.cache.Add(s.winner); err != nil {
		s.t.Fatalf("Add() error = %v", err)
	}
	return s.loser, nil
}

func TestCacheLookupLostRace(t *testing.T) {
	src := &racingSource{
		t:      t,
		winner: parse(t, "3001.dat", "0 Brick  2 x  4\n"),
		loser:  parse(t, "3001.dat", "0 Brick  2 x  4\n"),
	}
	c := NewCache(src, zaptest.NewLogger(t))
	src.cache = c

	var events []string
	c.Subscribe(func(ev Event) { events = append(events, ev.Kind.String()+":"+ev.Key) })

	doc, err := c.Lookup(context.Background(), "3001.dat")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if doc != src.winner {
		t.Error("Lookup() must return the document cached first")
	}
	if !src.loser.IsDisposed() {
		t.Error("duplicate document was not disposed")
	}
	if want := []string{"added:3001.dat", "used:3001.dat"}; !slices.Equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestCacheAddEvict(t *testing.T) {
	c := NewCache(nil, zaptest.NewLogger(t))

	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })

	car := parse(t, "Car.ldr", "0 Car\n0 Name: car.ldr\n")
	if err := c.Add(car); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := c.Add(car); err != nil {
		t.Errorf("adding the same document again error = %v", err)
	}
	if err := c.Add(parse(t, "car.LDR", "0 Other car\n")); !errors.Is(err, dom.ErrDuplicateName) {
		t.Errorf("Add() error = %v, want ErrDuplicateName", err)
	}
	if err := c.Add(dom.NewDocument("")); err == nil {
		t.Error("Add() must refuse unnamed document")
	}
	for _, name := range []string{"part10.dat", "part9.dat", "part1.dat"} {
		if err := c.Add(parse(t, name, "0 "+name+"\n")); err != nil {
			t.Fatal(err)
		}
	}

	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
	if got, want := c.Names(), []string{"car.ldr", "part1.dat", "part9.dat", "part10.dat"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if p := c.ResolvePage("CAR.LDR"); p == nil || p.Document() != car {
		t.Errorf("ResolvePage() = %v", p)
	}
	if car.IsFrozen() {
		t.Error("added documents stay mutable")
	}

	if !c.Evict("car.ldr") || c.Evict("car.ldr") {
		t.Error("Evict() must report removal once")
	}
	if car.IsDisposed() {
		t.Error("evicted document must not be disposed")
	}
	if p := c.ResolvePage("car.ldr"); p != nil {
		t.Error("evicted document is still resolved")
	}

	last := events[len(events)-1]
	if last.Kind != DocumentEvicted || last.Document != car {
		t.Errorf("last event = %+v", last)
	}
}

func TestCacheResolvePageOfMultiPageDocument(t *testing.T) {
	c := NewCache(nil, zaptest.NewLogger(t))
	mpd := parse(t, "set.mpd", "0 FILE main.ldr\n1 16 0 0 0 1 0 0 0 1 0 0 0 1 sub.ldr\n0 NOFILE\n0 FILE sub.ldr\n2 24 0 0 0 1 1 1\n0 NOFILE\n")
	if err := c.Add(mpd); err != nil {
		t.Fatal(err)
	}
	if p := c.ResolvePage("set.mpd"); p != mpd.MainPage() {
		t.Errorf("ResolvePage() = %v, want main page", p)
	}
}

func TestCrossDocumentCycle(t *testing.T) {
	c := NewCache(nil, zaptest.NewLogger(t))

	top := parse(t, "top.ldr", "0 Top\n0 Name: top.ldr\n")
	mid := parse(t, "mid.ldr", "0 Mid\n0 Name: mid.ldr\n1 16 0 0 0 1 0 0 0 1 0 0 0 1 deep.ldr\n")
	deep := parse(t, "deep.ldr", "0 Deep\n0 Name: deep.ldr\n1 16 0 0 0 1 0 0 0 1 0 0 0 1 top.ldr\n")
	for _, d := range []*dom.Document{top, mid, deep} {
		d.SetResolver(c)
		if err := c.Add(d); err != nil {
			t.Fatal(err)
		}
	}

	ref := dom.NewReference(dom.MainColour, dom.Identity(), "mid.ldr")
	err := top.MainPage().StepAt(0).Add(ref)
	if !errors.Is(err, dom.ErrCircularReference) {
		t.Fatalf("Add() error = %v, want ErrCircularReference", err)
	}

	c.Evict("deep.ldr")
	if err := top.MainPage().StepAt(0).Add(ref); err != nil {
		t.Fatalf("Add() after breaking the chain error = %v", err)
	}
}

func TestLRU(t *testing.T) {
	c := NewCache(nil, zaptest.NewLogger(t))
	lru := NewLRU(c, 2, zaptest.NewLogger(t))

	for _, name := range []string{"a.dat", "b.dat"} {
		if err := c.Add(parse(t, name, "0 "+name+"\n")); err != nil {
			t.Fatal(err)
		}
	}
	// touch a.dat so b.dat becomes least recently used
	if _, err := c.Lookup(context.Background(), "a.dat"); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(parse(t, "c.dat", "0 c\n")); err != nil {
		t.Fatal(err)
	}

	if got, want := c.Names(), []string{"a.dat", "c.dat"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if got, want := lru.Keys(), []string{"c.dat", "a.dat"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	c.Evict("a.dat")
	if lru.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lru.Len())
	}

	lru.Detach()
	for _, name := range []string{"d.dat", "e.dat"} {
		if err := c.Add(parse(t, name, "0 "+name+"\n")); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 3 {
		t.Errorf("detached policy still evicts, Len() = %d", c.Len())
	}
}

func writeLibrary(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeLibraryZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoader(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "custom")
	writeLibrary(t, dir, map[string]string{
		"parts/3001.dat": "0 Custom Brick\n0 Name: 3001.dat\n",
		"models/car.ldr": "0 Car\n0 Name: car.ldr\n1 4 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat\n",
		// Latin-1 encoded author name
		"parts/3003.dat": "0 Brick  2 x  2\n0 Author: Fran\xe7ois\n",
	})
	zipPath := filepath.Join(tmp, "complete.zip")
	writeLibraryZip(t, zipPath, map[string]string{
		"ldraw/parts/3001.dat":      "0 Brick  2 x  4\n",
		"ldraw/parts/s/3001s01.dat": "0 ~Brick  2 x  4 without Front Face\n",
		"ldraw/p/4-4edge.dat":       "0 Circle 1.0\n",
	})
	roots := []catalog.Root{{Path: dir}, {Path: zipPath, Archive: true}}

	check := func(t *testing.T, l *Loader) {
		tests := []struct {
			name  string
			title string
		}{
			{"3001.dat", "Custom Brick"},
			{`S\3001S01.DAT`, "~Brick  2 x  4 without Front Face"},
			{"4-4EDGE.dat", "Circle 1.0"},
			{"car.ldr", "Car"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				doc, err := l.Load(context.Background(), tt.name)
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if got := doc.MainPage().Info().Title; got != tt.title {
					t.Errorf("title = %q, want %q", got, tt.title)
				}
				if !doc.IsLibrary() {
					t.Error("documents from trusted roots must be library documents")
				}
			})
		}
		if _, err := l.Load(context.Background(), "9999.dat"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	}

	t.Run("probing roots", func(t *testing.T) {
		l := NewLoader(roots, nil, true, zaptest.NewLogger(t))
		defer l.Close()
		check(t, l)

		doc, err := l.Load(context.Background(), "3003.dat")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got := doc.MainPage().Info().Author; got != "François" {
			t.Errorf("author = %q, want decoded Latin-1", got)
		}
	})

	t.Run("catalog", func(t *testing.T) {
		cat, err := catalog.Open(filepath.Join(tmp, "catalog.db"))
		if err != nil {
			t.Fatal(err)
		}
		defer cat.Close()
		if _, err := cat.Build(context.Background(), roots, zaptest.NewLogger(t)); err != nil {
			t.Fatal(err)
		}
		l := NewLoader(roots, cat, true, zaptest.NewLogger(t))
		defer l.Close()
		check(t, l)
	})

	t.Run("untrusted", func(t *testing.T) {
		l := NewLoader(roots, nil, false, zaptest.NewLogger(t))
		defer l.Close()
		doc, err := l.Load(context.Background(), "car.ldr")
		if err != nil {
			t.Fatal(err)
		}
		if doc.IsLibrary() {
			t.Error("documents from untrusted roots must not be library documents")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		l := NewLoader(roots, nil, true, zaptest.NewLogger(t))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := l.Load(ctx, "3001.dat"); !errors.Is(err, context.Canceled) {
			t.Errorf("Load() error = %v, want context.Canceled", err)
		}
	})

	t.Run("through cache", func(t *testing.T) {
		l := NewLoader(roots, nil, true, zaptest.NewLogger(t))
		defer l.Close()
		c := NewCache(l, zaptest.NewLogger(t))
		car, err := c.Lookup(context.Background(), "car.ldr")
		if err != nil {
			t.Fatal(err)
		}
		var ref *dom.Reference
		for e := range car.MainPage().Elements() {
			ref, _ = e.(*dom.Reference)
		}
		if ref == nil || ref.TargetStatus() != dom.TargetResolved {
			t.Fatalf("reference status = %v", ref.TargetStatus())
		}
		if got := c.Names(); !slices.Equal(got, []string{"3001.dat", "car.ldr"}) {
			t.Errorf("Names() = %v", got)
		}
	})
}
