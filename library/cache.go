// Package library resolves references across documents: a cache of loaded
// documents backed by library roots on disk.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"ldtools/dom"
)

// ErrNotFound is returned when document is not in the cache and source
// could not provide it.
var ErrNotFound = errors.New("document not found")

// Source provides documents missing from the cache.
type Source interface {
	Load(ctx context.Context, name string) (*dom.Document, error)
}

// EventKind tells what happened to a cached document.
type EventKind int

const (
	DocumentAdded EventKind = iota
	DocumentEvicted
	// DocumentUsed is raised for every successful lookup of cached document.
	DocumentUsed
)

func (k EventKind) String() string {
	switch k {
	case DocumentAdded:
		return "added"
	case DocumentEvicted:
		return "evicted"
	case DocumentUsed:
		return "used"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

type Event struct {
	Kind     EventKind
	Key      string
	Document *dom.Document
}

// Listener is called outside of cache lock, it may call back into the
// cache.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Cache keeps documents by case-folded name. It implements dom.Resolver so
// documents can use it to resolve references to other documents. Cache is
// safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	docs      map[string]*dom.Document
	missing   map[string]struct{}
	listeners []subscription
	nextID    int

	source Source
	log    *zap.Logger
}

// NewCache creates cache, source may be nil.
func NewCache(source Source, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		docs:    make(map[string]*dom.Document),
		missing: make(map[string]struct{}),
		source:  source,
		log:     log.Named("library"),
	}
}

// Subscribe registers listener, returned function removes it.
func (c *Cache) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners = slices.DeleteFunc(c.listeners, func(s subscription) bool { return s.id == id })
	}
}

// dispatch must be called without lock held.
func (c *Cache) dispatch(events ...Event) {
	c.mu.Lock()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, ev := range events {
		for _, s := range listeners {
			s.fn(ev)
		}
	}
}

// Lookup returns cached document or loads it from source. Loaded documents
// get the cache as their resolver and are frozen.
func (c *Cache) Lookup(ctx context.Context, name string) (*dom.Document, error) {
	key := dom.NameKey(name)
	if len(key) == 0 {
		return nil, fmt.Errorf("empty document name: %w", ErrNotFound)
	}

	c.mu.Lock()
	doc, cached := c.docs[key]
	_, missing := c.missing[key]
	c.mu.Unlock()

	switch {
	case cached:
		c.dispatch(Event{Kind: DocumentUsed, Key: key, Document: doc})
		return doc, nil
	case missing || c.source == nil:
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	loaded, err := c.source.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.mu.Lock()
			c.missing[key] = struct{}{}
			c.mu.Unlock()
		}
		return nil, err
	}
	loaded.SetResolver(c)
	loaded.Freeze()

	c.mu.Lock()
	if doc, cached = c.docs[key]; !cached {
		c.docs[key] = loaded
	}
	c.mu.Unlock()

	if cached {
		// somebody else was faster
		if err := loaded.Dispose(); err != nil {
			c.log.Debug("Unable to dispose duplicate document", zap.String("name", name), zap.Error(err))
		}
		c.dispatch(Event{Kind: DocumentUsed, Key: key, Document: doc})
		return doc, nil
	}
	c.log.Debug("Document loaded", zap.String("name", name), zap.Stringer("id", loaded.ID()))
	c.dispatch(Event{Kind: DocumentAdded, Key: key, Document: loaded})
	return loaded, nil
}

// ResolvePage finds page by name: a document with that name yields its
// page of the same name or its main page. Failures are logged and reported
// as nil.
func (c *Cache) ResolvePage(name string) *dom.Page {
	doc, err := c.Lookup(context.Background(), name)
	if err != nil {
		c.log.Debug("Unable to resolve reference", zap.String("name", name), zap.Error(err))
		return nil
	}
	if p := doc.Page(name); p != nil {
		return p
	}
	return doc.MainPage()
}

// Add puts document into the cache under its name.
func (c *Cache) Add(doc *dom.Document) error {
	if doc == nil || doc.IsDisposed() {
		return dom.ErrDisposed
	}
	key := dom.NameKey(doc.Name())
	if len(key) == 0 {
		return errors.New("unable to cache document without name")
	}

	c.mu.Lock()
	if old, exists := c.docs[key]; exists {
		c.mu.Unlock()
		if old == doc {
			return nil
		}
		return fmt.Errorf("document %s is already cached: %w", doc.Name(), dom.ErrDuplicateName)
	}
	c.docs[key] = doc
	delete(c.missing, key)
	c.mu.Unlock()

	c.dispatch(Event{Kind: DocumentAdded, Key: key, Document: doc})
	return nil
}

// Evict removes document from the cache. Documents are not disposed, pages
// already resolved by references stay valid.
func (c *Cache) Evict(name string) bool {
	key := dom.NameKey(name)

	c.mu.Lock()
	doc, exists := c.docs[key]
	delete(c.docs, key)
	c.mu.Unlock()

	if !exists {
		return false
	}
	c.log.Debug("Document evicted", zap.String("name", name))
	c.dispatch(Event{Kind: DocumentEvicted, Key: key, Document: doc})
	return true
}

// Forget clears remembered lookup failures, so next lookups consult source
// again.
func (c *Cache) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.missing)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Names returns keys of cached documents in natural order.
func (c *Cache) Names() []string {
	c.mu.Lock()
	names := make([]string, 0, len(c.docs))
	for k := range c.docs {
		names = append(names, k)
	}
	c.mu.Unlock()

	sort.Sort(natural.StringSlice(names))
	return names
}
