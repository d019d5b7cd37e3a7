package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Resolver locates pages referenced across documents, usually backed by a
// library cache. Resolution failures are reported as nil.
type Resolver interface {
	ResolvePage(name string) *Page
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) *Page

func (f ResolverFunc) ResolvePage(name string) *Page { return f(name) }

// Document is the root of the tree: an ordered set of uniquely named pages,
// usually a single file.
type Document struct {
	lifecycle
	observers

	id       uuid.UUID
	name     string
	pages    []*Page
	library  bool
	readOnly bool
	// multiPage documents are written with FILE delimiters even when they
	// have a single page, noFile adds NOFILE terminators.
	multiPage bool
	noFile    bool
	crlf      bool
	resolver  Resolver
}

// NewDocument creates empty document with the given path or name.
func NewDocument(name string) *Document {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Document{id: id, name: strings.TrimSpace(name)}
}

func (d *Document) parentNode() Node { return nil }

func (d *Document) ID() uuid.UUID      { return d.id }
func (d *Document) Name() string       { return d.name }
func (d *Document) IsFrozen() bool     { return d.frozen }
func (d *Document) Freeze()            { freeze(d) }
func (d *Document) IsLibrary() bool    { return d.library }
func (d *Document) IsReadOnly() bool   { return d.readOnly }
func (d *Document) Resolver() Resolver { return d.resolver }
func (d *Document) IsMultiPage() bool  { return d.multiPage || len(d.pages) > 1 }
func (d *Document) PageCount() int     { return len(d.pages) }
func (d *Document) PageAt(i int) *Page { return d.pages[i] }
func (d *Document) Pages() []*Page     { return slices.Clone(d.pages) }

// MainPage returns the first page, nil for empty document.
func (d *Document) MainPage() *Page {
	if len(d.pages) == 0 {
		return nil
	}
	return d.pages[0]
}

// Page finds page by name, case-insensitively.
func (d *Document) Page(name string) *Page {
	key := NameKey(name)
	for _, p := range d.pages {
		if NameKey(p.name) == key {
			return p
		}
	}
	return nil
}

func (d *Document) resolvePage(name string) *Page {
	if p := d.Page(name); p != nil {
		return p
	}
	if d.resolver != nil {
		return d.resolver.ResolvePage(name)
	}
	return nil
}

// Observe registers change observer. Returned function cancels the
// registration.
func (d *Document) Observe(fn Observer) (cancel func()) {
	return d.add(fn)
}

func (d *Document) checkSettable() error {
	switch {
	case d.disposed:
		return ErrDisposed
	case d.frozen:
		return ErrFrozen
	}
	return nil
}

func (d *Document) checkMutable() error {
	if err := d.checkSettable(); err != nil {
		return err
	}
	if d.readOnly {
		return ErrUnsupported
	}
	return nil
}

func (d *Document) SetName(name string) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.name = strings.TrimSpace(name)
	notify(d, Change{Kind: ChangeProperty, Source: d, Property: "name"})
	return nil
}

// SetLibrary marks document as trusted library content: cycle searches do
// not descend into it.
func (d *Document) SetLibrary(library bool) error {
	if err := d.checkSettable(); err != nil {
		return err
	}
	d.library = library
	return nil
}

// SetReadOnly forbids any structural change of the document.
func (d *Document) SetReadOnly(readOnly bool) error {
	if err := d.checkSettable(); err != nil {
		return err
	}
	d.readOnly = readOnly
	return nil
}

// SetResolver attaches cross-document resolver. It is allowed on frozen
// documents since it does not change the tree.
func (d *Document) SetResolver(r Resolver) {
	d.resolver = r
}

// CRLF reports whether code is written with CRLF line endings, which is the
// case when the source document used them.
func (d *Document) CRLF() bool { return d.crlf }

func (d *Document) SetCRLF(crlf bool) error {
	if err := d.checkSettable(); err != nil {
		return err
	}
	d.crlf = crlf
	return nil
}

func (d *Document) SetMultiPage(multi bool) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.multiPage = multi
	return nil
}

func (d *Document) CanInsertPage(p *Page, flags CheckFlags) (Verdict, error) {
	return CanInsertPage(d, p, flags)
}

func (d *Document) CanReplacePage(p, old *Page, flags CheckFlags) (Verdict, error) {
	return CanReplacePage(d, p, old, flags)
}

func (d *Document) AddPage(p *Page) error {
	return d.InsertPage(len(d.pages), p)
}

func (d *Document) InsertPage(index int, p *Page) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	if index < 0 || index > len(d.pages) {
		return fmt.Errorf("index %d out of range: %w", index, ErrInvalid)
	}
	v, err := CanInsertPage(d, p, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	d.pages = slices.Insert(d.pages, index, p)
	p.doc = d
	notify(d, Change{Kind: ChangeInserted, Source: d, Item: p, Index: index})
	return nil
}

func (d *Document) RemovePage(p *Page) error {
	if d.disposed {
		return ErrDisposed
	}
	i := slices.Index(d.pages, p)
	if i < 0 {
		return ErrNotMember
	}
	if !d.disposing {
		if err := d.checkMutable(); err != nil {
			return err
		}
		if p.frozen {
			return ErrFrozen
		}
	}
	d.pages = slices.Delete(d.pages, i, i+1)
	p.doc = nil
	notify(d, Change{Kind: ChangeRemoved, Source: d, Item: p, Index: i})
	return nil
}

func (d *Document) ReplacePage(old, p *Page) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	i := slices.Index(d.pages, old)
	if i < 0 {
		return ErrNotMember
	}
	if old == p {
		return nil
	}
	v, err := CanReplacePage(d, p, old, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	d.pages[i] = p
	old.doc = nil
	p.doc = d
	notify(d, Change{Kind: ChangeReplaced, Source: d, Item: p, Old: old, Index: i})
	return nil
}

// Dispose releases all pages. Observers are dropped.
func (d *Document) Dispose() error {
	if d.disposed || d.disposing {
		return nil
	}
	d.disposing = true
	var err error
	for _, p := range d.pages {
		err = multierr.Append(err, p.Dispose())
	}
	d.fns = nil
	d.disposing, d.disposed = false, true
	return err
}

// Code serializes the whole document.
func (d *Document) Code(opts CodeOptions) string {
	var sb strings.Builder
	if !d.IsMultiPage() {
		for _, p := range d.pages {
			p.writeCode(&sb, opts)
		}
	} else {
		for _, p := range d.pages {
			sb.WriteString("0 FILE ")
			sb.WriteString(p.name)
			sb.WriteByte('\n')
			p.writeCode(&sb, opts)
			if d.noFile {
				sb.WriteString("0 NOFILE\n")
			}
		}
	}
	if d.crlf {
		return strings.ReplaceAll(sb.String(), "\n", "\r\n")
	}
	return sb.String()
}

// WriteTo writes document code in full format.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Code(DefaultCodeOptions()))
	return int64(n), err
}
