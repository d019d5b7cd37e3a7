package dom

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ElementKind names element variants.
type ElementKind string

const (
	KindComment      ElementKind = "comment"
	KindMeta         ElementKind = "meta"
	KindBFC          ElementKind = "bfc"
	KindGroup        ElementKind = "group"
	KindColour       ElementKind = "colour"
	KindReference    ElementKind = "reference"
	KindLine         ElementKind = "line"
	KindTriangle     ElementKind = "triangle"
	KindQuad         ElementKind = "quad"
	KindOptionalLine ElementKind = "optional-line"
	KindTexmap       ElementKind = "texmap"
)

// Element is a single entry of a step or of a nested geometry collection.
// The set of variants is closed: *Comment, *MetaCommand, *BFCFlag, *Group,
// *ColourDefinition, *Reference, *Line, *Triangle, *Quad, *OptionalLine and
// *Texmap. Elements must be created with their New* constructors.
type Element interface {
	Node
	Kind() ElementKind

	Parent() ElementCollection
	// SetParent moves detached element into c with full validation, nil
	// detaches it from its current collection.
	SetParent(c ElementCollection) error
	Step() *Step
	Page() *Page
	Document() *Document

	IsLocked() bool
	IsLocallyLocked() bool
	SetLocked(locked bool) error

	// IsTopLevel reports whether element may only be placed into
	// collections accepting top-level elements.
	IsTopLevel() bool
	// IsStateElement reports whether element changes rendering state of the
	// elements following it.
	IsStateElement() bool

	Code(opts CodeOptions) string
	WriteCode(sb *strings.Builder, opts CodeOptions)

	base() *elementBase
	clone() Element
}

type elementBase struct {
	lifecycle
	self   Element
	parent ElementCollection
	locked bool
}

func (b *elementBase) init(self Element) {
	b.self = self
}

func (b *elementBase) base() *elementBase { return b }

func (b *elementBase) parentNode() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

func (b *elementBase) Parent() ElementCollection { return b.parent }
func (b *elementBase) IsFrozen() bool            { return IsFrozen(b.self) }
func (b *elementBase) Freeze()                   { freeze(b.self) }
func (b *elementBase) Step() *Step               { return StepOf(b.self) }
func (b *elementBase) Page() *Page               { return PageOf(b.self) }
func (b *elementBase) Document() *Document       { return DocumentOf(b.self) }
func (b *elementBase) IsTopLevel() bool          { return false }
func (b *elementBase) IsStateElement() bool      { return false }
func (b *elementBase) IsLocallyLocked() bool     { return b.locked }

// IsLocked reports local lock or lock inherited from the enclosing
// collection.
func (b *elementBase) IsLocked() bool {
	return b.locked || b.parent != nil && b.parent.IsLocked()
}

func (b *elementBase) SetLocked(locked bool) error {
	if b.disposed {
		return ErrDisposed
	}
	if b.IsFrozen() {
		return ErrFrozen
	}
	if b.locked == locked {
		if !locked && b.IsLocked() {
			return fmt.Errorf("inherited lock can not be cleared: %w", ErrLocked)
		}
		return nil
	}
	b.locked = locked
	notify(b.self, Change{Kind: ChangeLocked, Source: b.self})
	return nil
}

// checkMutable guards every property setter.
func (b *elementBase) checkMutable() error {
	switch {
	case b.disposed:
		return ErrDisposed
	case b.IsFrozen():
		return ErrFrozen
	case b.IsLocked():
		return ErrLocked
	case b.parent != nil && b.parent.IsReadOnly():
		return ErrUnsupported
	}
	return nil
}

func (b *elementBase) changed(property string) {
	notify(b.self, Change{Kind: ChangeProperty, Source: b.self, Property: property})
}

func (b *elementBase) SetParent(c ElementCollection) error {
	if b.parent == c {
		return nil
	}
	if c == nil {
		return b.parent.Remove(b.self)
	}
	if b.parent != nil {
		return fmt.Errorf("element has a parent: %w", ErrAlreadyMember)
	}
	return c.Add(b.self)
}

// Dispose detaches element from a live parent and releases its nested
// collections.
func (b *elementBase) Dispose() error {
	if b.disposed || b.disposing {
		return nil
	}
	if p := b.parent; p != nil && !p.IsDisposing() {
		switch {
		case p.IsReadOnly():
			return ErrUnsupported
		case IsFrozen(p):
			return ErrFrozen
		case b.IsLocked():
			return ErrLocked
		}
		if err := p.Remove(b.self); err != nil {
			return err
		}
	}
	b.disposing = true
	var err error
	if t, ok := b.self.(*Texmap); ok {
		for _, g := range t.Geometries() {
			err = multierr.Append(err, g.release())
		}
	}
	b.disposing, b.disposed = false, true
	return err
}

func (b *elementBase) Code(opts CodeOptions) string {
	var sb strings.Builder
	b.self.WriteCode(&sb, opts)
	return sb.String()
}

// writePrefix emits marker lines describing element's relation to its
// surroundings: editor lock and group membership.
func (b *elementBase) writePrefix(sb *strings.Builder, opts CodeOptions) {
	if b.locked && opts.Format.EmitsLockMarkers() {
		sb.WriteString("0 !LDTOOLS LOCKNEXT\n")
	}
	m, ok := b.self.(Groupable)
	if !ok || !opts.Format.EmitsEditorMeta() {
		return
	}
	if g := m.Group(); g != nil && g.name != "" && g.Page() != nil && g.Page() == b.self.Page() {
		sb.WriteString("0 MLCAD BTG ")
		sb.WriteString(g.name)
		sb.WriteByte('\n')
	}
}

// CloneElement returns detached, unfrozen deep copy of e. Group assignment is
// kept as is, it becomes meaningful only once the copy lands into the same
// page.
func CloneElement(e Element) Element {
	if e == nil {
		return nil
	}
	return e.clone()
}
