package dom

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

// ElementCollection is an ordered owning container of elements: a *Step or
// a nested *Geometry of a texture mapped element.
type ElementCollection interface {
	Node

	Len() int
	At(i int) Element
	// Elements returns a copy of the membership list.
	Elements() []Element
	IndexOf(e Element) int
	Contains(e Element) bool

	AllowsTopLevelElements() bool
	IsLocked() bool
	// IsReadOnly reports collections of read-only documents.
	IsReadOnly() bool

	Step() *Step
	Page() *Page
	Document() *Document

	Insert(index int, e Element) error
	Add(e Element) error
	Remove(e Element) error
	RemoveAt(index int) error
	Replace(old, e Element) error
	// Clear removes all elements, either all of them or none.
	Clear() error

	CanInsert(e Element, flags CheckFlags) (Verdict, error)
	CanReplace(e, old Element, flags CheckFlags) (Verdict, error)

	members() *elementList
}

// elementList implements membership bookkeeping shared by steps and
// geometries. owner is the collection embedding the list.
type elementList struct {
	owner ElementCollection
	items []Element
}

func (l *elementList) members() *elementList { return l }

func (l *elementList) Len() int { return len(l.items) }

func (l *elementList) At(i int) Element { return l.items[i] }

func (l *elementList) Elements() []Element { return slices.Clone(l.items) }

func (l *elementList) IndexOf(e Element) int {
	if e == nil {
		return -1
	}
	// membership is identity, parent link gives quick negative answer
	if e.Parent() != l.owner {
		return -1
	}
	return slices.Index(l.items, e)
}

func (l *elementList) Contains(e Element) bool { return l.IndexOf(e) >= 0 }

func (l *elementList) CanInsert(e Element, flags CheckFlags) (Verdict, error) {
	return CanInsertElement(l.owner, e, flags)
}

func (l *elementList) CanReplace(e, old Element, flags CheckFlags) (Verdict, error) {
	return CanReplaceElement(l.owner, e, old, flags)
}

func checkCollectionMutable(c ElementCollection) error {
	switch {
	case c.IsDisposed():
		return ErrDisposed
	case IsFrozen(c):
		return ErrFrozen
	case c.IsReadOnly():
		return ErrUnsupported
	case c.IsLocked():
		return ErrLocked
	}
	return nil
}

func (l *elementList) Add(e Element) error {
	return l.Insert(len(l.items), e)
}

func (l *elementList) Insert(index int, e Element) error {
	c := l.owner
	if err := checkCollectionMutable(c); err != nil {
		return err
	}
	if index < 0 || index > len(l.items) {
		return fmt.Errorf("index %d out of range: %w", index, ErrInvalid)
	}
	v, err := CanInsertElement(c, e, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	l.items = slices.Insert(l.items, index, e)
	e.base().parent = c
	notify(c, Change{Kind: ChangeInserted, Source: c, Item: e, Index: index})
	return nil
}

func (l *elementList) Remove(e Element) error {
	i := l.IndexOf(e)
	if i < 0 {
		return ErrNotMember
	}
	return l.RemoveAt(i)
}

func (l *elementList) RemoveAt(index int) error {
	c := l.owner
	if c.IsDisposed() {
		return ErrDisposed
	}
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("index %d out of range: %w", index, ErrInvalid)
	}
	e := l.items[index]
	if !c.IsDisposing() {
		if err := checkCollectionMutable(c); err != nil {
			return err
		}
		if e.IsLocallyLocked() {
			return ErrLocked
		}
	}
	l.items = slices.Delete(l.items, index, index+1)
	e.base().parent = nil
	notify(c, Change{Kind: ChangeRemoved, Source: c, Item: e, Index: index})
	return nil
}

func (l *elementList) Replace(old, e Element) error {
	c := l.owner
	if err := checkCollectionMutable(c); err != nil {
		return err
	}
	i := l.IndexOf(old)
	if i < 0 {
		return ErrNotMember
	}
	if old == e {
		return nil
	}
	if old.IsLocallyLocked() {
		return ErrLocked
	}
	v, err := CanReplaceElement(c, e, old, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	l.items[i] = e
	old.base().parent = nil
	e.base().parent = c
	notify(c, Change{Kind: ChangeReplaced, Source: c, Item: e, Old: old, Index: i})
	return nil
}

func (l *elementList) Clear() error {
	c := l.owner
	if err := checkCollectionMutable(c); err != nil {
		return err
	}
	for _, e := range l.items {
		if e.IsLocallyLocked() {
			return ErrLocked
		}
	}
	l.detachAll()
	notify(c, Change{Kind: ChangeCleared, Source: c})
	return nil
}

func (l *elementList) detachAll() {
	for _, e := range l.items {
		e.base().parent = nil
	}
	l.items = nil
}

// append adds e without validation. Used by parser and cloning where the
// structure is known to be consistent.
func (l *elementList) append(e Element) {
	l.items = append(l.items, e)
	e.base().parent = l.owner
}

// disposeAll releases every member of a collection which is being disposed.
func (l *elementList) disposeAll() error {
	var err error
	for _, e := range l.items {
		err = multierr.Append(err, e.Dispose())
	}
	return err
}
