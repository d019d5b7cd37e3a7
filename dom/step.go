package dom

import (
	"strings"
)

// Step is an ordered part of a page representing one stage of building. It
// accepts top-level elements.
type Step struct {
	lifecycle
	elementList

	page     *Page
	locked   bool
	rotation string
}

// NewStep creates detached empty step.
func NewStep() *Step {
	s := &Step{}
	s.owner = s
	return s
}

func (s *Step) parentNode() Node {
	if s.page == nil {
		return nil
	}
	return s.page
}

func (s *Step) IsFrozen() bool               { return IsFrozen(s) }
func (s *Step) Freeze()                      { freeze(s) }
func (s *Step) AllowsTopLevelElements() bool { return true }
func (s *Step) Step() *Step                  { return s }
func (s *Step) Page() *Page                  { return s.page }
func (s *Step) Document() *Document          { return DocumentOf(s) }
func (s *Step) IsLocked() bool               { return s.locked }
func (s *Step) IsLocallyLocked() bool        { return s.locked }

func (s *Step) IsReadOnly() bool {
	d := s.Document()
	return d != nil && d.readOnly
}

// SetLocked locks or unlocks the step together with all its elements.
func (s *Step) SetLocked(locked bool) error {
	switch {
	case s.disposed:
		return ErrDisposed
	case s.IsFrozen():
		return ErrFrozen
	case s.IsReadOnly():
		return ErrUnsupported
	}
	if s.locked != locked {
		s.locked = locked
		notify(s, Change{Kind: ChangeLocked, Source: s})
	}
	return nil
}

// Rotation returns ROTSTEP arguments terminating the step, empty for plain
// STEP.
func (s *Step) Rotation() string { return s.rotation }

func (s *Step) SetRotation(rotation string) error {
	if err := checkCollectionMutable(s); err != nil {
		return err
	}
	s.rotation = strings.TrimSpace(rotation)
	notify(s, Change{Kind: ChangeProperty, Source: s, Property: "rotation"})
	return nil
}

// Dispose detaches the step from a live page and disposes its elements.
func (s *Step) Dispose() error {
	if s.disposed || s.disposing {
		return nil
	}
	if p := s.page; p != nil && !p.disposing {
		switch {
		case p.IsReadOnly():
			return ErrUnsupported
		case IsFrozen(p):
			return ErrFrozen
		case s.locked:
			return ErrLocked
		}
		if err := p.RemoveStep(s); err != nil {
			return err
		}
	}
	s.disposing = true
	err := s.disposeAll()
	s.disposing, s.disposed = false, true
	return err
}

// Code returns LDraw code of the step elements without terminator.
func (s *Step) Code(opts CodeOptions) string {
	var sb strings.Builder
	s.writeCode(&sb, opts)
	return sb.String()
}

func (s *Step) writeCode(sb *strings.Builder, opts CodeOptions) {
	if s.locked && opts.Format.EmitsLockMarkers() {
		sb.WriteString("0 !LDTOOLS LOCKSTEP\n")
	}
	for _, e := range s.items {
		e.WriteCode(sb, opts)
	}
}

// Clone returns detached deep copy of the step.
func (s *Step) Clone() *Step {
	c := NewStep()
	c.locked = s.locked
	c.rotation = s.rotation
	for _, e := range s.items {
		c.append(e.clone())
	}
	return c
}
