package dom

// CheckFlags modify insertion checks.
type CheckFlags uint

const (
	// IgnoreCurrentParent skips membership check, used when validating a
	// move of an attached node.
	IgnoreCurrentParent CheckFlags = 1 << iota
)

// CanInsertElement decides whether e may be added to collection c.
// Precondition violations (nil, disposed or frozen arguments) are returned as
// errors, structural problems as verdicts.
func CanInsertElement(c ElementCollection, e Element, flags CheckFlags) (Verdict, error) {
	return canPlaceElement(c, e, nil, flags)
}

// CanReplaceElement decides whether e may take place of old in c.
func CanReplaceElement(c ElementCollection, e, old Element, flags CheckFlags) (Verdict, error) {
	if c == nil || old == nil {
		return NotSupported, ErrInvalid
	}
	if !c.Contains(old) {
		return NotSupported, ErrNotMember
	}
	return canPlaceElement(c, e, old, flags)
}

func canPlaceElement(c ElementCollection, e, old Element, flags CheckFlags) (Verdict, error) {
	switch {
	case c == nil || e == nil:
		return NotSupported, ErrInvalid
	case e.IsDisposed() || c.IsDisposed():
		return NotSupported, ErrDisposed
	case IsFrozen(e) || IsFrozen(c):
		return NotSupported, ErrFrozen
	}
	if flags&IgnoreCurrentParent == 0 && e.Parent() != nil && Element(e) != old {
		return AlreadyMember, nil
	}
	if isAncestor(e, c) {
		// element would contain itself
		return NotSupported, nil
	}
	if e.IsTopLevel() && !c.AllowsTopLevelElements() {
		return TopLevelNotAllowed, nil
	}
	if g, ok := c.(*Geometry); ok && !g.texmap.accepts(g) && old == nil {
		return NotSupported, nil
	}
	switch v := e.(type) {
	case *Group:
		if page := c.Page(); page != nil {
			if page.findGroup(v.name, v, old) != nil {
				return DuplicateName, nil
			}
		} else if s := c.Step(); s != nil && stepHasGroup(s, v, old) {
			return DuplicateName, nil
		}
	case *ColourDefinition:
		if v.spec.Code.IsDirect() {
			return NotSupported, nil
		}
	}
	if page := c.Page(); page != nil {
		s := newCycleSearch(page, page.Document())
		if s.reaches(e, page.Document()) {
			return CircularReference, nil
		}
	}
	return CanInsert, nil
}

func stepHasGroup(s *Step, g *Group, old Element) bool {
	key := NameKey(g.name)
	for _, e := range s.items {
		if o, ok := e.(*Group); ok && o != g && Element(o) != old && NameKey(o.name) == key {
			return true
		}
	}
	return false
}

// CanInsertStep decides whether step s may be added to page p.
func CanInsertStep(p *Page, s *Step, flags CheckFlags) (Verdict, error) {
	return canPlaceStep(p, s, nil, flags)
}

// CanReplaceStep decides whether s may take place of old in p. Elements of
// s are checked against every other step of the page.
func CanReplaceStep(p *Page, s, old *Step, flags CheckFlags) (Verdict, error) {
	if p == nil || old == nil {
		return NotSupported, ErrInvalid
	}
	if old.page != p {
		return NotSupported, ErrNotMember
	}
	return canPlaceStep(p, s, old, flags)
}

func canPlaceStep(p *Page, s, old *Step, flags CheckFlags) (Verdict, error) {
	switch {
	case p == nil || s == nil:
		return NotSupported, ErrInvalid
	case s.disposed || p.disposed:
		return NotSupported, ErrDisposed
	case s.IsFrozen() || p.IsFrozen():
		return NotSupported, ErrFrozen
	}
	if flags&IgnoreCurrentParent == 0 && s.page != nil && s != old {
		return AlreadyMember, nil
	}
	names := make(map[string]struct{})
	for _, o := range p.steps {
		if o == old || o == s {
			continue
		}
		for _, e := range o.items {
			if g, ok := e.(*Group); ok {
				names[NameKey(g.name)] = struct{}{}
			}
		}
	}
	for _, e := range s.items {
		switch v := e.(type) {
		case *Group:
			key := NameKey(v.name)
			if _, dup := names[key]; dup {
				return DuplicateName, nil
			}
			names[key] = struct{}{}
		case *ColourDefinition:
			if v.spec.Code.IsDirect() {
				return NotSupported, nil
			}
		}
	}
	search := newCycleSearch(p, p.doc)
	if search.collectionReaches(s, p.doc) {
		return CircularReference, nil
	}
	return CanInsert, nil
}

// CanInsertPage decides whether page p may be added to document d.
func CanInsertPage(d *Document, p *Page, flags CheckFlags) (Verdict, error) {
	return canPlacePage(d, p, nil, flags)
}

// CanReplacePage decides whether p may take place of old in d. References of
// the remaining pages resolve to p once the swap completes, the cycle search
// accounts for that.
func CanReplacePage(d *Document, p, old *Page, flags CheckFlags) (Verdict, error) {
	if d == nil || old == nil {
		return NotSupported, ErrInvalid
	}
	if old.doc != d {
		return NotSupported, ErrNotMember
	}
	return canPlacePage(d, p, old, flags)
}

func canPlacePage(d *Document, p, old *Page, flags CheckFlags) (Verdict, error) {
	switch {
	case d == nil || p == nil:
		return NotSupported, ErrInvalid
	case p.disposed || d.disposed:
		return NotSupported, ErrDisposed
	case p.IsFrozen() || d.frozen:
		return NotSupported, ErrFrozen
	}
	if flags&IgnoreCurrentParent == 0 && p.doc != nil && p != old {
		return AlreadyMember, nil
	}
	for _, o := range d.pages {
		if o != old && o != p && SameName(o.name, p.name) {
			return DuplicateName, nil
		}
	}
	s := newCycleSearch(p, d)
	s.substitute = map[string]*Page{s.targetKey: p}
	if old != nil {
		// references resolve by name, so only a page keeping the old name
		// takes over references to it
		if SameName(old.name, p.name) {
			s.substitute[NameKey(old.name)] = p
		}
		s.hidden = old
	}
	if s.pageReaches(p) {
		return CircularReference, nil
	}
	return CanInsert, nil
}
