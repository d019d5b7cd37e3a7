package dom

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Groupable is implemented by elements which may be assigned to a group.
type Groupable interface {
	Element
	Group() *Group
	SetGroup(g *Group) error

	member() *groupMember
}

// groupMember keeps the non-owning group assignment.
type groupMember struct {
	elementBase
	group *Group
}

func (m *groupMember) member() *groupMember { return m }

// Group returns assigned group, nil when group was disposed.
func (m *groupMember) Group() *Group {
	if m.group == nil || m.group.disposed {
		return nil
	}
	return m.group
}

func (m *groupMember) SetGroup(g *Group) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	if g != nil && g.disposed {
		return ErrDisposed
	}
	if Element(g) == m.self {
		return ErrInvalid
	}
	m.group = g
	m.changed("group")
	return nil
}

// Group is a named classifier of elements. It owns nothing: members are the
// elements of the group's page (or step, for groups outside of any page)
// which refer to it.
type Group struct {
	groupMember
	name string
}

// NewGroup creates detached group.
func NewGroup(name string) *Group {
	g := &Group{name: strings.TrimSpace(name)}
	g.init(g)
	return g
}

func (g *Group) Kind() ElementKind { return KindGroup }
func (g *Group) IsTopLevel() bool  { return true }
func (g *Group) Name() string      { return g.name }

// SetName renames the group keeping names unique within the page.
func (g *Group) SetName(name string) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if p := g.Page(); p != nil && p.findGroup(name, g, nil) != nil {
		return DuplicateName.Err()
	}
	g.name = name
	g.changed("name")
	return nil
}

// All iterates over group members in document order.
func (g *Group) All() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		if p := g.Page(); p != nil {
			for _, s := range p.steps {
				if !yieldMembers(s, g, true, yield) {
					return
				}
			}
			return
		}
		if s := g.Step(); s != nil {
			yieldMembers(s, g, false, yield)
		}
	}
}

func yieldMembers(c ElementCollection, g *Group, deep bool, yield func(Element) bool) bool {
	for _, e := range c.members().items {
		if m, ok := e.(Groupable); ok && m.Group() == g {
			if !yield(e) {
				return false
			}
		}
		if t, ok := e.(*Texmap); ok && deep {
			for _, geo := range t.Geometries() {
				if !yieldMembers(geo, g, deep, yield) {
					return false
				}
			}
		}
	}
	return true
}

// Members returns current members in document order.
func (g *Group) Members() []Element {
	return slices.Collect(g.All())
}

func (g *Group) Count() int {
	n := 0
	for range g.All() {
		n++
	}
	return n
}

func (g *Group) Contains(e Element) bool {
	for m := range g.All() {
		if m == e {
			return true
		}
	}
	return false
}

// CopyTo copies members into dst starting at index, returns number of copied
// elements. Like copy it stops when dst is full.
func (g *Group) CopyTo(dst []Element, index int) int {
	if index < 0 || index > len(dst) {
		return 0
	}
	n := 0
	for m := range g.All() {
		if index+n >= len(dst) {
			break
		}
		dst[index+n] = m
		n++
	}
	return n
}

func (g *Group) WriteCode(sb *strings.Builder, opts CodeOptions) {
	if !opts.Format.EmitsEditorMeta() {
		return
	}
	g.writePrefix(sb, opts)
	sb.WriteString("0 GROUP ")
	sb.WriteString(strconv.Itoa(g.Count()))
	sb.WriteByte(' ')
	sb.WriteString(g.name)
	sb.WriteByte('\n')
}

func (g *Group) clone() Element {
	c := NewGroup(g.name)
	c.locked = g.locked
	c.group = g.group
	return c
}

// ParseGroup parses "0 GROUP count name". The count is informational, the
// actual membership is always computed.
func ParseGroup(code string) (*Group, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 4 || tokens[0] != "0" || tokens[1] != "GROUP" {
		return nil, formatErrorf(line, "not a group definition")
	}
	if _, err := strconv.Atoi(tokens[2]); err != nil {
		return nil, formatErrorf(line, "bad group size %q", tokens[2])
	}
	return NewGroup(restAfter(line, 3)), nil
}
