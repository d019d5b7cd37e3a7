package dom

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"ldtools/common"
)

// PageType is the type declared by !LDRAW_ORG header line.
type PageType string

const (
	PageTypeNone           PageType = ""
	PageTypeModel          PageType = "Model"
	PageTypePart           PageType = "Part"
	PageTypeSubpart        PageType = "Subpart"
	PageTypePrimitive      PageType = "Primitive"
	PageTypeLoresPrimitive PageType = "8_Primitive"
	PageTypeHiresPrimitive PageType = "48_Primitive"
	PageTypeShortcut       PageType = "Shortcut"
	PageTypeHelper         PageType = "Helper"
	PageTypeConfiguration  PageType = "Configuration"
)

var pageTypes = []PageType{
	PageTypeModel, PageTypePart, PageTypeSubpart, PageTypePrimitive,
	PageTypeLoresPrimitive, PageTypeHiresPrimitive, PageTypeShortcut,
	PageTypeHelper, PageTypeConfiguration,
}

// ParsePageType matches type names case-insensitively.
func ParsePageType(s string) (PageType, bool) {
	for _, t := range pageTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return PageTypeNone, false
}

// PageInfo holds descriptive header fields of a page.
type PageInfo struct {
	Title      string
	Author     string
	Type       PageType
	Unofficial bool
	// Release keeps the rest of !LDRAW_ORG line after type, for example
	// "UPDATE 2004-01" or "Alias ORIGINAL".
	Release  string
	License  string
	Help     []string
	Category string
	Keywords []string
	CmdLine  string
	History  []string
}

func (i PageInfo) clone() PageInfo {
	i.Help = slices.Clone(i.Help)
	i.Keywords = slices.Clone(i.Keywords)
	i.History = slices.Clone(i.History)
	return i
}

func (i PageInfo) isEmpty() bool {
	return i.Title == "" && i.Author == "" && i.Type == PageTypeNone && i.License == "" &&
		len(i.Help) == 0 && i.Category == "" && len(i.Keywords) == 0 && i.CmdLine == "" && len(i.History) == 0
}

// Page is a named unit of a document: a model, submodel or part. It always
// has at least one step.
type Page struct {
	lifecycle

	doc   *Document
	steps []*Step
	name  string
	info  PageInfo
	bfc   common.CullingMode
}

// NewPage creates detached page with one empty step.
func NewPage(name string) *Page {
	p := &Page{name: strings.TrimSpace(name)}
	s := NewStep()
	s.page = p
	p.steps = []*Step{s}
	return p
}

func (p *Page) parentNode() Node {
	if p.doc == nil {
		return nil
	}
	return p.doc
}

func (p *Page) IsFrozen() bool            { return IsFrozen(p) }
func (p *Page) Freeze()                   { freeze(p) }
func (p *Page) Document() *Document       { return p.doc }
func (p *Page) Name() string              { return p.name }
func (p *Page) Info() PageInfo            { return p.info.clone() }
func (p *Page) BFC() common.CullingMode   { return p.bfc }
func (p *Page) IsReadOnly() bool          { return p.doc != nil && p.doc.readOnly }
func (p *Page) StepCount() int            { return len(p.steps) }
func (p *Page) StepAt(i int) *Step        { return p.steps[i] }
func (p *Page) Steps() []*Step            { return slices.Clone(p.steps) }
func (p *Page) IndexOfStep(s *Step) int   { return slices.Index(p.steps, s) }
func (p *Page) ContainsStep(s *Step) bool { return s != nil && s.page == p }

func (p *Page) checkMutable() error {
	switch {
	case p.disposed:
		return ErrDisposed
	case p.IsFrozen():
		return ErrFrozen
	case p.IsReadOnly():
		return ErrUnsupported
	}
	return nil
}

func (p *Page) changed(property string) {
	notify(p, Change{Kind: ChangeProperty, Source: p, Property: property})
}

// SetName renames the page keeping names unique within the document. The
// rename must not turn existing references into a cycle.
func (p *Page) SetName(name string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if d := p.doc; d != nil {
		for _, o := range d.pages {
			if o != p && SameName(o.name, name) {
				return DuplicateName.Err()
			}
		}
		s := newCycleSearch(p, d)
		s.targetKey = NameKey(name)
		s.substitute = map[string]*Page{s.targetKey: p}
		if s.pageReaches(p) {
			return CircularReference.Err()
		}
	}
	p.name = name
	p.changed("name")
	return nil
}

func (p *Page) SetInfo(info PageInfo) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.info = info.clone()
	p.changed("info")
	return nil
}

// SetBFC changes declared culling mode of the page.
func (p *Page) SetBFC(mode common.CullingMode) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	if !mode.IsValid() {
		return fmt.Errorf("culling mode %d: %w", mode, ErrInvalid)
	}
	p.bfc = mode
	p.changed("bfc")
	return nil
}

// Elements iterates over all elements of the page in document order,
// nested geometries included.
func (p *Page) Elements() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for _, s := range p.steps {
			if !walkElements(s, yield) {
				return
			}
		}
	}
}

func walkElements(c ElementCollection, yield func(Element) bool) bool {
	for _, e := range c.members().items {
		if !yield(e) {
			return false
		}
		if t, ok := e.(*Texmap); ok {
			for _, g := range t.Geometries() {
				if !walkElements(g, yield) {
					return false
				}
			}
		}
	}
	return true
}

// Groups returns groups defined in the page.
func (p *Page) Groups() []*Group {
	var out []*Group
	for _, s := range p.steps {
		for _, e := range s.items {
			if g, ok := e.(*Group); ok {
				out = append(out, g)
			}
		}
	}
	return out
}

// Group finds group by name.
func (p *Page) Group(name string) *Group {
	return p.findGroup(name, nil, nil)
}

// findGroup looks for a group named name other than skip and old.
func (p *Page) findGroup(name string, skip, old Element) *Group {
	key := NameKey(name)
	for _, g := range p.Groups() {
		if Element(g) == skip || Element(g) == old {
			continue
		}
		if NameKey(g.name) == key {
			return g
		}
	}
	return nil
}

func (p *Page) CanInsertStep(s *Step, flags CheckFlags) (Verdict, error) {
	return CanInsertStep(p, s, flags)
}

func (p *Page) CanReplaceStep(s, old *Step, flags CheckFlags) (Verdict, error) {
	return CanReplaceStep(p, s, old, flags)
}

func (p *Page) AddStep(s *Step) error {
	return p.InsertStep(len(p.steps), s)
}

func (p *Page) InsertStep(index int, s *Step) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	if index < 0 || index > len(p.steps) {
		return fmt.Errorf("index %d out of range: %w", index, ErrInvalid)
	}
	v, err := CanInsertStep(p, s, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	p.steps = slices.Insert(p.steps, index, s)
	s.page = p
	notify(p, Change{Kind: ChangeInserted, Source: p, Item: s, Index: index})
	return nil
}

// RemoveStep detaches step from the page. Locked steps stay unless the page
// itself is being disposed.
func (p *Page) RemoveStep(s *Step) error {
	if p.disposed {
		return ErrDisposed
	}
	i := slices.Index(p.steps, s)
	if i < 0 {
		return ErrNotMember
	}
	if !p.disposing {
		if err := p.checkMutable(); err != nil {
			return err
		}
		if s.locked {
			return ErrLocked
		}
	}
	p.steps = slices.Delete(p.steps, i, i+1)
	s.page = nil
	notify(p, Change{Kind: ChangeRemoved, Source: p, Item: s, Index: i})
	return nil
}

func (p *Page) ReplaceStep(old, s *Step) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	i := slices.Index(p.steps, old)
	if i < 0 {
		return ErrNotMember
	}
	if old == s {
		return nil
	}
	if old.locked {
		return ErrLocked
	}
	v, err := CanReplaceStep(p, s, old, 0)
	if err != nil {
		return err
	}
	if !v.OK() {
		return v.Err()
	}
	p.steps[i] = s
	old.page = nil
	s.page = p
	notify(p, Change{Kind: ChangeReplaced, Source: p, Item: s, Old: old, Index: i})
	return nil
}

// Dispose detaches page from a live document and disposes its steps.
func (p *Page) Dispose() error {
	if p.disposed || p.disposing {
		return nil
	}
	if d := p.doc; d != nil && !d.disposing {
		if err := d.RemovePage(p); err != nil {
			return err
		}
	}
	p.disposing = true
	var err error
	for _, s := range p.steps {
		err = multierr.Append(err, s.Dispose())
	}
	p.disposing, p.disposed = false, true
	return err
}

// Clone returns detached deep copy of the page. Group assignments are
// remapped to the copied groups.
func (p *Page) Clone() *Page {
	c := &Page{name: p.name, info: p.info.clone(), bfc: p.bfc}
	for _, s := range p.steps {
		cs := s.Clone()
		cs.page = c
		c.steps = append(c.steps, cs)
	}
	groups := make(map[*Group]*Group)
	old := slices.Collect(p.Elements())
	i := 0
	for e := range c.Elements() {
		if g, ok := old[i].(*Group); ok {
			groups[g] = e.(*Group)
		}
		i++
	}
	for e := range c.Elements() {
		if m, ok := e.(Groupable); ok {
			if g := m.Group(); g != nil {
				m.member().group = groups[g]
			}
		}
	}
	return c
}

// Code writes the page: header, blank separator line and steps divided by
// step terminators.
func (p *Page) Code(opts CodeOptions) string {
	var sb strings.Builder
	p.writeCode(&sb, opts)
	return sb.String()
}

func (p *Page) writeCode(sb *strings.Builder, opts CodeOptions) {
	header := p.writeHeader(sb)
	if header && p.hasElements() {
		sb.WriteByte('\n')
	}
	for i, s := range p.steps {
		s.writeCode(sb, opts)
		if i == len(p.steps)-1 || !opts.Format.EmitsEditorMeta() {
			continue
		}
		if s.rotation != "" {
			sb.WriteString("0 ROTSTEP ")
			sb.WriteString(s.rotation)
			sb.WriteByte('\n')
		} else {
			sb.WriteString("0 STEP\n")
		}
	}
}

func (p *Page) hasElements() bool {
	for _, s := range p.steps {
		if len(s.items) > 0 || s.locked {
			return true
		}
	}
	return len(p.steps) > 1
}

func (p *Page) writeHeader(sb *strings.Builder) bool {
	start := sb.Len()
	line := func(parts ...string) {
		sb.WriteString("0 ")
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteByte('\n')
	}
	i := p.info
	if i.Title != "" {
		line(i.Title)
	}
	if p.name != "" {
		line("Name:", p.name)
	}
	if i.Author != "" {
		line("Author:", i.Author)
	}
	if i.Type != PageTypeNone {
		t := string(i.Type)
		if i.Unofficial {
			t = "Unofficial_" + t
		}
		if i.Release != "" {
			line("!LDRAW_ORG", t, i.Release)
		} else {
			line("!LDRAW_ORG", t)
		}
	}
	if i.License != "" {
		line("!LICENSE", i.License)
	}
	for _, h := range i.Help {
		line("!HELP", h)
	}
	switch p.bfc {
	case common.CullingModeCcw:
		line("BFC CERTIFY CCW")
	case common.CullingModeCw:
		line("BFC CERTIFY CW")
	case common.CullingModeDisabled:
		line("BFC NOCERTIFY")
	}
	if i.Category != "" {
		line("!CATEGORY", i.Category)
	}
	if len(i.Keywords) > 0 {
		line("!KEYWORDS", strings.Join(i.Keywords, ", "))
	}
	if i.CmdLine != "" {
		line("!CMDLINE", i.CmdLine)
	}
	for _, h := range i.History {
		line("!HISTORY", h)
	}
	return sb.Len() > start
}
