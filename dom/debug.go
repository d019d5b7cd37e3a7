package dom

import (
	"strings"

	"ldtools/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the document with lifecycle flags of
// every node. It exists for manual inspection and debug reports.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	return treeWriter{debug.NewTreeWriter()}.document(d).String()
}

// String dumps a single page.
func (p *Page) String() string {
	if p == nil {
		return "<nil Page>"
	}
	return treeWriter{debug.NewTreeWriter()}.page(0, p).String()
}

func lifeFlags(n Node, locked bool) string {
	st := n.state()
	return debug.Flags(
		debug.Flag{Name: "disposed", Set: st.disposed},
		debug.Flag{Name: "frozen", Set: st.frozen},
		debug.Flag{Name: "locked", Set: locked},
	)
}

func (tw treeWriter) document(d *Document) treeWriter {
	tw.Line(0, "Document %q id=%s%s%s", d.name, d.id, lifeFlags(d, false), debug.Flags(
		debug.Flag{Name: "library", Set: d.library},
		debug.Flag{Name: "read-only", Set: d.readOnly},
		debug.Flag{Name: "multi-page", Set: d.IsMultiPage()},
	))
	for _, p := range d.pages {
		tw.page(1, p)
	}
	return tw
}

func (tw treeWriter) page(depth int, p *Page) treeWriter {
	tw.Line(depth, "Page %q bfc=%s steps=%d%s", p.name, p.bfc, len(p.steps), lifeFlags(p, false))
	i := p.info
	if i.Title != "" {
		tw.TextBlock(depth+1, "Title", i.Title)
	}
	if i.Author != "" {
		tw.TextBlock(depth+1, "Author", i.Author)
	}
	if i.Type != PageTypeNone {
		tw.Line(depth+1, "Type %s unofficial=%t release=%q", i.Type, i.Unofficial, i.Release)
	}
	if i.Category != "" {
		tw.TextBlock(depth+1, "Category", i.Category)
	}
	tw.List(depth+1, "Keywords", i.Keywords)
	tw.List(depth+1, "Help", i.Help)
	tw.List(depth+1, "History", i.History)
	for n, s := range p.steps {
		rot := ""
		if s.rotation != "" {
			rot = " rotation=" + s.rotation
		}
		tw.Line(depth+1, "Step[%d] elements=%d%s%s", n, len(s.items), rot, lifeFlags(s, s.locked))
		tw.elements(depth+2, s)
	}
	return tw
}

func (tw treeWriter) elements(depth int, c ElementCollection) {
	for n, e := range c.members().items {
		tw.element(depth, n, e)
	}
}

func (tw treeWriter) element(depth, n int, e Element) {
	flags := lifeFlags(e, e.IsLocallyLocked())
	if m, ok := e.(Groupable); ok {
		if g := m.Group(); g != nil {
			flags += " group=" + g.name
		}
	}
	switch v := e.(type) {
	case *Comment:
		tw.Line(depth, "[%d] comment %q%s", n, v.text, flags)
	case *MetaCommand:
		tw.Line(depth, "[%d] meta %s %q%s", n, v.keyword, v.args, flags)
	case *BFCFlag:
		tw.Line(depth, "[%d] bfc %s%s", n, v.command, flags)
	case *Group:
		tw.Line(depth, "[%d] group %q members=%d%s", n, v.name, v.Count(), flags)
	case *ColourDefinition:
		tw.Line(depth, "[%d] colour %s %q #%06X%s", n, v.spec.Code, v.spec.Name, v.spec.Value, flags)
	case *Reference:
		tw.Line(depth, "[%d] reference %q colour=%s invert=%t%s", n, v.target, v.colour, v.invert, flags)
	case *Texmap:
		mode := "START"
		if v.next {
			mode = "NEXT"
		}
		tw.Line(depth, "[%d] texmap %s %s %q%s", n, mode, v.projection, v.texture, flags)
		for _, g := range v.Geometries() {
			if g.Len() == 0 {
				continue
			}
			tw.Line(depth+1, "%s elements=%d", g.kind, g.Len())
			tw.elements(depth+2, g)
		}
	default:
		tw.Line(depth, "[%d] %s %s%s", n, e.Kind(), strings.TrimSpace(e.Code(CodeOptions{})), flags)
	}
}
