package dom

import (
	"strconv"

	"github.com/beevik/etree"
)

// ToXML exports the document tree. Elements carry their LDraw code, so the
// export is lossless for the tree structure and element content.
func (d *Document) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("document")
	root.CreateAttr("name", d.name)
	root.CreateAttr("id", d.id.String())
	if d.library {
		root.CreateAttr("library", "true")
	}
	for _, p := range d.pages {
		pageXML(root, p)
	}
	doc.Indent(2)
	return doc
}

func pageXML(parent *etree.Element, p *Page) {
	el := parent.CreateElement("page")
	el.CreateAttr("name", p.name)
	el.CreateAttr("bfc", p.bfc.String())
	if p.info.Type != PageTypeNone {
		el.CreateAttr("type", string(p.info.Type))
	}
	if p.info.Title != "" {
		el.CreateElement("title").SetText(p.info.Title)
	}
	if p.info.Author != "" {
		el.CreateElement("author").SetText(p.info.Author)
	}
	for i, s := range p.steps {
		st := el.CreateElement("step")
		st.CreateAttr("index", strconv.Itoa(i))
		if s.locked {
			st.CreateAttr("locked", "true")
		}
		if s.rotation != "" {
			st.CreateAttr("rotation", s.rotation)
		}
		collectionXML(st, s)
	}
}

func collectionXML(parent *etree.Element, c ElementCollection) {
	for _, e := range c.members().items {
		el := parent.CreateElement(string(e.Kind()))
		if e.IsLocallyLocked() {
			el.CreateAttr("locked", "true")
		}
		if m, ok := e.(Groupable); ok {
			if g := m.Group(); g != nil {
				el.CreateAttr("group", g.name)
			}
		}
		if t, ok := e.(*Texmap); ok {
			el.CreateAttr("projection", t.projection.String())
			el.CreateAttr("texture", t.texture)
			for _, g := range t.Geometries() {
				if g.Len() > 0 {
					collectionXML(el.CreateElement(g.kind.String()), g)
				}
			}
			continue
		}
		el.SetText(trimNewline(e.Code(CodeOptions{})))
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
