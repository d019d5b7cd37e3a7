package content

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"ldtools/dom"
	"ldtools/utils/debug"
)

// String returns a readable tree of the whole Content starting with parsed
// document. It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	out := c.Doc.String()

	refs := c.References()
	if len(refs) > 0 {
		tw := debug.NewTreeWriter()
		total := 0
		for _, r := range refs {
			total += len(r)
		}
		tw.Line(0, "References (%d targets, %d total)", len(refs), total)

		keys := slices.Collect(maps.Keys(refs))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			list := refs[k]
			tw.Line(1, "Target=%q (%d references) status=%s", k, len(list), list[0].TargetStatus())
			for i, r := range list {
				page := ""
				if p := r.Page(); p != nil {
					page = p.Name()
				}
				tw.Line(2, "Reference[%d] page=%q colour=%s", i, page, r.Colour())
			}
		}
		out += "\n" + tw.String()
	}

	return out
}

// References indexes references of all pages by lower-cased target name.
func (c *Content) References() map[string][]*dom.Reference {
	index := make(map[string][]*dom.Reference)
	for _, p := range c.Doc.Pages() {
		for e := range p.Elements() {
			if r, ok := e.(*dom.Reference); ok {
				k := dom.NameKey(r.TargetName())
				index[k] = append(index[k], r)
			}
		}
	}
	return index
}
