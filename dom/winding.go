package dom

import (
	"iter"

	"ldtools/common"
)

// Preceding iterates over elements which precede e in document order and
// may affect its rendering state: all direct elements of earlier steps of
// the page, then, for every collection on the path from the step down to e,
// the elements before the path boundary.
func Preceding(e Element) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		type frame struct {
			c    ElementCollection
			stop Element
		}
		var chain []frame
		for cur := e; cur != nil; {
			c := cur.Parent()
			if c == nil {
				break
			}
			chain = append(chain, frame{c, cur})
			g, ok := c.(*Geometry)
			if !ok {
				break
			}
			cur = g.texmap
		}
		if len(chain) == 0 {
			return
		}
		if step, ok := chain[len(chain)-1].c.(*Step); ok && step.page != nil {
			for _, s := range step.page.steps {
				if s == step {
					break
				}
				for _, x := range s.items {
					if !yield(x) {
						return
					}
				}
			}
		}
		for i := len(chain) - 1; i >= 0; i-- {
			f := chain[i]
			for _, x := range f.c.members().items {
				if x == f.stop {
					break
				}
				if !yield(x) {
					return
				}
			}
		}
	}
}

// Winding returns culling mode effective at element e. Pages with culling
// explicitly disabled always answer Disabled, otherwise the page's declared
// mode is advanced by every preceding culling command.
func Winding(e Element) common.CullingMode {
	page := e.Page()
	if page == nil {
		return common.CullingModeNotset
	}
	declared := page.bfc
	if declared == common.CullingModeDisabled {
		return common.CullingModeDisabled
	}
	mode, enabled := common.CullingModeCcw, declared.Certified()
	if declared == common.CullingModeCw {
		mode = common.CullingModeCw
	}
	seen := false
	for x := range Preceding(e) {
		if f, ok := x.(*BFCFlag); ok && f.IsStateElement() {
			seen = true
			mode, enabled = f.command.apply(mode, enabled)
		}
	}
	if !seen {
		return declared
	}
	if !enabled {
		return common.CullingModeDisabled
	}
	return mode
}
