package dom

// cycleSearch looks for reference chains leading back to target page. The
// visited set is explicit so concurrent searches never share state.
type cycleSearch struct {
	target    *Page
	targetKey string
	doc       *Document
	// substitute maps names of doc to the page they will resolve to once a
	// pending page insertion or replacement completes.
	substitute map[string]*Page
	// hidden is the page being replaced, it is invisible to name lookups.
	hidden  *Page
	visited map[*Page]struct{}
}

func newCycleSearch(target *Page, doc *Document) *cycleSearch {
	return &cycleSearch{
		target:    target,
		targetKey: NameKey(target.name),
		doc:       doc,
		visited:   make(map[*Page]struct{}),
	}
}

// reaches reports whether element e, resolved in context of document home,
// leads to the target page.
func (s *cycleSearch) reaches(e Element, home *Document) bool {
	switch v := e.(type) {
	case *Reference:
		return s.referenceReaches(v.target, home)
	case *Texmap:
		for _, g := range v.Geometries() {
			if s.collectionReaches(g, home) {
				return true
			}
		}
	}
	return false
}

func (s *cycleSearch) collectionReaches(c ElementCollection, home *Document) bool {
	for _, e := range c.members().items {
		if s.reaches(e, home) {
			return true
		}
	}
	return false
}

func (s *cycleSearch) referenceReaches(name string, home *Document) bool {
	key := NameKey(name)
	if key == "" {
		return false
	}
	if home == s.doc && key == s.targetKey {
		return true
	}
	t := s.resolve(key, name, home)
	if t == nil {
		return false
	}
	if t == s.target {
		return true
	}
	td := t.doc
	if td != nil && td != s.doc && td.library {
		return false
	}
	return s.pageReaches(t)
}

// pageReaches searches all elements of p once.
func (s *cycleSearch) pageReaches(p *Page) bool {
	if _, seen := s.visited[p]; seen {
		return false
	}
	s.visited[p] = struct{}{}
	home := p.doc
	if home == nil || p == s.target {
		home = s.doc
	}
	for _, st := range p.steps {
		if s.collectionReaches(st, home) {
			return true
		}
	}
	return false
}

func (s *cycleSearch) resolve(key, name string, home *Document) *Page {
	if home == nil {
		return nil
	}
	if home == s.doc {
		if p, ok := s.substitute[key]; ok {
			return p
		}
	}
	for _, p := range home.pages {
		if p != s.hidden && NameKey(p.name) == key {
			return p
		}
	}
	if home.resolver != nil {
		return home.resolver.ResolvePage(name)
	}
	return nil
}
