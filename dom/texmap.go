package dom

import (
	"fmt"
	"strings"
)

// Projection is texture projection method of a !TEXMAP block.
type Projection int

const (
	Planar Projection = iota
	Cylindrical
	Spherical
)

var projections = [...]struct {
	name   string
	points int
	angles int
}{
	Planar:      {"PLANAR", 3, 0},
	Cylindrical: {"CYLINDRICAL", 3, 1},
	Spherical:   {"SPHERICAL", 3, 2},
}

func (p Projection) String() string {
	if p >= 0 && int(p) < len(projections) {
		return projections[p].name
	}
	return fmt.Sprintf("Projection(%d)", int(p))
}

// GeometryKind tells nested collections of a texmap apart.
type GeometryKind int

const (
	// TextureGeometry holds elements drawn only with the texture applied
	// ("0 !: " lines).
	TextureGeometry GeometryKind = iota
	// SharedGeometry holds elements drawn both textured and as fallback.
	SharedGeometry
	// FallbackGeometry holds elements drawn when textures are unsupported.
	FallbackGeometry
)

func (k GeometryKind) String() string {
	switch k {
	case TextureGeometry:
		return "texture"
	case SharedGeometry:
		return "shared"
	case FallbackGeometry:
		return "fallback"
	default:
		return fmt.Sprintf("GeometryKind(%d)", int(k))
	}
}

// Geometry is a nested element collection owned by a texmap. It does not
// accept top-level elements and shares lock and frozen state with its owner.
type Geometry struct {
	lifecycle
	elementList

	texmap *Texmap
	kind   GeometryKind
}

func newGeometry(owner *Texmap, kind GeometryKind) *Geometry {
	g := &Geometry{texmap: owner, kind: kind}
	g.elementList.owner = g
	return g
}

func (g *Geometry) parentNode() Node             { return g.texmap }
func (g *Geometry) Kind() GeometryKind           { return g.kind }
func (g *Geometry) Owner() *Texmap               { return g.texmap }
func (g *Geometry) IsFrozen() bool               { return IsFrozen(g) }
func (g *Geometry) Freeze()                      { freeze(g) }
func (g *Geometry) AllowsTopLevelElements() bool { return false }
func (g *Geometry) IsLocked() bool               { return g.texmap.IsLocked() }
func (g *Geometry) Step() *Step                  { return StepOf(g) }
func (g *Geometry) Page() *Page                  { return PageOf(g) }
func (g *Geometry) Document() *Document          { return DocumentOf(g) }

func (g *Geometry) IsReadOnly() bool {
	d := g.Document()
	return d != nil && d.readOnly
}

// Dispose is only possible through the owning texmap.
func (g *Geometry) Dispose() error {
	if g.disposed || g.texmap.disposing {
		return nil
	}
	return fmt.Errorf("geometry is owned by texmap: %w", ErrUnsupported)
}

func (g *Geometry) release() error {
	if g.disposed {
		return nil
	}
	g.disposing = true
	err := g.disposeAll()
	g.disposing, g.disposed = false, true
	return err
}

// Texmap applies a texture to the elements of its nested geometries. In
// NEXT mode the texture applies to the single following element only.
type Texmap struct {
	elementBase

	projection Projection
	next       bool
	points     [3]Vector3
	angles     []float64
	texture    string
	glossmap   string

	textured *Geometry
	shared   *Geometry
	fallback *Geometry
}

func NewTexmap(projection Projection, points [3]Vector3, angles []float64, texture string) *Texmap {
	t := &Texmap{
		projection: projection,
		points:     points,
		angles:     append([]float64(nil), angles...),
		texture:    strings.TrimSpace(texture),
	}
	t.init(t)
	t.textured = newGeometry(t, TextureGeometry)
	t.shared = newGeometry(t, SharedGeometry)
	t.fallback = newGeometry(t, FallbackGeometry)
	return t
}

func (t *Texmap) Kind() ElementKind      { return KindTexmap }
func (t *Texmap) IsTopLevel() bool       { return true }
func (t *Texmap) Projection() Projection { return t.projection }
func (t *Texmap) Points() [3]Vector3     { return t.points }
func (t *Texmap) Angles() []float64      { return append([]float64(nil), t.angles...) }
func (t *Texmap) Texture() string        { return t.texture }
func (t *Texmap) Glossmap() string       { return t.glossmap }
func (t *Texmap) IsNext() bool           { return t.next }
func (t *Texmap) Textured() *Geometry    { return t.textured }
func (t *Texmap) Shared() *Geometry      { return t.shared }
func (t *Texmap) Fallback() *Geometry    { return t.fallback }

// Geometries returns nested collections in code order.
func (t *Texmap) Geometries() []*Geometry {
	return []*Geometry{t.textured, t.shared, t.fallback}
}

// SetNext switches between START and NEXT modes. NEXT mode allows a single
// shared element and no other geometry.
func (t *Texmap) SetNext(next bool) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if next && (t.textured.Len() > 0 || t.fallback.Len() > 0 || t.shared.Len() > 1) {
		return NotSupported.Err()
	}
	t.next = next
	t.changed("mode")
	return nil
}

func (t *Texmap) SetTexture(texture, glossmap string) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	t.texture, t.glossmap = strings.TrimSpace(texture), strings.TrimSpace(glossmap)
	t.changed("texture")
	return nil
}

func (t *Texmap) SetProjection(p Projection, points [3]Vector3, angles []float64) error {
	if err := t.checkMutable(); err != nil {
		return err
	}
	if p < 0 || int(p) >= len(projections) {
		return fmt.Errorf("projection %d: %w", int(p), ErrInvalid)
	}
	if len(angles) != projections[p].angles {
		return fmt.Errorf("%s projection needs %d angles: %w", p, projections[p].angles, ErrInvalid)
	}
	t.projection, t.points, t.angles = p, points, append([]float64(nil), angles...)
	t.changed("projection")
	return nil
}

// accepts reports whether geometry g of this texmap may take one more
// element.
func (t *Texmap) accepts(g *Geometry) bool {
	if !t.next {
		return true
	}
	return g == t.shared && g.Len() == 0
}

func (t *Texmap) writeHeader(sb *strings.Builder, opts CodeOptions) {
	sb.WriteString("0 !TEXMAP ")
	if t.next {
		sb.WriteString("NEXT ")
	} else {
		sb.WriteString("START ")
	}
	sb.WriteString(t.projection.String())
	for _, p := range t.points {
		writeVector(sb, opts.point(p))
	}
	writeFloats(sb, t.angles...)
	sb.WriteByte(' ')
	sb.WriteString(t.texture)
	if t.glossmap != "" {
		sb.WriteString(" GLOSSMAP ")
		sb.WriteString(t.glossmap)
	}
	sb.WriteByte('\n')
}

func (t *Texmap) WriteCode(sb *strings.Builder, opts CodeOptions) {
	t.writePrefix(sb, opts)
	t.writeHeader(sb, opts)
	var nested strings.Builder
	for _, e := range t.textured.items {
		nested.Reset()
		e.WriteCode(&nested, opts)
		for l := range strings.Lines(nested.String()) {
			sb.WriteString("0 !: ")
			sb.WriteString(l)
		}
	}
	for _, e := range t.shared.items {
		e.WriteCode(sb, opts)
	}
	if t.next {
		return
	}
	if t.fallback.Len() > 0 {
		sb.WriteString("0 !TEXMAP FALLBACK\n")
		for _, e := range t.fallback.items {
			e.WriteCode(sb, opts)
		}
	}
	sb.WriteString("0 !TEXMAP END\n")
}

func (t *Texmap) clone() Element {
	n := NewTexmap(t.projection, t.points, t.angles, t.texture)
	n.glossmap = t.glossmap
	n.next = t.next
	n.locked = t.locked
	for i, g := range t.Geometries() {
		dst := n.Geometries()[i]
		for _, e := range g.items {
			dst.append(e.clone())
		}
	}
	return n
}

// parseTexmapHeader parses START and NEXT lines.
func parseTexmapHeader(line string, tokens []string) (*Texmap, error) {
	if len(tokens) < 4 || tokens[0] != "0" || tokens[1] != "!TEXMAP" {
		return nil, formatErrorf(line, "not a texmap header")
	}
	var next bool
	switch tokens[2] {
	case "START":
	case "NEXT":
		next = true
	default:
		return nil, formatErrorf(line, "texmap START or NEXT expected")
	}
	proj := Projection(-1)
	for i, p := range projections {
		if p.name == tokens[3] {
			proj = Projection(i)
		}
	}
	if proj < 0 {
		return nil, formatErrorf(line, "unknown texmap projection %q", tokens[3])
	}
	numbers := 3*projections[proj].points + projections[proj].angles
	if len(tokens) < 4+numbers+1 {
		return nil, formatErrorf(line, "incomplete %s texmap", proj)
	}
	fs, err := parseFloats(line, tokens[4:4+numbers])
	if err != nil {
		return nil, err
	}
	var pts [3]Vector3
	for i := range pts {
		pts[i] = Vector3{fs[3*i], fs[3*i+1], fs[3*i+2]}
	}
	rest := restAfter(line, 4+numbers)
	texture, gloss, _ := strings.Cut(rest, " GLOSSMAP ")
	t := NewTexmap(proj, pts, fs[9:], texture)
	t.glossmap = strings.TrimSpace(gloss)
	t.next = next
	return t, nil
}

// ParseTexmap parses a complete texmap block: START ... END or NEXT followed
// by a single element.
func ParseTexmap(code string) (*Texmap, error) {
	e, err := ParseElement(code)
	if err != nil {
		return nil, err
	}
	t, ok := e.(*Texmap)
	if !ok {
		return nil, formatErrorf(code, "not a texmap block")
	}
	return t, nil
}
