package dom

import (
	"strings"
)

// TargetStatus describes the outcome of resolving a reference.
type TargetStatus int

const (
	TargetUnresolved TargetStatus = iota
	TargetResolved
	TargetMissing
	TargetCircular
)

func (s TargetStatus) String() string {
	switch s {
	case TargetResolved:
		return "resolved"
	case TargetMissing:
		return "missing"
	case TargetCircular:
		return "circular"
	default:
		return "unresolved"
	}
}

// Reference places a transformed copy of another page.
type Reference struct {
	graphic
	matrix Matrix
	target string
	invert bool
}

func NewReference(colour Colour, m Matrix, target string) *Reference {
	r := &Reference{graphic: graphic{colour: colour}, matrix: m, target: strings.TrimSpace(target)}
	r.init(r)
	return r
}

func (r *Reference) Kind() ElementKind { return KindReference }
func (r *Reference) Matrix() Matrix    { return r.matrix }
func (r *Reference) TargetName() string {
	return r.target
}

// Invert reports whether the reference is preceded by BFC INVERTNEXT.
func (r *Reference) Invert() bool { return r.invert }

func (r *Reference) SetMatrix(m Matrix) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	r.matrix = m
	r.changed("matrix")
	return nil
}

func (r *Reference) SetInvert(invert bool) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	r.invert = invert
	r.changed("invert")
	return nil
}

// SetTargetName retargets the reference. Attached references are checked
// against circular dependencies first.
func (r *Reference) SetTargetName(name string) error {
	if err := r.checkMutable(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if p := r.Page(); p != nil {
		d := p.Document()
		if newCycleSearch(p, d).referenceReaches(name, d) {
			return CircularReference.Err()
		}
	}
	r.target = name
	r.changed("target")
	return nil
}

// Target resolves referenced page: own document first, then document's
// resolver. Nil when the target is unknown.
func (r *Reference) Target() *Page {
	p, _ := r.resolve()
	return p
}

// TargetStatus resolves the reference and checks whether it participates in
// a reference cycle.
func (r *Reference) TargetStatus() TargetStatus {
	p, ok := r.resolve()
	switch {
	case !ok:
		return TargetUnresolved
	case p == nil:
		return TargetMissing
	}
	if page := r.Page(); page != nil {
		s := newCycleSearch(page, page.Document())
		if s.referenceReaches(r.target, page.Document()) {
			return TargetCircular
		}
	}
	return TargetResolved
}

// resolve reports false when the reference is not in any document and
// therefore has no resolution context.
func (r *Reference) resolve() (*Page, bool) {
	d := r.Document()
	if d == nil {
		return nil, false
	}
	return d.resolvePage(r.target), true
}

func (r *Reference) WriteCode(sb *strings.Builder, opts CodeOptions) {
	r.writePrefix(sb, opts)
	if r.invert {
		sb.WriteString("0 BFC INVERTNEXT\n")
	}
	sb.WriteByte('1')
	sb.WriteByte(' ')
	sb.WriteString(opts.colour(r.colour).String())
	m := r.matrix
	if opts.Transform != nil {
		m = opts.Transform.Mul(m)
		m.T = opts.point(r.matrix.T)
		for i := range 3 {
			for j := range 3 {
				m.R[i][j] = roundCoord(m.R[i][j])
			}
		}
	}
	writeVector(sb, m.T)
	for i := range 3 {
		writeFloats(sb, m.R[i][0], m.R[i][1], m.R[i][2])
	}
	sb.WriteByte(' ')
	sb.WriteString(r.target)
	sb.WriteByte('\n')
}

func (r *Reference) clone() Element {
	n := NewReference(r.colour, r.matrix, r.target)
	n.invert = r.invert
	n.locked = r.locked
	n.group = r.group
	return n
}

// ParseReference parses "1 colour x y z a b c d e f g h i name", optionally
// preceded by "0 BFC INVERTNEXT" line.
func ParseReference(code string) (*Reference, error) {
	lines := splitCode(code)
	invert := false
	if len(lines) == 2 && strings.Join(strings.Fields(lines[0]), " ") == "0 BFC INVERTNEXT" {
		invert = true
		lines = lines[1:]
	}
	if len(lines) != 1 {
		return nil, formatErrorf(code, "single reference line expected")
	}
	line := lines[0]
	tokens := strings.Fields(line)
	if tokens[0] != "1" {
		return nil, formatErrorf(line, "line type 1 expected")
	}
	if len(tokens) < 15 {
		return nil, formatErrorf(line, "at least 15 fields expected, got %d", len(tokens))
	}
	c, err := parseColourToken(line, tokens[1])
	if err != nil {
		return nil, err
	}
	fs, err := parseFloats(line, tokens[2:14])
	if err != nil {
		return nil, err
	}
	m := Matrix{
		T: Vector3{fs[0], fs[1], fs[2]},
		R: [3][3]float64{
			{fs[3], fs[4], fs[5]},
			{fs[6], fs[7], fs[8]},
			{fs[9], fs[10], fs[11]},
		},
	}
	r := NewReference(c, m, restAfter(line, 14))
	r.invert = invert
	return r, nil
}
