package dom

import (
	"fmt"
	"slices"
	"strings"
)

// graphic is common part of coloured geometry.
type graphic struct {
	groupMember
	colour Colour
}

func (g *graphic) Colour() Colour { return g.colour }

func (g *graphic) SetColour(c Colour) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	g.colour = c
	g.changed("colour")
	return nil
}

func (g *graphic) writeHead(sb *strings.Builder, tag byte, opts CodeOptions) {
	g.writePrefix(sb, opts)
	sb.WriteByte(tag)
	sb.WriteByte(' ')
	sb.WriteString(opts.colour(g.colour).String())
}

// shape keeps fixed number of vertices.
type shape struct {
	graphic
	points []Vector3
}

func (s *shape) Vertex(i int) Vector3 { return s.points[i] }

// Vertices returns a copy of all coordinates.
func (s *shape) Vertices() []Vector3 { return slices.Clone(s.points) }

func (s *shape) SetVertex(i int, v Vector3) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.points) {
		return fmt.Errorf("vertex %d out of range: %w", i, ErrInvalid)
	}
	s.points[i] = v
	s.changed("vertices")
	return nil
}

func (s *shape) writeShape(sb *strings.Builder, tag byte, polygon bool, opts CodeOptions) {
	s.writeHead(sb, tag, opts)
	pts := s.points
	if polygon && opts.reversed() {
		pts = slices.Clone(pts)
		slices.Reverse(pts)
	}
	for _, p := range pts {
		writeVector(sb, opts.point(p))
	}
	sb.WriteByte('\n')
}

func (s *shape) copyFrom(o *shape) {
	s.locked = o.locked
	s.group = o.group
}

func parseShape(code string, tag string, vertices int) (Colour, []Vector3, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return 0, nil, err
	}
	if tokens[0] != tag {
		return 0, nil, formatErrorf(line, "line type %s expected", tag)
	}
	if len(tokens) != 2+3*vertices {
		return 0, nil, formatErrorf(line, "%d fields expected, got %d", 2+3*vertices, len(tokens))
	}
	c, err := parseColourToken(line, tokens[1])
	if err != nil {
		return 0, nil, err
	}
	pts, err := parseVectors(line, tokens[2:])
	if err != nil {
		return 0, nil, err
	}
	return c, pts, nil
}

func newShape(colour Colour, points []Vector3) shape {
	return shape{graphic: graphic{colour: colour}, points: points}
}

// Line is a type 2 edge line.
type Line struct{ shape }

func NewLine(colour Colour, a, b Vector3) *Line {
	l := &Line{newShape(colour, []Vector3{a, b})}
	l.init(l)
	return l
}

func (l *Line) Kind() ElementKind { return KindLine }

func (l *Line) WriteCode(sb *strings.Builder, opts CodeOptions) {
	l.writeShape(sb, '2', false, opts)
}

func (l *Line) clone() Element {
	n := NewLine(l.colour, l.points[0], l.points[1])
	n.copyFrom(&l.shape)
	return n
}

// ParseLine parses "2 colour x1 y1 z1 x2 y2 z2".
func ParseLine(code string) (*Line, error) {
	c, p, err := parseShape(code, "2", 2)
	if err != nil {
		return nil, err
	}
	return NewLine(c, p[0], p[1]), nil
}

// Triangle is a type 3 filled triangle.
type Triangle struct{ shape }

func NewTriangle(colour Colour, a, b, c Vector3) *Triangle {
	t := &Triangle{newShape(colour, []Vector3{a, b, c})}
	t.init(t)
	return t
}

func (t *Triangle) Kind() ElementKind { return KindTriangle }

func (t *Triangle) WriteCode(sb *strings.Builder, opts CodeOptions) {
	t.writeShape(sb, '3', true, opts)
}

func (t *Triangle) clone() Element {
	n := NewTriangle(t.colour, t.points[0], t.points[1], t.points[2])
	n.copyFrom(&t.shape)
	return n
}

// ParseTriangle parses "3 colour" followed by three vertices.
func ParseTriangle(code string) (*Triangle, error) {
	c, p, err := parseShape(code, "3", 3)
	if err != nil {
		return nil, err
	}
	return NewTriangle(c, p[0], p[1], p[2]), nil
}

// Quad is a type 4 filled quadrilateral.
type Quad struct{ shape }

func NewQuad(colour Colour, a, b, c, d Vector3) *Quad {
	q := &Quad{newShape(colour, []Vector3{a, b, c, d})}
	q.init(q)
	return q
}

func (q *Quad) Kind() ElementKind { return KindQuad }

func (q *Quad) WriteCode(sb *strings.Builder, opts CodeOptions) {
	q.writeShape(sb, '4', true, opts)
}

func (q *Quad) clone() Element {
	n := NewQuad(q.colour, q.points[0], q.points[1], q.points[2], q.points[3])
	n.copyFrom(&q.shape)
	return n
}

// ParseQuad parses "4 colour" followed by four vertices.
func ParseQuad(code string) (*Quad, error) {
	c, p, err := parseShape(code, "4", 4)
	if err != nil {
		return nil, err
	}
	return NewQuad(c, p[0], p[1], p[2], p[3]), nil
}

// OptionalLine is a type 5 conditional edge. Vertices 0 and 1 are the line
// end points, 2 and 3 are control points.
type OptionalLine struct{ shape }

func NewOptionalLine(colour Colour, a, b, c1, c2 Vector3) *OptionalLine {
	o := &OptionalLine{newShape(colour, []Vector3{a, b, c1, c2})}
	o.init(o)
	return o
}

func (o *OptionalLine) Kind() ElementKind { return KindOptionalLine }

func (o *OptionalLine) WriteCode(sb *strings.Builder, opts CodeOptions) {
	o.writeShape(sb, '5', false, opts)
}

func (o *OptionalLine) clone() Element {
	n := NewOptionalLine(o.colour, o.points[0], o.points[1], o.points[2], o.points[3])
	n.copyFrom(&o.shape)
	return n
}

// ParseOptionalLine parses "5 colour" followed by two end and two control
// points.
func ParseOptionalLine(code string) (*OptionalLine, error) {
	c, p, err := parseShape(code, "5", 4)
	if err != nil {
		return nil, err
	}
	return NewOptionalLine(c, p[0], p[1], p[2], p[3]), nil
}
