package dom

import (
	"math"
	"strconv"
	"strings"

	"ldtools/common"
)

// CodeOptions control how elements are written as LDraw code.
type CodeOptions struct {
	Format common.CodeFormat
	// Colour replaces MainColour when Recolour is set. Used when inlining
	// referenced pages into the referencing context.
	Colour   Colour
	Recolour bool
	// Transform is applied to every written coordinate. Transformed values
	// are rounded to six decimal places.
	Transform *Matrix
	// Winding set to cw reverses vertex order of written polygons.
	Winding common.CullingMode
}

// DefaultCodeOptions writes everything without any transformation.
func DefaultCodeOptions() CodeOptions {
	return CodeOptions{Format: common.CodeFormatFull}
}

func (o CodeOptions) colour(c Colour) Colour {
	if o.Recolour && c == MainColour {
		return o.Colour
	}
	return c
}

func (o CodeOptions) point(v Vector3) Vector3 {
	if o.Transform == nil {
		return v
	}
	p := o.Transform.Apply(v)
	return Vector3{roundCoord(p.X), roundCoord(p.Y), roundCoord(p.Z)}
}

func (o CodeOptions) reversed() bool {
	return o.Winding == common.CullingModeCw
}

func roundCoord(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func formatFloat(f float64) string {
	if f == 0 {
		// no negative zeroes in output
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeFloats(sb *strings.Builder, vals ...float64) {
	for _, v := range vals {
		sb.WriteByte(' ')
		sb.WriteString(formatFloat(v))
	}
}

func writeVector(sb *strings.Builder, v Vector3) {
	writeFloats(sb, v.X, v.Y, v.Z)
}

func parseFloats(code string, tokens []string) ([]float64, error) {
	out := make([]float64, len(tokens))
	for i, t := range tokens {
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, formatErrorf(code, "bad number %q", t)
		}
		out[i] = f
	}
	return out, nil
}

func parseVectors(code string, tokens []string) ([]Vector3, error) {
	if len(tokens)%3 != 0 {
		return nil, formatErrorf(code, "incomplete coordinates")
	}
	fs, err := parseFloats(code, tokens)
	if err != nil {
		return nil, err
	}
	out := make([]Vector3, 0, len(fs)/3)
	for i := 0; i < len(fs); i += 3 {
		out = append(out, Vector3{fs[i], fs[i+1], fs[i+2]})
	}
	return out, nil
}

func parseColourToken(code, token string) (Colour, error) {
	c, err := ParseColour(token)
	if err != nil {
		return 0, formatErrorf(code, "bad colour %q", token)
	}
	return c, nil
}

// restAfter returns text following the first n whitespace separated tokens
// of code, inner spacing preserved.
func restAfter(code string, n int) string {
	s := strings.TrimLeft(code, " \t")
	for range n {
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			return ""
		}
		s = strings.TrimLeft(s[i:], " \t")
	}
	return strings.TrimRight(s, " \t\r\n")
}

// splitCode breaks multi-line code into trimmed non-empty lines.
func splitCode(code string) []string {
	var out []string
	for l := range strings.Lines(code) {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// singleLine rejects multi-line input for parsers of one line elements.
func singleLine(code string) (string, []string, error) {
	lines := splitCode(code)
	switch len(lines) {
	case 0:
		return "", nil, formatErrorf(code, "empty code")
	case 1:
		return lines[0], strings.Fields(lines[0]), nil
	default:
		return "", nil, formatErrorf(code, "single line expected")
	}
}
