// Package palette resolves LDraw colour codes to colour values. Local
// !COLOUR definitions found earlier in a page override the system palette.
package palette

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"ldtools/dom"
)

// Source tells where a resolved colour came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceSystem
	SourceLocal
	SourceDirect
)

func (s Source) String() string {
	switch s {
	case SourceSystem:
		return "system"
	case SourceLocal:
		return "local"
	case SourceDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// Entry is a resolved colour.
type Entry struct {
	Code dom.Colour
	Name string
	// RGB and Edge are 0xRRGGBB values.
	RGB  uint32
	Edge uint32
	// Alpha is 255 for opaque colours.
	Alpha     uint8
	Luminance int
	Material  string
	Source    Source
}

// IsTransparent reports whether colour is not fully opaque.
func (e Entry) IsTransparent() bool {
	return e.Alpha < 255
}

// Palette maps colour codes to entries. A palette is safe for concurrent
// use once built.
type Palette struct {
	entries map[dom.Colour]Entry
}

var (
	defaultOnce    sync.Once
	defaultPalette *Palette
)

// Default returns built-in system palette.
func Default() *Palette {
	defaultOnce.Do(func() {
		defaultPalette = &Palette{entries: make(map[dom.Colour]Entry, len(system))}
		for _, e := range system {
			if e.Alpha == 0 {
				e.Alpha = 255
			}
			e.Source = SourceSystem
			defaultPalette.entries[e.Code] = e
		}
	})
	return defaultPalette
}

// FromDocument builds palette from colour definitions of a document, usually
// LDConfig.ldr. Later definitions of the same code win. Colours absent from
// the document fall back to the built-in palette.
func FromDocument(d *dom.Document, log *zap.Logger) *Palette {
	p := &Palette{entries: maps.Clone(Default().entries)}
	defined := 0
	for _, page := range d.Pages() {
		for e := range page.Elements() {
			if c, ok := e.(*dom.ColourDefinition); ok {
				p.entries[c.Spec().Code] = entryOf(c.Spec(), SourceSystem, p)
				defined++
			}
		}
	}
	log.Debug("Palette loaded", zap.String("document", d.Name()), zap.Int("colours", defined))
	return p
}

// Load reads colour definitions from LDraw configuration file.
func Load(r io.Reader, name string, log *zap.Logger) (*Palette, error) {
	d, err := dom.ParseDocument(r, name, log)
	if err != nil {
		return nil, fmt.Errorf("unable to load palette from %s: %w", name, err)
	}
	defer d.Dispose()
	return FromDocument(d, log), nil
}

// Lookup returns palette entry for the code.
func (p *Palette) Lookup(code dom.Colour) (Entry, bool) {
	e, ok := p.entries[code]
	return e, ok
}

// Codes returns all known codes in ascending order.
func (p *Palette) Codes() []dom.Colour {
	return slices.Sorted(maps.Keys(p.entries))
}

// Resolve returns colour effective for code at element at: direct colours
// decode their RGB value, then the nearest preceding local definition in
// document order is used, then the palette. Nil at resolves against the
// palette only.
func (p *Palette) Resolve(at dom.Element, code dom.Colour) Entry {
	if r, g, b, ok := code.RGB(); ok {
		rgb := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		return Entry{
			Code:      code,
			Name:      code.String(),
			RGB:       rgb,
			Edge:      contrastEdge(rgb),
			Alpha:     255,
			Luminance: -1,
			Source:    SourceDirect,
		}
	}
	if at != nil {
		var local *dom.ColourDefinition
		for e := range dom.Preceding(at) {
			if c, ok := e.(*dom.ColourDefinition); ok && c.Spec().Code == code {
				local = c
			}
		}
		if local != nil {
			return entryOf(local.Spec(), SourceLocal, p)
		}
	}
	if e, ok := p.entries[code]; ok {
		return e
	}
	return Entry{Code: code, Name: "Unknown", RGB: 0x7F7F7F, Edge: 0x333333, Alpha: 255, Luminance: -1}
}

// Resolve resolves code against the built-in palette.
func Resolve(at dom.Element, code dom.Colour) Entry {
	return Default().Resolve(at, code)
}

func entryOf(spec dom.ColourSpec, src Source, p *Palette) Entry {
	e := Entry{
		Code:      spec.Code,
		Name:      spec.Name,
		RGB:       spec.Value,
		Alpha:     255,
		Luminance: spec.Luminance,
		Material:  spec.Material,
		Source:    src,
	}
	if spec.Alpha >= 0 {
		e.Alpha = uint8(spec.Alpha)
	}
	e.Edge = p.edgeValue(spec.Edge)
	return e
}

// edgeValue interprets EDGE field: either #RRGGBB or a colour code.
func (p *Palette) edgeValue(edge string) uint32 {
	if len(edge) == 7 && edge[0] == '#' {
		if v, err := strconv.ParseUint(edge[1:], 16, 32); err == nil {
			return uint32(v)
		}
	}
	if c, err := dom.ParseColour(edge); err == nil {
		if e, ok := p.entries[c]; ok {
			return e.RGB
		}
	}
	return 0x333333
}

// contrastEdge picks edge colour for direct colours: dark edges for light
// colours and the other way around.
func contrastEdge(rgb uint32) uint32 {
	r, g, b := (rgb>>16)&0xFF, (rgb>>8)&0xFF, rgb&0xFF
	if (299*r+587*g+114*b)/1000 > 128 {
		return 0x333333
	}
	return 0x595959
}
