package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// Colour is an LDraw colour code. Codes at or above 0x2000000 are direct
// colours carrying 24-bit RGB value in their low bits.
type Colour uint32

const (
	// MainColour inherits colour of the referencing element.
	MainColour Colour = 16
	// EdgeColour is the complement of the inherited colour.
	EdgeColour Colour = 24

	directColourBase Colour = 0x2000000
)

// DirectColour builds direct colour code from RGB components.
func DirectColour(r, g, b uint8) Colour {
	return directColourBase | Colour(r)<<16 | Colour(g)<<8 | Colour(b)
}

// IsDirect reports whether the code lies in reserved direct colour range.
func (c Colour) IsDirect() bool {
	return c >= directColourBase
}

// RGB returns components of a direct colour.
func (c Colour) RGB() (r, g, b uint8, ok bool) {
	if !c.IsDirect() {
		return 0, 0, 0, false
	}
	return uint8(c >> 16), uint8(c >> 8), uint8(c), true
}

func (c Colour) String() string {
	if c.IsDirect() {
		return fmt.Sprintf("0x%07X", uint32(c))
	}
	return strconv.FormatUint(uint64(c), 10)
}

// ParseColour accepts decimal codes and hexadecimal 0x... direct colours.
func ParseColour(s string) (Colour, error) {
	var (
		v   uint64
		err error
	)
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err = strconv.ParseUint(hex, 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("bad colour %q: %w", s, err)
	}
	return Colour(v), nil
}
