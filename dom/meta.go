package dom

import (
	"fmt"
	"strconv"
	"strings"

	"ldtools/common"
)

// Comment is a free text line: "0 // text" or legacy "0 text".
type Comment struct {
	elementBase
	text    string
	slashed bool
}

func NewComment(text string, slashed bool) *Comment {
	c := &Comment{text: strings.TrimSpace(text), slashed: slashed}
	c.init(c)
	return c
}

func (c *Comment) Kind() ElementKind { return KindComment }
func (c *Comment) Text() string      { return c.text }
func (c *Comment) IsSlashed() bool   { return c.slashed }

func (c *Comment) SetText(text string) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.text = strings.TrimSpace(text)
	c.changed("text")
	return nil
}

func (c *Comment) WriteCode(sb *strings.Builder, opts CodeOptions) {
	c.writePrefix(sb, opts)
	sb.WriteString("0")
	if c.slashed {
		sb.WriteString(" //")
	}
	if c.text != "" {
		sb.WriteByte(' ')
		sb.WriteString(c.text)
	}
	sb.WriteByte('\n')
}

func (c *Comment) clone() Element {
	n := NewComment(c.text, c.slashed)
	n.locked = c.locked
	return n
}

// ParseComment parses any type 0 line as a comment.
func ParseComment(code string) (*Comment, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return nil, err
	}
	if tokens[0] != "0" {
		return nil, formatErrorf(line, "not a comment")
	}
	rest := restAfter(line, 1)
	if text, ok := strings.CutPrefix(rest, "//"); ok {
		return NewComment(text, true), nil
	}
	return NewComment(rest, false), nil
}

// legacyMeta lists keywords which historically do not start with "!".
var legacyMeta = map[string]bool{
	"WRITE": true, "PRINT": true, "CLEAR": true, "PAUSE": true, "SAVE": true,
	"BFC": true, "MLCAD": true, "LPUB": true, "PE_TEX_PATH": true, "PE_TEX_INFO": true,
}

// MetaCommand is an uninterpreted meta-command: keyword and its arguments.
type MetaCommand struct {
	elementBase
	keyword string
	args    string
}

func NewMetaCommand(keyword, args string) *MetaCommand {
	m := &MetaCommand{keyword: strings.TrimSpace(keyword), args: strings.TrimSpace(args)}
	m.init(m)
	return m
}

func (m *MetaCommand) Kind() ElementKind { return KindMeta }
func (m *MetaCommand) Keyword() string   { return m.keyword }
func (m *MetaCommand) Args() string      { return m.args }

func (m *MetaCommand) SetArgs(args string) error {
	if err := m.checkMutable(); err != nil {
		return err
	}
	m.args = strings.TrimSpace(args)
	m.changed("args")
	return nil
}

func (m *MetaCommand) WriteCode(sb *strings.Builder, opts CodeOptions) {
	m.writePrefix(sb, opts)
	sb.WriteString("0 ")
	sb.WriteString(m.keyword)
	if m.args != "" {
		sb.WriteByte(' ')
		sb.WriteString(m.args)
	}
	sb.WriteByte('\n')
}

func (m *MetaCommand) clone() Element {
	n := NewMetaCommand(m.keyword, m.args)
	n.locked = m.locked
	return n
}

// ParseMetaCommand parses "0 KEYWORD args".
func ParseMetaCommand(code string) (*MetaCommand, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 2 || tokens[0] != "0" || strings.HasPrefix(tokens[1], "//") {
		return nil, formatErrorf(line, "not a meta-command")
	}
	return NewMetaCommand(tokens[1], restAfter(line, 2)), nil
}

// BFCCommand is an argument of a back face culling meta-command.
type BFCCommand int

const (
	BFCCCW BFCCommand = iota
	BFCCW
	BFCClip
	BFCNoClip
	BFCClipCCW
	BFCClipCW
	// BFCInvertNext is only kept as element when it is not followed by a
	// reference, otherwise it becomes the reference's Invert flag.
	BFCInvertNext
)

var bfcCodes = map[BFCCommand]string{
	BFCCCW:        "CCW",
	BFCCW:         "CW",
	BFCClip:       "CLIP",
	BFCNoClip:     "NOCLIP",
	BFCClipCCW:    "CLIP CCW",
	BFCClipCW:     "CLIP CW",
	BFCInvertNext: "INVERTNEXT",
}

func (c BFCCommand) String() string {
	if s, ok := bfcCodes[c]; ok {
		return s
	}
	return fmt.Sprintf("BFCCommand(%d)", int(c))
}

// apply advances culling state (mode, enabled) past the command.
func (c BFCCommand) apply(mode common.CullingMode, enabled bool) (common.CullingMode, bool) {
	switch c {
	case BFCCCW:
		mode = common.CullingModeCcw
	case BFCCW:
		mode = common.CullingModeCw
	case BFCClip:
		enabled = true
	case BFCNoClip:
		enabled = false
	case BFCClipCCW:
		mode, enabled = common.CullingModeCcw, true
	case BFCClipCW:
		mode, enabled = common.CullingModeCw, true
	}
	return mode, enabled
}

// BFCFlag is a back face culling state change.
type BFCFlag struct {
	elementBase
	command BFCCommand
}

func NewBFCFlag(cmd BFCCommand) *BFCFlag {
	f := &BFCFlag{command: cmd}
	f.init(f)
	return f
}

func (f *BFCFlag) Kind() ElementKind    { return KindBFC }
func (f *BFCFlag) Command() BFCCommand  { return f.command }
func (f *BFCFlag) IsStateElement() bool { return f.command != BFCInvertNext }

func (f *BFCFlag) SetCommand(cmd BFCCommand) error {
	if err := f.checkMutable(); err != nil {
		return err
	}
	f.command = cmd
	f.changed("command")
	return nil
}

func (f *BFCFlag) WriteCode(sb *strings.Builder, opts CodeOptions) {
	f.writePrefix(sb, opts)
	sb.WriteString("0 BFC ")
	sb.WriteString(f.command.String())
	sb.WriteByte('\n')
}

func (f *BFCFlag) clone() Element {
	n := NewBFCFlag(f.command)
	n.locked = f.locked
	return n
}

// ParseBFCFlag parses body culling commands. CERTIFY and NOCERTIFY belong to
// page header and are rejected.
func ParseBFCFlag(code string) (*BFCFlag, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 3 || tokens[0] != "0" || tokens[1] != "BFC" {
		return nil, formatErrorf(line, "not a culling command")
	}
	args := strings.Join(tokens[2:], " ")
	switch args {
	case "CCW CLIP":
		args = "CLIP CCW"
	case "CW CLIP":
		args = "CLIP CW"
	}
	for cmd, s := range bfcCodes {
		if s == args {
			return NewBFCFlag(cmd), nil
		}
	}
	return nil, formatErrorf(line, "unknown culling command")
}

// ColourSpec is the content of a !COLOUR definition.
type ColourSpec struct {
	Name  string
	Code  Colour
	Value uint32 // 0xRRGGBB
	// Edge is either "#RRGGBB" or a colour code.
	Edge string
	// Alpha and Luminance are -1 when not specified.
	Alpha     int
	Luminance int
	// Material keeps finish keywords (CHROME, RUBBER, MATERIAL ...) verbatim.
	Material string
}

// ColourDefinition declares a local colour valid for the rest of the page.
type ColourDefinition struct {
	elementBase
	spec ColourSpec
}

func NewColourDefinition(spec ColourSpec) *ColourDefinition {
	c := &ColourDefinition{spec: spec}
	c.init(c)
	return c
}

func (c *ColourDefinition) Kind() ElementKind { return KindColour }
func (c *ColourDefinition) IsTopLevel() bool  { return true }
func (c *ColourDefinition) Spec() ColourSpec  { return c.spec }

func (c *ColourDefinition) SetSpec(spec ColourSpec) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if spec.Code.IsDirect() && c.parent != nil {
		return NotSupported.Err()
	}
	c.spec = spec
	c.changed("spec")
	return nil
}

func (c *ColourDefinition) WriteCode(sb *strings.Builder, opts CodeOptions) {
	c.writePrefix(sb, opts)
	s := c.spec
	fmt.Fprintf(sb, "0 !COLOUR %s CODE %d VALUE #%06X EDGE %s", s.Name, uint32(s.Code), s.Value, s.Edge)
	if s.Alpha >= 0 {
		sb.WriteString(" ALPHA ")
		sb.WriteString(strconv.Itoa(s.Alpha))
	}
	if s.Luminance >= 0 {
		sb.WriteString(" LUMINANCE ")
		sb.WriteString(strconv.Itoa(s.Luminance))
	}
	if s.Material != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Material)
	}
	sb.WriteByte('\n')
}

func (c *ColourDefinition) clone() Element {
	n := NewColourDefinition(c.spec)
	n.locked = c.locked
	return n
}

// ParseColourDefinition parses "0 !COLOUR name CODE n VALUE #RRGGBB EDGE e
// [ALPHA a] [LUMINANCE l] [material...]". Direct colour codes are reserved.
func ParseColourDefinition(code string) (*ColourDefinition, error) {
	line, tokens, err := singleLine(code)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 9 || tokens[0] != "0" || tokens[1] != "!COLOUR" {
		return nil, formatErrorf(line, "not a colour definition")
	}
	spec := ColourSpec{Name: tokens[2], Alpha: -1, Luminance: -1}
	var haveCode, haveValue, haveEdge bool
	i := 3
fields:
	for ; i+1 < len(tokens); i += 2 {
		key, val := tokens[i], tokens[i+1]
		switch key {
		case "CODE":
			if spec.Code, err = parseColourToken(line, val); err != nil {
				return nil, err
			}
			haveCode = true
		case "VALUE":
			v, err := parseHexRGB(val)
			if err != nil {
				return nil, formatErrorf(line, "bad colour value %q", val)
			}
			spec.Value, haveValue = v, true
		case "EDGE":
			spec.Edge, haveEdge = val, true
		case "ALPHA", "LUMINANCE":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 || n > 255 {
				return nil, formatErrorf(line, "bad %s %q", strings.ToLower(key), val)
			}
			if key == "ALPHA" {
				spec.Alpha = n
			} else {
				spec.Luminance = n
			}
		default:
			break fields
		}
	}
	if i < len(tokens) {
		spec.Material = strings.Join(tokens[i:], " ")
	}
	if !haveCode || !haveValue || !haveEdge {
		return nil, formatErrorf(line, "incomplete colour definition")
	}
	if spec.Code.IsDirect() {
		return nil, formatErrorf(line, "colour code %s is reserved for direct colours", spec.Code)
	}
	return NewColourDefinition(spec), nil
}

func parseHexRGB(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "#")
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s = hex
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v) & 0xFFFFFF, nil
}
