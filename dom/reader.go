package dom

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"ldtools/common"
)

// pending collects marker lines which apply to the next element.
type pending struct {
	lock   bool
	group  string
	invert bool
}

type groupRef struct {
	member Groupable
	name   string
}

// reader builds a tree from LDraw lines. Structure produced by the reader
// is consistent by construction, so elements are attached without running
// insertion checks.
type reader struct {
	log      *zap.Logger
	doc      *Document
	fragment bool

	page   *Page
	step   *Step
	header bool
	titled bool
	line   int

	pend     pending
	texmap   *Texmap
	geometry *Geometry
	groups   []groupRef
}

// ParseDocument reads a complete document. Pages are delimited by FILE
// lines, a document without them consists of a single page.
func ParseDocument(r io.Reader, name string, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rd := &reader{log: log, doc: NewDocument(name)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	scanner.Split(scanRawLines)
	for scanner.Scan() {
		rd.line++
		text := scanner.Text()
		if rd.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
			rd.doc.crlf = strings.HasSuffix(text, "\r")
		}
		if err := rd.process(text); err != nil {
			return nil, rd.wrap(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", name, err)
	}
	if err := rd.finishPage(); err != nil {
		return nil, rd.wrap(err)
	}
	log.Debug("Document parsed",
		zap.String("name", name),
		zap.Int("lines", rd.line),
		zap.Int("pages", len(rd.doc.pages)))
	return rd.doc, nil
}

// scanRawLines splits on LF keeping CR, so line endings can be detected.
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseElement parses code of a single element, which may span several
// lines: marker lines (lock, INVERTNEXT, group membership) followed by
// element line or a complete texmap block.
func ParseElement(code string) (Element, error) {
	rd := &reader{log: zap.NewNop(), fragment: true, step: NewStep()}
	for _, l := range splitCode(code) {
		if err := rd.process(l); err != nil {
			return nil, fragmentError(err, code)
		}
	}
	if rd.texmap != nil {
		return nil, formatErrorf(code, "unterminated texmap")
	}
	if rd.pend.invert {
		rd.attach(NewBFCFlag(BFCInvertNext))
	}
	if rd.step.Len() != 1 {
		return nil, formatErrorf(code, "single element expected, got %d", rd.step.Len())
	}
	e := rd.step.items[0]
	rd.step.detachAll()
	return e, nil
}

func fragmentError(err error, code string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	return &FormatError{Code: code, Reason: err.Error()}
}

func (r *reader) wrap(err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		if fe.Line == 0 {
			fe.Line = r.line
		}
		return fe
	}
	return &FormatError{Line: r.line, Reason: err.Error()}
}

func (r *reader) process(raw string) error {
	code := strings.TrimSpace(raw)
	if code == "" {
		return nil
	}
	tokens := strings.Fields(code)
	if !r.fragment && tokens[0] == "0" && len(tokens) > 1 {
		switch tokens[1] {
		case "FILE":
			if err := r.finishPage(); err != nil {
				return err
			}
			r.doc.multiPage = true
			r.startPage(restAfter(code, 2))
			return nil
		case "NOFILE":
			r.doc.noFile = true
			return r.finishPage()
		}
	}
	if r.fragment {
		return r.body(code, tokens)
	}
	if r.page == nil {
		r.startPage(r.doc.name)
	}
	if r.header {
		if r.headerLine(code, tokens) {
			return nil
		}
		r.header = false
	}
	return r.body(code, tokens)
}

func (r *reader) startPage(name string) {
	r.page = NewPage(name)
	r.step = r.page.steps[0]
	r.header, r.titled = true, false
	r.groups = nil
	r.pend = pending{}
}

func (r *reader) finishPage() error {
	p := r.page
	if p == nil {
		return nil
	}
	if r.texmap != nil {
		return formatErrorf("", "unterminated texmap in page %q", p.name)
	}
	if r.pend.invert {
		r.attach(NewBFCFlag(BFCInvertNext))
	}
	byName := make(map[string]*Group)
	for _, g := range p.Groups() {
		key := NameKey(g.name)
		if _, dup := byName[key]; dup {
			return formatErrorf("0 GROUP "+g.name, "duplicate group %q in page %q", g.name, p.name)
		}
		byName[key] = g
	}
	for _, ref := range r.groups {
		g, ok := byName[NameKey(ref.name)]
		if !ok {
			r.log.Warn("Element refers to unknown group, ignoring", zap.String("page", p.name), zap.String("group", ref.name))
			continue
		}
		if Element(g) != ref.member {
			ref.member.member().group = g
		}
	}
	if r.doc.Page(p.name) != nil {
		return formatErrorf("0 FILE "+p.name, "duplicate page name %q", p.name)
	}
	r.doc.pages = append(r.doc.pages, p)
	p.doc = r.doc
	r.page, r.step = nil, nil
	return nil
}

// headerLine consumes page header meta-commands, false ends the header.
func (r *reader) headerLine(code string, tokens []string) bool {
	if tokens[0] != "0" || len(tokens) < 2 {
		return false
	}
	first := !r.titled
	r.titled = true
	p := r.page
	rest := restAfter(code, 2)
	switch kw := tokens[1]; kw {
	case "Name:":
		if !r.doc.multiPage || p.name == "" {
			p.name = rest
		}
	case "Author:":
		p.info.Author = rest
	case "!LDRAW_ORG":
		if len(tokens) < 3 {
			return false
		}
		t, unofficial := strings.CutPrefix(tokens[2], "Unofficial_")
		pt, ok := ParsePageType(t)
		if !ok {
			r.log.Debug("Unknown page type", zap.String("type", tokens[2]), zap.Int("line", r.line))
			return false
		}
		p.info.Type, p.info.Unofficial, p.info.Release = pt, unofficial, restAfter(code, 3)
	case "!LICENSE":
		p.info.License = rest
	case "!HELP":
		p.info.Help = append(p.info.Help, rest)
	case "BFC":
		switch rest {
		case "CERTIFY", "CERTIFY CCW":
			p.bfc = common.CullingModeCcw
		case "CERTIFY CW":
			p.bfc = common.CullingModeCw
		case "NOCERTIFY":
			p.bfc = common.CullingModeDisabled
		default:
			return false
		}
	case "!CATEGORY":
		p.info.Category = rest
	case "!KEYWORDS":
		for k := range strings.SplitSeq(rest, ",") {
			if k = strings.TrimSpace(k); k != "" {
				p.info.Keywords = append(p.info.Keywords, k)
			}
		}
	case "!CMDLINE":
		p.info.CmdLine = rest
	case "!HISTORY":
		p.info.History = append(p.info.History, rest)
	default:
		if !first || isKeyword(kw) {
			return false
		}
		p.info.Title = restAfter(code, 1)
	}
	return true
}

func isKeyword(kw string) bool {
	if strings.HasPrefix(kw, "!") || strings.HasPrefix(kw, "//") {
		return true
	}
	switch kw {
	case "STEP", "ROTSTEP", "GROUP", "FILE", "NOFILE", "Name:", "Author:":
		return true
	}
	return legacyMeta[kw]
}

func (r *reader) body(code string, tokens []string) error {
	if tokens[0] == "0" && len(tokens) > 1 {
		switch kw := tokens[1]; {
		case kw == "STEP" || kw == "ROTSTEP":
			if r.fragment || r.texmap != nil {
				return formatErrorf(code, "unexpected step terminator")
			}
			if kw == "ROTSTEP" {
				r.step.rotation = restAfter(code, 2)
			}
			r.step = NewStep()
			r.step.page = r.page
			r.page.steps = append(r.page.steps, r.step)
			return nil
		case kw == "!LDTOOLS" && len(tokens) == 3 && tokens[2] == "LOCKNEXT":
			r.pend.lock = true
			return nil
		case kw == "!LDTOOLS" && len(tokens) == 3 && tokens[2] == "LOCKSTEP":
			r.step.locked = true
			return nil
		case kw == "MLCAD" && len(tokens) > 3 && tokens[2] == "BTG":
			r.pend.group = restAfter(code, 3)
			return nil
		case kw == "BFC" && len(tokens) == 3 && tokens[2] == "INVERTNEXT":
			if r.pend.invert {
				// two in a row, first one stays as is
				r.attach(NewBFCFlag(BFCInvertNext))
			}
			r.pend.invert = true
			return nil
		case kw == "!TEXMAP":
			return r.texmapLine(code, tokens)
		case kw == "!:":
			if r.texmap == nil || r.texmap.next || r.geometry == r.texmap.fallback {
				return formatErrorf(code, "texture geometry outside of texmap block")
			}
			inner := restAfter(code, 2)
			e, err := parseSingle(inner, strings.Fields(inner))
			if err != nil {
				return err
			}
			r.applyPending(e)
			r.texmap.textured.append(e)
			return nil
		}
	}
	e, err := parseSingle(code, tokens)
	if err != nil {
		return err
	}
	r.applyPending(e)
	r.attach(e)
	return nil
}

// attach adds element to the current target: open texmap geometry or step.
func (r *reader) attach(e Element) {
	if r.texmap == nil {
		r.step.append(e)
		return
	}
	r.geometry.append(e)
	if r.texmap.next {
		r.closeTexmap()
	}
}

func (r *reader) applyPending(e Element) {
	p := r.pend
	r.pend = pending{}
	if p.invert {
		if ref, ok := e.(*Reference); ok {
			ref.invert = true
		} else {
			r.attach(NewBFCFlag(BFCInvertNext))
		}
	}
	if p.lock {
		e.base().locked = true
	}
	if p.group != "" {
		if m, ok := e.(Groupable); ok {
			r.groups = append(r.groups, groupRef{member: m, name: p.group})
		}
	}
}

func (r *reader) texmapLine(code string, tokens []string) error {
	if len(tokens) < 3 {
		return formatErrorf(code, "incomplete texmap command")
	}
	switch tokens[2] {
	case "START", "NEXT":
		if r.texmap != nil {
			return formatErrorf(code, "nested texmap")
		}
		t, err := parseTexmapHeader(code, tokens)
		if err != nil {
			return err
		}
		r.applyPending(t)
		r.texmap, r.geometry = t, t.shared
	case "FALLBACK":
		if r.texmap == nil || r.texmap.next || r.geometry == r.texmap.fallback {
			return formatErrorf(code, "unexpected texmap fallback")
		}
		r.geometry = r.texmap.fallback
	case "END":
		if r.texmap == nil || r.texmap.next {
			return formatErrorf(code, "unexpected texmap end")
		}
		r.closeTexmap()
	default:
		return formatErrorf(code, "unknown texmap command %q", tokens[2])
	}
	return nil
}

func (r *reader) closeTexmap() {
	t := r.texmap
	r.texmap, r.geometry = nil, nil
	r.step.append(t)
}

// parseSingle dispatches one line to variant parser.
func parseSingle(code string, tokens []string) (Element, error) {
	if len(tokens) == 0 {
		return nil, formatErrorf(code, "empty line")
	}
	switch tokens[0] {
	case "0":
		return parseMeta(code, tokens)
	case "1":
		return ParseReference(code)
	case "2":
		return ParseLine(code)
	case "3":
		return ParseTriangle(code)
	case "4":
		return ParseQuad(code)
	case "5":
		return ParseOptionalLine(code)
	}
	return nil, formatErrorf(code, "unknown line type %q", tokens[0])
}

func parseMeta(code string, tokens []string) (Element, error) {
	if len(tokens) == 1 {
		return NewComment("", false), nil
	}
	kw := tokens[1]
	switch {
	case strings.HasPrefix(kw, "//"):
		return ParseComment(code)
	case kw == "BFC":
		if f, err := ParseBFCFlag(code); err == nil {
			return f, nil
		}
		return ParseMetaCommand(code)
	case kw == "GROUP":
		if g, err := ParseGroup(code); err == nil {
			return g, nil
		}
		return ParseMetaCommand(code)
	case kw == "!COLOUR":
		return ParseColourDefinition(code)
	case strings.HasPrefix(kw, "!") || legacyMeta[kw]:
		return ParseMetaCommand(code)
	}
	return ParseComment(code)
}
