// Package check verifies consistency of LDraw documents against the library.
package check

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ldtools/config"
	"ldtools/dom"
	"ldtools/palette"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single problem found in a source.
type Issue struct {
	Severity Severity
	Source   string
	Page     string
	// Line is set for parse errors only, elements do not remember their
	// position in the source.
	Line    int
	Code    string
	Message string
}

func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Source)
	if i.Page != "" && i.Page != i.Source {
		fmt.Fprintf(&sb, " [%s]", i.Page)
	}
	if i.Line > 0 {
		fmt.Fprintf(&sb, " line %d", i.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(i.Message)
	if i.Code != "" {
		fmt.Fprintf(&sb, ": %q", i.Code)
	}
	return sb.String()
}

// Options select which problems are reported.
type Options struct {
	Missing       config.MissingPolicy
	SingularWarns bool
	// Palette is used to find unknown colours, nil disables colour checks.
	Palette *palette.Palette
}

func OptionsFromConfig(cfg *config.CheckConfig, pal *palette.Palette) Options {
	return Options{Missing: cfg.Missing, SingularWarns: cfg.SingularWarns, Palette: pal}
}

// ParseIssue converts document parse failure into an issue.
func ParseIssue(src string, err error) Issue {
	issue := Issue{Severity: SeverityError, Source: src, Message: err.Error()}
	var fe *dom.FormatError
	if errors.As(err, &fe) {
		issue.Line, issue.Code, issue.Message = fe.Line, fe.Code, fe.Reason
	}
	return issue
}

type coloured interface {
	Colour() dom.Colour
}

// Document checks references, matrices and colours of every page.
func Document(d *dom.Document, src string, opts Options, log *zap.Logger) []Issue {
	var issues []Issue
	add := func(sev Severity, p *dom.Page, e dom.Element, format string, args ...any) {
		issue := Issue{
			Severity: sev,
			Source:   src,
			Page:     p.Name(),
			Code:     strings.TrimSpace(e.Code(dom.DefaultCodeOptions())),
			Message:  fmt.Sprintf(format, args...),
		}
		log.Debug("Issue found", zap.Stringer("severity", sev), zap.String("page", issue.Page), zap.String("message", issue.Message))
		issues = append(issues, issue)
	}

	for _, p := range d.Pages() {
		for e := range p.Elements() {
			if r, ok := e.(*dom.Reference); ok {
				switch r.TargetStatus() {
				case dom.TargetCircular:
					add(SeverityError, p, e, "circular reference to %s", r.TargetName())
				case dom.TargetMissing:
					switch opts.Missing {
					case config.MissingPolicyWarn:
						add(SeverityWarning, p, e, "unresolved reference to %s", r.TargetName())
					case config.MissingPolicyFail:
						add(SeverityError, p, e, "unresolved reference to %s", r.TargetName())
					}
				}
				if opts.SingularWarns && r.Matrix().IsSingular() {
					add(SeverityWarning, p, e, "singular transformation matrix")
				}
			}
			if c, ok := e.(coloured); ok && opts.Palette != nil {
				if entry := opts.Palette.Resolve(e, c.Colour()); entry.Source == palette.SourceUnknown {
					add(SeverityWarning, p, e, "unknown colour %s", c.Colour())
				}
			}
		}
	}
	return issues
}
