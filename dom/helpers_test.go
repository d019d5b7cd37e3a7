package dom

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestPage(t *testing.T, d *Document, name string) *Page {
	t.Helper()
	p := NewPage(name)
	if err := d.AddPage(p); err != nil {
		t.Fatalf("AddPage(%q) error = %v", name, err)
	}
	return p
}

func newRef(target string) *Reference {
	return NewReference(MainColour, Identity(), target)
}

func newEdge() *Line {
	return NewLine(EdgeColour, Vector3{}, Vector3{1, 1, 1})
}

func mustAdd(t *testing.T, c ElementCollection, elements ...Element) {
	t.Helper()
	for _, e := range elements {
		if err := c.Add(e); err != nil {
			t.Fatalf("Add(%s) error = %v", e.Kind(), err)
		}
	}
}

func wantVerdict(t *testing.T, err error, want Verdict) {
	t.Helper()
	var ve *VerdictError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want verdict %s", err, want)
	}
	if ve.Verdict != want {
		t.Fatalf("verdict = %s, want %s", ve.Verdict, want)
	}
}

func mustParseDocument(t *testing.T, name, code string) *Document {
	t.Helper()
	d, err := ParseDocument(strings.NewReader(code), name, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return d
}

// resolverOf resolves names across the given documents.
func resolverOf(docs ...*Document) Resolver {
	return ResolverFunc(func(name string) *Page {
		for _, d := range docs {
			if p := d.Page(name); p != nil {
				return p
			}
		}
		return nil
	})
}
