package dom

import (
	"errors"
	"testing"
)

func checkSymmetry(t *testing.T, collections []ElementCollection, elements []Element) {
	t.Helper()
	for _, e := range elements {
		for _, c := range collections {
			if (e.Parent() == c) != c.Contains(e) {
				t.Fatalf("parent/membership mismatch for %s: parent=%v contains=%t", e.Kind(), e.Parent() == c, c.Contains(e))
			}
		}
	}
}

func TestMembershipSymmetry(t *testing.T) {
	s1, s2 := NewStep(), NewStep()
	a, b, c := newEdge(), NewComment("x", true), newRef("3001.dat")
	all := []Element{a, b, c}
	cols := []ElementCollection{s1, s2}

	mustAdd(t, s1, a, b)
	checkSymmetry(t, cols, all)

	if err := s1.Insert(0, c); err != nil {
		t.Fatal(err)
	}
	checkSymmetry(t, cols, all)
	if s1.At(0) != Element(c) || s1.IndexOf(a) != 1 {
		t.Fatalf("unexpected order %v", s1.Elements())
	}

	if err := s1.Remove(a); err != nil {
		t.Fatal(err)
	}
	checkSymmetry(t, cols, all)

	if err := s1.Replace(b, a); err != nil {
		t.Fatal(err)
	}
	checkSymmetry(t, cols, all)
	if b.Parent() != nil || s1.IndexOf(a) != 1 {
		t.Fatal("replace did not swap elements")
	}

	if err := a.SetParent(nil); err != nil {
		t.Fatal(err)
	}
	if err := a.SetParent(s2); err != nil {
		t.Fatal(err)
	}
	checkSymmetry(t, cols, all)

	if err := s1.Clear(); err != nil {
		t.Fatal(err)
	}
	checkSymmetry(t, cols, all)
	if s1.Len() != 0 {
		t.Fatalf("Len() = %d after Clear", s1.Len())
	}
}

func TestAlreadyMember(t *testing.T) {
	s1, s2 := NewStep(), NewStep()
	l := newEdge()
	mustAdd(t, s1, l)

	err := s2.Add(l)
	wantVerdict(t, err, AlreadyMember)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("error %v does not unwrap to ErrAlreadyMember", err)
	}
	if v, err := s2.CanInsert(l, IgnoreCurrentParent); err != nil || v != CanInsert {
		t.Errorf("CanInsert(IgnoreCurrentParent) = %s, %v", v, err)
	}

	if err := l.SetParent(s1); err != nil {
		t.Errorf("SetParent(same) error = %v", err)
	}
	if err := l.SetParent(s2); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("SetParent(other) error = %v, want ErrAlreadyMember", err)
	}
}

func TestTopLevelNotAllowed(t *testing.T) {
	tm := NewTexmap(Planar, [3]Vector3{}, nil, "logo.png")
	geo := tm.Shared()
	if geo.AllowsTopLevelElements() {
		t.Fatal("geometry accepts top-level elements")
	}

	for _, e := range []Element{NewGroup("g"), NewColourDefinition(ColourSpec{Name: "c", Code: 400, Alpha: -1, Luminance: -1}), NewTexmap(Planar, [3]Vector3{}, nil, "x.png")} {
		wantVerdict(t, geo.Add(e), TopLevelNotAllowed)
		if e.Parent() != nil {
			t.Fatalf("refused %s got a parent", e.Kind())
		}
	}
	mustAdd(t, geo, newEdge())

	s := NewStep()
	mustAdd(t, s, NewGroup("g"), tm)
}

func TestInsertIntoOwnGeometry(t *testing.T) {
	tm := NewTexmap(Planar, [3]Vector3{}, nil, "logo.png")
	v, err := tm.Textured().CanInsert(tm, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v == CanInsert {
		t.Fatal("texmap accepted into its own geometry")
	}
}

func TestTexmapNextCapacity(t *testing.T) {
	tm := NewTexmap(Cylindrical, [3]Vector3{}, []float64{90}, "wrap.png")
	if err := tm.SetNext(true); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, tm.Shared(), newEdge())
	wantVerdict(t, tm.Shared().Add(newEdge()), NotSupported)
	wantVerdict(t, tm.Fallback().Add(newEdge()), NotSupported)
}

func TestClearIsAtomic(t *testing.T) {
	s := NewStep()
	a, b := newEdge(), newEdge()
	mustAdd(t, s, a, b)
	if err := b.SetLocked(true); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); !errors.Is(err, ErrLocked) {
		t.Fatalf("Clear() error = %v, want ErrLocked", err)
	}
	if s.Len() != 2 || a.Parent() == nil {
		t.Fatal("failed Clear removed elements")
	}
}

func TestCollectionPreconditions(t *testing.T) {
	s := NewStep()
	l := newEdge()
	if err := s.Insert(1, l); !errors.Is(err, ErrInvalid) {
		t.Errorf("Insert(out of range) error = %v", err)
	}
	if err := s.Add(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Add(nil) error = %v", err)
	}
	if err := s.Remove(l); !errors.Is(err, ErrNotMember) {
		t.Errorf("Remove(non-member) error = %v", err)
	}
	if err := s.Replace(l, newEdge()); !errors.Is(err, ErrNotMember) {
		t.Errorf("Replace(non-member) error = %v", err)
	}
	if _, err := s.CanReplace(newEdge(), l, 0); !errors.Is(err, ErrNotMember) {
		t.Errorf("CanReplace(non-member) error = %v", err)
	}
}

func TestPageSteps(t *testing.T) {
	d := NewDocument("m.ldr")
	p := newTestPage(t, d, "m.ldr")
	if p.StepCount() != 1 {
		t.Fatalf("new page has %d steps", p.StepCount())
	}
	s := NewStep()
	if err := p.AddStep(s); err != nil {
		t.Fatal(err)
	}
	if s.Page() != p || s.Document() != d || p.IndexOfStep(s) != 1 {
		t.Fatal("step not attached")
	}
	wantVerdict(t, NewPage("other").AddStep(s), AlreadyMember)

	if err := s.SetLocked(true); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveStep(s); !errors.Is(err, ErrLocked) {
		t.Fatalf("RemoveStep(locked) error = %v", err)
	}
	if err := s.SetLocked(false); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveStep(s); err != nil {
		t.Fatal(err)
	}
	if s.Page() != nil || p.ContainsStep(s) {
		t.Fatal("step still attached")
	}
}

func TestDocumentPages(t *testing.T) {
	d := NewDocument("m.mpd")
	a := newTestPage(t, d, "main.ldr")
	wantVerdict(t, d.AddPage(NewPage("MAIN.LDR")), DuplicateName)
	if d.Page("Main.ldr") != a {
		t.Fatal("page lookup must ignore case")
	}
	b := NewPage("sub.ldr")
	if err := d.ReplacePage(a, b); err != nil {
		t.Fatal(err)
	}
	if a.Document() != nil || b.Document() != d || d.PageCount() != 1 {
		t.Fatal("ReplacePage did not swap pages")
	}
	if err := d.RemovePage(a); !errors.Is(err, ErrNotMember) {
		t.Fatalf("RemovePage(non-member) error = %v", err)
	}
}

func TestReadOnlyDocument(t *testing.T) {
	d := NewDocument("lib.dat")
	p := newTestPage(t, d, "lib.dat")
	if err := d.SetReadOnly(true); err != nil {
		t.Fatal(err)
	}
	if err := p.StepAt(0).Add(newEdge()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Add() error = %v, want ErrUnsupported", err)
	}
	if err := d.AddPage(NewPage("x.dat")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("AddPage() error = %v, want ErrUnsupported", err)
	}
}
