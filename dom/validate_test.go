package dom

import (
	"errors"
	"testing"
)

func TestCircularReferenceTwoPages(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	b := newTestPage(t, d, "B")

	mustAdd(t, a.StepAt(0), newRef("B"))

	back := newRef("a")
	err := b.StepAt(0).Add(back)
	wantVerdict(t, err, CircularReference)
	if !errors.Is(err, ErrCircularReference) {
		t.Fatalf("error %v does not unwrap to ErrCircularReference", err)
	}
	if back.Parent() != nil || b.StepAt(0).Len() != 0 {
		t.Fatal("refused reference was inserted")
	}
}

func TestCircularReferenceSelf(t *testing.T) {
	d := NewDocument("model.ldr")
	p := newTestPage(t, d, "model.ldr")
	wantVerdict(t, p.StepAt(0).Add(newRef(`MODEL.LDR`)), CircularReference)

	// detached page has no document, name still counts
	q := NewPage("sub.ldr")
	wantVerdict(t, q.StepAt(0).Add(newRef("sub.ldr")), CircularReference)
}

func TestCircularReferenceThroughTexmap(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "a.ldr")
	b := newTestPage(t, d, "b.ldr")
	mustAdd(t, a.StepAt(0), newRef("b.ldr"))

	tm := NewTexmap(Planar, [3]Vector3{}, nil, "logo.png")
	mustAdd(t, tm.Textured(), newRef("a.ldr"))
	wantVerdict(t, b.StepAt(0).Add(tm), CircularReference)

	tm2 := NewTexmap(Planar, [3]Vector3{}, nil, "logo.png")
	mustAdd(t, b.StepAt(0), tm2)
	wantVerdict(t, tm2.Fallback().Add(newRef("a.ldr")), CircularReference)
}

func TestCircularReferenceAcrossDocuments(t *testing.T) {
	top := NewDocument("top.ldr")
	mid := NewDocument("mid.ldr")
	deep := NewDocument("deep.ldr")

	topPage := newTestPage(t, top, "top.ldr")
	midPage := newTestPage(t, mid, "mid.ldr")
	deepPage := newTestPage(t, deep, "deep.ldr")

	r := resolverOf(top, mid, deep)
	for _, d := range []*Document{top, mid, deep} {
		d.SetResolver(r)
	}

	mustAdd(t, midPage.StepAt(0), newRef("deep.ldr"))
	mustAdd(t, deepPage.StepAt(0), newRef("top.ldr"))

	wantVerdict(t, topPage.StepAt(0).Add(newRef("mid.ldr")), CircularReference)

	t.Run("library documents are trusted", func(t *testing.T) {
		if err := deep.SetLibrary(true); err != nil {
			t.Fatal(err)
		}
		defer deep.SetLibrary(false)
		mustAdd(t, topPage.StepAt(0), newRef("mid.ldr"))
	})
}

func TestVisitedSetStopsOnForeignCycle(t *testing.T) {
	d := NewDocument("model.mpd")
	x := newTestPage(t, d, "x.ldr")
	y := newTestPage(t, d, "y.ldr")
	// x and y were produced by a lenient parser and refer to each other;
	// search from an unrelated page must terminate.
	x.StepAt(0).append(newRef("y.ldr"))
	y.StepAt(0).append(newRef("x.ldr"))

	p := newTestPage(t, d, "main.ldr")
	mustAdd(t, p.StepAt(0), newRef("x.ldr"))
}

func TestUnresolvedReferenceIsAccepted(t *testing.T) {
	d := NewDocument("model.ldr")
	p := newTestPage(t, d, "model.ldr")
	r := newRef("missing.dat")
	mustAdd(t, p.StepAt(0), r)
	if r.Target() != nil || r.TargetStatus() != TargetMissing {
		t.Fatalf("status = %s", r.TargetStatus())
	}
	if newRef("x.dat").TargetStatus() != TargetUnresolved {
		t.Fatal("detached reference must be unresolved")
	}
}

func TestPageInsertionCycle(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	mustAdd(t, a.StepAt(0), newRef("B"))

	b := NewPage("B")
	b.StepAt(0).append(newRef("A"))
	v, err := d.CanInsertPage(b, 0)
	if err != nil || v != CircularReference {
		t.Fatalf("CanInsertPage() = %s, %v", v, err)
	}

	c := NewPage("C")
	c.StepAt(0).append(newRef("A"))
	if err := d.AddPage(c); err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
}

func TestPageReplaceCycle(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	old := newTestPage(t, d, "B")
	mustAdd(t, a.StepAt(0), newRef("B"))

	// references to the replaced page resolve to the replacement
	repl := NewPage("b")
	repl.StepAt(0).append(newRef("A"))
	wantVerdict(t, d.ReplacePage(old, repl), CircularReference)
	if old.Document() != d {
		t.Fatal("refused replacement detached the old page")
	}

	ok := NewPage("B")
	ok.StepAt(0).append(newRef("other.dat"))
	if err := d.ReplacePage(old, ok); err != nil {
		t.Fatal(err)
	}
}

func TestPageReplaceRenamed(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	old := newTestPage(t, d, "B")
	mustAdd(t, a.StepAt(0), newRef("B"))

	// after the swap "B" names nothing, so C referencing A closes no loop
	c := NewPage("C")
	c.StepAt(0).append(newRef("A"))
	v, err := CanReplacePage(d, c, old, 0)
	if err != nil || v != CanInsert {
		t.Fatalf("CanReplacePage() = %v, %v, want CanInsert", v, err)
	}
	if err := d.ReplacePage(old, c); err != nil {
		t.Fatalf("ReplacePage() error = %v", err)
	}
	if d.Page("B") != nil || d.Page("C") != c || old.Document() != nil {
		t.Fatal("ReplacePage did not swap pages")
	}

	// C -> A -> C
	wantVerdict(t, a.StepAt(0).Add(newRef("C")), CircularReference)
}

func TestReplaceStepChecksOtherSteps(t *testing.T) {
	p := NewPage("m.ldr")
	s1 := p.StepAt(0)
	s2 := NewStep()
	mustAdd(t, s1, NewGroup("G"))
	mustAdd(t, s2, NewGroup("H"))
	if err := p.AddStep(s2); err != nil {
		t.Fatal(err)
	}

	withG := NewStep()
	mustAdd(t, withG, NewGroup("g"))
	if v, err := p.CanReplaceStep(withG, s1, 0); err != nil || v != CanInsert {
		t.Fatalf("replacing the step holding the group = %s, %v", v, err)
	}
	if v, err := p.CanReplaceStep(withG, s2, 0); err != nil || v != DuplicateName {
		t.Fatalf("replacing other step = %s, %v", v, err)
	}
	wantVerdict(t, p.AddStep(withG), DuplicateName)

	cyc := NewStep()
	cyc.append(newRef("M.LDR"))
	wantVerdict(t, p.ReplaceStep(s2, cyc), CircularReference)
}

func TestGroupNamesUnique(t *testing.T) {
	p := NewPage("m.ldr")
	s2 := NewStep()
	if err := p.AddStep(s2); err != nil {
		t.Fatal(err)
	}
	g := NewGroup("Wheels")
	mustAdd(t, p.StepAt(0), g)
	wantVerdict(t, s2.Add(NewGroup("wheels")), DuplicateName)

	h := NewGroup("Doors")
	mustAdd(t, s2, h)
	if err := h.SetName("WHEELS"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("SetName() error = %v", err)
	}
	if v, err := s2.CanReplace(NewGroup("Doors"), h, 0); err != nil || v != CanInsert {
		t.Fatalf("replacing group with same name = %s, %v", v, err)
	}
}

func TestDirectColourDefinition(t *testing.T) {
	s := NewStep()
	cd := NewColourDefinition(ColourSpec{Name: "Direct", Code: DirectColour(1, 2, 3), Alpha: -1, Luminance: -1})
	wantVerdict(t, s.Add(cd), NotSupported)

	ok := NewColourDefinition(ColourSpec{Name: "Custom", Code: 400, Alpha: -1, Luminance: -1})
	mustAdd(t, s, ok)
	if err := ok.SetSpec(ColourSpec{Code: DirectColour(0, 0, 0)}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("SetSpec(direct) error = %v", err)
	}
}

func TestRetargetingChecksCycles(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	b := newTestPage(t, d, "B")
	c := newTestPage(t, d, "C")
	mustAdd(t, a.StepAt(0), newRef("B"))
	r := newRef("C")
	mustAdd(t, b.StepAt(0), r)

	if err := r.SetTargetName("a"); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("SetTargetName() error = %v", err)
	}
	if r.Target() != c {
		t.Fatal("refused retarget changed the reference")
	}
}

func TestRenamePageChecksCycles(t *testing.T) {
	d := NewDocument("model.mpd")
	a := newTestPage(t, d, "A")
	b := newTestPage(t, d, "B")
	mustAdd(t, a.StepAt(0), newRef("X"))
	mustAdd(t, b.StepAt(0), newRef("A"))

	if err := b.SetName("x"); !errors.Is(err, ErrCircularReference) {
		t.Fatalf("SetName() error = %v", err)
	}
	if err := b.SetName("a"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("SetName(duplicate) error = %v", err)
	}
	if err := b.SetName("Y"); err != nil {
		t.Fatal(err)
	}
}
