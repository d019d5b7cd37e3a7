package dom

import (
	"testing"

	"ldtools/common"
)

func TestWinding(t *testing.T) {
	tests := []struct {
		name     string
		declared common.CullingMode
		before   []BFCCommand
		want     common.CullingMode
	}{
		{name: "not certified", declared: common.CullingModeNotset, want: common.CullingModeNotset},
		{name: "declared ccw", declared: common.CullingModeCcw, want: common.CullingModeCcw},
		{name: "declared cw", declared: common.CullingModeCw, want: common.CullingModeCw},
		{name: "switch to cw", declared: common.CullingModeCcw, before: []BFCCommand{BFCCW}, want: common.CullingModeCw},
		{name: "noclip", declared: common.CullingModeCcw, before: []BFCCommand{BFCNoClip}, want: common.CullingModeDisabled},
		{name: "noclip then clip", declared: common.CullingModeCw, before: []BFCCommand{BFCNoClip, BFCClip}, want: common.CullingModeCw},
		{name: "uncertified clip cw", declared: common.CullingModeNotset, before: []BFCCommand{BFCClipCW}, want: common.CullingModeCw},
		{name: "uncertified winding only", declared: common.CullingModeNotset, before: []BFCCommand{BFCCW}, want: common.CullingModeDisabled},
		{name: "disabled page ignores commands", declared: common.CullingModeDisabled, before: []BFCCommand{BFCClipCCW}, want: common.CullingModeDisabled},
		{name: "invertnext is not state", declared: common.CullingModeCcw, before: []BFCCommand{BFCInvertNext}, want: common.CullingModeCcw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage("p.dat")
			if err := p.SetBFC(tt.declared); err != nil {
				t.Fatal(err)
			}
			for _, c := range tt.before {
				mustAdd(t, p.StepAt(0), NewBFCFlag(c))
			}
			tri := NewTriangle(MainColour, Vector3{}, Vector3{X: 1}, Vector3{Y: 1})
			mustAdd(t, p.StepAt(0), tri)
			// commands after the element must not matter
			mustAdd(t, p.StepAt(0), NewBFCFlag(BFCNoClip))
			if got := Winding(tri); got != tt.want {
				t.Errorf("Winding() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWindingAcrossStepsAndTexmaps(t *testing.T) {
	p := NewPage("p.dat")
	if err := p.SetBFC(common.CullingModeCcw); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, p.StepAt(0), NewBFCFlag(BFCCW))
	s2 := NewStep()
	if err := p.AddStep(s2); err != nil {
		t.Fatal(err)
	}
	first := newEdge()
	mustAdd(t, s2, first)
	if got := Winding(first); got != common.CullingModeCw {
		t.Fatalf("state of previous step ignored: %s", got)
	}

	tm := NewTexmap(Planar, [3]Vector3{}, nil, "logo.png")
	mustAdd(t, s2, NewBFCFlag(BFCCCW), tm)
	mustAdd(t, tm.Shared(), NewBFCFlag(BFCNoClip))
	inner := newEdge()
	mustAdd(t, tm.Shared(), inner)
	mustAdd(t, tm.Fallback(), NewBFCFlag(BFCClipCW))

	if got := Winding(inner); got != common.CullingModeDisabled {
		t.Errorf("Winding(inner) = %s, want disabled", got)
	}
	if got := Winding(tm); got != common.CullingModeCcw {
		t.Errorf("Winding(texmap) = %s, want ccw", got)
	}

	var seen []Element
	for e := range Preceding(inner) {
		seen = append(seen, e)
	}
	if len(seen) != 4 {
		t.Errorf("Preceding() visited %d elements, want 4", len(seen))
	}

	if got := Winding(newEdge()); got != common.CullingModeNotset {
		t.Errorf("detached element winding = %s", got)
	}
}
