package tree

import (
	"reflect"
	"testing"
	"time"

	"github.com/kintreehq/kintree/pkg/errors"
)

// =============================================================================
// Fixture helpers
// =============================================================================

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func personBorn(id string, birth *time.Time) Person {
	return Person{ID: id, BirthDate: birth}
}

func childOf(child, parent string) Relationship {
	return Relationship{Kind: KindParent, From: child, To: parent, Active: true}
}

func married(a, b string) Relationship {
	return Relationship{Kind: KindSpouse, From: a, To: b, Active: true}
}

func divorced(a, b string, on *time.Time) Relationship {
	return Relationship{Kind: KindSpouse, From: a, To: b, DivorceDate: on, Active: false}
}

// coupleWithChild is the smallest interesting snapshot: r and s married,
// c their child.
func coupleWithChild() *Snapshot {
	return NewSnapshot(
		[]Person{
			personBorn("r", date(1980, time.March, 1)),
			personBorn("s", date(1982, time.July, 12)),
			personBorn("c", date(2005, time.January, 30)),
		},
		[]Relationship{
			married("r", "s"),
			childOf("c", "r"),
			childOf("c", "s"),
		},
	)
}

// =============================================================================
// Layout
// =============================================================================

func TestLayoutFullCoupleWithChild(t *testing.T) {
	snap := coupleWithChild()
	d, err := Layout(snap, Request{FocalID: "r", Mode: ModeFull}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	r, _ := d.Node("r")
	s, _ := d.Node("s")
	c, _ := d.Node("c")

	// Spouses share the focal row, the child sits one row below.
	if r.Y != s.Y {
		t.Errorf("spouse rows differ: r.Y = %v, s.Y = %v", r.Y, s.Y)
	}
	if want := r.Y + DefaultSpacing().VerticalSpacing; c.Y != want {
		t.Errorf("c.Y = %v, want %v", c.Y, want)
	}

	// r was encountered first in the birth-sorted scan, so it is the
	// couple's primary and sits left of s.
	if r.X >= s.X {
		t.Errorf("r.X = %v should be left of s.X = %v", r.X, s.X)
	}

	// The child is centered under the couple's midpoint.
	if mid := (r.X + s.X) / 2; c.X != mid {
		t.Errorf("c.X = %v, want midpoint %v", c.X, mid)
	}
}

func TestLayoutMissingFocal(t *testing.T) {
	snap := coupleWithChild()
	_, err := Layout(snap, Request{FocalID: "nobody"}, DefaultSpacing())
	if err == nil {
		t.Fatal("expected error for unknown focal id")
	}
	if code := errors.GetCode(err); code != errors.ErrCodePersonNotFound {
		t.Errorf("code = %v, want %v", code, errors.ErrCodePersonNotFound)
	}
}

func TestLayoutInvalidRequest(t *testing.T) {
	snap := coupleWithChild()

	if _, err := Layout(snap, Request{FocalID: "r", Mode: "sideways"}, DefaultSpacing()); err == nil {
		t.Error("expected error for unknown mode")
	} else if code := errors.GetCode(err); code != errors.ErrCodeInvalidRequest {
		t.Errorf("mode error code = %v, want %v", code, errors.ErrCodeInvalidRequest)
	}

	if _, err := Layout(snap, Request{FocalID: "r", GenerationDepth: -1}, DefaultSpacing()); err == nil {
		t.Error("expected error for negative generation depth")
	}
}

func TestLayoutDefaultsToFocused(t *testing.T) {
	snap := coupleWithChild()
	d, err := Layout(snap, Request{FocalID: "r"}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	r, ok := d.Node("r")
	if !ok {
		t.Fatal("focal node missing from output")
	}
	if !r.Focal {
		t.Error("focal node not flagged")
	}
	// Focused view anchors the focal person at the origin.
	if r.X != 0 || r.Y != 0 {
		t.Errorf("focal position = (%v, %v), want origin", r.X, r.Y)
	}
}

func TestLayoutViewportCentersOnFocal(t *testing.T) {
	snap := coupleWithChild()
	d, err := Layout(snap, Request{FocalID: "s", Mode: ModeFull}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	s, _ := d.Node("s")
	if d.Viewport.CenterX != s.X || d.Viewport.CenterY != s.Y {
		t.Errorf("viewport = (%v, %v), want focal position (%v, %v)",
			d.Viewport.CenterX, d.Viewport.CenterY, s.X, s.Y)
	}
	if d.Viewport.Zoom != DefaultZoom {
		t.Errorf("zoom = %v, want %v", d.Viewport.Zoom, DefaultZoom)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	snap := NewSnapshot(
		[]Person{
			personBorn("f", date(1975, time.May, 5)),
			personBorn("w", date(1977, time.June, 6)),
			personBorn("a", date(2000, time.April, 4)),
			personBorn("b", nil),
			personBorn("gp", date(1950, time.February, 2)),
		},
		[]Relationship{
			married("f", "w"),
			childOf("a", "f"),
			childOf("a", "w"),
			childOf("b", "f"),
			childOf("f", "gp"),
		},
	)
	req := Request{FocalID: "f", Mode: ModeFocused, ExpandedIDs: []string{"a", "gp"}}

	first, err := Layout(snap, req, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	second, err := Layout(snap, req, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs with identical inputs produced different diagrams")
	}
}

func TestLayoutGenerationInvariant(t *testing.T) {
	// Three generations plus a cousin line: every visible parent-child pair
	// must sit exactly one row apart.
	snap := NewSnapshot(
		[]Person{
			personBorn("gp1", date(1950, time.January, 1)),
			personBorn("gp2", date(1952, time.January, 1)),
			personBorn("f", date(1975, time.January, 1)),
			personBorn("uncle", date(1978, time.January, 1)),
			personBorn("kid", date(2002, time.January, 1)),
			personBorn("cousin", date(2004, time.January, 1)),
		},
		[]Relationship{
			married("gp1", "gp2"),
			childOf("f", "gp1"),
			childOf("f", "gp2"),
			childOf("uncle", "gp1"),
			childOf("uncle", "gp2"),
			childOf("kid", "f"),
			childOf("cousin", "uncle"),
		},
	)

	d, err := Layout(snap, Request{FocalID: "f", Mode: ModeFull}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	vs := DefaultSpacing().VerticalSpacing
	for _, r := range snap.Relationships() {
		if r.Kind != KindParent {
			continue
		}
		child, okC := d.Node(r.From)
		parent, okP := d.Node(r.To)
		if !okC || !okP {
			continue
		}
		if got := child.Y - parent.Y; got != vs {
			t.Errorf("child %s row offset from parent %s = %v, want %v", r.From, r.To, got, vs)
		}
	}
}

func TestLayoutNonOverlapWithinRow(t *testing.T) {
	snap := NewSnapshot(
		[]Person{
			personBorn("f", date(1975, time.January, 1)),
			personBorn("w", date(1976, time.January, 1)),
			personBorn("ex", date(1974, time.January, 1)),
			personBorn("c1", date(2000, time.January, 1)),
			personBorn("c2", date(2002, time.January, 1)),
			personBorn("c3", date(2004, time.January, 1)),
			personBorn("p1", date(1950, time.January, 1)),
			personBorn("p2", date(1951, time.January, 1)),
		},
		[]Relationship{
			married("f", "w"),
			divorced("f", "ex", date(1999, time.January, 1)),
			childOf("c1", "f"),
			childOf("c2", "f"),
			childOf("c2", "w"),
			childOf("c3", "ex"),
			childOf("f", "p1"),
			childOf("f", "p2"),
			married("p1", "p2"),
		},
	)

	for _, mode := range []ViewMode{ModeFocused, ModeFull} {
		d, err := Layout(snap, Request{FocalID: "f", Mode: mode}, DefaultSpacing())
		if err != nil {
			t.Fatalf("Layout(%s) error: %v", mode, err)
		}
		for i, a := range d.Nodes {
			for _, b := range d.Nodes[i+1:] {
				if a.Y == b.Y && a.X == b.X {
					t.Errorf("%s view: %s and %s share position (%v, %v)",
						mode, a.Person.ID, b.Person.ID, a.X, a.Y)
				}
			}
		}
	}
}

func TestLayoutSkipsUnknownRelatives(t *testing.T) {
	// A recorded parent with no person record must not crash or produce a
	// ghost node.
	snap := NewSnapshot(
		[]Person{personBorn("f", nil)},
		[]Relationship{childOf("f", "ghost"), married("f", "phantom")},
	)

	d, err := Layout(snap, Request{FocalID: "f", Mode: ModeFocused}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(d.Nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(d.Nodes))
	}
	if _, ok := d.Node("ghost"); ok {
		t.Error("ghost parent produced a node")
	}

	// The missing relatives still register as hidden.
	f, _ := d.Node("f")
	if !f.Hidden.Parents {
		t.Error("hidden parents flag not set for unresolved parent")
	}
	if !f.Hidden.Spouses {
		t.Error("hidden spouses flag not set for unresolved spouse")
	}
}

func TestLayoutCyclicDataTerminates(t *testing.T) {
	// Corrupt data: a and b are each other's parents. The visited guard must
	// bound the walk.
	snap := NewSnapshot(
		[]Person{personBorn("a", nil), personBorn("b", nil)},
		[]Relationship{childOf("a", "b"), childOf("b", "a")},
	)

	d, err := Layout(snap, Request{FocalID: "a", Mode: ModeFull}, DefaultSpacing())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(d.Nodes) != 2 {
		t.Errorf("node count = %d, want 2", len(d.Nodes))
	}
}
