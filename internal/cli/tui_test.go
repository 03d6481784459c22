package cli

import (
	"testing"

	"github.com/kintreehq/kintree/pkg/layout"
)

func TestGroupRows(t *testing.T) {
	d := layout.Diagram{
		Nodes: []layout.Node{
			{ID: "child", X: 0, Y: 200},
			{ID: "mom", X: -90, Y: -200},
			{ID: "dad", X: 90, Y: -200},
			{ID: "focal", X: 0, Y: 0},
		},
	}

	rows := groupRows(d)
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3", len(rows))
	}

	// Top row first, left to right within a row.
	if rows[0][0].ID != "mom" || rows[0][1].ID != "dad" {
		t.Errorf("top row = [%s %s], want [mom dad]", rows[0][0].ID, rows[0][1].ID)
	}
	if rows[1][0].ID != "focal" {
		t.Errorf("middle row = %s, want focal", rows[1][0].ID)
	}
	if rows[2][0].ID != "child" {
		t.Errorf("bottom row = %s, want child", rows[2][0].ID)
	}
}

func TestGroupRowsTolerance(t *testing.T) {
	d := layout.Diagram{
		Nodes: []layout.Node{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 100, Y: 0.2}, // same row despite jitter
		},
	}

	rows := groupRows(d)
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1", len(rows))
	}
	if len(rows[0]) != 2 {
		t.Errorf("row size = %d, want 2", len(rows[0]))
	}
}

func TestMoveCursorTo(t *testing.T) {
	m := TreeModel{
		rows: [][]layout.Node{
			{{ID: "mom"}, {ID: "dad"}},
			{{ID: "focal"}},
		},
	}

	m.moveCursorTo("dad")
	if m.cursorR != 0 || m.cursorC != 1 {
		t.Errorf("cursor = (%d, %d), want (0, 1)", m.cursorR, m.cursorC)
	}

	m.moveCursorTo("nobody")
	if m.cursorR != 0 || m.cursorC != 0 {
		t.Errorf("cursor = (%d, %d), want (0, 0) fallback", m.cursorR, m.cursorC)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		node layout.Node
		want string
	}{
		{layout.Node{ID: "p1", GivenName: "Ada", FamilyName: "Lovelace"}, "Ada Lovelace"},
		{layout.Node{ID: "p2", GivenName: "Ada"}, "Ada"},
		{layout.Node{ID: "p3"}, "p3"},
	}
	for _, tt := range tests {
		if got := displayName(tt.node); got != tt.want {
			t.Errorf("displayName(%s) = %q, want %q", tt.node.ID, got, tt.want)
		}
	}
}
