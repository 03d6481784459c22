package tree

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{"full name", Person{ID: "x", GivenName: "Ada", FamilyName: "Lovelace"}, "Ada Lovelace"},
		{"given only", Person{ID: "x", GivenName: "Ada"}, "Ada"},
		{"family only", Person{ID: "x", FamilyName: "Lovelace"}, "Lovelace"},
		{"id fallback", Person{ID: "x"}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.person.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	snap := NewSnapshot(
		[]Person{
			{ID: "a", GivenName: "first"},
			{ID: ""}, // dropped
			{ID: "a", GivenName: "second"}, // later duplicate wins
			{ID: "b"},
		},
		[]Relationship{married("a", "b")},
	)

	if snap.PersonCount() != 2 {
		t.Errorf("PersonCount() = %d, want 2", snap.PersonCount())
	}
	a, ok := snap.Person("a")
	if !ok {
		t.Fatal("person a missing")
	}
	if a.GivenName != "second" {
		t.Errorf("duplicate resolution kept %q, want later record", a.GivenName)
	}
	if snap.Has("") {
		t.Error("empty id should have been dropped")
	}
	if snap.RelationshipCount() != 1 {
		t.Errorf("RelationshipCount() = %d, want 1", snap.RelationshipCount())
	}
}
