package family

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kintreehq/kintree/pkg/errors"
)

const sampleJSON = `{
  "persons": [
    {"id": "ada", "given_name": "Ada", "family_name": "Byrne", "gender": "female", "birth_date": "1950-03-14"},
    {"id": "alan", "given_name": "Alan", "family_name": "Byrne", "gender": "male", "birth_date": "1948-07-01"},
    {"id": "kid", "given_name": "Kim", "birth_date": "1975-11-02", "living": true}
  ],
  "relationships": [
    {"kind": "spouse", "from": "ada", "to": "alan", "married_on": "1972-05-20"},
    {"kind": "parent", "from": "kid", "to": "ada"},
    {"kind": "parent", "from": "kid", "to": "alan"}
  ]
}`

func TestReadSnapshot(t *testing.T) {
	snap, err := ReadSnapshot(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadSnapshot() error: %v", err)
	}

	if snap.PersonCount() != 3 {
		t.Errorf("PersonCount() = %d, want 3", snap.PersonCount())
	}
	if snap.RelationshipCount() != 3 {
		t.Errorf("RelationshipCount() = %d, want 3", snap.RelationshipCount())
	}

	ada, ok := snap.Person("ada")
	if !ok {
		t.Fatal("person ada missing")
	}
	if ada.BirthDate == nil || ada.BirthDate.Format(DateLayout) != "1950-03-14" {
		t.Errorf("ada birth date = %v, want 1950-03-14", ada.BirthDate)
	}
	if string(ada.Gender) != "female" {
		t.Errorf("ada gender = %q, want female", ada.Gender)
	}
}

func TestRoundTrip(t *testing.T) {
	snap, err := ReadSnapshot(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadSnapshot() error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(snap, &buf); err != nil {
		t.Fatalf("WriteSnapshot() error: %v", err)
	}

	again, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("re-read error: %v", err)
	}
	if again.PersonCount() != snap.PersonCount() {
		t.Errorf("person count changed across round trip: %d vs %d",
			again.PersonCount(), snap.PersonCount())
	}

	first, _ := MarshalSnapshot(snap)
	second, _ := MarshalSnapshot(again)
	if !bytes.Equal(first, second) {
		t.Error("round trip is not byte-stable")
	}
}

func TestReadSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	snap, err := ReadSnapshot(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadSnapshot() error: %v", err)
	}
	if err := WriteSnapshotFile(snap, path); err != nil {
		t.Fatalf("WriteSnapshotFile() error: %v", err)
	}

	again, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("ReadSnapshotFile() error: %v", err)
	}
	if again.PersonCount() != 3 {
		t.Errorf("PersonCount() = %d, want 3", again.PersonCount())
	}
}

func TestReadSnapshotFileMissing(t *testing.T) {
	_, err := ReadSnapshotFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadSnapshotFileBadPath(t *testing.T) {
	for _, path := range []string{"", "fam\x00ily.json"} {
		_, err := ReadSnapshotFile(path)
		if err == nil {
			t.Fatalf("ReadSnapshotFile(%q) = nil, want error", path)
		}
		if errors.GetCode(err) != errors.ErrCodeInvalidRequest {
			t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidRequest)
		}
	}
}

func TestToSnapshotValidation(t *testing.T) {
	tests := []struct {
		name   string
		family Family
	}{
		{"empty person id", Family{Persons: []Person{{ID: ""}}}},
		{"duplicate person id", Family{Persons: []Person{{ID: "a"}, {ID: "a"}}}},
		{"bad birth date", Family{Persons: []Person{{ID: "a", BirthDate: "not-a-date"}}}},
		{"missing endpoint", Family{
			Persons:       []Person{{ID: "a"}},
			Relationships: []Relationship{{Kind: "spouse", From: "a", To: ""}},
		}},
		{"bad divorce date", Family{
			Persons:       []Person{{ID: "a"}, {ID: "b"}},
			Relationships: []Relationship{{Kind: "spouse", From: "a", To: "b", DivorcedOn: "never"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToSnapshot(tt.family)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidSnapshot {
				t.Errorf("code = %v, want %v", code, errors.ErrCodeInvalidSnapshot)
			}
		})
	}
}

func TestToSnapshotSkipsUnknownKinds(t *testing.T) {
	f := Family{
		Persons: []Person{{ID: "a"}, {ID: "b"}},
		Relationships: []Relationship{
			{Kind: "godparent", From: "a", To: "b"},
			{Kind: "spouse", From: "a", To: "b"},
		},
	}
	snap, err := ToSnapshot(f)
	if err != nil {
		t.Fatalf("ToSnapshot() error: %v", err)
	}
	if snap.RelationshipCount() != 1 {
		t.Errorf("RelationshipCount() = %d, want 1 (unknown kind skipped)", snap.RelationshipCount())
	}
}

func TestFromSnapshotInactiveFlag(t *testing.T) {
	no := false
	f := Family{
		Persons: []Person{{ID: "a"}, {ID: "b"}},
		Relationships: []Relationship{
			{Kind: "spouse", From: "a", To: "b", Active: &no},
		},
	}
	snap, err := ToSnapshot(f)
	if err != nil {
		t.Fatalf("ToSnapshot() error: %v", err)
	}

	out := FromSnapshot(snap)
	if len(out.Relationships) != 1 {
		t.Fatalf("relationship count = %d, want 1", len(out.Relationships))
	}
	if out.Relationships[0].Active == nil || *out.Relationships[0].Active {
		t.Error("inactive flag lost across conversion")
	}
}
