package family

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Relationship kinds in the serialization format. Child and sibling facts
// are never serialized - they are derived views, which keeps the stored data
// from disagreeing with its own mirror.
const (
	KindParent = "parent" // from = child, to = parent
	KindSpouse = "spouse" // symmetric
)

// DateLayout is the wire format for all genealogical dates.
const DateLayout = "2006-01-02"

// =============================================================================
// Family - Snapshot Serialization
// =============================================================================

// Family is the canonical serialization format for person/relationship
// snapshots. Used for CLI fixtures, API requests, and cache hashing.
//
// The format is human-readable and designed for round-trip fidelity:
// import → layout → export → re-import produces identical results.
type Family struct {
	Persons       []Person       `json:"persons"`
	Relationships []Relationship `json:"relationships"`
}

// Person is the serialized person record.
type Person struct {
	ID         string `json:"id"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"` // YYYY-MM-DD
	DeathDate  string `json:"death_date,omitempty"` // YYYY-MM-DD
	Living     bool   `json:"living,omitempty"`
	Portrait   string `json:"portrait,omitempty"`
}

// Relationship is the serialized relationship record.
// Active defaults to true when omitted.
type Relationship struct {
	Kind       string `json:"kind"`
	From       string `json:"from"`
	To         string `json:"to"`
	MarriedOn  string `json:"married_on,omitempty"`  // spouse edges, YYYY-MM-DD
	DivorcedOn string `json:"divorced_on,omitempty"` // presence marks dissolution
	Active     *bool  `json:"active,omitempty"`
}

// =============================================================================
// Family ↔ Snapshot Conversion
// =============================================================================

// ToSnapshot converts a Family to the engine's arena representation.
//
// Person ids must be non-empty and unique; dates must match DateLayout.
// Relationships with an unrecognized kind are skipped rather than rejected,
// matching the engine's own tolerance for unknown facts.
func ToSnapshot(f Family) (*tree.Snapshot, error) {
	persons := make([]tree.Person, 0, len(f.Persons))
	seen := make(map[string]struct{}, len(f.Persons))

	for i, pj := range f.Persons {
		if pj.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "person %d has no id", i)
		}
		if _, dup := seen[pj.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "duplicate person id %q", pj.ID)
		}
		seen[pj.ID] = struct{}{}

		birth, err := parseDate(pj.BirthDate)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "person %q birth date", pj.ID)
		}
		death, err := parseDate(pj.DeathDate)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "person %q death date", pj.ID)
		}

		persons = append(persons, tree.Person{
			ID:         pj.ID,
			GivenName:  pj.GivenName,
			FamilyName: pj.FamilyName,
			Gender:     tree.Gender(strings.ToLower(pj.Gender)),
			BirthDate:  birth,
			DeathDate:  death,
			Living:     pj.Living,
			Portrait:   pj.Portrait,
		})
	}

	rels := make([]tree.Relationship, 0, len(f.Relationships))
	for i, rj := range f.Relationships {
		kind, ok := parseKind(rj.Kind)
		if !ok {
			continue // unrecognized kinds are ignored, not fatal
		}
		if rj.From == "" || rj.To == "" {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "relationship %d is missing an endpoint", i)
		}

		married, err := parseDate(rj.MarriedOn)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "relationship %s→%s marriage date", rj.From, rj.To)
		}
		divorced, err := parseDate(rj.DivorcedOn)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "relationship %s→%s divorce date", rj.From, rj.To)
		}

		active := true
		if rj.Active != nil {
			active = *rj.Active
		}

		rels = append(rels, tree.Relationship{
			Kind:         kind,
			From:         rj.From,
			To:           rj.To,
			MarriageDate: married,
			DivorceDate:  divorced,
			Active:       active,
		})
	}

	return tree.NewSnapshot(persons, rels), nil
}

// FromSnapshot converts an engine snapshot back to the serialization format.
// Persons are sorted by id for deterministic output.
func FromSnapshot(s *tree.Snapshot) Family {
	ids := s.PersonIDs()
	slices.Sort(ids)

	out := Family{
		Persons:       make([]Person, 0, len(ids)),
		Relationships: make([]Relationship, 0, s.RelationshipCount()),
	}

	for _, id := range ids {
		p, _ := s.Person(id)
		out.Persons = append(out.Persons, Person{
			ID:         p.ID,
			GivenName:  p.GivenName,
			FamilyName: p.FamilyName,
			Gender:     string(p.Gender),
			BirthDate:  formatDate(p.BirthDate),
			DeathDate:  formatDate(p.DeathDate),
			Living:     p.Living,
			Portrait:   p.Portrait,
		})
	}

	for _, r := range s.Relationships() {
		rj := Relationship{
			Kind:       kindString(r.Kind),
			From:       r.From,
			To:         r.To,
			MarriedOn:  formatDate(r.MarriageDate),
			DivorcedOn: formatDate(r.DivorceDate),
		}
		if !r.Active {
			f := false
			rj.Active = &f
		}
		out.Relationships = append(out.Relationships, rj)
	}

	return out
}

// =============================================================================
// Internal Helpers
// =============================================================================

func parseKind(s string) (tree.RelKind, bool) {
	switch strings.ToLower(s) {
	case KindParent:
		return tree.KindParent, true
	case KindSpouse:
		return tree.KindSpouse, true
	default:
		return 0, false
	}
}

func kindString(k tree.RelKind) string {
	if k == tree.KindSpouse {
		return KindSpouse
	}
	return KindParent
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s, err)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
