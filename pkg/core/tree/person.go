package tree

import (
	"time"
)

// Gender is an optional person attribute. Unknown is the zero value and is
// always allowed - the layout never branches on gender.
type Gender string

// Recognized gender values.
const (
	GenderUnknown Gender = ""
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderOther   Gender = "other"
)

// Person is a single individual in a family snapshot. Persons are immutable
// for the duration of one layout computation and are referenced by ID only -
// the engine never embeds one person inside another.
//
// The zero value is not usable - ID must be set before adding to a Snapshot.
type Person struct {
	ID         string
	GivenName  string
	FamilyName string
	Gender     Gender
	BirthDate  *time.Time // nil when unknown
	DeathDate  *time.Time // nil when unknown or still living
	Living     bool
	Portrait   string // opaque portrait reference, resolved by the consumer
}

// DisplayName returns "Given Family", falling back to whichever part is set.
func (p Person) DisplayName() string {
	switch {
	case p.GivenName != "" && p.FamilyName != "":
		return p.GivenName + " " + p.FamilyName
	case p.GivenName != "":
		return p.GivenName
	case p.FamilyName != "":
		return p.FamilyName
	default:
		return p.ID
	}
}

// RelKind distinguishes the two stored relationship kinds. Child and sibling
// views are always derived by index construction, never stored, so the data
// cannot disagree with its own mirror.
type RelKind int

const (
	// KindParent records a child→parent fact. From is the child, To the parent.
	KindParent RelKind = iota
	// KindSpouse records a marriage or partnership. The edge is symmetric;
	// From/To order carries no meaning.
	KindSpouse
)

// Relationship is a directed, typed edge between two person IDs.
// For KindParent the direction is child→parent; the inverse parent→child
// view is derived when the Index is built.
type Relationship struct {
	Kind         RelKind
	From         string
	To           string
	MarriageDate *time.Time // spouse edges only, nil when unknown
	DivorceDate  *time.Time // non-nil marks the relationship as dissolved
	Active       bool
}

// Divorced reports whether the relationship carries a dissolution date.
func (r Relationship) Divorced() bool { return r.DivorceDate != nil }

// Snapshot is an immutable arena of persons and relationships handed to the
// engine by the data layer. Persons are indexed by ID; relationships stay a
// flat list and are only ever walked through the derived Index.
//
// A Snapshot performs no validation of genealogical consistency - cycles and
// dangling references are tolerated by the algorithms that consume it.
type Snapshot struct {
	persons       map[string]*Person
	relationships []Relationship
}

// NewSnapshot builds a snapshot from flat person and relationship lists.
// Later persons win on duplicate IDs; persons with empty IDs are dropped.
func NewSnapshot(persons []Person, relationships []Relationship) *Snapshot {
	s := &Snapshot{
		persons:       make(map[string]*Person, len(persons)),
		relationships: relationships,
	}
	for i := range persons {
		p := persons[i]
		if p.ID == "" {
			continue
		}
		s.persons[p.ID] = &p
	}
	return s
}

// Person returns the person with the given ID and true, or nil and false.
func (s *Snapshot) Person(id string) (*Person, bool) {
	p, ok := s.persons[id]
	return p, ok
}

// Has reports whether a person with the given ID exists in the snapshot.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.persons[id]
	return ok
}

// PersonIDs returns all known person IDs in unspecified order.
func (s *Snapshot) PersonIDs() []string {
	ids := make([]string, 0, len(s.persons))
	for id := range s.persons {
		ids = append(ids, id)
	}
	return ids
}

// Relationships returns the stored relationship list. The returned slice is
// the snapshot's own backing slice and must not be modified.
func (s *Snapshot) Relationships() []Relationship { return s.relationships }

// PersonCount returns the number of known persons.
func (s *Snapshot) PersonCount() int { return len(s.persons) }

// RelationshipCount returns the number of stored relationships.
func (s *Snapshot) RelationshipCount() int { return len(s.relationships) }
