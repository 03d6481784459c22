package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// LayoutKeyOpts carries every input that changes a layout result. The
// snapshot itself enters the key as a content hash, so the same request
// against edited data never returns a stale diagram.
type LayoutKeyOpts struct {
	FocalID         string   `json:"focal_id"`
	Mode            string   `json:"mode"`
	ExpandedIDs     []string `json:"expanded_ids,omitempty"`
	GenerationDepth int      `json:"generation_depth,omitempty"`

	// Spacing constants, flattened so a spacing profile change invalidates
	// cached layouts.
	NodeWidth         float64 `json:"node_width"`
	SpouseSpacing     float64 `json:"spouse_spacing"`
	HorizontalSpacing float64 `json:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing"`
}

// Keyer generates cache keys for the cacheable artifact classes.
type Keyer interface {
	// SnapshotKey generates a key for a stored snapshot document.
	SnapshotKey(name string) string

	// LayoutKey generates a key for a computed layout. snapshotHash is the
	// content hash of the serialized snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for a stored snapshot document.
func (k *DefaultKeyer) SnapshotKey(name string) string {
	return hashKey("snapshot", name)
}

// LayoutKey generates a key for a computed layout. ExpandedIDs are sorted
// before hashing so callers do not have to care about slice order.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	opts.ExpandedIDs = slices.Clone(opts.ExpandedIDs)
	slices.Sort(opts.ExpandedIDs)
	return hashKey("layout", snapshotHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so several tenants or snapshot
// collections can share one backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(name string) string {
	return k.prefix + k.inner.SnapshotKey(name)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to keep collisions out of the picture.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
// Used to derive snapshot content hashes for LayoutKey.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
