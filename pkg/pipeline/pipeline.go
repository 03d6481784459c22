// Package pipeline provides the core layout pipeline for kintree.
//
// This package implements the load → layout → export flow shared by the
// CLI, the HTTP API, and the interactive browser. Centralizing it here keeps
// caching and validation behavior identical across all entry points.
//
// # Architecture
//
// The pipeline wraps the pure engine (pkg/core/tree) with:
//
//  1. Option validation and defaulting
//  2. Layout memoization keyed on (snapshot hash, request, spacing)
//  3. Serialization to the wire format (pkg/layout)
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    FocalID: "p-rohan",
//	    Mode:    "focused",
//	}
//	result, err := runner.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Diagram
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// View modes accepted by Options.Mode.
const (
	ModeFocused = string(tree.ModeFocused)
	ModeFull    = string(tree.ModeFull)
)

// DefaultMode is the view mode used when the caller does not pick one.
const DefaultMode = ModeFocused

// ValidModes is the set of supported view modes.
var ValidModes = map[string]bool{
	ModeFocused: true,
	ModeFull:    true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one layout invocation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Request options
	FocalID         string   `json:"focal_id"`
	Mode            string   `json:"mode,omitempty"`
	ExpandedIDs     []string `json:"expanded_ids,omitempty"`
	GenerationDepth int      `json:"generation_depth,omitempty"`

	// Spacing options; zero fields fall back to the engine defaults.
	NodeWidth         float64 `json:"node_width,omitempty"`
	SpouseSpacing     float64 `json:"spouse_spacing,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`

	// Refresh bypasses the cache read (the result is still written back).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it twice has the same effect as once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidatePersonID(o.FocalID); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidRequest, "invalid mode: %q (must be one of: focused, full)", o.Mode)
	}
	if o.GenerationDepth < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "generation depth must not be negative")
	}

	defaults := tree.DefaultSpacing()
	if o.NodeWidth == 0 {
		o.NodeWidth = defaults.NodeWidth
	}
	if o.SpouseSpacing == 0 {
		o.SpouseSpacing = defaults.SpouseSpacing
	}
	if o.HorizontalSpacing == 0 {
		o.HorizontalSpacing = defaults.HorizontalSpacing
	}
	if o.VerticalSpacing == 0 {
		o.VerticalSpacing = defaults.VerticalSpacing
	}
	if o.NodeWidth < 0 || o.SpouseSpacing < 0 || o.HorizontalSpacing < 0 || o.VerticalSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidSpacing, "spacing values must not be negative")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Request converts the options to an engine request.
func (o *Options) Request() tree.Request {
	return tree.Request{
		FocalID:         o.FocalID,
		Mode:            tree.ViewMode(o.Mode),
		ExpandedIDs:     o.ExpandedIDs,
		GenerationDepth: o.GenerationDepth,
	}
}

// Spacing converts the options to engine spacing constants.
func (o *Options) Spacing() tree.Spacing {
	return tree.Spacing{
		NodeWidth:         o.NodeWidth,
		SpouseSpacing:     o.SpouseSpacing,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
	}
}

// LayoutKeyOpts returns cache key options for this invocation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		FocalID:           o.FocalID,
		Mode:              o.Mode,
		ExpandedIDs:       o.ExpandedIDs,
		GenerationDepth:   o.GenerationDepth,
		NodeWidth:         o.NodeWidth,
		SpouseSpacing:     o.SpouseSpacing,
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
	}
}
