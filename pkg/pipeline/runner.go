package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/observability"
)

// Runner encapsulates layout execution with caching. Both the CLI and the
// HTTP API use it so caching logic lives in exactly one place.
//
// The Runner is stateless except for the cache and logger - it stores no
// pipeline results. Multiple goroutines can safely share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of one pipeline run.
type Result struct {
	// Diagram is the serialized layout.
	Diagram layout.Diagram

	// SnapshotHash is the content hash of the snapshot the layout was
	// computed against, usable as a caller-side cache key component.
	SnapshotHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the layout came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PersonCount int
	NodeCount   int
	EdgeCount   int
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for the pipeline stages.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// Execute validates options and computes (or retrieves) the layout.
func (r *Runner) Execute(ctx context.Context, snap *tree.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	start := time.Now()
	diagram, hash, hit, err := r.layoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Diagram:      diagram,
		SnapshotHash: hash,
		Stats: Stats{
			PersonCount: snap.PersonCount(),
			NodeCount:   len(diagram.Nodes),
			EdgeCount:   len(diagram.Edges),
			LayoutTime:  time.Since(start),
		},
		CacheInfo: CacheInfo{LayoutHit: hit},
	}

	r.Logger.Info("computed layout",
		"focal", opts.FocalID,
		"mode", opts.Mode,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// Layout is a convenience wrapper that calls Execute and returns only the
// serialized diagram.
func (r *Runner) Layout(ctx context.Context, snap *tree.Snapshot, opts Options) (layout.Diagram, error) {
	result, err := r.Execute(ctx, snap, opts)
	if err != nil {
		return layout.Diagram{}, err
	}
	return result.Diagram, nil
}

// layoutWithCacheInfo runs the engine with memoization. The cache key covers
// the snapshot content hash and every layout-affecting option, so stale
// reuse after a data edit is impossible.
func (r *Runner) layoutWithCacheInfo(ctx context.Context, snap *tree.Snapshot, opts Options) (layout.Diagram, string, bool, error) {
	snapData, err := family.MarshalSnapshot(snap)
	if err != nil {
		return layout.Diagram{}, "", false, fmt.Errorf("serialize snapshot for cache key: %w", err)
	}
	hash := cache.Hash(snapData)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := layout.UnmarshalDiagram(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, hash, true, nil
			}
			// Corrupt entries fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Layout().OnLayoutStart(ctx, opts.FocalID, opts.Mode, snap.PersonCount())
	layoutStart := time.Now()
	diagram, err := tree.Layout(snap, opts.Request(), opts.Spacing())
	observability.Layout().OnLayoutComplete(ctx, opts.FocalID, opts.Mode, nodeCount(diagram), time.Since(layoutStart), err)
	if err != nil {
		return layout.Diagram{}, "", false, err
	}

	serialized := layout.FromDiagram(diagram)
	if data, err := layout.MarshalSerialized(serialized); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return serialized, hash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func nodeCount(d *tree.Diagram) int {
	if d == nil {
		return 0
	}
	return len(d.Nodes)
}
