package pipeline

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/errors"
)

func testSnapshot() *tree.Snapshot {
	born := func(y int) *time.Time {
		t := time.Date(y, time.June, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return tree.NewSnapshot(
		[]tree.Person{
			{ID: "r", GivenName: "Rohan", BirthDate: born(1980)},
			{ID: "s", GivenName: "Sita", BirthDate: born(1982)},
			{ID: "c", GivenName: "Chand", BirthDate: born(2005)},
		},
		[]tree.Relationship{
			{Kind: tree.KindSpouse, From: "r", To: "s", Active: true},
			{Kind: tree.KindParent, From: "c", To: "r", Active: true},
			{Kind: tree.KindParent, From: "c", To: "s", Active: true},
		},
	)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	return NewRunner(fc, nil, testLogger())
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil {
		t.Error("Cache = nil, want null cache")
	}
	if r.Keyer == nil {
		t.Error("Keyer = nil, want default keyer")
	}
	if r.Logger == nil {
		t.Error("Logger = nil, want default logger")
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := fileRunner(t)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), testSnapshot(), Options{FocalID: "r", Mode: ModeFull})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.PersonCount != 3 {
		t.Errorf("PersonCount = %d, want 3", result.Stats.PersonCount)
	}
	if result.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", result.Stats.NodeCount)
	}
	if result.Stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", result.Stats.EdgeCount)
	}
	if result.SnapshotHash == "" {
		t.Error("SnapshotHash is empty")
	}
	if result.CacheInfo.LayoutHit {
		t.Error("LayoutHit = true on first run, want false")
	}
}

func TestRunnerExecuteCachesLayout(t *testing.T) {
	runner := fileRunner(t)
	defer runner.Close()

	snap := testSnapshot()
	opts := Options{FocalID: "r", Mode: ModeFull}

	first, err := runner.Execute(context.Background(), snap, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	second, err := runner.Execute(context.Background(), snap, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}

	if !second.CacheInfo.LayoutHit {
		t.Error("LayoutHit = false on second run, want true")
	}
	if second.SnapshotHash != first.SnapshotHash {
		t.Errorf("SnapshotHash changed: %q vs %q", second.SnapshotHash, first.SnapshotHash)
	}
	if len(second.Diagram.Nodes) != len(first.Diagram.Nodes) {
		t.Errorf("node count changed: %d vs %d", len(second.Diagram.Nodes), len(first.Diagram.Nodes))
	}
}

func TestRunnerExecuteRefreshBypassesCache(t *testing.T) {
	runner := fileRunner(t)
	defer runner.Close()

	snap := testSnapshot()
	if _, err := runner.Execute(context.Background(), snap, Options{FocalID: "r", Mode: ModeFull}); err != nil {
		t.Fatalf("warmup Execute() error = %v", err)
	}

	result, err := runner.Execute(context.Background(), snap, Options{FocalID: "r", Mode: ModeFull, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("LayoutHit = true with Refresh, want false")
	}
}

func TestRunnerExecuteDistinctOptionsDistinctEntries(t *testing.T) {
	runner := fileRunner(t)
	defer runner.Close()

	snap := testSnapshot()
	if _, err := runner.Execute(context.Background(), snap, Options{FocalID: "r", Mode: ModeFull}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Same snapshot with a different focal must not hit the full-mode entry.
	result, err := runner.Execute(context.Background(), snap, Options{FocalID: "c", Mode: ModeFocused})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("LayoutHit = true for different options, want false")
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), testSnapshot(), Options{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing focal id")
	}
	if !errors.Is(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidRequest)
	}
}

func TestRunnerExecuteUnknownFocal(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), testSnapshot(), Options{FocalID: "nobody"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown focal")
	}
	if !errors.Is(err, errors.ErrCodePersonNotFound) {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodePersonNotFound)
	}
}

func TestRunnerLayout(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	diagram, err := runner.Layout(context.Background(), testSnapshot(), Options{FocalID: "r", Mode: ModeFull})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(diagram.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(diagram.Nodes))
	}
	var focal string
	for _, n := range diagram.Nodes {
		if n.Focal {
			focal = n.ID
		}
	}
	if focal != "r" {
		t.Errorf("focal node = %q, want %q", focal, "r")
	}
}
