// Package pkg provides the core libraries for kintree genealogical tree layout.
//
// # Overview
//
// Kintree turns raw family data (people plus parent and spouse records) into a
// positioned diagram ready for rendering. The pkg directory is organized into
// a few areas:
//
//  1. [core/tree] - The pure layout engine (relationship index, visibility,
//     generations, positioning, edges, hidden-relative detection)
//  2. [family] - The family data wire format and snapshot validation
//  3. [layout] - Serialization of computed diagrams
//  4. [pipeline] - Orchestration (validate → layout → serialize) with caching
//  5. [cache] - File, Redis, and null cache backends with content-hash keys
//  6. [render] - Debug renderings (Graphviz DOT)
//
// # Architecture
//
// The typical data flow through kintree:
//
//	family.json
//	     ↓
//	[family] package (decode + validate into a snapshot)
//	     ↓
//	[pipeline] package (cache lookup, engine run)
//	     ↓
//	[core/tree] package (pure, deterministic layout)
//	     ↓
//	[layout] package (wire format)
//	     ↓
//	JSON / DOT / interactive browser
//
// The engine in core/tree never touches I/O; everything around it (files,
// caching, HTTP, the terminal browser) lives in the outer packages so the
// same layout path serves the CLI, the API server, and tests.
//
// [core/tree]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/core/tree
// [family]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/family
// [layout]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/layout
// [pipeline]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/cache
// [render]: https://pkg.go.dev/github.com/kintreehq/kintree/pkg/render
package pkg
