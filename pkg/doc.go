// Package pkg provides the core libraries for nprs image processing scripts.
//
// # Overview
//
// An nprs script declares passes (blurs, blends, color adjustments), wires
// them into a graph by name and picks one pass to display. The pkg
// directory is organized into three areas:
//
//  1. Language: [dsl] (lexer and parser), [value] (runtime values) and
//     [interp] (statement evaluation)
//  2. Passes: [pass] (contract and registry), [bind] (typed decoding of
//     values into pass configs), [passes] (built-in passes) and [raster]
//     (image buffers and codecs)
//  3. Execution: [graph] (build, verify, render, draw), [pipeline] (the
//     decode → compile → verify → render → encode stages) and [cache]
//
// # Architecture
//
// The typical data flow through nprs:
//
//	script text + NAME=EXPR overrides
//	         ↓
//	    [dsl] package (statements)
//	         ↓
//	    [interp] package (raw graph: named passes, edges, display)
//	         ↓
//	    [graph] package (Build → Verify → Render)
//	         ↓
//	    PNG/JPEG/GIF/TIFF/BMP output
//
// # Quick Start
//
//	raw, err := interp.Compile("blur.nprs", src, nil, passes.Registry())
//	if err != nil {
//	    return err
//	}
//	g, display, err := graph.Build(raw, input)
//	if err != nil {
//	    return err
//	}
//	if err := g.Verify(); err != nil {
//	    return err
//	}
//	if err := g.Render(); err != nil {
//	    return err
//	}
//	out := g.PopImage(display)
//
// Most callers go through [pipeline.Runner], which adds caching and
// logging around the same steps.
//
// # Infrastructure
//
// [errors] - Coded errors shared by every stage. Callers match codes with
// [errors.Is].
//
// [cache] - Render cache with file, Redis and no-op backends.
//
// [observability] - Optional hooks for metrics on pipeline stages, cache
// lookups and served requests.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/graph/...    # Specific package
//	go test -run Example ./... # Examples only
//
// Set NPRS_TEST_REDIS to a Redis address to include the Redis cache tests.
//
// [dsl]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/dsl
// [value]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/value
// [interp]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/interp
// [pass]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/pass
// [bind]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/bind
// [passes]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/passes
// [raster]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/raster
// [graph]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/errors
// [errors.Is]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/errors#Is
// [observability]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/nprs/pkg/buildinfo
package pkg
