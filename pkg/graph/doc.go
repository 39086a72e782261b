// Package graph builds, verifies and executes render graphs.
//
// A render graph has one node per declared pass plus the reserved [Source]
// node (id 0) that stands for the input image. Each node lists its
// dependencies in declared order; a pass receives the output buffers of
// those dependencies as its auxiliary images.
//
// # Lifecycle
//
// A graph is built once, verified once, then rendered:
//
//	g, display, err := graph.Build(raw, input)
//	if err != nil { ... }
//	if err := g.Verify(); err != nil { ... }
//	if err := g.Render(); err != nil { ... }
//	out := g.PopImage(display)
//
// [Build] resolves names to node ids. [Graph.Verify] rejects cycles,
// multiple roots, isolated nodes and dependency lists that do not match the
// slots a pass declares, then allocates one transparent buffer per pass at
// the input's resolution. [Graph.Render] walks the graph from its root.
//
// # Execution
//
// Rendering is single-threaded. Dependencies are rendered before their
// consumers in declared order and nothing is memoized: a node reachable
// along two paths is computed once per path. While a pass runs, its own
// buffer is taken out of the graph's buffer arena, so a pass never sees its
// target among its auxiliary images.
//
// # Visualization
//
// [ToDOT] renders the graph as Graphviz DOT and [RenderSVG] lays it out
// with github.com/goccy/go-graphviz. [Marshal] produces the JSON node-link
// form used by listings and cache keys.
package graph
