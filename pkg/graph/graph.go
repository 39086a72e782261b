package graph

import (
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Graph is a render graph. The zero value is not usable; use [New] or
// [Build].
//
// A Graph is not safe for concurrent use.
type Graph struct {
	names  []string
	passes []pass.Pass
	edges  [][]NodeID

	images   []*raster.Image
	verified bool
	root     NodeID

	logger *log.Logger
}

// New returns a graph holding only the Source node, backed by input.
func New(input *raster.Image) *Graph {
	return &Graph{
		names:  []string{SourceName},
		passes: []pass.Pass{nil},
		edges:  [][]NodeID{nil},
		images: []*raster.Image{input},
		logger: log.New(io.Discard),
	}
}

// SetLogger sets the logger used to trace execution.
func (g *Graph) SetLogger(l *log.Logger) {
	if l != nil {
		g.logger = l
	}
}

// AddNode adds a pass node and returns its id.
func (g *Graph) AddNode(name string, p pass.Pass) NodeID {
	g.names = append(g.names, name)
	g.passes = append(g.passes, p)
	g.edges = append(g.edges, nil)
	g.images = append(g.images, nil)
	g.verified = false
	return NodeID(len(g.names) - 1)
}

// AddEdge appends dep to the dependency list of from.
func (g *Graph) AddEdge(from, dep NodeID) {
	g.edges[from] = append(g.edges[from], dep)
	g.verified = false
}

// Len returns the number of nodes, Source included.
func (g *Graph) Len() int {
	return len(g.names)
}

// Name returns the declared name of id.
func (g *Graph) Name(id NodeID) string {
	return g.names[id]
}

// Pass returns the pass of id, or nil for Source.
func (g *Graph) Pass(id NodeID) pass.Pass {
	return g.passes[id]
}

// Dependencies returns the dependencies of id in declared order.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	return slices.Clone(g.edges[id])
}

// Root returns the node no other node depends on. It is only meaningful
// after a successful [Graph.Verify].
func (g *Graph) Root() NodeID {
	return g.root
}

// Verified reports whether the graph passed verification since its last
// modification.
func (g *Graph) Verified() bool {
	return g.verified
}

// Build resolves a raw graph against input and returns the graph and the
// id of the display node.
//
// Passes get ids in declaration order starting at 1. Build fails with
// DUPLICATE_NAME when a name is declared twice (or shadows "source") and
// with UNDEFINED_PASS when an edge list, a dependency or the display names
// a pass that was never declared.
func Build(raw Raw, input *raster.Image) (*Graph, NodeID, error) {
	g := New(input)
	ids := make(map[string]NodeID, len(raw.Passes))

	for _, np := range raw.Passes {
		if _, dup := ids[np.Name]; dup || np.Name == SourceName {
			return nil, 0, errors.New(errors.ErrCodeDuplicateName, "duplicate pass name '%s'", np.Name)
		}
		ids[np.Name] = g.AddNode(np.Name, np.Pass)
	}

	resolve := func(name string) (NodeID, error) {
		if name == SourceName {
			return Source, nil
		}
		id, ok := ids[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeUndefinedPass, "reference to undefined pass '%s'", name)
		}
		return id, nil
	}

	for _, owner := range slices.Sorted(maps.Keys(raw.Edges)) {
		from, ok := ids[owner]
		if !ok {
			return nil, 0, errors.New(errors.ErrCodeUndefinedPass, "reference to undefined pass '%s'", owner)
		}
		for _, dep := range raw.Edges[owner] {
			to, err := resolve(dep)
			if err != nil {
				return nil, 0, err
			}
			g.AddEdge(from, to)
		}
	}

	display, ok := ids[raw.Display]
	if !ok {
		return nil, 0, errors.New(errors.ErrCodeUndefinedPass, "reference to undefined pass '%s'", raw.Display)
	}

	return g, display, nil
}
