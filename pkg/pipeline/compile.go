package pipeline

import (
	"github.com/matzehuels/nprs/pkg/cache"
	"github.com/matzehuels/nprs/pkg/dsl"
	"github.com/matzehuels/nprs/pkg/graph"
	"github.com/matzehuels/nprs/pkg/interp"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Compiled is a script built into a render graph.
type Compiled struct {
	Raw     graph.Raw
	Graph   *graph.Graph
	Display graph.NodeID
	// Hash is the content hash of the graph's node-link form.
	Hash string
}

// EdgeCount returns the number of dependency edges.
func (c *Compiled) EdgeCount() int {
	n := 0
	for id := range c.Graph.Len() {
		n += len(c.Graph.Dependencies(graph.NodeID(id)))
	}
	return n
}

// Compile parses and interprets the script in opts and builds its graph
// over input. The graph is not verified.
func Compile(opts Options, input *raster.Image) (*Compiled, error) {
	if err := opts.ValidateForCompile(); err != nil {
		return nil, err
	}

	args, err := dsl.ParseArgs(opts.Args)
	if err != nil {
		return nil, err
	}

	raw, err := interp.CompileWithLogger(opts.ScriptName, opts.Script, args, opts.Registry, opts.Logger)
	if err != nil {
		return nil, err
	}

	g, display, err := graph.Build(raw, input)
	if err != nil {
		return nil, err
	}
	g.SetLogger(opts.Logger)

	data, err := graph.Marshal(g, display)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		Raw:     raw,
		Graph:   g,
		Display: display,
		Hash:    cache.Hash(data),
	}, nil
}
