package graph

import (
	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
)

const (
	white = iota
	gray
	black
)

// Verify checks that g can be rendered and allocates its pass buffers.
//
// Checks run in this order, and the first failure is returned:
//
//  1. CYCLIC_GRAPH: some node depends on itself transitively.
//  2. ISOLATED_NODE: a pass has no dependencies and nothing depends on it.
//  3. MULTIPLE_ROOTS: more than one pass has no dependents.
//  4. MISSING_DEPENDENCY: a pass names a slot that no pass in the graph
//     can fill.
//  5. BAD_DEPENDENCY_COUNT: a pass has a different number of
//     dependencies than it declares slots.
//  6. MISMATCHED_DEPENDENCY: a dependency does not fit its slot.
//
// On success every pass node owns a transparent buffer at the input's
// resolution.
func (g *Graph) Verify() error {
	g.verified = false

	if err := g.checkAcyclic(); err != nil {
		return err
	}
	root, err := g.findRoot()
	if err != nil {
		return err
	}
	if err := g.checkDependencies(); err != nil {
		return err
	}

	width, height := g.images[Source].Resolution()
	for id := 1; id < len(g.images); id++ {
		g.images[id] = raster.Transparent(width, height)
	}

	g.root = root
	g.verified = true
	g.logger.Debug("graph verified", "nodes", len(g.names), "root", g.names[root])
	return nil
}

func (g *Graph) checkAcyclic() error {
	state := make([]int, len(g.names))

	var visit func(NodeID) error
	visit = func(id NodeID) error {
		state[id] = gray
		for _, dep := range g.edges[id] {
			switch state[dep] {
			case gray:
				return errors.New(errors.ErrCodeCyclicGraph, "graph is cyclic (through '%s')", g.names[dep])
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[id] = black
		return nil
	}

	for id := range g.names {
		if state[id] == white {
			if err := visit(NodeID(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) findRoot() (NodeID, error) {
	depended := make([]bool, len(g.names))
	for _, deps := range g.edges {
		for _, dep := range deps {
			depended[dep] = true
		}
	}

	var roots []NodeID
	for id := 1; id < len(g.names); id++ {
		if depended[id] {
			continue
		}
		if len(g.edges[id]) == 0 {
			return 0, errors.New(errors.ErrCodeIsolatedNode, "graph contains isolated node '%s'", g.names[id])
		}
		roots = append(roots, NodeID(id))
	}

	switch len(roots) {
	case 0:
		return 0, errors.New(errors.ErrCodeInternal, "graph has no passes")
	case 1:
		return roots[0], nil
	default:
		return 0, errors.New(errors.ErrCodeMultipleRoots, "graph has more than one root ('%s' and '%s')",
			g.names[roots[0]], g.names[roots[1]])
	}
}

func (g *Graph) checkDependencies() error {
	present := make(map[string]bool)
	for _, p := range g.passes[1:] {
		present[p.Name()] = true
	}

	for id := 1; id < len(g.names); id++ {
		for _, slot := range g.passes[id].Dependencies() {
			if slot == pass.AnyImage || slot == pass.MainImage || present[slot] {
				continue
			}
			return errors.New(errors.ErrCodeMissingDependency,
				"pass '%s' depends on a '%s' pass but the graph contains none", g.names[id], slot)
		}
	}

	for id := 1; id < len(g.names); id++ {
		slots := g.passes[id].Dependencies()
		deps := g.edges[id]
		if len(deps) != len(slots) {
			return errors.New(errors.ErrCodeBadDependencyCount,
				"pass '%s' has %d dependencies but declares %d", g.names[id], len(deps), len(slots))
		}
		for i, slot := range slots {
			if got := g.kind(deps[i]); !fits(slot, got) {
				return errors.New(errors.ErrCodeMismatchedDependency,
					"pass '%s' dependency %d: expected %s but got %s", g.names[id], i, slot, got)
			}
		}
	}
	return nil
}

// kind is the pass type name of id, or "source" for the input node.
func (g *Graph) kind(id NodeID) string {
	if id == Source {
		return pass.MainImage
	}
	return g.passes[id].Name()
}

func fits(slot, kind string) bool {
	return slot == pass.AnyImage || slot == kind
}
