package graph

import (
	"time"

	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Render executes every pass reachable from the root. Dependencies run
// before their consumers, in declared order.
//
// Render fails with NOT_VERIFIED unless [Graph.Verify] succeeded since the
// graph was last modified.
func (g *Graph) Render() error {
	if !g.verified {
		return errors.New(errors.ErrCodeNotVerified, "graph must be verified before rendering")
	}
	start := time.Now()
	g.render(g.root)
	g.logger.Debug("graph rendered", "duration", time.Since(start))
	return nil
}

func (g *Graph) render(id NodeID) {
	if id == Source {
		return
	}
	for _, dep := range g.edges[id] {
		g.render(dep)
	}

	target := g.images[id]
	g.images[id] = nil

	aux := make([]*raster.Image, len(g.edges[id]))
	for i, dep := range g.edges[id] {
		aux[i] = g.images[dep]
	}

	start := time.Now()
	g.passes[id].Apply(target, aux)
	g.images[id] = target

	g.logger.Debug("pass applied", "name", g.names[id], "type", g.passes[id].Name(), "duration", time.Since(start))
}

// Image returns the buffer of id without removing it, or nil if id has no
// buffer yet.
func (g *Graph) Image(id NodeID) *raster.Image {
	if int(id) < 0 || int(id) >= len(g.images) {
		return nil
	}
	return g.images[id]
}

// PopImage removes and returns the buffer of id. The graph must be
// verified again before it can render.
func (g *Graph) PopImage(id NodeID) *raster.Image {
	img := g.Image(id)
	if img != nil && id != Source {
		g.images[id] = nil
		g.verified = false
	}
	return img
}
