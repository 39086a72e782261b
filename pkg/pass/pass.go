// Package pass defines the contract every image operation implements and
// the registry that maps pass type names to their binders.
//
// A [Pass] declares its dependency slots with [Pass.Dependencies]. Each slot
// is one of:
//
//   - the exact name of another pass type (for example "Luminance")
//   - [AnyImage], which accepts any dependency
//   - [MainImage], which must be bound to the graph's source image
//
// The graph verifier checks those slots against the edges of the compiled
// graph before anything is applied.
package pass

import (
	"github.com/matzehuels/nprs/pkg/raster"
)

const (
	// AnyImage is a dependency slot accepting any pass.
	AnyImage = "*"
	// MainImage is a dependency slot that must be bound to the source image.
	MainImage = "source"
)

// Pass is one image operation in a render graph.
type Pass interface {
	// Name is the registered type name of the pass.
	Name() string
	// Dependencies lists the dependency slots in positional order.
	Dependencies() []string
	// Apply writes the result into target. aux holds the outputs of the
	// dependencies in the order of Dependencies. target and aux never alias.
	Apply(target *raster.Image, aux []*raster.Image)
}
