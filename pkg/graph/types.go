package graph

import (
	"strconv"

	"github.com/matzehuels/nprs/pkg/pass"
)

// NodeID identifies a node. Ids are dense, assigned in build order and
// never reused.
type NodeID int

// Source is the node holding the input image. It owns no pass.
const Source NodeID = 0

// SourceName is the dependency name that always resolves to [Source].
const SourceName = "source"

func (id NodeID) String() string {
	return "#" + strconv.Itoa(int(id))
}

// NamedPass is a pass instance with the name it was declared under.
type NamedPass struct {
	Name string
	Pass pass.Pass
}

// Raw is a graph before name resolution, as produced by the interpreter.
type Raw struct {
	// Passes in declaration order. Repeated names are kept so that Build
	// can reject them.
	Passes []NamedPass
	// Edges maps a pass name to its dependency names in declared order.
	Edges map[string][]string
	// Display names the pass whose output is the result.
	Display string
}
