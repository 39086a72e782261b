package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Document is the JSON node-link form of a graph.
type Document struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	Display string `json:"display,omitempty"`
}

// Node is one node of a [Document]. Config is the pass configuration in
// Go syntax; it is empty for the source node.
type Node struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Config string `json:"config,omitempty"`
}

// Edge connects a dependency to the pass consuming it in slot Slot.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Slot int    `json:"slot"`
}

// Export converts g to its node-link form. Nodes are listed by id, which
// makes the output deterministic for a given script.
func Export(g *Graph, display NodeID) Document {
	doc := Document{
		Nodes: make([]Node, 0, len(g.names)),
		Edges: []Edge{},
	}
	for id := range g.names {
		n := Node{ID: id, Name: g.names[id], Type: g.kind(NodeID(id))}
		if p := g.passes[id]; p != nil {
			n.Config = fmt.Sprintf("%+v", p)
		}
		doc.Nodes = append(doc.Nodes, n)
		for slot, dep := range g.edges[id] {
			doc.Edges = append(doc.Edges, Edge{From: g.names[dep], To: g.names[id], Slot: slot})
		}
	}
	if display > Source && int(display) < len(g.names) {
		doc.Display = g.names[display]
	}
	return doc
}

// Marshal returns the indented JSON node-link form of g.
func Marshal(g *Graph, display NodeID) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, display, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the JSON node-link form of g to w.
func Write(g *Graph, display NodeID, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(g, display)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
