package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/nprs/pkg/graph"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Render executes a verified graph and returns the display buffer.
func Render(c *Compiled) (*raster.Image, error) {
	if err := c.Graph.Render(); err != nil {
		return nil, err
	}
	img := c.Graph.PopImage(c.Display)
	if img == nil {
		return nil, fmt.Errorf("display pass %q produced no image", c.Graph.Name(c.Display))
	}
	return img, nil
}

// Encode writes img in the named format.
func Encode(img *raster.Image, format string) ([]byte, error) {
	f, err := raster.FormatFromName(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderDiagram draws a compiled graph in one of the diagram formats.
func RenderDiagram(ctx context.Context, c *Compiled, format string) ([]byte, error) {
	switch format {
	case DiagramDOT:
		return []byte(graph.ToDOT(c.Graph, c.Display)), nil
	case DiagramSVG:
		return graph.RenderSVG(ctx, graph.ToDOT(c.Graph, c.Display))
	case DiagramJSON:
		return graph.Marshal(c.Graph, c.Display)
	default:
		return nil, ValidateDiagramFormat(format)
	}
}
