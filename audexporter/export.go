// Package audexporter flattens a live audgraph.Graph into the serializable
// render contract of audtarget.
package audexporter

import (
	"context"

	"oss.audgraph.dev/aud/audgraph"
	"oss.audgraph.dev/aud/audtarget"
)

// Export snapshots g in creation order. Unplaced nodes come out with a nil
// Pos; renderers decide whether to skip or place them.
func Export(ctx context.Context, g *audgraph.Graph) (*audtarget.Diagram, error) {
	diagram := audtarget.NewDiagram()
	diagram.Name = g.Name
	diagram.SampleRate = g.SampleRate

	diagram.Nodes = make([]audtarget.Node, len(g.Nodes))
	for i := range g.Nodes {
		diagram.Nodes[i] = toNode(g.Nodes[i])
	}

	diagram.Connections = make([]audtarget.Connection, len(g.Edges))
	for i := range g.Edges {
		diagram.Connections[i] = toConnection(g.Edges[i])
	}

	return diagram, nil
}

func toNode(n *audgraph.Node) audtarget.Node {
	node := audtarget.Node{
		ID:          n.ID,
		Type:        n.Type,
		Category:    audtarget.CategoryOf(n.Type),
		Label:       n.Label,
		LabelWidth:  n.LabelDimensions.Width,
		LabelHeight: n.LabelDimensions.Height,
		Width:       int(n.Box.Width),
		Height:      int(n.Box.Height),
	}
	if n.Placed() {
		node.Pos = &audtarget.Point{X: int(n.Box.TopLeft.X), Y: int(n.Box.TopLeft.Y)}
	}

	node.Ports = make([]audtarget.Port, len(n.PortsArray))
	for i, p := range n.PortsArray {
		node.Ports[i] = audtarget.Port{
			ID:          p.ID,
			Type:        p.Kind.String(),
			Label:       p.Label,
			LabelWidth:  p.LabelDimensions.Width,
			LabelHeight: p.LabelDimensions.Height,
			X:           p.X,
			Y:           p.Y,
		}
	}
	return node
}

func toConnection(e *audgraph.Edge) audtarget.Connection {
	return audtarget.Connection{
		ID:      e.ID,
		Src:     e.Src.ID,
		SrcPort: e.SrcPort,
		Dst:     e.Dst.ID,
		DstPort: e.DstPort,
	}
}
