// Package audgraph models an audio node graph and incrementally lays out
// each node. Node sizes follow measured label text, ports get deterministic
// offsets relative to the node's top-left corner, and the layout stays
// consistent as param ports arrive: size and width only ever grow.
//
// Everything here is synchronous and single-threaded. Events for a node must
// be applied in arrival order (param layout depends on how many params came
// before), and a Graph must not be mutated from multiple goroutines.
package audgraph

import (
	"context"
	"fmt"
	"math"

	"oss.audgraph.dev/aud/audrenderers/audfonts"
	"oss.audgraph.dev/aud/audtarget"
	"oss.audgraph.dev/aud/lib/geo"
)

// TextMeasurer is the text-metrics capability the layout engine needs.
// *textmeasure.Ruler implements it; tests inject deterministic fakes.
type TextMeasurer interface {
	Measure(f audfonts.Font, s string) (width, height int)
}

// LayoutGraph assigns a center to every node through SetCenter. aud ships no
// implementation: positions normally arrive in traces from the host's
// placement stage.
type LayoutGraph func(context.Context, *Graph) error

var (
	NodeLabelFont  = audfonts.GoSans.Font(audfonts.FONT_SIZE_M, audfonts.FONT_STYLE_BOLD)
	ParamLabelFont = audfonts.GoSans.Font(audfonts.FONT_SIZE_XS, audfonts.FONT_STYLE_REGULAR)
)

type Graph struct {
	Name string
	// SampleRate of the traced context, 0 when the trace never said.
	SampleRate int

	// Nodes in creation order.
	Nodes []*Node
	Edges []*Edge

	nodesByID map[string]*Node
	labels    labelGenerator
	ruler     TextMeasurer
}

// NewGraph starts an empty graph session. The graph owns ruler for its
// lifetime and a fresh label counter.
func NewGraph(name string, ruler TextMeasurer) *Graph {
	return &Graph{
		Name:      name,
		nodesByID: make(map[string]*Node),
		ruler:     ruler,
	}
}

type PortKind int8

const (
	PortInput PortKind = iota
	PortOutput
	PortParam
)

func (k PortKind) String() string {
	switch k {
	case PortInput:
		return audtarget.PortTypeInput
	case PortOutput:
		return audtarget.PortTypeOutput
	case PortParam:
		return audtarget.PortTypeParam
	default:
		return fmt.Sprintf("PortKind(%d)", int8(k))
	}
}

type Port struct {
	ID   string
	Kind PortKind

	// Label is the audio-param type name; input and output ports are
	// unlabeled.
	Label           string
	LabelDimensions audtarget.TextDimensions

	// Offsets relative to the node's top-left corner.
	X float64
	Y float64
}

type Node struct {
	ID   string
	Type string

	// Channel counts are fixed at construction; audio nodes do not change
	// them after creation.
	NumInputs  int
	NumOutputs int

	Label           string
	LabelDimensions audtarget.TextDimensions

	// Box always carries the node's current size. TopLeft stays nil until
	// SetCenter is called; an unplaced node must not be rendered.
	Box *geo.Box

	// Ports and PortsArray hold the same *Port values: the map for lookup
	// by id, the slice for insertion order.
	Ports      map[string]*Port
	PortsArray []*Port

	graph  *Graph
	layout nodeLayout
}

type nodeLayout struct {
	inputSectionHeight  float64
	outputSectionHeight float64
	maxLabelWidth       float64
	totalHeight         float64
}

type Edge struct {
	ID string

	Src     *Node
	SrcPort string
	Dst     *Node
	DstPort string
}

// AddNode creates a node, labels it, and lays out its input and output
// ports. Re-adding an existing id returns the existing node unchanged so
// replayed traces stay harmless.
func (g *Graph) AddNode(id, nodeType string, numInputs, numOutputs int) *Node {
	if n, ok := g.nodesByID[id]; ok {
		return n
	}

	n := &Node{
		ID:         id,
		Type:       nodeType,
		NumInputs:  numInputs,
		NumOutputs: numOutputs,
		Label:      g.labels.generate(nodeType),
		Ports:      make(map[string]*Port),
		graph:      g,
	}

	n.layout.inputSectionHeight = InputSectionHeight(numInputs)
	n.layout.outputSectionHeight = OutputSectionHeight(numOutputs)
	n.layout.totalHeight = math.Max(
		n.layout.inputSectionHeight+audtarget.BottomPadding,
		n.layout.outputSectionHeight,
	)

	w, h := g.ruler.Measure(NodeLabelFont, n.Label)
	n.LabelDimensions = audtarget.TextDimensions{Width: w, Height: h}
	n.layout.maxLabelWidth = float64(w)

	n.Box = geo.NewBox(nil, 0, 0)
	n.recomputeSize()

	for i := 0; i < numInputs; i++ {
		x, y := InputPortPosition(i)
		n.putPort(&Port{ID: InputPortID(id, i), Kind: PortInput, X: x, Y: y})
	}
	n.recomputeOutputLayout()

	g.Nodes = append(g.Nodes, n)
	g.nodesByID[id] = n
	return n
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodesByID[id]
}

// RemoveNode discards a node as a unit, along with every wire touching it.
// Individual ports are never removed; this is the only teardown.
func (g *Graph) RemoveNode(id string) error {
	n, ok := g.nodesByID[id]
	if !ok {
		return fmt.Errorf("no node %q to remove", id)
	}
	delete(g.nodesByID, id)
	for i, n2 := range g.Nodes {
		if n2 == n {
			g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
			break
		}
	}
	g.removeEdges(func(e *Edge) bool {
		return e.Src == n || e.Dst == n
	})
	return nil
}

// Connect wires an output port to an input port. Connecting the same pair
// twice returns the existing wire.
func (g *Graph) Connect(srcID string, srcOutput int, dstID string, dstInput int) (*Edge, error) {
	dstPort := InputPortID(dstID, dstInput)
	return g.connect(srcID, srcOutput, dstID, dstPort)
}

// ConnectParam wires an output port to a param port. The param must already
// exist on the destination node.
func (g *Graph) ConnectParam(srcID string, srcOutput int, dstID, paramID string) (*Edge, error) {
	dstPort := ParamPortID(dstID, paramID)
	return g.connect(srcID, srcOutput, dstID, dstPort)
}

func (g *Graph) connect(srcID string, srcOutput int, dstID, dstPort string) (*Edge, error) {
	src := g.Node(srcID)
	if src == nil {
		return nil, fmt.Errorf("connect: no node %q", srcID)
	}
	dst := g.Node(dstID)
	if dst == nil {
		return nil, fmt.Errorf("connect: no node %q", dstID)
	}
	srcPort := OutputPortID(srcID, srcOutput)
	if _, ok := src.Ports[srcPort]; !ok {
		return nil, fmt.Errorf("connect: node %q has no port %q", srcID, srcPort)
	}
	if _, ok := dst.Ports[dstPort]; !ok {
		return nil, fmt.Errorf("connect: node %q has no port %q", dstID, dstPort)
	}

	id := WireID(srcPort, dstPort)
	for _, e := range g.Edges {
		if e.ID == id {
			return e, nil
		}
	}
	e := &Edge{
		ID:      id,
		Src:     src,
		SrcPort: srcPort,
		Dst:     dst,
		DstPort: dstPort,
	}
	g.Edges = append(g.Edges, e)
	return e, nil
}

// Disconnect removes the wire between an output port and an input port.
func (g *Graph) Disconnect(srcID string, srcOutput int, dstID string, dstInput int) error {
	return g.disconnect(WireID(OutputPortID(srcID, srcOutput), InputPortID(dstID, dstInput)))
}

// DisconnectParam removes the wire between an output port and a param port.
func (g *Graph) DisconnectParam(srcID string, srcOutput int, dstID, paramID string) error {
	return g.disconnect(WireID(OutputPortID(srcID, srcOutput), ParamPortID(dstID, paramID)))
}

func (g *Graph) disconnect(wireID string) error {
	if g.removeEdges(func(e *Edge) bool { return e.ID == wireID }) == 0 {
		return fmt.Errorf("disconnect: no wire %q", wireID)
	}
	return nil
}

func (g *Graph) removeEdges(match func(*Edge) bool) int {
	kept := g.Edges[:0]
	removed := 0
	for _, e := range g.Edges {
		if match(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return removed
}

// AddParamPort appends a parameter port below the node's input section,
// growing the node to fit: the left side gains a param row, the widest
// label may widen, and the output ports are re-laid-out for the new size.
func (n *Node) AddParamPort(paramID, paramType string) *Port {
	numParams := len(n.PortsByType(PortParam))
	x, y := ParamPortPosition(numParams, n.layout.inputSectionHeight)

	w, h := n.graph.ruler.Measure(ParamLabelFont, paramType)
	p := n.putPort(&Port{
		ID:              ParamPortID(n.ID, paramID),
		Kind:            PortParam,
		Label:           paramType,
		LabelDimensions: audtarget.TextDimensions{Width: w, Height: h},
		X:               x,
		Y:               y,
	})

	leftHeight := n.layout.inputSectionHeight +
		float64(numParams+1)*audtarget.ParamPortPitch +
		audtarget.ParamBottomPadding
	n.layout.totalHeight = math.Max(leftHeight, n.layout.outputSectionHeight)
	n.layout.maxLabelWidth = math.Max(n.layout.maxLabelWidth, float64(w))
	n.recomputeSize()
	n.recomputeOutputLayout()
	return p
}

// PortsByType returns n's ports of one kind in insertion order, which is not
// necessarily index order; callers that need index order must sort.
func (n *Node) PortsByType(kind PortKind) []*Port {
	var ports []*Port
	for _, p := range n.PortsArray {
		if p.Kind == kind {
			ports = append(ports, p)
		}
	}
	return ports
}

// putPort is the only mutation of the port collection: insert a new port, or
// update the coordinates of the existing one in place, keeping its id, kind,
// and label.
func (n *Node) putPort(p *Port) *Port {
	if existing, ok := n.Ports[p.ID]; ok {
		existing.X = p.X
		existing.Y = p.Y
		return existing
	}
	n.Ports[p.ID] = p
	n.PortsArray = append(n.PortsArray, p)
	return p
}

// recomputeOutputLayout re-derives every output port position from the
// current size. Output offsets depend on node height, so anything that can
// grow the node goes through here afterwards; the recomputation is a full,
// idempotent overwrite, never an incremental patch.
func (n *Node) recomputeOutputLayout() {
	for i := 0; i < n.NumOutputs; i++ {
		x, y := OutputPortPosition(i, n.Box.Width, n.Box.Height, n.NumOutputs)
		n.putPort(&Port{ID: OutputPortID(n.ID, i), Kind: PortOutput, X: x, Y: y})
	}
}

func (n *Node) recomputeSize() {
	var center *geo.Point
	if n.Placed() {
		center = n.Box.Center()
	}
	n.Box.Width = n.layout.maxLabelWidth + 2*audtarget.LabelMarginX
	n.Box.Height = n.layout.totalHeight
	if center != nil {
		// Growth after placement keeps the assigned center.
		n.SetCenter(center.X, center.Y)
	}
}

// Placed reports whether the placement stage has positioned the node.
func (n *Node) Placed() bool {
	return n.Box.TopLeft != nil
}

// SetCenter places the node's center at (x, y).
func (n *Node) SetCenter(x, y float64) {
	n.Box.TopLeft = geo.NewPoint(x-n.Box.Width/2, y-n.Box.Height/2)
}

// Center returns the node's center, or nil while unplaced.
func (n *Node) Center() *geo.Point {
	if !n.Placed() {
		return nil
	}
	return n.Box.Center()
}
