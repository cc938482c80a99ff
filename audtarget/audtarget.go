// Package audtarget is the render target documentation of aud.
//
// audexporter produces it, audsvg consumes it, and it is the stable JSON
// contract for anything else that wants to draw an audio graph. It also owns
// the layout metrics audgraph derives node geometry from, so the model and
// every renderer agree on pitches and paddings.
package audtarget

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"oss.audgraph.dev/aud/lib/go2"
)

const (
	// Vertical distance between two input ports on the left edge.
	InputPortPitch = 16.
	// Vertical distance between two output ports on the right edge.
	OutputPortPitch = 24.
	// Vertical distance between two param ports below the input section.
	ParamPortPitch = 16.

	// Room above the first input port; the node label lives in this band.
	PortSectionTopPadding = 24.
	// Room below the input section when the node has no param ports.
	BottomPadding = 8.
	// Room below the last param port.
	ParamBottomPadding = 12.

	// Horizontal margin on each side of the widest label.
	LabelMarginX = 20.

	PortRadius       = 4
	NodeCornerRadius = 6
	NodeStrokeWidth  = 1
	WireStrokeWidth  = 2
)

const (
	PortTypeInput  = "input"
	PortTypeOutput = "output"
	PortTypeParam  = "param"
)

// Category groups audio node types for styling.
type Category string

const (
	CategorySource      Category = "source"
	CategoryProcessing  Category = "processing"
	CategoryDestination Category = "destination"
	CategoryAnalysis    Category = "analysis"
)

var sourceTypes = []string{
	"Oscillator",
	"AudioBufferSource",
	"ConstantSource",
	"MediaElementAudioSource",
	"MediaStreamAudioSource",
}

var destinationTypes = []string{
	"AudioDestination",
	"MediaStreamAudioDestination",
}

// CategoryOf classifies a node type tag. The trailing "Node" suffix is
// ignored so both "GainNode" and "Gain" map the same way.
func CategoryOf(nodeType string) Category {
	t := strings.TrimSuffix(nodeType, "Node")
	switch {
	case go2.Contains(sourceTypes, t):
		return CategorySource
	case go2.Contains(destinationTypes, t):
		return CategoryDestination
	case t == "Analyser":
		return CategoryAnalysis
	default:
		return CategoryProcessing
	}
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type TextDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Port struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Label       string `json:"label,omitempty"`
	LabelWidth  int    `json:"labelWidth,omitempty"`
	LabelHeight int    `json:"labelHeight,omitempty"`

	// Offsets relative to the node's top-left corner.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Category Category `json:"category"`

	Label       string `json:"label"`
	LabelWidth  int    `json:"labelWidth"`
	LabelHeight int    `json:"labelHeight"`

	// Pos is the top-left corner. nil means the placement stage has not
	// assigned a position yet and the node must not be rendered.
	Pos    *Point `json:"pos,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Ports []Port `json:"ports"`
}

// PortsByType returns n's ports of one type, preserving their order.
func (n Node) PortsByType(portType string) []Port {
	var ports []Port
	for _, p := range n.Ports {
		if p.Type == portType {
			ports = append(ports, p)
		}
	}
	return ports
}

type Connection struct {
	ID string `json:"id"`

	Src     string `json:"src"`
	SrcPort string `json:"srcPort"`
	Dst     string `json:"dst"`
	DstPort string `json:"dstPort"`
}

type Diagram struct {
	Name       string `json:"name"`
	SampleRate int    `json:"sampleRate,omitempty"`

	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

func NewDiagram() *Diagram {
	return &Diagram{
		Nodes:       []Node{},
		Connections: []Connection{},
	}
}

func (diagram Diagram) Bytes() ([]byte, error) {
	b1, err := json.Marshal(diagram.Nodes)
	if err != nil {
		return nil, err
	}
	b2, err := json.Marshal(diagram.Connections)
	if err != nil {
		return nil, err
	}
	return append(b1, b2...), nil
}

func (diagram Diagram) HashID() (string, error) {
	b, err := diagram.Bytes()
	if err != nil {
		return "", err
	}
	h := fnv.New32a()
	h.Write(b)
	// CSS names can't start with numbers, so prepend a little something
	return fmt.Sprintf("aud-%d", h.Sum32()), nil
}

// BoundingBox spans the placed nodes. Port circles overhang the left and
// right node edges, so those sides are expanded by the port radius.
func (diagram Diagram) BoundingBox() (topLeft, bottomRight Point) {
	x1 := int(math.MaxInt32)
	y1 := int(math.MaxInt32)
	x2 := int(math.MinInt32)
	y2 := int(math.MinInt32)

	placed := false
	for _, n := range diagram.Nodes {
		if n.Pos == nil {
			continue
		}
		placed = true
		x1 = go2.Min(x1, n.Pos.X-PortRadius)
		y1 = go2.Min(y1, n.Pos.Y-NodeStrokeWidth)
		x2 = go2.Max(x2, n.Pos.X+n.Width+PortRadius)
		y2 = go2.Max(y2, n.Pos.Y+n.Height+NodeStrokeWidth)
	}
	if !placed {
		return Point{0, 0}, Point{0, 0}
	}

	return Point{x1, y1}, Point{x2, y2}
}
